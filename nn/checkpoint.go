package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/lox/boardforbots/internal/fileutil"
)

// Checkpoint is the JSON form of a PolicyValueNet. Checkpoints are written
// atomically so a crash mid-save never leaves a torn file.
type Checkpoint struct {
	Game   string   `json:"game"`
	Policy netState `json:"policy"`
	Value  netState `json:"value"`
}

type netState struct {
	Activation string       `json:"activation"`
	Inputs     int          `json:"inputs"`
	Layers     []layerState `json:"layers"`
}

type layerState struct {
	Outputs int       `json:"outputs"`
	Weights []float64 `json:"weights"` // row-major, outputs × inputs
	Bias    []float64 `json:"bias"`
}

// Save writes the network to path as a JSON checkpoint.
func (n *PolicyValueNet) Save(path string) error {
	ckpt := Checkpoint{
		Game:   n.gameName,
		Policy: n.policy.state(),
		Value:  n.value.state(),
	}
	if err := fileutil.WriteJSON(path, ckpt); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// LoadPolicyValueNet restores a network from a JSON checkpoint. Dimensions
// and activation names are validated, so a corrupt or hand-edited file fails
// here rather than at prediction time.
func LoadPolicyValueNet(path string) (*PolicyValueNet, error) {
	var ckpt Checkpoint
	if err := fileutil.ReadJSON(path, &ckpt); err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if ckpt.Game == "" {
		return nil, fmt.Errorf("load checkpoint: missing game name")
	}
	policy, err := newMLPFromState(ckpt.Policy)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: policy head: %w", err)
	}
	value, err := newMLPFromState(ckpt.Value)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: value head: %w", err)
	}
	if value.Outputs() != 1 {
		return nil, fmt.Errorf("load checkpoint: value head has %d outputs, want 1", value.Outputs())
	}
	return &PolicyValueNet{gameName: ckpt.Game, policy: policy, value: value}, nil
}

func (m *MLP) state() netState {
	s := netState{
		Activation: m.act.Name(),
		Inputs:     m.inputs,
		Layers:     make([]layerState, len(m.layers)),
	}
	for i, l := range m.layers {
		rows, cols := l.weights.Dims()
		weights := make([]float64, 0, rows*cols)
		for r := 0; r < rows; r++ {
			weights = append(weights, l.weights.RawRowView(r)...)
		}
		bias := make([]float64, rows)
		for j := 0; j < rows; j++ {
			bias[j] = l.bias.AtVec(j)
		}
		s.Layers[i] = layerState{Outputs: rows, Weights: weights, Bias: bias}
	}
	return s
}

func newMLPFromState(s netState) (*MLP, error) {
	act, err := ActivationByName(s.Activation)
	if err != nil {
		return nil, err
	}
	identity, err := ActivationByName("identity")
	if err != nil {
		return nil, err
	}
	if s.Inputs <= 0 {
		return nil, fmt.Errorf("inputs must be positive, got %d", s.Inputs)
	}
	if len(s.Layers) == 0 {
		return nil, fmt.Errorf("no layers")
	}
	layers := make([]denseLayer, len(s.Layers))
	in := s.Inputs
	for i, ls := range s.Layers {
		if ls.Outputs <= 0 {
			return nil, fmt.Errorf("layer %d outputs must be positive, got %d", i, ls.Outputs)
		}
		if len(ls.Weights) != ls.Outputs*in {
			return nil, fmt.Errorf("layer %d has %d weights, want %d", i, len(ls.Weights), ls.Outputs*in)
		}
		if len(ls.Bias) != ls.Outputs {
			return nil, fmt.Errorf("layer %d has %d biases, want %d", i, len(ls.Bias), ls.Outputs)
		}
		layerAct := act
		if i == len(s.Layers)-1 {
			layerAct = identity
		}
		layers[i] = denseLayer{
			weights: mat.NewDense(ls.Outputs, in, append([]float64(nil), ls.Weights...)),
			bias:    mat.NewVecDense(ls.Outputs, append([]float64(nil), ls.Bias...)),
			act:     layerAct,
		}
		in = ls.Outputs
	}
	return &MLP{inputs: s.Inputs, act: act, layers: layers}, nil
}
