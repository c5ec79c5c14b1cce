package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/lox/boardforbots/internal/randutil"
)

// MLP is a fully connected feed-forward network: a Linear+activation pair
// per hidden layer and a final Linear producing raw outputs.
type MLP struct {
	inputs int
	act    Activation
	layers []denseLayer
}

type denseLayer struct {
	weights *mat.Dense // outputs × inputs
	bias    *mat.VecDense
	act     Activation
}

// NewMLP builds an MLP with the given hidden layer widths. The activation
// must name a registered nonlinearity; the output layer is always linear.
// Weights are initialised uniformly within the fan-in bound from seed.
func NewMLP(activation string, inputs int, hidden []int, outputs int, seed int64) (*MLP, error) {
	act, err := ActivationByName(activation)
	if err != nil {
		return nil, err
	}
	if inputs <= 0 {
		return nil, fmt.Errorf("nn: inputs must be positive, got %d", inputs)
	}
	if outputs <= 0 {
		return nil, fmt.Errorf("nn: outputs must be positive, got %d", outputs)
	}
	for i, h := range hidden {
		if h <= 0 {
			return nil, fmt.Errorf("nn: hidden layer %d must be positive, got %d", i, h)
		}
	}
	identity, err := ActivationByName("identity")
	if err != nil {
		return nil, err
	}

	rng := randutil.New(seed)
	layers := make([]denseLayer, 0, len(hidden)+1)
	in := inputs
	for _, out := range hidden {
		layers = append(layers, newDenseLayer(rng, in, out, act))
		in = out
	}
	layers = append(layers, newDenseLayer(rng, in, outputs, identity))

	return &MLP{inputs: inputs, act: act, layers: layers}, nil
}

func newDenseLayer(rng *rand.Rand, in, out int, act Activation) denseLayer {
	bound := 1 / math.Sqrt(float64(in))
	w := mat.NewDense(out, in, nil)
	for r := 0; r < out; r++ {
		for c := 0; c < in; c++ {
			w.Set(r, c, (rng.Float64()*2-1)*bound)
		}
	}
	b := mat.NewVecDense(out, nil)
	for i := 0; i < out; i++ {
		b.SetVec(i, (rng.Float64()*2-1)*bound)
	}
	return denseLayer{weights: w, bias: b, act: act}
}

// Inputs returns the input feature count.
func (m *MLP) Inputs() int { return m.inputs }

// Outputs returns the output feature count.
func (m *MLP) Outputs() int {
	r, _ := m.layers[len(m.layers)-1].weights.Dims()
	return r
}

// Activation returns the name of the hidden-layer activation.
func (m *MLP) Activation() string { return m.act.Name() }

// Forward runs one input vector through the network and returns the raw
// outputs of the final linear layer.
func (m *MLP) Forward(x []float64) ([]float64, error) {
	if len(x) != m.inputs {
		return nil, fmt.Errorf("nn: input has %d features, want %d", len(x), m.inputs)
	}
	v := mat.NewVecDense(len(x), append([]float64(nil), x...))
	for i := range m.layers {
		v = m.layers[i].forward(v)
	}
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out, nil
}

// Hidden returns the activity of the last hidden layer for one input. It is
// the layer whose responses feed RSM analyses.
func (m *MLP) Hidden(x []float64) ([]float64, error) {
	if len(m.layers) < 2 {
		return nil, fmt.Errorf("nn: network has no hidden layers")
	}
	if len(x) != m.inputs {
		return nil, fmt.Errorf("nn: input has %d features, want %d", len(x), m.inputs)
	}
	v := mat.NewVecDense(len(x), append([]float64(nil), x...))
	for i := 0; i < len(m.layers)-1; i++ {
		v = m.layers[i].forward(v)
	}
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out, nil
}

// HiddenBatch stacks Hidden over the rows of xs into an activity matrix, one
// row per input.
func (m *MLP) HiddenBatch(xs [][]float64) (*mat.Dense, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("nn: empty batch")
	}
	first, err := m.Hidden(xs[0])
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(xs), len(first), nil)
	out.SetRow(0, first)
	for i := 1; i < len(xs); i++ {
		h, err := m.Hidden(xs[i])
		if err != nil {
			return nil, err
		}
		out.SetRow(i, h)
	}
	return out, nil
}

func (l denseLayer) forward(v *mat.VecDense) *mat.VecDense {
	rows, _ := l.weights.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(l.weights, v)
	out.AddVec(out, l.bias)
	for i := 0; i < rows; i++ {
		out.SetVec(i, l.act.Apply(out.AtVec(i)))
	}
	return out
}
