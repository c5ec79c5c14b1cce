package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/lox/boardforbots/agent"
	"github.com/lox/boardforbots/game"
	"github.com/lox/boardforbots/internal/randutil"
)

// PolicyValueNet scores canonical boards with two MLP heads: a policy head
// producing a prior over actions and a value head estimating the outcome for
// the side to move. It is the learned counterpart to agent.UniformPredictor.
type PolicyValueNet struct {
	gameName string
	policy   *MLP
	value    *MLP
}

var _ agent.Predictor = (*PolicyValueNet)(nil)

// NewPolicyValueNet builds a randomly initialised network shaped for the
// given rules: board cells in, action priors and a scalar value out.
func NewPolicyValueNet(rules game.Rules, hidden []int, activation string, seed int64) (*PolicyValueNet, error) {
	if rules == nil {
		return nil, fmt.Errorf("nn: rules are required")
	}
	inputs := len(rules.InitialBoard().Cells)
	policy, err := NewMLP(activation, inputs, hidden, rules.ActionSize(), randutil.Child(seed, 0))
	if err != nil {
		return nil, fmt.Errorf("policy head: %w", err)
	}
	value, err := NewMLP(activation, inputs, hidden, 1, randutil.Child(seed, 1))
	if err != nil {
		return nil, fmt.Errorf("value head: %w", err)
	}
	return &PolicyValueNet{gameName: rules.Name(), policy: policy, value: value}, nil
}

// GameName returns the name of the game the network was shaped for.
func (n *PolicyValueNet) GameName() string { return n.gameName }

// ActionSize returns the size of the policy head's output.
func (n *PolicyValueNet) ActionSize() int { return n.policy.Outputs() }

// Policy returns the underlying policy head, for activity analyses.
func (n *PolicyValueNet) Policy() *MLP { return n.policy }

// Predict implements agent.Predictor: softmaxed policy logits and a
// tanh-squashed value in [-1, 1].
func (n *PolicyValueNet) Predict(b game.Board) ([]float64, float64, error) {
	x := boardFeatures(b)
	logits, err := n.policy.Forward(x)
	if err != nil {
		return nil, 0, fmt.Errorf("policy head: %w", err)
	}
	raw, err := n.value.Forward(x)
	if err != nil {
		return nil, 0, fmt.Errorf("value head: %w", err)
	}
	return softmax(logits), math.Tanh(raw[0]), nil
}

// HiddenActivity runs a batch of canonical boards through the policy head
// and returns the final hidden layer's activity, one row per board. Feed
// the result to RSM for similarity analyses.
func (n *PolicyValueNet) HiddenActivity(boards []game.Board) (*mat.Dense, error) {
	xs := make([][]float64, len(boards))
	for i, b := range boards {
		xs[i] = boardFeatures(b)
	}
	return n.policy.HiddenBatch(xs)
}

func boardFeatures(b game.Board) []float64 {
	x := make([]float64, len(b.Cells))
	for i, c := range b.Cells {
		x[i] = float64(c)
	}
	return x
}

// softmax is shifted by the max logit so large logits cannot overflow.
func softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	max := floats.Max(logits)
	for i, l := range logits {
		out[i] = math.Exp(l - max)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
