package nn

import "fmt"

// SimpleGraph is a one-parameter computational graph: each input feature is
// squashed through tanh(x*w + b). It exists as the minimal example of the
// forward-pass machinery the larger networks share.
type SimpleGraph struct {
	W float64
	B float64
}

// Forward returns tanh(x*w + b) for every feature in xs.
func (g SimpleGraph) Forward(xs []float64) []float64 {
	out := make([]float64, len(xs))
	tanh := activations["tanh"]
	for i, x := range xs {
		out[i] = tanh(x*g.W + g.B)
	}
	return out
}

// SquaredLoss returns the elementwise squared error between targets and
// predictions. The slices must have the same length.
func SquaredLoss(targets, predictions []float64) ([]float64, error) {
	if len(targets) != len(predictions) {
		return nil, fmt.Errorf("nn: %d targets but %d predictions", len(targets), len(predictions))
	}
	out := make([]float64, len(targets))
	for i := range targets {
		d := targets[i] - predictions[i]
		out[i] = d * d
	}
	return out, nil
}
