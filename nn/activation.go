package nn

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// leakySlope is the negative-side gradient of leaky_relu.
const leakySlope = 0.1

// Activation is a named elementwise nonlinearity. The set of activations is
// closed: names are data (they appear in config files and checkpoints) and
// resolve through ActivationByName, never through code evaluation. The zero
// Activation is invalid; always obtain one from ActivationByName.
type Activation struct {
	name string
	fn   func(float64) float64
}

// Name returns the registry name of the activation.
func (a Activation) Name() string { return a.name }

// Apply evaluates the activation at x.
func (a Activation) Apply(x float64) float64 { return a.fn(x) }

var activations = map[string]func(float64) float64{
	"identity": func(x float64) float64 { return x },
	"leaky_relu": func(x float64) float64 {
		if x > 0 {
			return x
		}
		return leakySlope * x
	},
	"relu": func(x float64) float64 {
		if x > 0 {
			return x
		}
		return 0
	},
	"sigmoid": func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
	"tanh":    math.Tanh,
}

// LeakyReLU returns a leaky rectifier with the given negative-side slope.
// The registered "leaky_relu" name uses leakySlope; this constructor is the
// route to any other slope.
func LeakyReLU(slope float64) Activation {
	return Activation{
		name: "leaky_relu",
		fn: func(x float64) float64 {
			if x > 0 {
				return x
			}
			return slope * x
		},
	}
}

// ActivationByName resolves a registered activation. Unknown names are an
// error listing the closed set.
func ActivationByName(name string) (Activation, error) {
	fn, ok := activations[name]
	if !ok {
		return Activation{}, fmt.Errorf("nn: unknown activation %q, want one of %s",
			name, strings.Join(ActivationNames(), ", "))
	}
	return Activation{name: name, fn: fn}, nil
}

// ActivationNames returns the registered activation names, sorted.
func ActivationNames() []string {
	names := make([]string, 0, len(activations))
	for name := range activations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
