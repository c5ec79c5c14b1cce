// Package nn provides small forward-only neural network components: a
// one-parameter computational graph, a configurable multi-layer perceptron,
// representational similarity matrices, and a policy/value network that
// plugs into agent.Predictor.
//
// Networks are inference-only. Weights are either randomly initialised or
// loaded from a JSON checkpoint produced elsewhere; there is no training
// loop here.
package nn
