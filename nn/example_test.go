package nn_test

import (
	"fmt"
	"strings"

	"github.com/lox/boardforbots/nn"
)

func ExampleSimpleGraph() {
	g := nn.SimpleGraph{W: -0.5, B: 0.5}
	prediction := g.Forward([]float64{1})
	loss, err := nn.SquaredLoss([]float64{7}, prediction)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("prediction=%.1f loss=%.1f\n", prediction[0], loss[0])
	// Output: prediction=0.0 loss=49.0
}

func ExampleActivationNames() {
	fmt.Println(strings.Join(nn.ActivationNames(), ", "))
	// Output: identity, leaky_relu, relu, sigmoid, tanh
}
