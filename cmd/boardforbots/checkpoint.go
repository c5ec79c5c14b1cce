package main

import (
	"fmt"

	"github.com/lox/boardforbots/nn"
)

type CheckpointCmd struct {
	Init CheckpointInitCmd `cmd:"" help:"Write a freshly initialised network checkpoint"`
}

type CheckpointInitCmd struct {
	Out        string `arg:"" help:"Checkpoint file to write"`
	Game       string `default:"tictactoe" help:"Game to shape the network for"`
	Hidden     []int  `default:"64,32" help:"Hidden layer widths"`
	Activation string `default:"tanh" help:"Activation function"`
	Seed       int64  `help:"RNG seed for the initial weights"`
}

func (c *CheckpointInitCmd) Run() error {
	rules, err := rulesFor(c.Game)
	if err != nil {
		return err
	}

	net, err := nn.NewPolicyValueNet(rules, c.Hidden, c.Activation, c.Seed)
	if err != nil {
		return err
	}

	if err := net.Save(c.Out); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", c.Out)
	return nil
}
