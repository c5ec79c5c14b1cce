package main

import (
	"fmt"
	"os"

	"github.com/lox/boardforbots/arena"
	"github.com/lox/boardforbots/internal/report"
	"github.com/lox/boardforbots/nn"
)

type ReportCmd struct {
	Match ReportMatchCmd `cmd:"" help:"Render an HTML match report from a results file"`
	RSM   ReportRSMCmd   `cmd:"" name:"rsm" help:"Render a hidden-layer similarity heatmap from a checkpoint"`
}

type ReportMatchCmd struct {
	Results string `arg:"" type:"existingfile" help:"Match results JSON file"`
	Out     string `default:"match.html" help:"Output HTML file"`
}

func (c *ReportMatchCmd) Run() error {
	res, err := arena.LoadResult(c.Results)
	if err != nil {
		return err
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := report.Match(f, res); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", c.Out)
	return nil
}

type ReportRSMCmd struct {
	Checkpoint string `arg:"" type:"existingfile" help:"Network checkpoint file"`
	Out        string `default:"rsm.html" help:"Output HTML file"`
	Boards     int    `default:"16" help:"Number of sample positions to compare"`
}

func (c *ReportRSMCmd) Run() error {
	net, err := nn.LoadPolicyValueNet(c.Checkpoint)
	if err != nil {
		return err
	}

	rules, err := rulesFor(net.GameName())
	if err != nil {
		return err
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	defer f.Close()

	boards := report.SampleBoards(rules, c.Boards)
	if err := report.RSMHeatmap(f, net, boards); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", c.Out)
	return nil
}
