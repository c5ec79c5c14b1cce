package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/boardforbots/game"
	"github.com/lox/boardforbots/internal/config"
	"github.com/lox/boardforbots/internal/tui"
)

type PlayCmd struct {
	Config string `type:"path" default:"boardforbots.hcl" help:"HCL config file"`
	Agent  string `help:"Agent block to play against (default: first in config)"`
	Seat   string `default:"white" enum:"white,black" help:"Seat to play (white moves first)"`
}

func (c *PlayCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rules, err := rulesFor(cfg.Match.Game)
	if err != nil {
		return err
	}

	blk := cfg.AgentByName(c.Agent)
	if c.Agent == "" {
		if len(cfg.Agents) == 0 {
			return fmt.Errorf("config defines no agents")
		}
		blk = &cfg.Agents[0]
	}
	if blk == nil {
		return fmt.Errorf("no agent block named %q in config", c.Agent)
	}

	// The TUI owns the terminal, so agent diagnostics go nowhere.
	logger := log.NewWithOptions(io.Discard, log.Options{})

	opponent, err := buildAgent(rules, blk, logger)
	if err != nil {
		return err
	}

	seat := game.White
	if c.Seat == "black" {
		seat = game.Black
	}
	return tui.Run(tui.New(rules, opponent, seat, logger))
}
