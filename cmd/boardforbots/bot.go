package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/boardforbots/client"
	"github.com/lox/boardforbots/cmd/boardforbots/shared"
	"github.com/lox/boardforbots/internal/config"
)

type BotCmd struct {
	Agent  string `arg:"" help:"Agent block from config, or a built-in strategy (montecarlo, greedy, random)"`
	Server string `default:"ws://localhost:8080/ws" help:"WebSocket server URL"`
	Name   string `help:"Name to join under (default: the agent name)"`
	Config string `type:"path" default:"boardforbots.hcl" help:"HCL config file"`
	Seed   int64  `help:"Override the agent's RNG seed"`
	Debug  bool   `help:"Enable debug logging"`
}

func (c *BotCmd) Run() error {
	level := log.InfoLevel
	if c.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})

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
	if blk == nil {
		// Not a configured block; treat the name as a bare strategy.
		blk = &config.AgentBlock{Name: c.Agent, Strategy: c.Agent}
		config.ApplyAgentDefaults(blk)
	}
	if c.Seed != 0 {
		blk.Seed = c.Seed
	}

	ag, err := buildAgent(rules, blk, logger)
	if err != nil {
		return err
	}

	name := c.Name
	if name == "" {
		name = blk.Name
	}

	bot, err := client.New(client.Config{
		URL:    c.Server,
		Name:   name,
		Game:   cfg.Match.Game,
		Logger: logger,
	}, client.AgentMover(ag))
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandler()
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
