package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/boardforbots/arena"
	"github.com/lox/boardforbots/cmd/boardforbots/shared"
	"github.com/lox/boardforbots/internal/config"
	"github.com/lox/boardforbots/internal/server"
)

type ServeCmd struct {
	Config  string `type:"path" default:"boardforbots.hcl" help:"HCL config file"`
	Addr    string `help:"Override the configured listen address"`
	Games   int    `help:"Override the configured number of games"`
	Out     string `help:"Write match results JSON to this file"`
	Debug   bool   `help:"Enable debug logging"`
	LogJSON bool   `help:"Output JSON logs instead of console format"`
}

func (c *ServeCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)
	if c.LogJSON {
		logger = shared.SetupStructuredLogger(c.Debug)
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Games > 0 {
		cfg.Match.Games = c.Games
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rules, err := rulesFor(cfg.Match.Game)
	if err != nil {
		return err
	}

	addr := c.Addr
	if addr == "" {
		addr = cfg.Server.ListenAddress()
	}

	level := log.InfoLevel
	if c.Debug {
		level = log.DebugLevel
	}
	srvLogger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})

	srv, err := server.New(rules, server.Config{
		Addr:        addr,
		Games:       cfg.Match.Games,
		MaxMoves:    cfg.Match.MaxMoves,
		MoveTimeout: cfg.Server.MoveTimeout(),
		MoveDelay:   cfg.Match.MoveDelay(),
		Logger:      srvLogger,
		MatchLogger: logger,
	})
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	res, err := srv.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	printSummary(logger, res)

	out := c.Out
	if out == "" {
		out = cfg.Match.Results
	}
	if out != "" {
		if err := arena.WriteResult(out, res); err != nil {
			return err
		}
		logger.Info().Str("path", out).Msg("Results written")
	}
	return nil
}
