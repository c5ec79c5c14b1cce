package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lox/boardforbots/arena"
	"github.com/lox/boardforbots/cmd/boardforbots/shared"
	"github.com/lox/boardforbots/internal/config"
)

type ArenaCmd struct {
	Config  string `type:"path" default:"boardforbots.hcl" help:"HCL config file"`
	One     string `help:"Agent block for the first contestant (default: first in config)"`
	Two     string `help:"Agent block for the second contestant (default: second in config)"`
	Games   int    `help:"Override the configured number of games"`
	Out     string `help:"Write match results JSON to this file"`
	Debug   bool   `help:"Enable debug logging"`
	LogJSON bool   `help:"Output JSON logs instead of console format"`
}

func (c *ArenaCmd) Run() error {
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

	oneBlk, twoBlk, err := pickAgents(cfg, c.One, c.Two)
	if err != nil {
		return err
	}

	agentLogger := newAgentLogger(c.Debug)
	one, err := buildAgent(rules, oneBlk, agentLogger)
	if err != nil {
		return err
	}
	two, err := buildAgent(rules, twoBlk, agentLogger)
	if err != nil {
		return err
	}

	logger.Info().
		Str("game", cfg.Match.Game).
		Int("games", cfg.Match.Games).
		Str("one", oneBlk.Name).
		Str("two", twoBlk.Name).
		Msg("Starting match")

	match, err := arena.New(rules,
		arena.Contestant{Name: oneBlk.Name, Agent: one},
		arena.Contestant{Name: twoBlk.Name, Agent: two},
		arena.Config{
			Games:     cfg.Match.Games,
			MaxMoves:  cfg.Match.MaxMoves,
			MoveDelay: cfg.Match.MoveDelay(),
			Logger:    logger,
		})
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	res, err := match.Run(ctx)
	if err != nil {
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

// pickAgents resolves the two contestant blocks, defaulting to the first two
// in the config.
func pickAgents(cfg *config.Config, one, two string) (*config.AgentBlock, *config.AgentBlock, error) {
	lookup := func(name string, fallback int) (*config.AgentBlock, error) {
		if name != "" {
			blk := cfg.AgentByName(name)
			if blk == nil {
				return nil, fmt.Errorf("no agent block named %q in config", name)
			}
			return blk, nil
		}
		if fallback >= len(cfg.Agents) {
			return nil, fmt.Errorf("config defines %d agents, a match needs two", len(cfg.Agents))
		}
		return &cfg.Agents[fallback], nil
	}

	oneBlk, err := lookup(one, 0)
	if err != nil {
		return nil, nil, err
	}
	twoBlk, err := lookup(two, 1)
	if err != nil {
		return nil, nil, err
	}
	if oneBlk.Name == twoBlk.Name {
		return nil, nil, fmt.Errorf("contestants must differ, both are %q", oneBlk.Name)
	}
	return oneBlk, twoBlk, nil
}

func printSummary(logger zerolog.Logger, res *arena.Result) {
	logger.Info().
		Str("one", res.One).
		Int("one_wins", res.OneWins).
		Str("two", res.Two).
		Int("two_wins", res.TwoWins).
		Int("draws", res.Draws).
		Int("forfeits", res.Forfeits).
		Float64("score", res.Summary.Score).
		Float64("ci95_low", res.Summary.CI95Low).
		Float64("ci95_high", res.Summary.CI95High).
		Str("verdict", res.Summary.Verdict).
		Dur("duration", res.Duration).
		Msg("Match finished")
}
