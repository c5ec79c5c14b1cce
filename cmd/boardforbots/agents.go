package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/boardforbots/agent"
	"github.com/lox/boardforbots/game"
	"github.com/lox/boardforbots/internal/config"
	"github.com/lox/boardforbots/internal/tictactoe"
	"github.com/lox/boardforbots/nn"
	"github.com/lox/boardforbots/rollout"
)

// rulesFor resolves a game name to its rules provider.
func rulesFor(name string) (game.Rules, error) {
	switch name {
	case "tictactoe":
		return tictactoe.New(), nil
	default:
		return nil, fmt.Errorf("unknown game %q (available: tictactoe)", name)
	}
}

// buildAgent assembles the agent an agent block describes.
func buildAgent(rules game.Rules, blk *config.AgentBlock, logger *log.Logger) (agent.Agent, error) {
	switch blk.Strategy {
	case "random":
		return agent.NewRandomAgent(rules, blk.Seed), nil

	case "greedy":
		predictor, err := predictorFor(rules, blk)
		if err != nil {
			return nil, err
		}
		return agent.NewGreedyAgent(rules, predictor), nil

	case "montecarlo":
		predictor, err := predictorFor(rules, blk)
		if err != nil {
			return nil, err
		}
		return agent.NewMonteCarloAgent(rules, predictor, rollout.New(rules, predictor, blk.MaxDepth),
			agent.MonteCarloConfig{
				TopK:     blk.TopK,
				Rollouts: blk.Rollouts,
				Workers:  blk.Workers,
				Seed:     blk.Seed,
				Logger:   logger.WithPrefix(blk.Name),
			})

	default:
		return nil, fmt.Errorf("agent %s: unknown strategy %q", blk.Name, blk.Strategy)
	}
}

// predictorFor loads the block's checkpoint, builds a fresh network from its
// layer settings, or falls back to the uniform prior.
func predictorFor(rules game.Rules, blk *config.AgentBlock) (agent.Predictor, error) {
	if blk.Checkpoint != "" {
		net, err := nn.LoadPolicyValueNet(blk.Checkpoint)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", blk.Name, err)
		}
		if net.GameName() != rules.Name() {
			return nil, fmt.Errorf("agent %s: checkpoint is for %s, this match plays %s",
				blk.Name, net.GameName(), rules.Name())
		}
		return net, nil
	}
	if len(blk.HiddenLayers) > 0 {
		net, err := nn.NewPolicyValueNet(rules, blk.HiddenLayers, blk.Activation, blk.Seed)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", blk.Name, err)
		}
		return net, nil
	}
	return agent.UniformPredictor{Size: rules.ActionSize()}, nil
}

// newAgentLogger builds the charm logger that agents report diagnostics to.
func newAgentLogger(debug bool) *log.Logger {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}
