package agent

import (
	"context"
	"fmt"

	"github.com/lox/boardforbots/game"
)

// GreedyAgent plays the action whose successor the predictor's value head
// likes best for the mover, looking one ply ahead with no rollouts. It
// measures how much Monte-Carlo scoring adds over the raw value estimate.
type GreedyAgent struct {
	rules     game.Rules
	predictor Predictor
}

// NewGreedyAgent builds a greedy agent over the given predictor.
func NewGreedyAgent(rules game.Rules, predictor Predictor) *GreedyAgent {
	return &GreedyAgent{rules: rules, predictor: predictor}
}

// SelectAction implements Agent. Ties go to the lower action index.
func (a *GreedyAgent) SelectAction(_ context.Context, b game.Board) (game.Action, error) {
	if ended, _ := a.rules.Ended(b, game.White); ended {
		return 0, ErrGameEnded
	}
	mask := a.rules.ValidMoves(b, game.White)
	best := game.Action(-1)
	bestV := 0.0
	for i, ok := range mask {
		if !ok {
			continue
		}
		v, err := a.scoreSuccessor(b, game.Action(i))
		if err != nil {
			return 0, err
		}
		if best < 0 || v > bestV {
			best, bestV = game.Action(i), v
		}
	}
	if best < 0 {
		return 0, ErrNoLegalActions
	}
	return best, nil
}

// scoreSuccessor values the position after playing act, from the mover's
// perspective. Finished successors score by their true outcome; live ones
// by the predictor's estimate for the opponent, negated.
func (a *GreedyAgent) scoreSuccessor(b game.Board, act game.Action) (float64, error) {
	child, next, err := a.rules.NextState(b, game.White, act)
	if err != nil {
		return 0, fmt.Errorf("next state for action %d: %w", act, err)
	}
	canonical := a.rules.CanonicalForm(child, next)
	if ended, outcome := a.rules.Ended(canonical, game.White); ended {
		return -outcome, nil
	}
	_, value, err := a.predictor.Predict(canonical)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	return -value, nil
}
