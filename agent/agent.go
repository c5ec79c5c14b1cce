package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/lox/boardforbots/game"
)

var (
	// ErrGameEnded is returned when an agent is asked to move on a finished
	// position.
	ErrGameEnded = errors.New("agent: game already ended")

	// ErrNoLegalActions is returned when a live position offers no legal
	// action, which means the rules provider broke its contract.
	ErrNoLegalActions = errors.New("agent: no legal actions on a live board")
)

// Predictor scores a canonical board position.
type Predictor interface {
	// Predict returns a prior probability for every action and an estimated
	// outcome in [-1, 1] for the side to move. Priors are indexed by action
	// and must have exactly ActionSize entries.
	Predict(b game.Board) (priors []float64, value float64, err error)
}

// Simulator estimates the outcome of a canonical position.
type Simulator interface {
	// Simulate plays out the position, with the side to move encoded as
	// White, and returns an outcome in [-1, 1] from the perspective of the
	// player who made the previous move. Implementations must draw all
	// randomness from rng so that callers control determinism, and must be
	// safe for concurrent use when each call gets its own rng.
	Simulate(b game.Board, rng *rand.Rand) (float64, error)
}

// Agent chooses an action for the side to move on a canonical board.
type Agent interface {
	SelectAction(ctx context.Context, b game.Board) (game.Action, error)
}

// UniformPredictor assigns every action the same prior and a neutral value.
// It is the baseline predictor for agents that have no trained network.
type UniformPredictor struct {
	// Size is the action-space size of the game being played.
	Size int
}

// Predict implements Predictor.
func (u UniformPredictor) Predict(game.Board) ([]float64, float64, error) {
	if u.Size <= 0 {
		return nil, 0, fmt.Errorf("agent: uniform predictor needs a positive size, got %d", u.Size)
	}
	priors := make([]float64, u.Size)
	p := 1.0 / float64(u.Size)
	for i := range priors {
		priors[i] = p
	}
	return priors, 0, nil
}
