// Package rollout estimates position values with depth-limited playouts
// guided by a predictor's policy. It provides the stock Simulator for
// agent.MonteCarloAgent.
package rollout

import (
	"fmt"
	"math/rand/v2"

	"github.com/lox/boardforbots/agent"
	"github.com/lox/boardforbots/game"
)

// DefaultMaxDepth is the playout depth used when none is configured.
const DefaultMaxDepth = 5

// Estimator plays out a canonical position by sampling moves from the
// predictor's masked policy until the game ends or the depth cap is hit,
// where the predictor's value estimate stands in for the unfinished game.
//
// Estimator holds no mutable state, so one instance may be shared across
// goroutines as long as its predictor tolerates concurrent calls;
// randomness comes entirely from the rng passed to Simulate.
type Estimator struct {
	rules     game.Rules
	predictor agent.Predictor
	maxDepth  int
}

var _ agent.Simulator = (*Estimator)(nil)

// New builds an estimator for the given rules and predictor. A
// non-positive maxDepth selects DefaultMaxDepth.
func New(rules game.Rules, predictor agent.Predictor, maxDepth int) *Estimator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Estimator{rules: rules, predictor: predictor, maxDepth: maxDepth}
}

// Simulate implements agent.Simulator. The board must be canonical, with
// the side to move encoded as White; the returned outcome is from the
// perspective of the player who made the previous move.
func (e *Estimator) Simulate(b game.Board, rng *rand.Rand) (float64, error) {
	cur := b
	// The caller wants the outcome for the opponent of the side to move, so
	// the sign starts negated and flips every ply.
	sign := -1.0
	for depth := 0; ; depth++ {
		if ended, outcome := e.rules.Ended(cur, game.White); ended {
			return outcome * sign, nil
		}
		if depth == e.maxDepth {
			_, value, err := e.predictor.Predict(cur)
			if err != nil {
				return 0, fmt.Errorf("rollout: predict at depth cap: %w", err)
			}
			return value * sign, nil
		}
		action, err := e.sampleAction(cur, rng)
		if err != nil {
			return 0, err
		}
		next, nextPlayer, err := e.rules.NextState(cur, game.White, action)
		if err != nil {
			return 0, fmt.Errorf("rollout: next state: %w", err)
		}
		cur = e.rules.CanonicalForm(next, nextPlayer)
		sign = -sign
	}
}

// sampleAction draws one action from the predictor's policy masked to the
// legal moves. When the policy puts no mass on any legal action the draw
// falls back to uniform over the legal actions.
func (e *Estimator) sampleAction(b game.Board, rng *rand.Rand) (game.Action, error) {
	mask := e.rules.ValidMoves(b, game.White)
	legal := game.LegalActions(mask)
	if len(legal) == 0 {
		return 0, fmt.Errorf("rollout: no legal actions on a live %s board", e.rules.Name())
	}
	priors, _, err := e.predictor.Predict(b)
	if err != nil {
		return 0, fmt.Errorf("rollout: predict: %w", err)
	}
	if len(priors) != len(mask) {
		return 0, fmt.Errorf("rollout: predictor returned %d priors, want %d", len(priors), len(mask))
	}
	sum := 0.0
	for _, a := range legal {
		if p := priors[a]; p > 0 {
			sum += p
		}
	}
	if sum <= 0 {
		return legal[rng.IntN(len(legal))], nil
	}
	r := rng.Float64() * sum
	for _, a := range legal {
		if p := priors[a]; p > 0 {
			r -= p
			if r < 0 {
				return a, nil
			}
		}
	}
	return legal[len(legal)-1], nil
}
