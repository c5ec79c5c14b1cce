package agent

import (
	"context"
	"math/rand/v2"

	"github.com/lox/boardforbots/game"
	"github.com/lox/boardforbots/internal/randutil"
)

// RandomAgent plays a uniformly random legal action. It is the weakest
// sensible baseline and the usual first opponent in arena runs.
type RandomAgent struct {
	rules game.Rules
	rng   *rand.Rand
}

// NewRandomAgent builds a random agent seeded from seed.
func NewRandomAgent(rules game.Rules, seed int64) *RandomAgent {
	return &RandomAgent{rules: rules, rng: randutil.New(seed)}
}

// SelectAction implements Agent.
func (a *RandomAgent) SelectAction(_ context.Context, b game.Board) (game.Action, error) {
	if ended, _ := a.rules.Ended(b, game.White); ended {
		return 0, ErrGameEnded
	}
	legal := game.LegalActions(a.rules.ValidMoves(b, game.White))
	if len(legal) == 0 {
		return 0, ErrNoLegalActions
	}
	return legal[a.rng.IntN(len(legal))], nil
}
