package agent

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/boardforbots/game"
	"github.com/lox/boardforbots/internal/tictactoe"
)

type predictFunc func(game.Board) ([]float64, float64, error)

func (f predictFunc) Predict(b game.Board) ([]float64, float64, error) { return f(b) }

type simFunc func(game.Board, *rand.Rand) (float64, error)

func (f simFunc) Simulate(b game.Board, rng *rand.Rand) (float64, error) { return f(b, rng) }

// fakeRules is a one-ply scripted game: every action leads to a child board
// whose first cell records the action taken, so stub simulators can score
// children by inspection.
type fakeRules struct {
	n     int
	valid []bool
	over  bool
}

func (r fakeRules) Name() string            { return "fake" }
func (r fakeRules) ActionSize() int         { return r.n }
func (r fakeRules) InitialBoard() game.Board { return game.NewBoard(2) }

func (r fakeRules) NextState(b game.Board, p game.Player, a game.Action) (game.Board, game.Player, error) {
	next := game.NewBoard(2)
	next.Cells[0] = int8(a)
	return next, p.Other(), nil
}

func (r fakeRules) ValidMoves(game.Board, game.Player) []bool {
	if r.valid != nil {
		return append([]bool(nil), r.valid...)
	}
	mask := make([]bool, r.n)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

func (r fakeRules) CanonicalForm(b game.Board, _ game.Player) game.Board { return b }
func (r fakeRules) Ended(game.Board, game.Player) (bool, float64)        { return r.over, 0 }
func (r fakeRules) Render(game.Board) string                             { return "" }

func uniformOver(n int) Predictor { return UniformPredictor{Size: n} }

func constSim(v float64) Simulator {
	return simFunc(func(game.Board, *rand.Rand) (float64, error) { return v, nil })
}

// childSim scores each child board by the action that produced it.
func childSim(vals map[int8]float64) Simulator {
	return simFunc(func(b game.Board, _ *rand.Rand) (float64, error) {
		return vals[b.Cells[0]], nil
	})
}

func TestNewMonteCarloAgentDefaults(t *testing.T) {
	a, err := NewMonteCarloAgent(fakeRules{n: 3}, uniformOver(3), constSim(0), MonteCarloConfig{
		TopK:     DefaultTopK,
		Rollouts: DefaultRollouts,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, a.cfg.Workers)
	assert.NotZero(t, a.cfg.Seed)
	assert.NotNil(t, a.logger)
}

func TestNewMonteCarloAgentRejectsBadSearchConfig(t *testing.T) {
	for _, cfg := range []MonteCarloConfig{
		{TopK: 0, Rollouts: 10},
		{TopK: -1, Rollouts: 10},
		{TopK: 3, Rollouts: 0},
		{TopK: 3, Rollouts: -5},
	} {
		_, err := NewMonteCarloAgent(fakeRules{n: 3}, uniformOver(3), constSim(0), cfg)
		assert.Error(t, err, "config %+v", cfg)
	}
}

func TestNewMonteCarloAgentRequiresDeps(t *testing.T) {
	cfg := MonteCarloConfig{TopK: 3, Rollouts: 10}
	_, err := NewMonteCarloAgent(nil, uniformOver(3), constSim(0), cfg)
	assert.Error(t, err)
	_, err = NewMonteCarloAgent(fakeRules{n: 3}, nil, constSim(0), cfg)
	assert.Error(t, err)
	_, err = NewMonteCarloAgent(fakeRules{n: 3}, uniformOver(3), nil, cfg)
	assert.Error(t, err)
}

func TestPolicyMasksAndRenormalises(t *testing.T) {
	rules := fakeRules{n: 4, valid: []bool{true, true, false, true}}
	pred := predictFunc(func(game.Board) ([]float64, float64, error) {
		return []float64{0.25, 0.25, 0.25, 0.25}, 0, nil
	})
	a, err := NewMonteCarloAgent(rules, pred, constSim(0), MonteCarloConfig{TopK: 3, Rollouts: 1, Seed: 1})
	require.NoError(t, err)

	probs, mask, err := a.policy(game.NewBoard(2))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false, true}, mask)
	third := 1.0 / 3.0
	assert.InDeltaSlice(t, []float64{third, third, 0, third}, probs, 1e-12)
	assert.Zero(t, a.MaskCollapses())
}

func TestPolicyCollapseFallsBackToUniform(t *testing.T) {
	rules := fakeRules{n: 4, valid: []bool{true, false, true, false}}
	pred := predictFunc(func(game.Board) ([]float64, float64, error) {
		// All the prior mass sits on illegal actions.
		return []float64{0, 0.5, 0, 0.5}, 0, nil
	})
	var buf bytes.Buffer
	a, err := NewMonteCarloAgent(rules, pred, constSim(0), MonteCarloConfig{
		TopK:     3,
		Rollouts: 1,
		Seed:     1,
		Logger:   log.New(&buf),
	})
	require.NoError(t, err)

	probs, _, err := a.policy(game.NewBoard(2))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0, 0.5, 0}, probs, 1e-12)
	assert.Equal(t, uint64(1), a.MaskCollapses())
	assert.Contains(t, buf.String(), "playing uniformly")

	// The all-zero prior is the same collapse: one illegal entry leaves a
	// uniform third on each legal action.
	zero := predictFunc(func(game.Board) ([]float64, float64, error) {
		return make([]float64, 4), 0, nil
	})
	a, err = NewMonteCarloAgent(fakeRules{n: 4, valid: []bool{true, true, false, true}}, zero, constSim(0),
		MonteCarloConfig{TopK: 3, Rollouts: 1, Seed: 1})
	require.NoError(t, err)
	probs, _, err = a.policy(game.NewBoard(2))
	require.NoError(t, err)
	third := 1.0 / 3.0
	assert.InDeltaSlice(t, []float64{third, third, 0, third}, probs, 1e-12)
	assert.Equal(t, uint64(1), a.MaskCollapses())
}

func TestTopCandidates(t *testing.T) {
	probs := []float64{0.1, 0.4, 0.2, 0.3}
	all := []bool{true, true, true, true}

	assert.Equal(t, []game.Action{1, 3, 2}, topCandidates(probs, all, 3))
	assert.Equal(t, []game.Action{1}, topCandidates(probs, all, 1))
	assert.Equal(t, []game.Action{1, 3, 2, 0}, topCandidates(probs, all, 10), "clamped to legal count")

	// Equal probabilities keep ascending action order.
	assert.Equal(t, []game.Action{0, 1}, topCandidates([]float64{0.5, 0.5}, []bool{true, true}, 2))

	// Only legal actions are candidates, even with zero prior.
	masked := []bool{false, true, true, false}
	assert.Equal(t, []game.Action{1, 2}, topCandidates([]float64{0.9, 0, 0.1, 0}, masked, 3))
}

func TestSelectActionPicksBestAverage(t *testing.T) {
	rules := fakeRules{n: 3}
	sim := childSim(map[int8]float64{0: 0.1, 1: 0.9, 2: 0.5})
	a, err := NewMonteCarloAgent(rules, uniformOver(3), sim, MonteCarloConfig{
		TopK:     3,
		Rollouts: 4,
		Seed:     1,
	})
	require.NoError(t, err)

	action, err := a.SelectAction(context.Background(), rules.InitialBoard())
	require.NoError(t, err)
	assert.Equal(t, game.Action(1), action)
}

func TestSelectActionTieBreak(t *testing.T) {
	rules := fakeRules{n: 3}

	// Identical scores everywhere: the uniform prior ties too, so the lowest
	// action index wins.
	a, err := NewMonteCarloAgent(rules, uniformOver(3), constSim(0.5), MonteCarloConfig{TopK: 3, Rollouts: 1, Seed: 1})
	require.NoError(t, err)
	action, err := a.SelectAction(context.Background(), rules.InitialBoard())
	require.NoError(t, err)
	assert.Equal(t, game.Action(0), action)

	// With distinct priors the higher-prior candidate takes the tie.
	pred := predictFunc(func(game.Board) ([]float64, float64, error) {
		return []float64{0.2, 0.3, 0.5}, 0, nil
	})
	a, err = NewMonteCarloAgent(rules, pred, constSim(0.5), MonteCarloConfig{TopK: 3, Rollouts: 1, Seed: 1})
	require.NoError(t, err)
	action, err = a.SelectAction(context.Background(), rules.InitialBoard())
	require.NoError(t, err)
	assert.Equal(t, game.Action(2), action)
}

func TestSelectActionOnEndedGame(t *testing.T) {
	rules := tictactoe.New()
	a, err := NewMonteCarloAgent(rules, uniformOver(rules.ActionSize()), constSim(0), MonteCarloConfig{TopK: 3, Rollouts: 1, Seed: 1})
	require.NoError(t, err)

	won := game.NewBoard(3)
	won.Cells[0], won.Cells[1], won.Cells[2] = 1, 1, 1
	won.Cells[3], won.Cells[4] = -1, -1

	_, err = a.SelectAction(context.Background(), won)
	assert.ErrorIs(t, err, ErrGameEnded)
}

func TestActionProbs(t *testing.T) {
	rules := tictactoe.New()
	a, err := NewMonteCarloAgent(rules, uniformOver(rules.ActionSize()), constSim(0), MonteCarloConfig{TopK: 3, Rollouts: 1, Seed: 1})
	require.NoError(t, err)

	// Finished position: the zero vector, no error.
	won := game.NewBoard(3)
	won.Cells[0], won.Cells[1], won.Cells[2] = 1, 1, 1
	won.Cells[3], won.Cells[4] = -1, -1
	probs, err := a.ActionProbs(context.Background(), won)
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 9), probs)

	// Live position: one-hot on the selected action.
	probs, err = a.ActionProbs(context.Background(), rules.InitialBoard())
	require.NoError(t, err)
	sum, ones := 0.0, 0
	for _, p := range probs {
		sum += p
		if p == 1 {
			ones++
		}
	}
	assert.Equal(t, 1.0, sum)
	assert.Equal(t, 1, ones)
}

func TestSelectActionNoLegalMoves(t *testing.T) {
	rules := fakeRules{n: 3, valid: []bool{false, false, false}}
	a, err := NewMonteCarloAgent(rules, uniformOver(3), constSim(0), MonteCarloConfig{TopK: 3, Rollouts: 1, Seed: 1})
	require.NoError(t, err)

	_, err = a.SelectAction(context.Background(), rules.InitialBoard())
	assert.ErrorIs(t, err, ErrNoLegalActions)
}

func TestSelectActionContractViolations(t *testing.T) {
	rules := fakeRules{n: 9}

	short := predictFunc(func(game.Board) ([]float64, float64, error) {
		return []float64{0.5, 0.5}, 0, nil
	})
	a, err := NewMonteCarloAgent(rules, short, constSim(0), MonteCarloConfig{TopK: 3, Rollouts: 1, Seed: 1})
	require.NoError(t, err)
	_, err = a.SelectAction(context.Background(), rules.InitialBoard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 priors")

	bad := errors.New("model unavailable")
	failing := predictFunc(func(game.Board) ([]float64, float64, error) { return nil, 0, bad })
	a, err = NewMonteCarloAgent(rules, failing, constSim(0), MonteCarloConfig{TopK: 3, Rollouts: 1, Seed: 1})
	require.NoError(t, err)
	_, err = a.SelectAction(context.Background(), rules.InitialBoard())
	assert.ErrorIs(t, err, bad)

	nan := predictFunc(func(game.Board) ([]float64, float64, error) {
		p := make([]float64, 9)
		p[3] = math.NaN()
		return p, 0, nil
	})
	a, err = NewMonteCarloAgent(rules, nan, constSim(0), MonteCarloConfig{TopK: 3, Rollouts: 1, Seed: 1})
	require.NoError(t, err)
	_, err = a.SelectAction(context.Background(), rules.InitialBoard())
	assert.Error(t, err)
}

func TestSimulatorErrorPropagates(t *testing.T) {
	rules := fakeRules{n: 3}
	boom := errors.New("rollout blew up")
	sim := simFunc(func(game.Board, *rand.Rand) (float64, error) { return 0, boom })
	a, err := NewMonteCarloAgent(rules, uniformOver(3), sim, MonteCarloConfig{TopK: 3, Rollouts: 1, Seed: 1})
	require.NoError(t, err)

	_, err = a.SelectAction(context.Background(), rules.InitialBoard())
	assert.ErrorIs(t, err, boom)
}

func TestParallelMatchesSequential(t *testing.T) {
	rules := tictactoe.New()
	// A simulator that actually consumes randomness, so shared-rng bugs
	// would show up as diverging scores.
	noisy := simFunc(func(_ game.Board, rng *rand.Rand) (float64, error) {
		return rng.Float64()*2 - 1, nil
	})

	boards := []game.Board{rules.InitialBoard()}
	b := rules.InitialBoard()
	b.Cells[4] = 1
	b.Cells[0] = -1
	boards = append(boards, b)

	newAgent := func(workers int) *MonteCarloAgent {
		a, err := NewMonteCarloAgent(rules, uniformOver(9), noisy, MonteCarloConfig{
			TopK:     5,
			Rollouts: 8,
			Workers:  workers,
			Seed:     42,
		})
		require.NoError(t, err)
		return a
	}

	seq := newAgent(1)
	par := newAgent(4)
	for _, board := range boards {
		want, err := seq.SelectAction(context.Background(), board)
		require.NoError(t, err)
		got, err := par.SelectAction(context.Background(), board)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestSelectActionHonoursContext(t *testing.T) {
	rules := fakeRules{n: 3}
	a, err := NewMonteCarloAgent(rules, uniformOver(3), constSim(0), MonteCarloConfig{TopK: 3, Rollouts: 1, Seed: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.SelectAction(ctx, rules.InitialBoard())
	assert.ErrorIs(t, err, context.Canceled)
}
