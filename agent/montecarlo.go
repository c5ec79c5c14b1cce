package agent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/boardforbots/game"
	"github.com/lox/boardforbots/internal/randutil"
)

const (
	// DefaultTopK is the candidate breadth the config layer applies when no
	// top-k is set.
	DefaultTopK = 3

	// DefaultRollouts is the per-candidate simulation count the config layer
	// applies when none is set.
	DefaultRollouts = 10
)

// MonteCarloConfig configures a MonteCarloAgent. TopK and Rollouts must be
// positive; the remaining fields are optional.
type MonteCarloConfig struct {
	// TopK caps how many of the predictor's highest-prior legal actions are
	// scored with rollouts. Must be positive.
	TopK int

	// Rollouts is the number of simulations averaged per candidate action.
	// Must be positive.
	Rollouts int

	// Workers is the number of candidates scored concurrently. One worker
	// scores candidates sequentially; results are identical either way.
	Workers int

	// Seed drives all rollout randomness. Zero seeds from the wall clock.
	Seed int64

	// Logger receives selection diagnostics. Nil uses the default logger.
	Logger *log.Logger
}

// MonteCarloAgent picks actions by scoring the predictor's top candidate
// actions with random rollouts and playing the one with the best average
// outcome.
type MonteCarloAgent struct {
	rules     game.Rules
	predictor Predictor
	sim       Simulator
	cfg       MonteCarloConfig
	logger    *log.Logger

	decisions atomic.Uint64
	collapses atomic.Uint64
}

// NewMonteCarloAgent builds a Monte-Carlo agent over the given rules,
// predictor, and simulator.
func NewMonteCarloAgent(rules game.Rules, predictor Predictor, sim Simulator, cfg MonteCarloConfig) (*MonteCarloAgent, error) {
	if rules == nil {
		return nil, errors.New("agent: rules are required")
	}
	if predictor == nil {
		return nil, errors.New("agent: predictor is required")
	}
	if sim == nil {
		return nil, errors.New("agent: simulator is required")
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("agent: top-k must be positive, got %d", cfg.TopK)
	}
	if cfg.Rollouts <= 0 {
		return nil, fmt.Errorf("agent: rollouts must be positive, got %d", cfg.Rollouts)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default().WithPrefix("agent")
	}
	return &MonteCarloAgent{
		rules:     rules,
		predictor: predictor,
		sim:       sim,
		cfg:       cfg,
		logger:    cfg.Logger,
	}, nil
}

// SelectAction scores the top candidate actions with rollouts and returns
// the one with the highest average outcome. Ties go to the candidate with
// the higher prior, then the lower action index.
func (a *MonteCarloAgent) SelectAction(ctx context.Context, b game.Board) (game.Action, error) {
	if ended, _ := a.rules.Ended(b, game.White); ended {
		return 0, ErrGameEnded
	}
	probs, mask, err := a.policy(b)
	if err != nil {
		return 0, err
	}
	cands := topCandidates(probs, mask, a.cfg.TopK)
	if len(cands) == 0 {
		return 0, ErrNoLegalActions
	}
	scores, err := a.scoreCandidates(ctx, b, cands)
	if err != nil {
		return 0, err
	}
	best, bestScore := cands[0], scores[0]
	for i := 1; i < len(cands); i++ {
		if scores[i] > bestScore {
			best, bestScore = cands[i], scores[i]
		}
	}
	a.logger.Debug("selected action",
		"action", best,
		"score", bestScore,
		"candidates", len(cands),
		"rollouts", a.cfg.Rollouts)
	return best, nil
}

// ActionProbs returns a probability vector over the action space: the zero
// vector for a finished position, otherwise all mass on the selected action.
func (a *MonteCarloAgent) ActionProbs(ctx context.Context, b game.Board) ([]float64, error) {
	probs := make([]float64, a.rules.ActionSize())
	if ended, _ := a.rules.Ended(b, game.White); ended {
		return probs, nil
	}
	best, err := a.SelectAction(ctx, b)
	if err != nil {
		return nil, err
	}
	probs[best] = 1
	return probs, nil
}

// MaskCollapses reports how many decisions fell back to a uniform policy
// because the predictor put zero mass on every legal action.
func (a *MonteCarloAgent) MaskCollapses() uint64 {
	return a.collapses.Load()
}

// policy masks the predictor's priors to the legal actions and renormalises
// them. If the predictor puts no mass on any legal action it falls back to a
// uniform policy over the legal actions and records the collapse.
func (a *MonteCarloAgent) policy(b game.Board) ([]float64, []bool, error) {
	priors, _, err := a.predictor.Predict(b)
	if err != nil {
		return nil, nil, fmt.Errorf("predict: %w", err)
	}
	n := a.rules.ActionSize()
	if len(priors) != n {
		return nil, nil, fmt.Errorf("agent: predictor returned %d priors, want %d", len(priors), n)
	}
	mask := a.rules.ValidMoves(b, game.White)
	if len(mask) != n {
		return nil, nil, fmt.Errorf("agent: rules returned %d move flags, want %d", len(mask), n)
	}
	legal := game.CountLegal(mask)
	if legal == 0 {
		return nil, nil, ErrNoLegalActions
	}
	probs := make([]float64, n)
	sum := 0.0
	for i, p := range priors {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return nil, nil, fmt.Errorf("agent: prior for action %d is %v", i, p)
		}
		if mask[i] {
			probs[i] = p
			sum += p
		}
	}
	if sum > 0 {
		for i := range probs {
			probs[i] /= sum
		}
		return probs, mask, nil
	}
	a.collapses.Add(1)
	a.logger.Warn("no prior mass on any legal action, playing uniformly", "legal", legal)
	u := 1.0 / float64(legal)
	for i, ok := range mask {
		if ok {
			probs[i] = u
		}
	}
	return probs, mask, nil
}

// topCandidates returns up to k legal actions ordered by probability, with
// equal probabilities keeping ascending action order.
func topCandidates(probs []float64, mask []bool, k int) []game.Action {
	var legal []game.Action
	for i, ok := range mask {
		if ok {
			legal = append(legal, game.Action(i))
		}
	}
	sort.SliceStable(legal, func(i, j int) bool {
		return probs[legal[i]] > probs[legal[j]]
	})
	if k > 0 && len(legal) > k {
		legal = legal[:k]
	}
	return legal
}

// scoreCandidates averages Rollouts simulations for each candidate action.
// Each candidate draws from its own deterministic rng, so the scores do not
// depend on how many workers ran them.
func (a *MonteCarloAgent) scoreCandidates(ctx context.Context, b game.Board, cands []game.Action) ([]float64, error) {
	decision := int(a.decisions.Add(1))
	scores := make([]float64, len(cands))

	score := func(ctx context.Context, i int) error {
		child, next, err := a.rules.NextState(b, game.White, cands[i])
		if err != nil {
			return fmt.Errorf("next state for action %d: %w", cands[i], err)
		}
		canonical := a.rules.CanonicalForm(child, next)
		rng := randutil.New(randutil.Child(a.cfg.Seed, decision*1024+i))
		total := 0.0
		for r := 0; r < a.cfg.Rollouts; r++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := a.sim.Simulate(canonical, rng)
			if err != nil {
				return fmt.Errorf("simulate action %d: %w", cands[i], err)
			}
			total += v
		}
		scores[i] = total / float64(a.cfg.Rollouts)
		return nil
	}

	if a.cfg.Workers == 1 || len(cands) == 1 {
		for i := range cands {
			if err := score(ctx, i); err != nil {
				return nil, err
			}
		}
		return scores, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i := range cands {
		g.Go(func() error { return score(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
