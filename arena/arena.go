// Package arena runs head-to-head matches between two agents and reduces
// the games to win counts with confidence intervals. Sides swap halfway
// through a match so neither contestant keeps the first-move advantage, and
// an agent that errors or plays an illegal action forfeits that game.
package arena

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lox/boardforbots/agent"
	"github.com/lox/boardforbots/game"
)

// DefaultGames is the match length used when none is configured.
const DefaultGames = 20

const defaultMaxMoves = 1000

// Contestant pairs an agent with the name it is scored under.
type Contestant struct {
	Name  string
	Agent agent.Agent
}

// Config configures a match.
type Config struct {
	// Games is the total number of games; contestant one plays White for the
	// first half and Black for the rest.
	Games int

	// MaxMoves aborts a game that has not ended after this many moves, which
	// means the rules provider broke its termination contract.
	MaxMoves int

	// MoveDelay pauses between moves, for watching live matches.
	MoveDelay time.Duration

	// Clock drives pacing and timing. Nil uses the real clock.
	Clock quartz.Clock

	// Logger receives per-game progress. The zero logger is silent.
	Logger zerolog.Logger

	// OnGameStart and OnGameEnd observe game boundaries, for relaying match
	// progress to spectators and remote bots. Either may be nil. They are
	// called from the goroutine running the match.
	OnGameStart func(id, white, black string)
	OnGameEnd   func(rec GameRecord)
}

// Arena plays matches between two contestants under one rules provider.
type Arena struct {
	rules  game.Rules
	one    Contestant
	two    Contestant
	cfg    Config
	clock  quartz.Clock
	logger zerolog.Logger
}

// New builds an arena. Contestants need distinct non-empty names because
// results are tallied by name.
func New(rules game.Rules, one, two Contestant, cfg Config) (*Arena, error) {
	if rules == nil {
		return nil, errors.New("arena: rules are required")
	}
	if one.Agent == nil || two.Agent == nil {
		return nil, errors.New("arena: both contestants need an agent")
	}
	if one.Name == "" || two.Name == "" {
		return nil, errors.New("arena: both contestants need a name")
	}
	if one.Name == two.Name {
		return nil, fmt.Errorf("arena: contestants share the name %q", one.Name)
	}
	if cfg.Games <= 0 {
		cfg.Games = DefaultGames
	}
	if cfg.MaxMoves <= 0 {
		cfg.MaxMoves = defaultMaxMoves
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	return &Arena{
		rules:  rules,
		one:    one,
		two:    two,
		cfg:    cfg,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}, nil
}

// Run plays the configured number of games and returns the match result.
func (a *Arena) Run(ctx context.Context) (*Result, error) {
	start := a.clock.Now()
	res := &Result{
		ID:   uuid.NewString(),
		Game: a.rules.Name(),
		One:  a.one.Name,
		Two:  a.two.Name,
	}

	a.logger.Info().
		Str("match_id", res.ID).
		Str("game", res.Game).
		Str("player_one", a.one.Name).
		Str("player_two", a.two.Name).
		Int("games", a.cfg.Games).
		Msg("Starting match")

	thinkTimes := make(map[string][]time.Duration)

	firstHalf := (a.cfg.Games + 1) / 2
	for i := 0; i < a.cfg.Games; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		white, black := a.one, a.two
		if i >= firstHalf {
			white, black = a.two, a.one
		}
		id := uuid.NewString()
		if a.cfg.OnGameStart != nil {
			a.cfg.OnGameStart(id, white.Name, black.Name)
		}
		rec, err := a.playGame(ctx, id, white, black, thinkTimes)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}
		res.Games = append(res.Games, rec)
		if a.cfg.OnGameEnd != nil {
			a.cfg.OnGameEnd(rec)
		}

		a.logger.Info().
			Str("game_id", rec.ID).
			Int("game", i+1).
			Str("white", rec.White).
			Str("black", rec.Black).
			Str("winner", rec.Winner).
			Int("moves", rec.Moves).
			Bool("forfeit", rec.Forfeit).
			Msg("Game complete")
	}

	res.tally()
	res.Summary = Summarize(res.scores())
	res.Latency = map[string]Latency{
		a.one.Name: SummarizeLatency(thinkTimes[a.one.Name]),
		a.two.Name: SummarizeLatency(thinkTimes[a.two.Name]),
	}
	res.Duration = a.clock.Since(start)

	a.logger.Info().
		Str("match_id", res.ID).
		Int("player_one_wins", res.OneWins).
		Int("player_two_wins", res.TwoWins).
		Int("draws", res.Draws).
		Int("forfeits", res.Forfeits).
		Float64("score", res.Summary.Score).
		Str("verdict", res.Summary.Verdict).
		Msg("Match complete")

	return res, nil
}

// playGame plays one game with the given seating and returns its record,
// appending each seat's think times to thinkTimes. Agent failures and
// illegal actions are game outcomes, not errors; errors mean the match
// cannot sensibly continue.
func (a *Arena) playGame(ctx context.Context, id string, white, black Contestant, thinkTimes map[string][]time.Duration) (GameRecord, error) {
	rec := GameRecord{ID: id, White: white.Name, Black: black.Name}
	board := a.rules.InitialBoard()
	player := game.White
	gameStart := a.clock.Now()

	for {
		if ended, outcome := a.rules.Ended(board, game.White); ended {
			switch {
			case outcome > 0:
				rec.Winner = white.Name
			case outcome < 0:
				rec.Winner = black.Name
			}
			rec.Duration = a.clock.Since(gameStart)
			return rec, nil
		}
		if rec.Moves >= a.cfg.MaxMoves {
			return rec, fmt.Errorf("arena: game still live after %d moves", a.cfg.MaxMoves)
		}

		seat, opponent := white, black
		if player == game.Black {
			seat, opponent = black, white
		}
		canonical := a.rules.CanonicalForm(board, player)

		thinkStart := a.clock.Now()
		action, err := seat.Agent.SelectAction(ctx, canonical)
		thinkTimes[seat.Name] = append(thinkTimes[seat.Name], a.clock.Since(thinkStart))
		if err != nil {
			if ctx.Err() != nil {
				return rec, ctx.Err()
			}
			a.logger.Warn().
				Str("game_id", rec.ID).
				Str("player", seat.Name).
				Err(err).
				Msg("Agent failed, forfeiting game")
			rec.Winner, rec.Forfeit = opponent.Name, true
			rec.ForfeitReason = err.Error()
			rec.Duration = a.clock.Since(gameStart)
			return rec, nil
		}

		mask := a.rules.ValidMoves(canonical, game.White)
		if int(action) < 0 || int(action) >= len(mask) || !mask[action] {
			a.logger.Warn().
				Str("game_id", rec.ID).
				Str("player", seat.Name).
				Int("action", int(action)).
				Msg("Illegal action, forfeiting game")
			rec.Winner, rec.Forfeit = opponent.Name, true
			rec.ForfeitReason = fmt.Sprintf("illegal action %d", int(action))
			rec.Duration = a.clock.Since(gameStart)
			return rec, nil
		}

		board, player, err = a.rules.NextState(board, player, action)
		if err != nil {
			return rec, fmt.Errorf("arena: next state: %w", err)
		}
		rec.Moves++

		if e := a.logger.Debug(); e.Enabled() {
			e.Str("game_id", rec.ID).
				Int("move", rec.Moves).
				Str("player", seat.Name).
				Str("board", a.rules.Render(board)).
				Msg("Move played")
		}

		if a.cfg.MoveDelay > 0 {
			if err := a.pause(ctx); err != nil {
				return rec, err
			}
		}
	}
}

func (a *Arena) pause(ctx context.Context) error {
	fired := make(chan struct{})
	timer := a.clock.AfterFunc(a.cfg.MoveDelay, func() { close(fired) })
	defer timer.Stop()
	select {
	case <-fired:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
