package server

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/boardforbots/agent"
	"github.com/lox/boardforbots/game"
	"github.com/lox/boardforbots/protocol"
)

// botLink is the part of Connection a remote agent needs. Tests
// substitute an in-memory fake.
type botLink interface {
	Name() string
	SendMessage(*protocol.Message) error
	Moves() <-chan IncomingMove
	Done() <-chan struct{}
}

// RemoteAgent proxies move selection to a connected bot. Each request is
// tagged with a fresh request ID; answers to older requests are discarded.
// A bot that disconnects or overruns the timeout makes SelectAction fail,
// which the match loop scores as a forfeit.
type RemoteAgent struct {
	link    botLink
	rules   game.Rules
	timeout time.Duration
	clock   quartz.Clock
	logger  *log.Logger
	seq     atomic.Int64

	mu      sync.Mutex
	gameID  string
	moveNum int
}

// DefaultMoveTimeout bounds how long a remote bot may think per move.
const DefaultMoveTimeout = 30 * time.Second

// NewRemoteAgent creates an agent backed by a connected bot.
func NewRemoteAgent(conn *Connection, rules game.Rules, timeout time.Duration, clock quartz.Clock, logger *log.Logger) *RemoteAgent {
	return newRemoteAgent(conn, rules, timeout, clock, logger)
}

func newRemoteAgent(link botLink, rules game.Rules, timeout time.Duration, clock quartz.Clock, logger *log.Logger) *RemoteAgent {
	if timeout <= 0 {
		timeout = DefaultMoveTimeout
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &RemoteAgent{
		link:    link,
		rules:   rules,
		timeout: timeout,
		clock:   clock,
		logger:  logger.WithPrefix("remote-agent").With("bot", link.Name()),
	}
}

// SetGame marks the start of a new game, resetting the per-game move count.
func (ra *RemoteAgent) SetGame(id string) {
	ra.mu.Lock()
	defer ra.mu.Unlock()
	ra.gameID = id
	ra.moveNum = 0
}

// SelectAction asks the bot for its move on the given canonical board.
func (ra *RemoteAgent) SelectAction(ctx context.Context, b game.Board) (game.Action, error) {
	if ended, _ := ra.rules.Ended(b, game.White); ended {
		return 0, agent.ErrGameEnded
	}

	ra.mu.Lock()
	ra.moveNum++
	gameID, moveNum := ra.gameID, ra.moveNum
	ra.mu.Unlock()

	requestID := fmt.Sprintf("move-%d", ra.seq.Add(1))
	msg, err := protocol.NewMessage(protocol.MessageTypeMoveRequest, protocol.MoveRequestData{
		GameID:         gameID,
		Board:          protocol.BoardFromGame(b),
		ValidMoves:     ra.rules.ValidMoves(b, game.White),
		MoveNumber:     moveNum,
		TimeoutSeconds: int(ra.timeout / time.Second),
	})
	if err != nil {
		return 0, fmt.Errorf("encode move request: %w", err)
	}
	msg.RequestID = requestID

	ra.logger.Debug("Requesting move", "requestId", requestID, "game", gameID, "move", moveNum)

	if err := ra.link.SendMessage(msg); err != nil {
		return 0, fmt.Errorf("send move request to %s: %w", ra.link.Name(), err)
	}

	timeoutFired := make(chan struct{})
	timer := ra.clock.AfterFunc(ra.timeout, func() {
		close(timeoutFired)
	})
	defer timer.Stop()

	for {
		select {
		case move := <-ra.link.Moves():
			if move.RequestID != requestID {
				ra.logger.Debug("Discarding stale move", "want", requestID, "got", move.RequestID)
				continue
			}
			ra.logger.Debug("Received move", "requestId", requestID, "action", move.Action)
			return game.Action(move.Action), nil

		case <-timeoutFired:
			ra.logger.Warn("Move timeout", "requestId", requestID, "timeout", ra.timeout)
			return 0, fmt.Errorf("bot %s took longer than %s to move", ra.link.Name(), ra.timeout)

		case <-ra.link.Done():
			return 0, fmt.Errorf("bot %s disconnected", ra.link.Name())

		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}
