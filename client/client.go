// Package client connects bots to a match server. A Bot dials the server,
// joins under its name, and answers move requests until the match ends.
// Decision logic plugs in through the Mover interface, so a bot can be
// anything from a few lines picking off the valid-move mask to a full
// search agent rebuilding the board.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/boardforbots/agent"
	"github.com/lox/boardforbots/protocol"
)

// Mover chooses an action for one move request.
type Mover interface {
	Move(ctx context.Context, req protocol.MoveRequestData) (int, error)
}

// MoverFunc adapts a function to the Mover interface.
type MoverFunc func(ctx context.Context, req protocol.MoveRequestData) (int, error)

// Move calls f.
func (f MoverFunc) Move(ctx context.Context, req protocol.MoveRequestData) (int, error) {
	return f(ctx, req)
}

// AgentMover adapts a board agent to the Mover interface by rebuilding the
// board from the wire form.
func AgentMover(ag agent.Agent) Mover {
	return MoverFunc(func(ctx context.Context, req protocol.MoveRequestData) (int, error) {
		board, err := req.Board.ToGame()
		if err != nil {
			return 0, err
		}
		action, err := ag.SelectAction(ctx, board)
		return int(action), err
	})
}

// Config configures a bot client.
type Config struct {
	// URL locates the server. http and https schemes are rewritten to
	// their WebSocket equivalents, and the /ws path is appended when the
	// URL has none.
	URL string

	// Name is the name the bot joins and is scored under.
	Name string

	// Game, when set, is checked against the game the server hosts.
	Game string

	// Logger receives connection and match events. Nil uses the default.
	Logger *log.Logger
}

// Bot is a client that plays one match on a server.
type Bot struct {
	cfg    Config
	mover  Mover
	logger *log.Logger
}

// New creates a bot client.
func New(cfg Config, mover Mover) (*Bot, error) {
	if cfg.URL == "" {
		return nil, errors.New("client: server URL is required")
	}
	if cfg.Name == "" {
		return nil, errors.New("client: bot name is required")
	}
	if mover == nil {
		return nil, errors.New("client: a mover is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Bot{
		cfg:    cfg,
		mover:  mover,
		logger: logger.WithPrefix("bot").With("name", cfg.Name),
	}, nil
}

// Run connects, joins, and plays until the match ends or ctx is
// cancelled. It returns nil when the server reports the match finished.
func (b *Bot) Run(ctx context.Context) error {
	wsURL, err := serverURL(b.cfg.URL)
	if err != nil {
		return err
	}

	b.logger.Info("Connecting to server", "url", wsURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	join, err := protocol.NewMessage(protocol.MessageTypeJoin, protocol.JoinData{
		BotName: b.cfg.Name,
		Game:    b.cfg.Game,
	})
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(join); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	msgs := make(chan *protocol.Message, 16)
	readErr := make(chan error, 1)
	go func() {
		for {
			var msg protocol.Message
			if err := conn.ReadJSON(&msg); err != nil {
				readErr <- err
				return
			}
			select {
			case msgs <- &msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return ctx.Err()

		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				b.logger.Info("Server closed the connection")
				return nil
			}
			return fmt.Errorf("read: %w", err)

		case msg := <-msgs:
			done, err := b.handleMessage(ctx, conn, msg)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

// handleMessage processes one server message. It reports done when the
// match is over.
func (b *Bot) handleMessage(ctx context.Context, conn *websocket.Conn, msg *protocol.Message) (bool, error) {
	switch msg.Type {
	case protocol.MessageTypeWelcome:
		var data protocol.WelcomeData
		if err := msg.Decode(&data); err != nil {
			return false, err
		}
		if b.cfg.Game != "" && data.Game != b.cfg.Game {
			return false, fmt.Errorf("server hosts %s, this bot plays %s", data.Game, b.cfg.Game)
		}
		b.logger.Info("Joined match", "game", data.Game, "games", data.Games)

	case protocol.MessageTypeGameStart:
		var data protocol.GameStartData
		if err := msg.Decode(&data); err != nil {
			return false, err
		}
		b.logger.Info("Game starting", "gameId", data.GameID, "seat", data.Seat)

	case protocol.MessageTypeMoveRequest:
		var data protocol.MoveRequestData
		if err := msg.Decode(&data); err != nil {
			return false, err
		}
		action, err := b.mover.Move(ctx, data)
		if err != nil {
			// The server forfeits the game for us once the move times out
			b.logger.Error("Failed to choose a move", "error", err)
			return false, nil
		}
		reply, err := protocol.NewMessage(protocol.MessageTypeMove, protocol.MoveData{Action: action})
		if err != nil {
			return false, err
		}
		reply.RequestID = msg.RequestID
		if err := conn.WriteJSON(reply); err != nil {
			return false, fmt.Errorf("send move: %w", err)
		}
		b.logger.Debug("Sent move", "requestId", msg.RequestID, "action", action)

	case protocol.MessageTypeGameEnd:
		var data protocol.GameEndData
		if err := msg.Decode(&data); err != nil {
			return false, err
		}
		if data.Winner == "" {
			b.logger.Info("Game drawn", "gameId", data.GameID, "moves", data.Moves)
		} else {
			b.logger.Info("Game over", "gameId", data.GameID, "winner", data.Winner, "moves", data.Moves, "forfeit", data.Forfeit)
		}

	case protocol.MessageTypeMatchEnd:
		var data protocol.MatchEndData
		if err := msg.Decode(&data); err != nil {
			return false, err
		}
		b.logger.Info("Match finished", "games", data.Games, "wins", data.Wins, "draws", data.Draws)
		return true, nil

	case protocol.MessageTypeError:
		var data protocol.ErrorData
		if err := msg.Decode(&data); err != nil {
			return false, err
		}
		if data.Code == "join_failed" {
			return false, fmt.Errorf("join rejected: %s", data.Message)
		}
		b.logger.Warn("Server error", "code", data.Code, "message", data.Message)

	default:
		b.logger.Debug("Ignoring message", "type", msg.Type)
	}

	return false, nil
}

// serverURL normalizes a server URL to its WebSocket form.
func serverURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "ws://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// Already correct
	default:
		u.Scheme = "ws"
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	return u.String(), nil
}
