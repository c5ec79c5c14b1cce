// Package protocol defines the WebSocket wire format spoken between the
// match server and remote bots. Every frame is a Message envelope with a
// typed JSON payload; boards always travel in canonical form with the side
// to move encoded as White.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/boardforbots/game"
)

// MessageType identifies the payload carried by a Message.
type MessageType string

const (
	// Client to server messages
	MessageTypeJoin MessageType = "join"
	MessageTypeMove MessageType = "move"

	// Server to client messages
	MessageTypeWelcome     MessageType = "welcome"
	MessageTypeGameStart   MessageType = "game_start"
	MessageTypeMoveRequest MessageType = "move_request"
	MessageTypeGameEnd     MessageType = "game_end"
	MessageTypeMatchEnd    MessageType = "match_end"
	MessageTypeError       MessageType = "error"
)

// String returns the string representation of the message type.
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope for every WebSocket frame. RequestID correlates a
// move_request with the move answering it.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage wraps data in an envelope stamped with the current time.
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into v.
func (m *Message) Decode(v any) error {
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", m.Type, err)
	}
	return nil
}

// Board is the wire form of a game board.
type Board struct {
	N     int    `json:"n"`
	Cells []int8 `json:"cells"`
}

// BoardFromGame converts a board to its wire form.
func BoardFromGame(b game.Board) Board {
	return Board{N: b.N, Cells: append([]int8(nil), b.Cells...)}
}

// ToGame converts a wire board back to a game board, validating its shape.
func (b Board) ToGame() (game.Board, error) {
	if b.N <= 0 {
		return game.Board{}, fmt.Errorf("protocol: board size %d", b.N)
	}
	if len(b.Cells) != b.N*b.N {
		return game.Board{}, fmt.Errorf("protocol: board has %d cells, want %d", len(b.Cells), b.N*b.N)
	}
	return game.Board{N: b.N, Cells: append([]int8(nil), b.Cells...)}, nil
}

// Client -> Server payloads

// JoinData announces a bot to the server.
type JoinData struct {
	BotName string `json:"botName"`
	Game    string `json:"game"`
}

// MoveData answers a move_request; the envelope's RequestID must echo the
// request being answered.
type MoveData struct {
	Action int `json:"action"`
}

// Server -> Client payloads

// WelcomeData confirms a join and describes the hosted game.
type WelcomeData struct {
	BotName    string `json:"botName"`
	Game       string `json:"game"`
	ActionSize int    `json:"actionSize"`
	Games      int    `json:"games"`
}

// GameStartData announces one game of the match.
type GameStartData struct {
	GameID string `json:"gameId"`
	White  string `json:"white"`
	Black  string `json:"black"`
	Seat   string `json:"seat"` // the receiving bot's seat: "white" or "black"
}

// MoveRequestData asks a bot for its move on a canonical board.
type MoveRequestData struct {
	GameID         string `json:"gameId"`
	Board          Board  `json:"board"`
	ValidMoves     []bool `json:"validMoves"`
	MoveNumber     int    `json:"moveNumber"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// GameEndData reports one finished game. An empty winner means a draw.
type GameEndData struct {
	GameID  string `json:"gameId"`
	Winner  string `json:"winner,omitempty"`
	Moves   int    `json:"moves"`
	Forfeit bool   `json:"forfeit,omitempty"`
}

// MatchEndData reports the finished match.
type MatchEndData struct {
	MatchID string         `json:"matchId"`
	Games   int            `json:"games"`
	Wins    map[string]int `json:"wins"`
	Draws   int            `json:"draws"`
}

// ErrorData reports a protocol or server failure.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
