package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/boardforbots/game"
	"github.com/lox/boardforbots/protocol"
)

func TestServerURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"http://example.com:8080", "ws://example.com:8080/ws"},
		{"https://example.com", "wss://example.com/ws"},
		{"ws://example.com:8080/custom", "ws://example.com:8080/custom"},
		{"wss://example.com/", "wss://example.com/ws"},
		{"127.0.0.1:9000", "ws://127.0.0.1:9000/ws"},
	}
	for _, tc := range cases {
		got, err := serverURL(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNewValidation(t *testing.T) {
	mover := MoverFunc(func(context.Context, protocol.MoveRequestData) (int, error) { return 0, nil })

	_, err := New(Config{Name: "bot"}, mover)
	assert.Error(t, err)

	_, err = New(Config{URL: "ws://host"}, mover)
	assert.Error(t, err)

	_, err = New(Config{URL: "ws://host", Name: "bot"}, nil)
	assert.Error(t, err)

	_, err = New(Config{URL: "ws://host", Name: "bot"}, mover)
	assert.NoError(t, err)
}

type actionAgent struct {
	action game.Action
	seen   game.Board
}

func (a *actionAgent) SelectAction(_ context.Context, b game.Board) (game.Action, error) {
	a.seen = b
	return a.action, nil
}

func TestAgentMoverRebuildsBoard(t *testing.T) {
	ag := &actionAgent{action: 4}
	mover := AgentMover(ag)

	board := game.NewBoard(3)
	board.Cells[0] = int8(game.White)
	board.Cells[8] = int8(game.Black)

	action, err := mover.Move(context.Background(), protocol.MoveRequestData{
		Board: protocol.BoardFromGame(board),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, action)
	assert.Equal(t, board, ag.seen)

	_, err = mover.Move(context.Background(), protocol.MoveRequestData{
		Board: protocol.Board{N: 3, Cells: []int8{1}},
	})
	assert.Error(t, err)
}
