package tui

import (
	"context"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/boardforbots/agent"
	"github.com/lox/boardforbots/game"
	"github.com/lox/boardforbots/internal/tictactoe"
)

// firstLegalAgent plays the lowest open square.
type firstLegalAgent struct {
	rules game.Rules
}

func (a firstLegalAgent) SelectAction(_ context.Context, b game.Board) (game.Action, error) {
	for i, ok := range a.rules.ValidMoves(b, game.White) {
		if ok {
			return game.Action(i), nil
		}
	}
	return 0, agent.ErrNoLegalActions
}

func testModel(t *testing.T, humanSeat game.Player) *Model {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	rules := tictactoe.New()
	return New(rules, firstLegalAgent{rules: rules}, humanSeat, logger)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestCursorMovement(t *testing.T) {
	m := testModel(t, game.White)

	m.Update(key("right"))
	assert.Equal(t, 1, m.cursor)

	m.Update(key("down"))
	assert.Equal(t, 4, m.cursor)

	m.Update(key("left"))
	assert.Equal(t, 3, m.cursor)

	m.Update(key("up"))
	assert.Equal(t, 0, m.cursor)

	// Clamped at the edges.
	m.Update(key("up"))
	assert.Equal(t, 0, m.cursor)
	m.Update(key("left"))
	assert.Equal(t, 0, m.cursor)
}

func TestPlaceHandsTurnToAgent(t *testing.T) {
	m := testModel(t, game.White)
	require.Equal(t, "Your move", m.status)

	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd, "placing a move should schedule the agent")

	assert.Equal(t, int8(game.White), m.board.Cells[0])
	assert.True(t, m.thinking)
	assert.Equal(t, "Thinking...", m.status)

	// Run the agent command and feed its answer back in.
	msg := cmd()
	move, ok := msg.(agentMoveMsg)
	require.True(t, ok)
	require.NoError(t, move.err)

	m.Update(msg)
	assert.False(t, m.thinking)
	assert.Equal(t, int8(game.Black), m.board.Cells[move.action])
	assert.Equal(t, "Your move", m.status)
}

func TestPlaceRejectsOccupiedSquare(t *testing.T) {
	m := testModel(t, game.White)
	m.board.Set(0, 0, int8(game.Black))

	_, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, "That square is not open", m.status)
	assert.Equal(t, int8(game.Black), m.board.Cells[0])
	assert.False(t, m.thinking)
}

func TestDigitQuickDrop(t *testing.T) {
	m := testModel(t, game.White)

	_, cmd := m.Update(key("5"))
	require.NotNil(t, cmd)
	assert.Equal(t, 4, m.cursor)
	assert.Equal(t, int8(game.White), m.board.Cells[4])
}

func TestAgentMovesFirstForBlackSeat(t *testing.T) {
	m := testModel(t, game.Black)
	require.True(t, m.thinking)
	require.Equal(t, "Thinking...", m.status)

	cmd := m.Init()
	require.NotNil(t, cmd)

	m.Update(cmd())
	assert.False(t, m.thinking)
	assert.Equal(t, int8(game.White), m.board.Cells[0])
	assert.Equal(t, "Your move", m.status)
}

func TestWinEndsGame(t *testing.T) {
	m := testModel(t, game.White)

	// X X .      X completes the top row.
	// O O .
	// . . .
	m.board.Set(0, 0, int8(game.White))
	m.board.Set(0, 1, int8(game.White))
	m.board.Set(1, 0, int8(game.Black))
	m.board.Set(1, 1, int8(game.Black))
	m.cursor = 2

	_, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd, "no agent move after the game ends")
	assert.True(t, m.finished)
	assert.Equal(t, "You won! Press n for a new game", m.status)
}

func TestLossReported(t *testing.T) {
	m := testModel(t, game.Black)
	m.thinking = false

	// The agent completes the left column as White.
	m.board.Set(0, 0, int8(game.White))
	m.board.Set(1, 0, int8(game.White))
	m.player = game.White

	m.Update(agentMoveMsg{action: 6})
	assert.True(t, m.finished)
	assert.Equal(t, "You lost. Press n for a new game", m.status)
}

func TestRestartSwapsSeats(t *testing.T) {
	m := testModel(t, game.White)
	m.finished = true
	m.board.Set(0, 0, int8(game.White))

	_, cmd := m.Update(key("n"))
	require.NotNil(t, cmd, "agent opens after the seats swap")

	assert.Equal(t, game.Black, m.humanSeat)
	assert.False(t, m.finished)
	assert.True(t, m.thinking)
	for _, c := range m.board.Cells {
		assert.Zero(t, c)
	}
}

func TestTabTogglesPane(t *testing.T) {
	m := testModel(t, game.White)
	require.Equal(t, 0, m.focusedPane)

	m.Update(key("tab"))
	assert.Equal(t, 1, m.focusedPane)

	// Cursor stays put while the log pane is focused.
	m.Update(key("right"))
	assert.Equal(t, 0, m.cursor)

	m.Update(key("tab"))
	assert.Equal(t, 0, m.focusedPane)
}

func TestQuitClearsView(t *testing.T) {
	m := testModel(t, game.White)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	require.NotEmpty(t, m.View())

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestViewShowsBoardGlyphs(t *testing.T) {
	m := testModel(t, game.White)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.board.Set(0, 0, int8(game.White))
	m.board.Set(1, 1, int8(game.Black))

	view := m.View()
	assert.Contains(t, view, "X")
	assert.Contains(t, view, "O")
	assert.Contains(t, view, "Your move")
}
