// Package tui is a terminal interface for playing a board game against an
// agent. The human navigates with the arrow keys and drops a piece with
// enter; the agent answers from a background command so the interface
// stays responsive while it searches.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/boardforbots/agent"
	"github.com/lox/boardforbots/game"
)

// Model is the Bubble Tea model for a human versus agent game.
type Model struct {
	rules  game.Rules
	agent  agent.Agent
	logger *log.Logger

	board     game.Board
	player    game.Player
	humanSeat game.Player

	cursor   int
	thinking bool
	finished bool
	quitting bool
	status   string
	gameLog  []string

	logViewport viewport.Model
	focusedPane int // 0 = board, 1 = log
	width       int
	height      int
}

// agentMoveMsg carries the agent's chosen action back into the update loop.
type agentMoveMsg struct {
	action game.Action
	err    error
}

// New creates a model with the human in the given seat. White moves first.
func New(rules game.Rules, ag agent.Agent, humanSeat game.Player, logger *log.Logger) *Model {
	m := &Model{
		rules:       rules,
		agent:       ag,
		logger:      logger.WithPrefix("tui"),
		board:       rules.InitialBoard(),
		player:      game.White,
		humanSeat:   humanSeat,
		logViewport: viewport.New(30, 9),
	}
	m.appendLog(fmt.Sprintf("new game, you play %s", seatGlyph(humanSeat)))
	if humanSeat == game.White {
		m.status = "Your move"
	} else {
		m.status = "Thinking..."
		m.thinking = true
	}
	return m
}

// Init starts the agent when it has the first move.
func (m *Model) Init() tea.Cmd {
	if m.thinking {
		return m.agentCmd()
	}
	return nil
}

// agentCmd asks the agent for its move off the update loop.
func (m *Model) agentCmd() tea.Cmd {
	canonical := m.rules.CanonicalForm(m.board, m.player)
	return func() tea.Msg {
		action, err := m.agent.SelectAction(context.Background(), canonical)
		return agentMoveMsg{action: action, err: err}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sizeViewport()

	case agentMoveMsg:
		m.thinking = false
		if msg.err != nil {
			m.logger.Error("Agent failed", "error", msg.err)
			m.finished = true
			m.status = "Agent failed: " + msg.err.Error()
			m.appendLog("agent failed, game abandoned")
			return m, nil
		}
		m.playMove(msg.action)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)

		case "tab":
			m.focusedPane = 1 - m.focusedPane

		case "n":
			if m.finished {
				return m, m.restart()
			}

		case "up", "k":
			if m.focusedPane == 1 {
				m.logViewport.ScrollUp(1)
			} else {
				m.moveCursor(-m.board.N)
			}
		case "down", "j":
			if m.focusedPane == 1 {
				m.logViewport.ScrollDown(1)
			} else {
				m.moveCursor(m.board.N)
			}
		case "left", "h":
			if m.focusedPane == 0 {
				m.moveCursor(-1)
			}
		case "right", "l":
			if m.focusedPane == 0 {
				m.moveCursor(1)
			}

		case "enter", " ":
			if m.focusedPane == 0 {
				return m, m.placeAtCursor()
			}

		default:
			// Digit keys drop straight on a cell of a small board.
			if m.focusedPane == 0 {
				if idx := digitIndex(msg.String()); idx >= 0 && idx < len(m.board.Cells) {
					m.cursor = idx
					return m, m.placeAtCursor()
				}
			}
		}
	}

	return m, nil
}

// placeAtCursor plays the human move under the cursor, then hands the turn
// to the agent.
func (m *Model) placeAtCursor() tea.Cmd {
	if m.finished || m.thinking || m.player != m.humanSeat {
		return nil
	}

	canonical := m.rules.CanonicalForm(m.board, m.player)
	mask := m.rules.ValidMoves(canonical, game.White)
	if m.cursor >= len(mask) || !mask[m.cursor] {
		m.status = "That square is not open"
		return nil
	}

	m.playMove(game.Action(m.cursor))
	if m.finished {
		return nil
	}
	m.thinking = true
	m.status = "Thinking..."
	return m.agentCmd()
}

// playMove applies one move for whoever is to play and updates the result
// state when it ends the game.
func (m *Model) playMove(action game.Action) {
	mover := "you"
	if m.player != m.humanSeat {
		mover = "agent"
	}

	next, nextPlayer, err := m.rules.NextState(m.board, m.player, action)
	if err != nil {
		m.logger.Error("Move rejected", "action", int(action), "error", err)
		m.status = err.Error()
		return
	}

	row, col := int(action)/m.board.N, int(action)%m.board.N
	m.appendLog(fmt.Sprintf("%s: %s at %d,%d", mover, seatGlyph(m.player), row+1, col+1))
	m.board, m.player = next, nextPlayer

	if ended, outcome := m.rules.Ended(m.board, game.White); ended {
		m.finished = true
		m.thinking = false
		humanScore := outcome
		if m.humanSeat == game.Black {
			humanScore = -outcome
		}
		switch {
		case humanScore > 0:
			m.status = "You won! Press n for a new game"
			m.appendLog("game over: you won")
		case humanScore < 0:
			m.status = "You lost. Press n for a new game"
			m.appendLog("game over: you lost")
		default:
			m.status = "Draw. Press n for a new game"
			m.appendLog("game over: draw")
		}
		return
	}

	if m.player == m.humanSeat {
		m.status = "Your move"
	}
}

// restart begins a new game with the seats swapped.
func (m *Model) restart() tea.Cmd {
	m.board = m.rules.InitialBoard()
	m.player = game.White
	m.humanSeat = m.humanSeat.Other()
	m.cursor = 0
	m.finished = false
	m.appendLog(fmt.Sprintf("new game, you play %s", seatGlyph(m.humanSeat)))

	if m.humanSeat == game.White {
		m.thinking = false
		m.status = "Your move"
		return nil
	}
	m.thinking = true
	m.status = "Thinking..."
	return m.agentCmd()
}

func (m *Model) moveCursor(delta int) {
	if m.finished || m.thinking {
		return
	}
	next := m.cursor + delta
	if next >= 0 && next < len(m.board.Cells) {
		m.cursor = next
	}
}

func (m *Model) appendLog(line string) {
	m.gameLog = append(m.gameLog, line)
	m.logViewport.SetContent(LogStyle.Render(strings.Join(m.gameLog, "\n")))
	m.logViewport.GotoBottom()
}

func (m *Model) sizeViewport() {
	boardWidth := lipgloss.Width(m.renderBoard()) + 4
	logWidth := m.width - boardWidth - 6
	if logWidth < 20 {
		logWidth = 20
	}
	logHeight := lipgloss.Height(m.renderBoard())
	if logHeight < 3 {
		logHeight = 3
	}
	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	title := TitleStyle.Render("boardforbots • " + m.rules.Name())

	boardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Padding(0, 1)
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262"))
	if m.focusedPane == 0 {
		boardStyle = boardStyle.BorderForeground(lipgloss.Color("#04B575"))
	} else {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}

	boardPane := boardStyle.Render(m.renderBoard())
	logPane := logStyle.Render(m.logViewport.View())
	top := lipgloss.JoinHorizontal(lipgloss.Top, boardPane, logPane)

	status := StatusStyle.Render(m.status)
	if strings.HasPrefix(m.status, "Agent failed") || m.status == "That square is not open" {
		status = ErrorStyle.Render(m.status)
	}
	help := HelpStyle.Render("Arrows move • Enter places • Tab to scroll log • Q to quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, top, status, help) + "\n"
}

// renderBoard draws the grid with the cursor highlighted while the human
// is to move.
func (m *Model) renderBoard() string {
	n := m.board.N
	rows := make([]string, 0, 2*n-1)
	for r := 0; r < n; r++ {
		if r > 0 {
			rows = append(rows, strings.Repeat("───┼", n-1)+"───")
		}
		var row strings.Builder
		for c := 0; c < n; c++ {
			if c > 0 {
				row.WriteString("│")
			}
			row.WriteString(m.renderCell(r*n + c))
		}
		rows = append(rows, row.String())
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderCell(idx int) string {
	glyph := " "
	switch game.Player(m.board.Cells[idx]) {
	case game.White:
		glyph = "X"
	case game.Black:
		glyph = "O"
	}

	if idx == m.cursor && m.focusedPane == 0 && !m.finished && !m.thinking && m.player == m.humanSeat {
		return CursorStyle.Render(" " + glyph + " ")
	}
	switch glyph {
	case "X":
		return " " + WhitePieceStyle.Render("X") + " "
	case "O":
		return " " + BlackPieceStyle.Render("O") + " "
	}
	return "   "
}

func seatGlyph(p game.Player) string {
	if p == game.White {
		return "X"
	}
	return "O"
}

func digitIndex(key string) int {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return -1
	}
	return int(key[0] - '1')
}

// Run plays the model full screen until the human quits.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
