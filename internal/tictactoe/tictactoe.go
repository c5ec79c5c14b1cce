// Package tictactoe implements game.Rules for 3x3 tic-tac-toe.
//
// It exists so the arena, server, TUI, and tests have one concrete rules
// provider to exercise; it is deliberately the smallest game that still has
// wins, draws, and a meaningful legality mask.
package tictactoe

import (
	"fmt"
	"strings"

	"github.com/lox/boardforbots/game"
)

const size = 3

// Rules implements game.Rules for tic-tac-toe.
type Rules struct{}

// New returns the tic-tac-toe rules provider.
func New() Rules { return Rules{} }

// Name returns the game identifier.
func (Rules) Name() string { return "tictactoe" }

// ActionSize returns 9: one action per cell, row-major.
func (Rules) ActionSize() int { return size * size }

// InitialBoard returns an empty 3x3 board.
func (Rules) InitialBoard() game.Board { return game.NewBoard(size) }

// NextState places the player's piece at the action's cell. The action must
// name an empty cell on a live board.
func (r Rules) NextState(b game.Board, player game.Player, a game.Action) (game.Board, game.Player, error) {
	if int(a) < 0 || int(a) >= r.ActionSize() {
		return game.Board{}, 0, fmt.Errorf("tictactoe: action %d out of range [0,%d)", a, r.ActionSize())
	}
	if b.Cells[a] != 0 {
		return game.Board{}, 0, fmt.Errorf("tictactoe: cell %d is occupied", a)
	}
	if ended, _ := r.Ended(b, player); ended {
		return game.Board{}, 0, fmt.Errorf("tictactoe: game already ended")
	}
	next := b.Clone()
	next.Cells[a] = int8(player)
	return next, player.Other(), nil
}

// ValidMoves marks every empty cell playable. A finished game has no legal
// moves.
func (r Rules) ValidMoves(b game.Board, player game.Player) []bool {
	mask := make([]bool, r.ActionSize())
	if ended, _ := r.Ended(b, player); ended {
		return mask
	}
	for i, c := range b.Cells {
		mask[i] = c == 0
	}
	return mask
}

// CanonicalForm flips cell signs so the given player always sees their own
// pieces as +1.
func (Rules) CanonicalForm(b game.Board, player game.Player) game.Board {
	out := b.Clone()
	if player == game.Black {
		for i := range out.Cells {
			out.Cells[i] = -out.Cells[i]
		}
	}
	return out
}

// Ended reports whether the position is over and the outcome for player.
func (Rules) Ended(b game.Board, player game.Player) (bool, float64) {
	if w := winner(b); w != 0 {
		if w == player {
			return true, 1
		}
		return true, -1
	}
	for _, c := range b.Cells {
		if c == 0 {
			return false, 0
		}
	}
	return true, 0 // full board, no line: draw
}

// Render draws the board with X for White and O for Black.
func (Rules) Render(b game.Board) string {
	var sb strings.Builder
	for row := 0; row < size; row++ {
		if row > 0 {
			sb.WriteString("---+---+---\n")
		}
		for col := 0; col < size; col++ {
			if col > 0 {
				sb.WriteByte('|')
			}
			sb.WriteByte(' ')
			switch b.At(row, col) {
			case int8(game.White):
				sb.WriteByte('X')
			case int8(game.Black):
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

func winner(b game.Board) game.Player {
	for _, ln := range lines {
		c := b.Cells[ln[0]]
		if c != 0 && c == b.Cells[ln[1]] && c == b.Cells[ln[2]] {
			return game.Player(c)
		}
	}
	return 0
}
