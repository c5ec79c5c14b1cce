package game

import "fmt"

// Player identifies a side in a two-player game.
type Player int8

const (
	// White is the side to move on a canonical board.
	White Player = 1
	// Black is White's opponent.
	Black Player = -1
)

// Other returns the opposing side.
func (p Player) Other() Player { return -p }

// String returns a short human-readable side name.
func (p Player) String() string {
	switch p {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return fmt.Sprintf("player(%d)", int8(p))
	}
}

// Action is an index into a game's flat action space, in [0, ActionSize).
type Action int

// Board is a square grid of cells in row-major order. Cell values are owned
// by the rules provider; agents treat them as opaque. A cell of 0 is empty
// by convention, +1/-1 hold a piece for the corresponding side.
type Board struct {
	// N is the side length of the grid.
	N int
	// Cells holds N*N values in row-major order.
	Cells []int8
}

// NewBoard returns an empty n x n board.
func NewBoard(n int) Board {
	return Board{N: n, Cells: make([]int8, n*n)}
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	cells := make([]int8, len(b.Cells))
	copy(cells, b.Cells)
	return Board{N: b.N, Cells: cells}
}

// At returns the cell value at (row, col).
func (b Board) At(row, col int) int8 { return b.Cells[row*b.N+col] }

// Set writes the cell value at (row, col).
func (b *Board) Set(row, col int, v int8) { b.Cells[row*b.N+col] = v }

// Equal reports whether two boards have identical size and cells.
func (b Board) Equal(o Board) bool {
	if b.N != o.N || len(b.Cells) != len(o.Cells) {
		return false
	}
	for i, c := range b.Cells {
		if c != o.Cells[i] {
			return false
		}
	}
	return true
}

// Key returns a compact string encoding of the board, usable as a map key.
func (b Board) Key() string {
	buf := make([]byte, len(b.Cells))
	for i, c := range b.Cells {
		// Cell values are small signed ints; shift into printable range.
		buf[i] = byte(c) + 'n'
	}
	return string(buf)
}

// Rules describes a two-player, perfect-information board game. All methods
// must be pure functions of their arguments.
type Rules interface {
	// Name returns a short identifier for the game, e.g. "tictactoe".
	Name() string

	// ActionSize returns the size of the flat action space. Every mask and
	// probability vector exchanged with agents has exactly this length.
	ActionSize() int

	// InitialBoard returns the starting position.
	InitialBoard() Board

	// NextState applies action a for the given player and returns the
	// successor board along with the player to move next. Applying an
	// illegal action is a contract violation and returns an error.
	NextState(b Board, player Player, a Action) (Board, Player, error)

	// ValidMoves returns the legality mask for the given side: a vector of
	// ActionSize booleans where true marks a playable action.
	ValidMoves(b Board, player Player) []bool

	// CanonicalForm returns the board from the given player's perspective,
	// such that the player to move always appears as White.
	CanonicalForm(b Board, player Player) Board

	// Ended reports whether the position is terminal and, if so, the
	// outcome from the given player's perspective: +1 win, -1 loss,
	// 0 draw. The outcome is meaningful only when ended is true.
	Ended(b Board, player Player) (ended bool, outcome float64)

	// Render returns a human-readable rendering of the board for logs and
	// interactive display.
	Render(b Board) string
}

// LegalActions returns the actions marked true in the mask, in action order.
func LegalActions(mask []bool) []Action {
	var out []Action
	for i, ok := range mask {
		if ok {
			out = append(out, Action(i))
		}
	}
	return out
}

// CountLegal returns the number of true entries in the mask.
func CountLegal(mask []bool) int {
	n := 0
	for _, ok := range mask {
		if ok {
			n++
		}
	}
	return n
}
