package arena

import (
	"time"

	"github.com/lox/boardforbots/internal/fileutil"
)

// GameRecord is the outcome of a single game within a match.
type GameRecord struct {
	ID            string        `json:"id"`
	White         string        `json:"white"`
	Black         string        `json:"black"`
	Winner        string        `json:"winner,omitempty"` // empty means a draw
	Moves         int           `json:"moves"`
	Duration      time.Duration `json:"duration_ns,omitempty"`
	Forfeit       bool          `json:"forfeit,omitempty"`
	ForfeitReason string        `json:"forfeit_reason,omitempty"`
}

// Result is the full outcome of a match. Wins are tallied by contestant
// name, not by seat, so swapping sides halfway does not skew the counts.
type Result struct {
	ID       string             `json:"id"`
	Game     string             `json:"game"`
	One      string             `json:"player_one"`
	Two      string             `json:"player_two"`
	OneWins  int                `json:"player_one_wins"`
	TwoWins  int                `json:"player_two_wins"`
	Draws    int                `json:"draws"`
	Forfeits int                `json:"forfeits"`
	Summary  Summary            `json:"summary"`
	Latency  map[string]Latency `json:"latency,omitempty"`
	Duration time.Duration      `json:"duration_ns"`
	Games    []GameRecord       `json:"games"`
}

func (r *Result) tally() {
	r.OneWins, r.TwoWins, r.Draws, r.Forfeits = 0, 0, 0, 0
	for _, g := range r.Games {
		switch g.Winner {
		case r.One:
			r.OneWins++
		case r.Two:
			r.TwoWins++
		default:
			r.Draws++
		}
		if g.Forfeit {
			r.Forfeits++
		}
	}
}

// scores maps each game to contestant one's score: 1 for a win, 0.5 for a
// draw, 0 for a loss.
func (r *Result) scores() []float64 {
	out := make([]float64, len(r.Games))
	for i, g := range r.Games {
		switch g.Winner {
		case r.One:
			out[i] = 1
		case r.Two:
			out[i] = 0
		default:
			out[i] = 0.5
		}
	}
	return out
}

// WriteResult atomically writes the result to path as JSON.
func WriteResult(path string, r *Result) error {
	return fileutil.WriteJSON(path, r)
}

// LoadResult reads a result written by WriteResult.
func LoadResult(path string) (*Result, error) {
	var r Result
	if err := fileutil.ReadJSON(path, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
