package report

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/boardforbots/arena"
	"github.com/lox/boardforbots/internal/tictactoe"
	"github.com/lox/boardforbots/nn"
)

func TestMatchReport(t *testing.T) {
	res := &arena.Result{
		Game:    "tictactoe",
		One:     "searcher",
		Two:     "baseline",
		OneWins: 2,
		TwoWins: 1,
		Draws:   1,
		Games: []arena.GameRecord{
			{ID: "g1", White: "searcher", Black: "baseline", Winner: "searcher", Moves: 7},
			{ID: "g2", White: "baseline", Black: "searcher", Winner: "searcher", Moves: 9},
			{ID: "g3", White: "searcher", Black: "baseline", Winner: "baseline", Moves: 8},
			{ID: "g4", White: "baseline", Black: "searcher", Moves: 9},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Match(&buf, res))

	html := buf.String()
	assert.Contains(t, html, "searcher")
	assert.Contains(t, html, "baseline")
	assert.Contains(t, html, "wins")
	assert.Contains(t, html, "Cumulative score")
}

func TestMatchReportRequiresGames(t *testing.T) {
	err := Match(io.Discard, &arena.Result{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no games")
}

func TestRSMHeatmap(t *testing.T) {
	rules := tictactoe.New()
	net, err := nn.NewPolicyValueNet(rules, []int{16, 8}, "tanh", 1)
	require.NoError(t, err)

	boards := SampleBoards(rules, 12)
	require.Len(t, boards, 12)

	var buf bytes.Buffer
	require.NoError(t, RSMHeatmap(&buf, net, boards))

	html := buf.String()
	assert.Contains(t, html, "heatmap")
	assert.Contains(t, html, "similarity")
}

func TestRSMHeatmapRequiresBoards(t *testing.T) {
	rules := tictactoe.New()
	net, err := nn.NewPolicyValueNet(rules, []int{4}, "tanh", 1)
	require.NoError(t, err)

	err = RSMHeatmap(io.Discard, net, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sample boards")
}

func TestSampleBoardsDistinctAndBounded(t *testing.T) {
	rules := tictactoe.New()
	boards := SampleBoards(rules, 25)
	require.Len(t, boards, 25)

	seen := make(map[string]bool)
	for _, b := range boards {
		key := b.Key()
		assert.False(t, seen[key], "duplicate board in sample")
		seen[key] = true
	}

	// Breadth first: the opening position comes out first.
	for _, c := range boards[0].Cells {
		assert.Zero(t, c)
	}
}
