// Package report renders match outcomes and network activity as
// self-contained HTML pages built with go-echarts.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lox/boardforbots/arena"
	"github.com/lox/boardforbots/game"
	"github.com/lox/boardforbots/nn"
)

// Match renders a match report: win, draw and loss tallies for both
// contestants and the cumulative score across the games.
func Match(w io.Writer, res *arena.Result) error {
	if len(res.Games) == 0 {
		return fmt.Errorf("report: result has no games")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s: %s vs %s", res.Game, res.One, res.Two),
			Subtitle: fmt.Sprintf("%d games, %d forfeits", len(res.Games), res.Forfeits),
		}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
	)
	bar.SetXAxis([]string{"wins", "draws", "losses"})
	bar.AddSeries(res.One, []opts.BarData{{Value: res.OneWins}, {Value: res.Draws}, {Value: res.TwoWins}})
	bar.AddSeries(res.Two, []opts.BarData{{Value: res.TwoWins}, {Value: res.Draws}, {Value: res.OneWins}})

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Cumulative score"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
	)
	games := make([]string, len(res.Games))
	for i := range res.Games {
		games[i] = fmt.Sprintf("%d", i+1)
	}
	line.SetXAxis(games)
	line.AddSeries(res.One, cumulativeScores(res.Games, res.One))
	line.AddSeries(res.Two, cumulativeScores(res.Games, res.Two))

	page := components.NewPage()
	page.AddCharts(bar, line)
	return page.Render(w)
}

// cumulativeScores walks the games scoring a win as 1 and a draw as 0.5
// for the named contestant.
func cumulativeScores(games []arena.GameRecord, name string) []opts.LineData {
	items := make([]opts.LineData, 0, len(games))
	score := 0.0
	for _, g := range games {
		switch g.Winner {
		case name:
			score++
		case "":
			score += 0.5
		}
		items = append(items, opts.LineData{Value: score})
	}
	return items
}

// RSMHeatmap feeds the sample boards through the network's policy head and
// renders the representational similarity matrix of its final hidden layer.
func RSMHeatmap(w io.Writer, net *nn.PolicyValueNet, boards []game.Board) error {
	if len(boards) == 0 {
		return fmt.Errorf("report: no sample boards")
	}

	activity, err := net.HiddenActivity(boards)
	if err != nil {
		return fmt.Errorf("hidden activity: %w", err)
	}
	rsm := nn.RSM(activity)

	n, _ := rsm.Dims()
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("b%d", i)
	}

	lo, hi := rsm.At(0, 0), rsm.At(0, 0)
	data := make([]opts.HeatMapData, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := rsm.At(i, j)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, i, v}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Hidden layer similarity",
			Subtitle: fmt.Sprintf("%s, %d sample boards", net.GameName(), n),
		}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: labels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
		}),
	)
	hm.SetXAxis(labels)
	hm.AddSeries("similarity", data)

	page := components.NewPage()
	page.AddCharts(hm)
	return page.Render(w)
}

// SampleBoards collects up to limit distinct canonical positions reachable
// from the opening position, breadth first, so early-game structure
// dominates the sample.
func SampleBoards(rules game.Rules, limit int) []game.Board {
	type node struct {
		board  game.Board
		player game.Player
	}

	seen := make(map[string]bool)
	var out []game.Board

	queue := []node{{board: rules.InitialBoard(), player: game.White}}
	for len(queue) > 0 && len(out) < limit {
		cur := queue[0]
		queue = queue[1:]

		canonical := rules.CanonicalForm(cur.board, cur.player)
		key := canonical.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, canonical)

		if ended, _ := rules.Ended(cur.board, cur.player); ended {
			continue
		}
		for _, a := range game.LegalActions(rules.ValidMoves(cur.board, cur.player)) {
			next, nextPlayer, err := rules.NextState(cur.board, cur.player, a)
			if err != nil {
				continue
			}
			queue = append(queue, node{board: next, player: nextPlayer})
		}
	}
	return out
}
