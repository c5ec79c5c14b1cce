package arena

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary reduces contestant one's per-game scores to a mean with a
// t-distribution confidence interval, plus a two-sided t-test against the
// null hypothesis that the contestants are evenly matched (score 0.5).
type Summary struct {
	Score    float64 `json:"score"`
	StdDev   float64 `json:"std_dev"`
	CI95Low  float64 `json:"ci95_low"`
	CI95High float64 `json:"ci95_high"`
	PValue   float64 `json:"p_value"`
	Verdict  string  `json:"verdict"`
}

// Summarize computes the match summary from per-game scores.
func Summarize(scores []float64) Summary {
	n := len(scores)
	if n == 0 {
		return Summary{}
	}
	mean := stat.Mean(scores, nil)
	if n == 1 {
		// One game says nothing; report maximal uncertainty.
		return Summary{Score: mean, CI95Low: 0, CI95High: 1, PValue: 1, Verdict: verdict(1)}
	}

	sd := stat.StdDev(scores, nil)
	se := sd / math.Sqrt(float64(n))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	tCritical := tDist.Quantile(0.975)

	p := 1.0
	switch {
	case se > 0:
		tStat := (mean - 0.5) / se
		p = 2 * (1 - tDist.CDF(math.Abs(tStat)))
		p = math.Min(math.Max(p, 0), 1)
	case mean != 0.5:
		// Every game went the same way; parity is untenable.
		p = 0
	}

	return Summary{
		Score:    mean,
		StdDev:   sd,
		CI95Low:  mean - tCritical*se,
		CI95High: mean + tCritical*se,
		PValue:   p,
		Verdict:  verdict(p),
	}
}

// Latency summarizes one contestant's per-move think times.
type Latency struct {
	Moves  int           `json:"moves"`
	Mean   time.Duration `json:"mean_ns"`
	Median time.Duration `json:"median_ns"`
	P95    time.Duration `json:"p95_ns"`
	Max    time.Duration `json:"max_ns"`
}

// SummarizeLatency reduces per-move durations to latency statistics.
func SummarizeLatency(samples []time.Duration) Latency {
	if len(samples) == 0 {
		return Latency{}
	}
	xs := make([]float64, len(samples))
	var max time.Duration
	for i, d := range samples {
		xs[i] = float64(d)
		if d > max {
			max = d
		}
	}
	sort.Float64s(xs)
	return Latency{
		Moves:  len(samples),
		Mean:   time.Duration(stat.Mean(xs, nil)),
		Median: time.Duration(stat.Quantile(0.5, stat.Empirical, xs, nil)),
		P95:    time.Duration(stat.Quantile(0.95, stat.Empirical, xs, nil)),
		Max:    max,
	}
}

func verdict(p float64) string {
	switch {
	case p < 0.001:
		return "highly significant"
	case p < 0.01:
		return "very significant"
	case p < 0.05:
		return "significant"
	case p < 0.10:
		return "marginally significant"
	default:
		return "not significant"
	}
}
