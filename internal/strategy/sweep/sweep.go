package sweep

import (
	"context"
	"math"
	"sort"
	"sync"

	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/strategy/analytics"
	"cryptoSRBounce/internal/strategy/backtesting"
)

// Variant is one configuration to test: a label and a mutation applied to a
// copy of the base config.
type Variant struct {
	Label string
	Apply func(cfg *backtesting.Config)
}

// Result holds the outcome of one variant's backtest.
type Result struct {
	Label    string
	Config   backtesting.Config
	Summary  *analytics.Summary // nil when NoTrades or Err is set
	NoTrades bool
	Score    float64
	Err      error
}

// ScoreFunc ranks a summary; higher is better.
type ScoreFunc func(*analytics.Summary) float64

// DefaultScore ranks variants by total percentage P&L, the ordering the
// sweep reports are sorted by.
func DefaultScore(s *analytics.Summary) float64 {
	return s.TotalPnLPct
}

// BalancedScore blends win rate, profit factor, drawdown, and P&L into a
// single number for sweeps where raw P&L alone overfits.
func BalancedScore(s *analytics.Summary) float64 {
	pf := s.ProfitFactor
	if math.IsInf(pf, 1) {
		pf = 10 // Unbounded PF would dominate every other term
	}
	return s.WinRate*30 + pf*20 + s.TotalPnLPct - s.MaxDrawdownPct
}

// Run backtests every variant against the same series. Runs are independent
// (disjoint config copies, no shared state) so they execute in parallel and
// only merge at collection time. Results come back sorted by score
// descending, errored variants last.
func Run(ctx context.Context, klines []*domain.Kline, base backtesting.Config, variants []Variant, score ScoreFunc) []Result {
	if score == nil {
		score = DefaultScore
	}

	results := make([]Result, len(variants))
	var wg sync.WaitGroup

	for i, v := range variants {
		wg.Add(1)
		go func(i int, v Variant) {
			defer wg.Done()

			cfg := base
			if v.Apply != nil {
				v.Apply(&cfg)
			}
			res := Result{Label: v.Label, Config: cfg}

			btResult, err := backtesting.Run(ctx, klines, cfg)
			switch {
			case err != nil:
				res.Err = err
			case btResult.NoTrades:
				res.NoTrades = true
			default:
				res.Summary = btResult.Summary
				res.Score = score(btResult.Summary)
			}
			results[i] = res
		}(i, v)
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Score > results[j].Score
	})
	return results
}

// ParameterRange defines a numeric grid dimension for a sweep.
type ParameterRange struct {
	Name  string
	Min   float64
	Max   float64
	Step  float64
	IsInt bool
}

// GridVariants expands parameter ranges into the cross product of all
// values, handing each combination to bind to turn into a config mutation.
func GridVariants(ranges []ParameterRange, label func(params map[string]float64) string, bind func(cfg *backtesting.Config, params map[string]float64)) []Variant {
	var variants []Variant
	current := make(map[string]float64)

	var expand func(dim int)
	expand = func(dim int) {
		if dim == len(ranges) {
			params := make(map[string]float64, len(current))
			for k, v := range current {
				params[k] = v
			}
			variants = append(variants, Variant{
				Label: label(params),
				Apply: func(cfg *backtesting.Config) { bind(cfg, params) },
			})
			return
		}
		r := ranges[dim]
		// Half-step epsilon keeps the upper bound inclusive under float drift.
		for value := r.Min; value <= r.Max+r.Step/2; value += r.Step {
			v := value
			if r.IsInt {
				v = math.Round(v)
			}
			current[r.Name] = v
			expand(dim + 1)
		}
	}
	expand(0)
	return variants
}
