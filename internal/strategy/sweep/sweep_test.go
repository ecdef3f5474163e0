package sweep

import (
	"context"
	"math"
	"testing"
	"time"

	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/risk"
	"cryptoSRBounce/internal/strategy/analytics"
	"cryptoSRBounce/internal/strategy/backtesting"
	"cryptoSRBounce/internal/strategy/indicators"
	"cryptoSRBounce/internal/strategy/signals"
	"cryptoSRBounce/internal/strategy/simulation"
)

func sweepBaseConfig() backtesting.Config {
	return backtesting.Config{
		Symbol: "DOTUSDT",
		Indicators: indicators.Config{
			ATRPeriod:     3,
			RSIPeriod:     3,
			SRLookback:    4,
			TrendLookback: 4,
		},
		Signals: signals.Config{
			SRTolerancePct: 0.3,
			UseTrendFilter: true,
			UseCTFilter:    true,
			CTBars:         2,
		},
		Simulation: simulation.Config{
			StopATRMult:   1.5,
			TargetATRMult: 2.0,
			RSIExitHigh:   99,
			RSIExitLow:    1,
			MaxHoldBars:   10,
		},
		Risk: risk.Config{
			AccountSize:     10000,
			RiskPerTradePct: 0.5,
			MaxLeverage:     3.0,
		},
	}
}

func sweepSeries() []*domain.Kline {
	base := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	ohlc := [][4]float64{
		{100.0, 101.0, 99.0, 100.0},
		{100.0, 101.5, 99.5, 100.5},
		{100.5, 102.0, 100.0, 101.0},
		{101.0, 102.5, 100.5, 101.5},
		{101.5, 103.0, 101.0, 102.0},
		{102.4, 103.5, 101.5, 102.5},
		{102.5, 102.8, 100.3, 102.3},
		{102.3, 104.0, 101.8, 103.5},
		{103.5, 105.5, 103.0, 105.0},
		{105.0, 107.0, 104.5, 106.8},
	}
	out := make([]*domain.Kline, len(ohlc))
	for i, v := range ohlc {
		out[i] = &domain.Kline{
			OpenTime:  base.Add(time.Duration(i) * time.Hour),
			CloseTime: base.Add(time.Duration(i+1) * time.Hour),
			Symbol:    "DOTUSDT",
			Interval:  "1h",
			Open:      v[0],
			High:      v[1],
			Low:       v[2],
			Close:     v[3],
			Volume:    1000,
		}
	}
	return out
}

func TestRun_SortedByScore(t *testing.T) {
	variants := []Variant{
		{Label: "wide stop", Apply: func(cfg *backtesting.Config) { cfg.Simulation.StopATRMult = 2.0 }},
		{Label: "baseline"},
		{Label: "broken", Apply: func(cfg *backtesting.Config) { cfg.Simulation.TargetATRMult = 0 }},
	}

	results := Run(context.Background(), sweepSeries(), sweepBaseConfig(), variants, nil)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Errored variants sort last; the rest descend by score.
	if results[len(results)-1].Err == nil {
		t.Error("the invalid variant must sort last")
	}
	var prev = math.Inf(1)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if r.Score > prev {
			t.Errorf("results not sorted by score descending: %f after %f", r.Score, prev)
		}
		prev = r.Score
	}
}

func TestRun_VariantsAreIsolated(t *testing.T) {
	base := sweepBaseConfig()
	variants := []Variant{
		{Label: "mutates lookback", Apply: func(cfg *backtesting.Config) { cfg.Indicators.SRLookback = 48 }},
		{Label: "untouched"},
	}

	results := Run(context.Background(), sweepSeries(), base, variants, nil)
	if base.Indicators.SRLookback != 4 {
		t.Error("a variant mutated the shared base config")
	}
	for _, r := range results {
		if r.Label == "untouched" && r.Config.Indicators.SRLookback != 4 {
			t.Error("variant configs leaked into each other")
		}
	}
}

func TestRun_MatchesDirectBacktest(t *testing.T) {
	results := Run(context.Background(), sweepSeries(), sweepBaseConfig(), []Variant{{Label: "baseline"}}, nil)
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("unexpected sweep outcome: %+v", results)
	}

	direct, err := backtesting.Run(context.Background(), sweepSeries(), sweepBaseConfig())
	if err != nil {
		t.Fatalf("direct Run: %v", err)
	}
	if direct.NoTrades != results[0].NoTrades {
		t.Fatal("sweep and direct run disagree on NoTrades")
	}
	if *results[0].Summary != *direct.Summary {
		t.Error("sweep result must equal a direct backtest with the same config")
	}
	if results[0].Score != direct.Summary.TotalPnLPct {
		t.Errorf("default score = %f, want TotalPnLPct %f", results[0].Score, direct.Summary.TotalPnLPct)
	}
}

func TestBalancedScore_CapsUnboundedProfitFactor(t *testing.T) {
	s := &analytics.Summary{WinRate: 1, ProfitFactor: math.Inf(1), TotalPnLPct: 5}
	if v := BalancedScore(s); math.IsInf(v, 1) {
		t.Error("balanced score must stay finite for a no-loss summary")
	}
}

func TestGridVariants(t *testing.T) {
	ranges := []ParameterRange{
		{Name: "stop", Min: 1.0, Max: 2.0, Step: 0.5},
		{Name: "target", Min: 2.0, Max: 3.0, Step: 1.0},
	}
	variants := GridVariants(ranges,
		func(p map[string]float64) string { return "v" },
		func(cfg *backtesting.Config, p map[string]float64) {
			cfg.Simulation.StopATRMult = p["stop"]
			cfg.Simulation.TargetATRMult = p["target"]
		})

	// 3 stop values x 2 target values.
	if len(variants) != 6 {
		t.Fatalf("expected 6 grid variants, got %d", len(variants))
	}

	seen := make(map[[2]float64]bool)
	for _, v := range variants {
		cfg := sweepBaseConfig()
		v.Apply(&cfg)
		seen[[2]float64{cfg.Simulation.StopATRMult, cfg.Simulation.TargetATRMult}] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 distinct combinations, got %d", len(seen))
	}
}

func TestPresets_AllValid(t *testing.T) {
	presets := Presets()
	if len(presets) == 0 {
		t.Fatal("expected a non-empty preset list")
	}
	for _, p := range presets {
		if p.Label == "" || p.Apply == nil {
			t.Errorf("preset %q must have a label and an apply func", p.Label)
		}
		cfg := sweepBaseConfig()
		p.Apply(&cfg)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %q produces an invalid config: %v", p.Label, err)
		}
	}
}
