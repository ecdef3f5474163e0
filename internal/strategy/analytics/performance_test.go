package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/ports"
)

func tradeAt(hour int, dir domain.Direction, reason domain.ExitReason, pnlPct float64) *domain.Trade {
	entry := time.Date(2025, 1, 6, hour, 0, 0, 0, time.UTC)
	return &domain.Trade{
		Symbol:     "DOTUSDT",
		Direction:  dir,
		EntryTime:  entry,
		ExitTime:   entry.Add(2 * time.Hour),
		ExitReason: reason,
		PnLPct:     pnlPct,
		PnLUSD:     pnlPct * 100,
	}
}

func TestAggregate_NoTrades(t *testing.T) {
	if _, err := Aggregate(nil); !errors.Is(err, ports.ErrNoTrades) {
		t.Errorf("expected ErrNoTrades, got %v", err)
	}
	if _, err := AggregateBy(nil, ByDirection); !errors.Is(err, ports.ErrNoTrades) {
		t.Errorf("expected ErrNoTrades from AggregateBy, got %v", err)
	}
}

func TestAggregate_Metrics(t *testing.T) {
	trades := []*domain.Trade{
		tradeAt(0, domain.Long, domain.ExitTarget, 2.0),
		tradeAt(3, domain.Long, domain.ExitStop, -1.5),
		tradeAt(6, domain.Short, domain.ExitTarget, 2.0),
		tradeAt(9, domain.Long, domain.ExitRSI, 1.0),
		tradeAt(12, domain.Short, domain.ExitStop, -1.5),
	}

	s, err := Aggregate(trades)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if s.TradeCount != 5 || s.WinningTrades != 3 || s.LosingTrades != 2 {
		t.Errorf("counts = %d/%d/%d, want 5/3/2", s.TradeCount, s.WinningTrades, s.LosingTrades)
	}
	if math.Abs(s.WinRate-0.6) > 1e-9 {
		t.Errorf("WinRate = %f, want 0.6", s.WinRate)
	}
	if math.Abs(s.GrossProfitPct-5.0) > 1e-9 || math.Abs(s.GrossLossPct-3.0) > 1e-9 {
		t.Errorf("gross = %f/%f, want 5.0/3.0", s.GrossProfitPct, s.GrossLossPct)
	}
	if math.Abs(s.ProfitFactor-5.0/3.0) > 1e-9 {
		t.Errorf("ProfitFactor = %f, want %f", s.ProfitFactor, 5.0/3.0)
	}
	if math.Abs(s.TotalPnLPct-2.0) > 1e-9 {
		t.Errorf("TotalPnLPct = %f, want 2.0", s.TotalPnLPct)
	}
	if math.Abs(s.TotalPnLUSD-200.0) > 1e-9 {
		t.Errorf("TotalPnLUSD = %f, want 200", s.TotalPnLUSD)
	}
	if math.Abs(s.AverageWinPct-5.0/3) > 1e-9 || math.Abs(s.AverageLossPct+1.5) > 1e-9 {
		t.Errorf("averages = %f/%f, want %f/-1.5", s.AverageWinPct, s.AverageLossPct, 5.0/3)
	}
	if s.AverageHold != 2*time.Hour {
		t.Errorf("AverageHold = %s, want 2h", s.AverageHold)
	}
}

func TestAggregate_DrawdownOnEquityCurve(t *testing.T) {
	// Equity path: +2, +1 (peak 3), -2 (1), -1 (0), +4. Deepest decline
	// from the peak of 3 down to 0 is 3.
	trades := []*domain.Trade{
		tradeAt(0, domain.Long, domain.ExitTarget, 2.0),
		tradeAt(1, domain.Long, domain.ExitTarget, 1.0),
		tradeAt(2, domain.Long, domain.ExitStop, -2.0),
		tradeAt(3, domain.Long, domain.ExitStop, -1.0),
		tradeAt(4, domain.Long, domain.ExitTarget, 4.0),
	}
	s, err := Aggregate(trades)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if math.Abs(s.MaxDrawdownPct-3.0) > 1e-9 {
		t.Errorf("MaxDrawdownPct = %f, want 3.0", s.MaxDrawdownPct)
	}
}

func TestAggregate_OrdersByExitTime(t *testing.T) {
	// Passing trades out of realization order must not change the drawdown:
	// aggregation sorts on exit time internally.
	trades := []*domain.Trade{
		tradeAt(4, domain.Long, domain.ExitTarget, 4.0),
		tradeAt(2, domain.Long, domain.ExitStop, -2.0),
		tradeAt(0, domain.Long, domain.ExitTarget, 2.0),
		tradeAt(3, domain.Long, domain.ExitStop, -1.0),
		tradeAt(1, domain.Long, domain.ExitTarget, 1.0),
	}
	s, err := Aggregate(trades)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if math.Abs(s.MaxDrawdownPct-3.0) > 1e-9 {
		t.Errorf("MaxDrawdownPct = %f, want 3.0 regardless of input order", s.MaxDrawdownPct)
	}
	if trades[0].PnLPct != 4.0 {
		t.Error("Aggregate must not reorder the caller's slice")
	}
}

func TestAggregate_ProfitFactorUnbounded(t *testing.T) {
	winners := []*domain.Trade{
		tradeAt(0, domain.Long, domain.ExitTarget, 2.0),
		tradeAt(1, domain.Long, domain.ExitTarget, 1.0),
	}
	s, err := Aggregate(winners)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !math.IsInf(s.ProfitFactor, 1) {
		t.Errorf("ProfitFactor = %f, want +Inf with no losing trades", s.ProfitFactor)
	}

	flat := []*domain.Trade{tradeAt(0, domain.Long, domain.ExitTime, 0)}
	s, err = Aggregate(flat)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if s.ProfitFactor != 0 {
		t.Errorf("ProfitFactor = %f, want 0 with no gains and no losses", s.ProfitFactor)
	}
}

func TestAggregate_Streaks(t *testing.T) {
	trades := []*domain.Trade{
		tradeAt(0, domain.Long, domain.ExitTarget, 1.0),
		tradeAt(1, domain.Long, domain.ExitTarget, 1.0),
		tradeAt(2, domain.Long, domain.ExitTarget, 1.0),
		tradeAt(3, domain.Long, domain.ExitStop, -1.0),
		tradeAt(4, domain.Long, domain.ExitStop, -1.0),
		tradeAt(5, domain.Long, domain.ExitTarget, 1.0),
	}
	s, err := Aggregate(trades)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if s.MaxConsecutiveWins != 3 || s.MaxConsecutiveLosses != 2 {
		t.Errorf("streaks = %d/%d, want 3/2", s.MaxConsecutiveWins, s.MaxConsecutiveLosses)
	}
}

func TestAggregateBy_PartitionsAreConsistent(t *testing.T) {
	trades := []*domain.Trade{
		tradeAt(0, domain.Long, domain.ExitTarget, 2.0),
		tradeAt(3, domain.Long, domain.ExitStop, -1.5),
		tradeAt(6, domain.Short, domain.ExitTarget, 2.0),
	}

	byDir, err := AggregateBy(trades, ByDirection)
	if err != nil {
		t.Fatalf("AggregateBy: %v", err)
	}
	if len(byDir) != 2 {
		t.Fatalf("expected 2 direction buckets, got %d", len(byDir))
	}
	if byDir["long"].TradeCount != 2 || byDir["short"].TradeCount != 1 {
		t.Errorf("bucket sizes = %d/%d, want 2/1", byDir["long"].TradeCount, byDir["short"].TradeCount)
	}

	// Bucket trade counts always sum to the headline count.
	byReason, err := AggregateBy(trades, ByExitReason)
	if err != nil {
		t.Fatalf("AggregateBy: %v", err)
	}
	total := 0
	for _, s := range byReason {
		total += s.TradeCount
	}
	if total != len(trades) {
		t.Errorf("bucket counts sum to %d, want %d", total, len(trades))
	}

	byWeekday, err := AggregateBy(trades, ByWeekday)
	if err != nil {
		t.Fatalf("AggregateBy: %v", err)
	}
	if byWeekday["Monday"] == nil || byWeekday["Monday"].TradeCount != 3 {
		t.Errorf("expected all 3 trades in the Monday bucket, got %+v", byWeekday)
	}

	byMonth, err := AggregateBy(trades, ByMonth)
	if err != nil {
		t.Fatalf("AggregateBy: %v", err)
	}
	if byMonth["2025-01"] == nil || byMonth["2025-01"].TradeCount != 3 {
		t.Errorf("expected all 3 trades in the 2025-01 bucket, got %+v", byMonth)
	}
}
