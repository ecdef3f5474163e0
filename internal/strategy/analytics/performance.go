package analytics

import (
	"math"
	"sort"
	"time"

	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/ports"
)

// Summary holds performance metrics reduced from a sequence of closed
// trades. It is derived purely from the trades passed in; there is no
// hidden state.
type Summary struct {
	TradeCount    int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // wins / trades, in [0,1]

	GrossProfitPct float64 // Sum of positive PnLPct
	GrossLossPct   float64 // Absolute sum of negative PnLPct
	ProfitFactor   float64 // GrossProfitPct / GrossLossPct; +Inf when no losses

	TotalPnLPct float64
	TotalPnLUSD float64

	AverageWinPct  float64
	AverageLossPct float64

	MaxDrawdownPct float64 // Max peak-to-trough decline of the cumulative PnLPct curve

	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	AverageHold          time.Duration
}

// PartitionFunc assigns a trade to a named bucket for breakdown tables.
type PartitionFunc func(*domain.Trade) string

// Prebuilt partitions for the standard breakdown tables.
var (
	ByExitReason PartitionFunc = func(t *domain.Trade) string { return string(t.ExitReason) }
	ByDirection  PartitionFunc = func(t *domain.Trade) string { return string(t.Direction) }
	ByWeekday    PartitionFunc = func(t *domain.Trade) string { return t.EntryTime.UTC().Weekday().String() }
	ByMonth      PartitionFunc = func(t *domain.Trade) string { return t.ExitTime.UTC().Format("2006-01") }
)

// Aggregate reduces closed trades into a Summary. Zero trades is an explicit
// ports.ErrNoTrades: a missing sample is not the same thing as a measured
// zero-performance result.
func Aggregate(trades []*domain.Trade) (*Summary, error) {
	if len(trades) == 0 {
		return nil, ports.ErrNoTrades
	}

	// Work on a sorted copy so the equity curve follows realization order
	// without mutating the caller's slice.
	ordered := make([]*domain.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitTime.Before(ordered[j].ExitTime)
	})

	s := &Summary{TradeCount: len(ordered)}

	var equity, peak, maxDD float64
	var streakWins, streakLosses int
	var totalHold time.Duration

	for _, t := range ordered {
		s.TotalPnLPct += t.PnLPct
		s.TotalPnLUSD += t.PnLUSD
		totalHold += t.ExitTime.Sub(t.EntryTime)

		if t.IsWin() {
			s.WinningTrades++
			s.GrossProfitPct += t.PnLPct
			streakWins++
			streakLosses = 0
		} else {
			s.LosingTrades++
			s.GrossLossPct += -t.PnLPct
			streakLosses++
			streakWins = 0
		}
		if streakWins > s.MaxConsecutiveWins {
			s.MaxConsecutiveWins = streakWins
		}
		if streakLosses > s.MaxConsecutiveLosses {
			s.MaxConsecutiveLosses = streakLosses
		}

		equity += t.PnLPct
		if equity > peak {
			peak = equity
		}
		if dd := peak - equity; dd > maxDD {
			maxDD = dd
		}
	}

	s.WinRate = float64(s.WinningTrades) / float64(s.TradeCount)
	s.MaxDrawdownPct = maxDD
	s.AverageHold = totalHold / time.Duration(s.TradeCount)

	if s.WinningTrades > 0 {
		s.AverageWinPct = s.GrossProfitPct / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AverageLossPct = -s.GrossLossPct / float64(s.LosingTrades)
	}

	// Profit factor is reported unbounded when there are no losing trades;
	// clipping it would make a flawless run look like a mediocre one.
	switch {
	case s.GrossLossPct > 0:
		s.ProfitFactor = s.GrossProfitPct / s.GrossLossPct
	case s.GrossProfitPct > 0:
		s.ProfitFactor = math.Inf(1)
	default:
		s.ProfitFactor = 0
	}

	return s, nil
}

// AggregateBy groups trades with the partition function and aggregates each
// bucket with the same reduction as the headline summary. Buckets are only
// created for trades that exist, so no bucket can hit ErrNoTrades.
func AggregateBy(trades []*domain.Trade, partition PartitionFunc) (map[string]*Summary, error) {
	if len(trades) == 0 {
		return nil, ports.ErrNoTrades
	}
	buckets := make(map[string][]*domain.Trade)
	for _, t := range trades {
		key := partition(t)
		buckets[key] = append(buckets[key], t)
	}
	out := make(map[string]*Summary, len(buckets))
	for key, bucket := range buckets {
		summary, err := Aggregate(bucket)
		if err != nil {
			return nil, err
		}
		out[key] = summary
	}
	return out, nil
}
