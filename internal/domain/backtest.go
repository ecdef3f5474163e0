package domain

import "time"

// BacktestRun is a stored record of one completed backtest: what was run,
// over which data, and the headline metrics. Per-trade detail lives in the
// trade records referencing the run.
type BacktestRun struct {
	ID             int64     // Unique identifier (assigned by storage)
	Label          string    // Human-readable configuration label
	Symbol         string    // Symbol the backtest ran over
	Interval       string    // Kline interval of the series
	StartTime      time.Time // Open time of the first bar
	EndTime        time.Time // Close time of the last bar
	CreatedAt      time.Time // When the run was recorded
	TradeCount     int
	WinRate        float64 // wins / trades, in [0,1]
	ProfitFactor   float64 // gross profit / gross loss (may be +Inf)
	TotalPnLPct    float64
	TotalPnLUSD    float64
	MaxDrawdownPct float64
}
