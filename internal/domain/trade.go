package domain

import "time"

// Trade represents a completed simulated trade.
type Trade struct {
	ID            int64      // Unique identifier (assigned by storage, 0 otherwise)
	Symbol        string     // Trading symbol (e.g., "DOTUSD")
	Direction     Direction  // long or short
	EntryBarIndex int        // Bar index the trade was entered on
	ExitBarIndex  int        // Bar index the trade was exited on
	EntryPrice    float64    // Fill price at entry (signal bar close)
	ExitPrice     float64    // Fill price at exit
	EntryTime     time.Time  // Open time of the entry bar
	ExitTime      time.Time  // Open time of the exit bar
	ExitReason    ExitReason // Which rule closed the trade
	Truncated     bool       // True when the series ended before any exit rule fired
	ATRAtEntry    float64    // ATR frozen at entry
	Quantity      float64    // Position size in units of the asset
	PnLPct        float64    // Percentage P&L relative to entry price
	PnLUSD        float64    // USD P&L for the reference account size
}

// IsWin reports whether the trade closed with a positive percentage P&L.
func (t *Trade) IsWin() bool {
	return t.PnLPct > 0
}
