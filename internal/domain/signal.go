package domain

import "time"

// Signal is a candidate entry emitted by the signal generator.
// It is created once and never mutated; the simulator consumes it
// to produce exactly one Trade.
type Signal struct {
	BarIndex   int       // Index of the bar the signal fired on
	Time       time.Time // Open time of that bar
	Direction  Direction // long (support bounce) or short (resistance bounce)
	EntryPrice float64   // Close of the signal bar
	Level      float64   // The support or resistance level that was touched
	ATRAtEntry float64   // ATR at the signal bar, frozen for the whole trade
}
