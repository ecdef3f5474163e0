package indicators

import (
	"fmt"
	"math"

	"cryptoSRBounce/internal/domain"
)

// ATR implements the Average True Range indicator as a simple moving
// average of the true range. The simple average (rather than Wilder's
// smoothing) matches how the strategy was tuned; switching formulas
// shifts every stop and target in the system.
type ATR struct {
	period int
}

// NewATR creates a new Average True Range indicator instance.
func NewATR(period int) (*ATR, error) {
	if period <= 0 {
		return nil, fmt.Errorf("ATR period must be positive, got %d", period)
	}
	return &ATR{period: period}, nil
}

// Period returns the configured averaging period.
func (a *ATR) Period() int {
	return a.period
}

// Series computes the per-bar ATR aligned 1:1 with the input klines.
// Values before index `period` are NaN: the true range needs a previous
// close, and the average needs `period` true ranges. Each value depends
// only on bars up to and including its own index.
func (a *ATR) Series(klines []*domain.Kline) []float64 {
	out := make([]float64, len(klines))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(klines) <= a.period {
		return out
	}

	// True range per bar, defined from index 1.
	tr := make([]float64, len(klines))
	for i := 1; i < len(klines); i++ {
		high := klines[i].High
		low := klines[i].Low
		prevClose := klines[i-1].Close

		tr[i] = math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
	}

	// Rolling simple average of the last `period` true ranges.
	var sum float64
	for i := 1; i < len(klines); i++ {
		sum += tr[i]
		if i > a.period {
			sum -= tr[i-a.period]
		}
		if i >= a.period {
			out[i] = sum / float64(a.period)
		}
	}
	return out
}
