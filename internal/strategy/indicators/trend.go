package indicators

import (
	"fmt"

	"cryptoSRBounce/internal/domain"
)

// Trend classifies the direction of the last `lookback` bars by splitting
// the window in half and comparing structure: an uptrend needs a higher
// high, a higher low, and a second-half mean close above the first-half
// mean by more than the deadband. Anything else is flat.
type Trend struct {
	lookback    int
	deadbandPct float64
}

// TrendConfig holds configuration for the trend classifier.
type TrendConfig struct {
	Lookback    int     // Window length; split in half for comparison
	DeadbandPct float64 // Mean-close move below this % of price classifies as flat
}

// NewTrend creates a new trend classifier.
func NewTrend(cfg TrendConfig) (*Trend, error) {
	if cfg.Lookback < 4 {
		return nil, fmt.Errorf("trend lookback must be at least 4, got %d", cfg.Lookback)
	}
	if cfg.DeadbandPct < 0 {
		return nil, fmt.Errorf("trend deadband must not be negative, got %f", cfg.DeadbandPct)
	}
	return &Trend{lookback: cfg.Lookback, deadbandPct: cfg.DeadbandPct}, nil
}

// Lookback returns the configured window length.
func (t *Trend) Lookback() int {
	return t.lookback
}

// Series computes the per-bar trend direction aligned 1:1 with the input.
// Values before index `lookback-1` are empty (undefined). The window for
// bar i is bars [i-lookback+1, i].
func (t *Trend) Series(klines []*domain.Kline) []domain.TrendDirection {
	out := make([]domain.TrendDirection, len(klines))

	for i := t.lookback - 1; i < len(klines); i++ {
		start := i - t.lookback + 1
		half := t.lookback / 2
		out[i] = t.classify(klines[start:start+half], klines[start+half:i+1], klines[i].Close)
	}
	return out
}

func (t *Trend) classify(first, second []*domain.Kline, price float64) domain.TrendDirection {
	firstAvg := meanClose(first)
	secondAvg := meanClose(second)
	firstHigh, firstLow := extremes(first)
	secondHigh, secondLow := extremes(second)

	deadband := price * t.deadbandPct / 100

	if secondHigh > firstHigh && secondLow > firstLow && secondAvg > firstAvg+deadband {
		return domain.TrendUp
	}
	if secondHigh < firstHigh && secondLow < firstLow && secondAvg < firstAvg-deadband {
		return domain.TrendDown
	}
	return domain.TrendFlat
}

func meanClose(klines []*domain.Kline) float64 {
	var sum float64
	for _, k := range klines {
		sum += k.Close
	}
	return sum / float64(len(klines))
}

func extremes(klines []*domain.Kline) (high, low float64) {
	high = klines[0].High
	low = klines[0].Low
	for _, k := range klines[1:] {
		if k.High > high {
			high = k.High
		}
		if k.Low < low {
			low = k.Low
		}
	}
	return high, low
}
