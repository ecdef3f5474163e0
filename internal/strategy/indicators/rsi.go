package indicators

import (
	"fmt"
	"math"

	"cryptoSRBounce/internal/domain"
)

// RSI implements the Relative Strength Index using Wilder's smoothing.
// Values are scale-bound to [0,100].
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator instance.
func NewRSI(period int) (*RSI, error) {
	if period <= 0 {
		return nil, fmt.Errorf("RSI period must be positive, got %d", period)
	}
	return &RSI{period: period}, nil
}

// Period returns the configured smoothing period.
func (r *RSI) Period() int {
	return r.period
}

// Series computes the per-bar RSI aligned 1:1 with the input klines.
// Values before index `period` are NaN (the oscillator needs `period`
// close-to-close changes). Each value depends only on bars up to and
// including its own index.
func (r *RSI) Series(klines []*domain.Kline) []float64 {
	out := make([]float64, len(klines))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(klines) <= r.period {
		return out
	}

	// Seed with the simple average of the first `period` changes.
	var avgGain, avgLoss float64
	for i := 1; i <= r.period; i++ {
		change := klines[i].Close - klines[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(r.period)
	avgLoss /= float64(r.period)
	out[r.period] = rsiValue(avgGain, avgLoss)

	// Wilder's smoothing for the remainder.
	for i := r.period + 1; i < len(klines); i++ {
		change := klines[i].Close - klines[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(r.period-1) + gain) / float64(r.period)
		avgLoss = (avgLoss*float64(r.period-1) + loss) / float64(r.period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50 // Neutral if no change at all
		}
		return 100
	}
	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))
	if rsi > 100 {
		rsi = 100
	} else if rsi < 0 {
		rsi = 0
	}
	return rsi
}
