package indicators

import (
	"fmt"
	"math"

	"cryptoSRBounce/internal/domain"
)

// SRLevels computes rolling support and resistance: the min low and max high
// over the previous `lookback` bars. The current bar is excluded from the
// window so a bar can never be tested against a level it helped form.
type SRLevels struct {
	lookback        int
	useRoundNumbers bool
	roundWeight     float64
	asset           string
}

// SRConfig holds configuration for support/resistance detection.
type SRConfig struct {
	Lookback        int     // Bars to look back for levels
	UseRoundNumbers bool    // Blend bar-based levels with round-number levels
	RoundWeight     float64 // Weight of the round level in the blend, [0,1]
	Asset           string  // Asset name for round-number spacing (e.g., "BTC")
}

// NewSRLevels creates a new support/resistance detector.
func NewSRLevels(cfg SRConfig) (*SRLevels, error) {
	if cfg.Lookback <= 0 {
		return nil, fmt.Errorf("S/R lookback must be positive, got %d", cfg.Lookback)
	}
	if cfg.RoundWeight < 0 || cfg.RoundWeight > 1 {
		return nil, fmt.Errorf("round number weight must be in [0,1], got %f", cfg.RoundWeight)
	}
	return &SRLevels{
		lookback:        cfg.Lookback,
		useRoundNumbers: cfg.UseRoundNumbers,
		roundWeight:     cfg.RoundWeight,
		asset:           cfg.Asset,
	}, nil
}

// Lookback returns the configured window length.
func (s *SRLevels) Lookback() int {
	return s.lookback
}

// Series computes per-bar support and resistance aligned 1:1 with the input.
// Values before index `lookback` are NaN (a full prior window is required).
// The window for bar i is bars [i-lookback, i-1].
func (s *SRLevels) Series(klines []*domain.Kline) (support, resistance []float64) {
	support = make([]float64, len(klines))
	resistance = make([]float64, len(klines))
	for i := range klines {
		support[i] = math.NaN()
		resistance[i] = math.NaN()
	}

	for i := s.lookback; i < len(klines); i++ {
		lo := math.Inf(1)
		hi := math.Inf(-1)
		for j := i - s.lookback; j < i; j++ {
			if klines[j].Low < lo {
				lo = klines[j].Low
			}
			if klines[j].High > hi {
				hi = klines[j].High
			}
		}
		if s.useRoundNumbers {
			// The bar's own close is known at decision time; using it for
			// round-level proximity introduces no lookahead.
			price := klines[i].Close
			if rb := nearestRoundBelow(price, s.asset); !math.IsNaN(rb) {
				lo = lo*(1-s.roundWeight) + rb*s.roundWeight
			}
			if ra := nearestRoundAbove(price, s.asset); !math.IsNaN(ra) {
				hi = hi*(1-s.roundWeight) + ra*s.roundWeight
			}
		}
		support[i] = lo
		resistance[i] = hi
	}
	return support, resistance
}
