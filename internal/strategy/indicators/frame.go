package indicators

import (
	"fmt"
	"math"

	"cryptoSRBounce/internal/domain"
)

// Config holds the periods and switches for all frame indicators.
type Config struct {
	ATRPeriod         int
	RSIPeriod         int
	SRLookback        int
	TrendLookback     int
	TrendDeadbandPct  float64 // Mean-close move below this % of price is "flat"
	UseRoundNumberSR  bool
	RoundNumberWeight float64
	Asset             string
}

// Frame holds per-bar derived values aligned 1:1 with the source klines.
// Float series are NaN and the trend series is empty where the lookback
// window is not yet filled; undefined is never silently zero.
type Frame struct {
	ATR        []float64
	RSI        []float64
	Support    []float64
	Resistance []float64
	Trend      []domain.TrendDirection
}

// Compute derives the full indicator frame for a kline series. Every output
// value at index i is a function of bars [0, i] only: truncating the input
// after i never changes the value at i.
func Compute(klines []*domain.Kline, cfg Config) (*Frame, error) {
	atr, err := NewATR(cfg.ATRPeriod)
	if err != nil {
		return nil, err
	}
	rsi, err := NewRSI(cfg.RSIPeriod)
	if err != nil {
		return nil, err
	}
	sr, err := NewSRLevels(SRConfig{
		Lookback:        cfg.SRLookback,
		UseRoundNumbers: cfg.UseRoundNumberSR,
		RoundWeight:     cfg.RoundNumberWeight,
		Asset:           cfg.Asset,
	})
	if err != nil {
		return nil, err
	}
	trend, err := NewTrend(TrendConfig{Lookback: cfg.TrendLookback, DeadbandPct: cfg.TrendDeadbandPct})
	if err != nil {
		return nil, err
	}

	f := &Frame{
		ATR: atr.Series(klines),
		RSI: rsi.Series(klines),
	}
	f.Support, f.Resistance = sr.Series(klines)
	f.Trend = trend.Series(klines)
	return f, nil
}

// Len returns the number of bars covered by the frame.
func (f *Frame) Len() int {
	return len(f.ATR)
}

// Ready reports whether every indicator is defined at index i.
func (f *Frame) Ready(i int) bool {
	if i < 0 || i >= f.Len() {
		return false
	}
	return !math.IsNaN(f.ATR[i]) &&
		!math.IsNaN(f.RSI[i]) &&
		!math.IsNaN(f.Support[i]) &&
		!math.IsNaN(f.Resistance[i]) &&
		f.Trend[i] != ""
}

// FirstReady returns the first index where the whole frame is defined,
// or an error when the series never warms up.
func (f *Frame) FirstReady() (int, error) {
	for i := 0; i < f.Len(); i++ {
		if f.Ready(i) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("series of %d bars never satisfies all lookbacks", f.Len())
}
