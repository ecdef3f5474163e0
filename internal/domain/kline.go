package domain

import (
	"errors"
	"fmt"
	"time"
)

// Kline represents a single candlestick data point.
type Kline struct {
	OpenTime  time.Time // Start time of the interval (UTC)
	CloseTime time.Time // End time of the interval
	Symbol    string    // Trading symbol
	Interval  string    // Kline interval (e.g., "5m", "1h")
	Open      float64   // Opening price
	High      float64   // Highest price
	Low       float64   // Lowest price
	Close     float64   // Closing price
	Volume    float64   // Traded volume
}

// ErrEmptySeries is returned when a kline series contains no bars.
var ErrEmptySeries = errors.New("kline series is empty")

// ValidateSeries checks that a kline series is usable for backtesting:
// non-empty, timestamps strictly increasing (no duplicates), and
// OHLC fields internally consistent on every bar. It fails fast on the
// first defect so that no computation runs on malformed data.
func ValidateSeries(klines []*Kline) error {
	if len(klines) == 0 {
		return ErrEmptySeries
	}
	for i, k := range klines {
		if k == nil {
			return fmt.Errorf("kline at index %d is nil", i)
		}
		if k.OpenTime.IsZero() {
			return fmt.Errorf("kline at index %d has zero timestamp", i)
		}
		if k.High < k.Low {
			return fmt.Errorf("kline at index %d has high %f below low %f", i, k.High, k.Low)
		}
		if k.Open < k.Low || k.Open > k.High || k.Close < k.Low || k.Close > k.High {
			return fmt.Errorf("kline at index %d has open/close outside high-low range", i)
		}
		if k.Low <= 0 {
			return fmt.Errorf("kline at index %d has non-positive price", i)
		}
		if i > 0 && !k.OpenTime.After(klines[i-1].OpenTime) {
			return fmt.Errorf("kline at index %d has non-increasing timestamp %s (previous %s)",
				i, k.OpenTime.Format(time.RFC3339), klines[i-1].OpenTime.Format(time.RFC3339))
		}
	}
	return nil
}
