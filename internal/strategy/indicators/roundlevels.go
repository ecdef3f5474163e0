package indicators

import (
	"math"
	"strings"
)

// RoundLevel is a psychological price level near the current price.
type RoundLevel struct {
	Price float64
	Major bool
}

// roundSpacing returns the minor and major round-number spacing for an asset.
// Crypto respects these levels more than traditional markets do, and the
// spacing differs by price regime.
func roundSpacing(price float64, asset string) (base, major float64) {
	switch strings.ToUpper(asset) {
	case "BTC", "BITCOIN":
		return 1000, 5000
	case "ETH", "ETHEREUM":
		return 100, 500
	default:
		// ~1% of price, rounded to one significant digit.
		raw := price * 0.01
		if raw <= 0 {
			return 1, 5
		}
		mag := math.Pow(10, math.Floor(math.Log10(raw)))
		base = math.Round(raw/mag) * mag
		if base <= 0 {
			base = mag
		}
		return base, base * 5
	}
}

// RoundLevelsNear returns the minor and major round levels bracketing the
// given price, sorted nearest first.
func RoundLevelsNear(price float64, asset string) []RoundLevel {
	base, major := roundSpacing(price, asset)

	lowerBase := math.Floor(price/base) * base
	lowerMajor := math.Floor(price/major) * major

	levels := []RoundLevel{
		{Price: lowerBase},
		{Price: lowerBase + base},
		{Price: lowerMajor, Major: true},
		{Price: lowerMajor + major, Major: true},
	}

	// Insertion sort by distance to price; four elements only.
	for i := 1; i < len(levels); i++ {
		for j := i; j > 0 && math.Abs(levels[j].Price-price) < math.Abs(levels[j-1].Price-price); j-- {
			levels[j], levels[j-1] = levels[j-1], levels[j]
		}
	}
	return levels
}

// nearestRoundBelow returns the highest round level strictly below price, or NaN.
func nearestRoundBelow(price float64, asset string) float64 {
	best := math.NaN()
	for _, l := range RoundLevelsNear(price, asset) {
		if l.Price < price && (math.IsNaN(best) || l.Price > best) {
			best = l.Price
		}
	}
	return best
}

// nearestRoundAbove returns the lowest round level strictly above price, or NaN.
func nearestRoundAbove(price float64, asset string) float64 {
	best := math.NaN()
	for _, l := range RoundLevelsNear(price, asset) {
		if l.Price > price && (math.IsNaN(best) || l.Price < best) {
			best = l.Price
		}
	}
	return best
}
