package signals

import (
	"fmt"
	"time"

	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/strategy/indicators"
)

// Config holds the entry-side parameters of the bounce strategy.
type Config struct {
	SRTolerancePct float64 // Distance from S/R that still counts as a touch, % of price

	UseTrendFilter bool // Require trend confirmation for entries
	UseCTFilter    bool // Allow contrarian entries when the trend is flat
	CTBars         int  // Bars to measure the contrarian move over

	MinGapBars int // Bars to suppress all new signals after an emission

	SkipFriday       bool // Drop candidates whose bar falls on UTC Friday
	UseSessionFilter bool
	AllowedSessions  []domain.Session
}

// Stats counts why candidate bars did or did not become signals.
type Stats struct {
	Emitted           int
	FilteredByTrend   int
	FilteredBySession int
	FilteredByDay     int
	SuppressedByGap   int
}

// Generator scans a kline series plus its indicator frame for S/R bounce
// entries. Scanning is a pure function of its inputs: the same (klines,
// frame, config) always yields the same ordered signal sequence.
type Generator struct {
	cfg Config
}

// New creates a signal generator, validating the configuration.
func New(cfg Config) (*Generator, error) {
	if cfg.SRTolerancePct < 0 {
		return nil, fmt.Errorf("S/R tolerance must not be negative, got %f", cfg.SRTolerancePct)
	}
	if cfg.MinGapBars < 0 {
		return nil, fmt.Errorf("min gap bars must not be negative, got %d", cfg.MinGapBars)
	}
	if cfg.UseCTFilter && cfg.CTBars < 2 {
		return nil, fmt.Errorf("contrarian lookback must be at least 2 bars, got %d", cfg.CTBars)
	}
	return &Generator{cfg: cfg}, nil
}

// Scan walks the series in order and emits candidate entries. Bars where any
// required indicator is undefined are skipped, never treated as zero. After a
// signal is emitted, candidates of either direction within the next
// MinGapBars bars are dropped (earliest signal wins, later ones are not
// queued).
func (g *Generator) Scan(klines []*domain.Kline, frame *indicators.Frame) ([]*domain.Signal, *Stats, error) {
	if frame.Len() != len(klines) {
		return nil, nil, fmt.Errorf("frame covers %d bars but series has %d", frame.Len(), len(klines))
	}

	var out []*domain.Signal
	stats := &Stats{}
	lastEmitted := -g.cfg.MinGapBars - 1

	for i := range klines {
		if !frame.Ready(i) {
			continue
		}
		if frame.ATR[i] <= 0 {
			continue
		}
		dir, level, filtered := g.evaluate(klines, frame, i)
		if filtered {
			stats.FilteredByTrend++
		}
		if dir == "" {
			continue
		}

		// Boundary filters apply to real candidates only, so the counters
		// reflect trades that would otherwise have been taken.
		bar := klines[i]
		if g.cfg.SkipFriday && bar.OpenTime.UTC().Weekday() == time.Friday {
			stats.FilteredByDay++
			continue
		}
		if g.cfg.UseSessionFilter && !g.sessionAllowed(bar.OpenTime) {
			stats.FilteredBySession++
			continue
		}
		if i-lastEmitted < g.cfg.MinGapBars {
			stats.SuppressedByGap++
			continue
		}

		out = append(out, &domain.Signal{
			BarIndex:   i,
			Time:       bar.OpenTime,
			Direction:  dir,
			EntryPrice: bar.Close,
			Level:      level,
			ATRAtEntry: frame.ATR[i],
		})
		stats.Emitted++
		lastEmitted = i
	}
	return out, stats, nil
}

// evaluate decides the candidate direction for bar i. A support touch with
// the trend up (or flat with a contrarian down-move) is a long; resistance
// mirrors it. When the bar touches both levels the resistance decision is
// taken last, matching the strategy's original ordering.
func (g *Generator) evaluate(klines []*domain.Kline, frame *indicators.Frame, i int) (domain.Direction, float64, bool) {
	bar := klines[i]
	support := frame.Support[i]
	resistance := frame.Resistance[i]
	tolerance := bar.Close * g.cfg.SRTolerancePct / 100

	nearSupport := bar.Low <= support+tolerance
	nearResistance := bar.High >= resistance-tolerance
	if !nearSupport && !nearResistance {
		return "", 0, false
	}

	trend := domain.TrendFlat
	if g.cfg.UseTrendFilter {
		trend = frame.Trend[i]
	}

	var dir domain.Direction
	var level float64
	filtered := false

	if nearSupport {
		switch {
		case trend == domain.TrendUp:
			dir, level = domain.Long, support
		case trend == domain.TrendDown:
			filtered = true
		case g.cfg.UseCTFilter && g.contrarianMove(klines, i) == domain.TrendDown:
			dir, level = domain.Long, support
		}
	}
	if nearResistance {
		switch {
		case trend == domain.TrendDown:
			dir, level = domain.Short, resistance
		case trend == domain.TrendUp:
			dir, level = "", 0
			filtered = true
		case g.cfg.UseCTFilter && g.contrarianMove(klines, i) == domain.TrendUp:
			dir, level = domain.Short, resistance
		}
	}
	return dir, level, filtered
}

// contrarianMove reports the direction of the last CTBars bars: the move
// from the open of the first to the close of the last.
func (g *Generator) contrarianMove(klines []*domain.Kline, i int) domain.TrendDirection {
	start := i - g.cfg.CTBars + 1
	if start < 0 {
		return domain.TrendFlat
	}
	move := klines[i].Close - klines[start].Open
	switch {
	case move > 0:
		return domain.TrendUp
	case move < 0:
		return domain.TrendDown
	default:
		return domain.TrendFlat
	}
}

func (g *Generator) sessionAllowed(ts time.Time) bool {
	session := domain.SessionForHour(ts.UTC().Hour())
	for _, s := range g.cfg.AllowedSessions {
		if s == session {
			return true
		}
	}
	return false
}
