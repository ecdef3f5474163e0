package backtesting

import (
	"context"
	"fmt"

	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/risk"
	"cryptoSRBounce/internal/strategy/analytics"
	"cryptoSRBounce/internal/strategy/indicators"
	"cryptoSRBounce/internal/strategy/signals"
	"cryptoSRBounce/internal/strategy/simulation"
)

// Config bundles every parameter of one backtest. It is passed by value into
// the components; nothing in a run reaches for ambient state.
type Config struct {
	Symbol string

	Indicators indicators.Config
	Signals    signals.Config
	Simulation simulation.Config
	Risk       risk.Config
}

// Validate checks the full configuration before any computation proceeds.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol must be set")
	}
	if c.Indicators.ATRPeriod <= 0 || c.Indicators.RSIPeriod <= 0 ||
		c.Indicators.SRLookback <= 0 || c.Indicators.TrendLookback <= 0 {
		return fmt.Errorf("indicator lookback periods must be positive")
	}
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	return c.Risk.Validate()
}

// Stats counts signals that were generated but never simulated.
type Stats struct {
	Signals         *signals.Stats
	OverlapDropped  int // Signal fired while the previous trade was still open
	DailyCapDropped int // Signal dropped by the max-daily-trades limit
	TruncatedTrades int // Trades force-closed by the end of the series
}

// Result is the complete outcome of one backtest over one (klines, config)
// input.
type Result struct {
	Summary      *analytics.Summary // nil when NoTrades
	NoTrades     bool               // Explicitly distinguishes "nothing traded" from zero performance
	Trades       []*domain.Trade
	SignalsTotal int
	Stats        Stats
	ByExitReason map[string]*analytics.Summary
	ByDirection  map[string]*analytics.Summary
	ByWeekday    map[string]*analytics.Summary
}

// Run executes a full backtest: validate the series, derive the indicator
// frame once, scan for signals, simulate each in order, and aggregate. A
// signal that fires while the previous trade is still open is dropped, not
// queued; two simulations never overlap.
func Run(ctx context.Context, klines []*domain.Kline, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if err := domain.ValidateSeries(klines); err != nil {
		return nil, fmt.Errorf("series validation failed: %w", err)
	}

	frame, err := indicators.Compute(klines, cfg.Indicators)
	if err != nil {
		return nil, err
	}

	gen, err := signals.New(cfg.Signals)
	if err != nil {
		return nil, err
	}
	sigs, sigStats, err := gen.Scan(klines, frame)
	if err != nil {
		return nil, err
	}

	riskMgr, err := risk.NewManager(cfg.Risk)
	if err != nil {
		return nil, err
	}

	result := &Result{
		SignalsTotal: len(sigs),
		Stats:        Stats{Signals: sigStats},
	}

	lastExitIdx := -1
	for _, sig := range sigs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sig.BarIndex <= lastExitIdx {
			result.Stats.OverlapDropped++
			continue
		}
		if !riskMgr.CanTrade(sig.Time) {
			result.Stats.DailyCapDropped++
			continue
		}

		trade, err := simulation.Simulate(klines, frame, sig, cfg.Simulation)
		if err != nil {
			return nil, fmt.Errorf("simulation at bar %d failed: %w", sig.BarIndex, err)
		}

		// USD P&L from the risk-based position size against the fixed stop.
		stop := sig.EntryPrice - sig.ATRAtEntry*cfg.Simulation.StopATRMult
		if sig.Direction == domain.Short {
			stop = sig.EntryPrice + sig.ATRAtEntry*cfg.Simulation.StopATRMult
		}
		trade.Quantity = riskMgr.Quantity(sig.EntryPrice, stop)
		trade.PnLUSD = riskMgr.AccountSize() * trade.PnLPct / 100

		if trade.Truncated {
			result.Stats.TruncatedTrades++
		}
		result.Trades = append(result.Trades, trade)
		riskMgr.RecordTrade(sig.Time)
		lastExitIdx = trade.ExitBarIndex
	}

	if len(result.Trades) == 0 {
		result.NoTrades = true
		return result, nil
	}

	if result.Summary, err = analytics.Aggregate(result.Trades); err != nil {
		return nil, err
	}
	if result.ByExitReason, err = analytics.AggregateBy(result.Trades, analytics.ByExitReason); err != nil {
		return nil, err
	}
	if result.ByDirection, err = analytics.AggregateBy(result.Trades, analytics.ByDirection); err != nil {
		return nil, err
	}
	if result.ByWeekday, err = analytics.AggregateBy(result.Trades, analytics.ByWeekday); err != nil {
		return nil, err
	}
	return result, nil
}
