package simulation

import (
	"fmt"
	"math"

	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/strategy/indicators"
)

// Config holds the exit-side parameters of the bounce strategy. All ATR
// multipliers apply to the ATR frozen at entry; it is never recomputed
// during the trade, which keeps results reproducible across data windows.
type Config struct {
	StopATRMult   float64 // Fixed stop distance in entry ATRs
	TargetATRMult float64 // Fixed target distance in entry ATRs

	UseTrailingStop    bool
	TrailActivationATR float64 // Close-profit in entry ATRs that activates the trail
	TrailDistanceATR   float64 // Trail distance in entry ATRs behind the best close

	RSIExitHigh float64 // Close longs when RSI exceeds this
	RSIExitLow  float64 // Close shorts when RSI drops below this

	MaxHoldBars int // Force close this many bars after entry
}

// Validate rejects out-of-range exit parameters before any simulation runs.
func (c Config) Validate() error {
	if c.StopATRMult <= 0 {
		return fmt.Errorf("stop ATR multiplier must be positive, got %f", c.StopATRMult)
	}
	if c.TargetATRMult <= 0 {
		return fmt.Errorf("target ATR multiplier must be positive, got %f", c.TargetATRMult)
	}
	if c.UseTrailingStop && (c.TrailActivationATR <= 0 || c.TrailDistanceATR <= 0) {
		return fmt.Errorf("trail activation and distance must be positive when trailing is enabled")
	}
	if c.RSIExitHigh <= c.RSIExitLow || c.RSIExitHigh > 100 || c.RSIExitLow < 0 {
		return fmt.Errorf("invalid RSI exit thresholds (high %f must exceed low %f, within 0-100)",
			c.RSIExitHigh, c.RSIExitLow)
	}
	if c.MaxHoldBars <= 0 {
		return fmt.Errorf("max hold bars must be positive, got %d", c.MaxHoldBars)
	}
	return nil
}

// tradeState is the single open state of the per-trade machine; every exit
// reason below is terminal and mutually exclusive.
type tradeState struct {
	direction  domain.Direction
	entry      float64
	atr        float64
	stop       float64
	target     float64
	trailStop  float64
	trailOn    bool
	runnerMode bool
}

// Simulate walks forward from a signal's bar and applies the exit rules in
// fixed priority order: trailing stop, fixed stop, fixed target, RSI exit,
// time exit. The first rule satisfied on a bar closes the trade. In runner
// mode (trailing active and close-profit past the target distance) only the
// trail can close the trade. If the series ends before any rule fires, the
// trade is force-closed on the last bar with Truncated set.
func Simulate(klines []*domain.Kline, frame *indicators.Frame, sig *domain.Signal, cfg Config) (*domain.Trade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sig.BarIndex < 0 || sig.BarIndex >= len(klines) {
		return nil, fmt.Errorf("signal bar index %d outside series of %d bars", sig.BarIndex, len(klines))
	}
	if frame.Len() != len(klines) {
		return nil, fmt.Errorf("frame covers %d bars but series has %d", frame.Len(), len(klines))
	}
	if sig.ATRAtEntry <= 0 {
		return nil, fmt.Errorf("signal has non-positive ATR %f", sig.ATRAtEntry)
	}

	st := &tradeState{
		direction: sig.Direction,
		entry:     sig.EntryPrice,
		atr:       sig.ATRAtEntry,
	}
	if sig.Direction == domain.Long {
		st.stop = st.entry - st.atr*cfg.StopATRMult
		st.target = st.entry + st.atr*cfg.TargetATRMult
	} else {
		st.stop = st.entry + st.atr*cfg.StopATRMult
		st.target = st.entry - st.atr*cfg.TargetATRMult
	}

	for i := sig.BarIndex + 1; i < len(klines); i++ {
		bar := klines[i]

		// Trailing state ratchets on the bar close before the exit checks,
		// so runner mode engaged by this close already shields the bar's
		// own target and time checks.
		if cfg.UseTrailingStop {
			st.updateTrail(bar.Close, cfg)
		}

		if price, reason, done := st.checkExits(bar, frame.RSI[i], i-sig.BarIndex, cfg); done {
			return closedTrade(klines, sig, i, price, reason, false), nil
		}
	}

	// Data ran out with the trade still open.
	last := len(klines) - 1
	return closedTrade(klines, sig, last, klines[last].Close, domain.ExitTime, true), nil
}

// checkExits applies the exit rules for one bar in priority order.
func (st *tradeState) checkExits(bar *domain.Kline, rsi float64, barsHeld int, cfg Config) (float64, domain.ExitReason, bool) {
	long := st.direction == domain.Long

	// Trailing stop, once active, supersedes the fixed stop: the ratchet
	// can only ever sit on the favorable side of it.
	if st.trailOn {
		if long && bar.Low <= st.trailStop {
			return st.trailStop, domain.ExitTrailingStop, true
		}
		if !long && bar.High >= st.trailStop {
			return st.trailStop, domain.ExitTrailingStop, true
		}
	} else {
		if long && bar.Low <= st.stop {
			return st.stop, domain.ExitStop, true
		}
		if !long && bar.High >= st.stop {
			return st.stop, domain.ExitStop, true
		}
	}

	// Runner mode leaves only the trail in play: the fixed target, RSI and
	// time exits are all disabled so winners can run.
	if st.runnerMode {
		return 0, "", false
	}

	if long && bar.High >= st.target {
		return st.target, domain.ExitTarget, true
	}
	if !long && bar.Low <= st.target {
		return st.target, domain.ExitTarget, true
	}

	if !math.IsNaN(rsi) {
		if long && rsi > cfg.RSIExitHigh {
			return bar.Close, domain.ExitRSI, true
		}
		if !long && rsi < cfg.RSIExitLow {
			return bar.Close, domain.ExitRSI, true
		}
	}

	if barsHeld >= cfg.MaxHoldBars {
		return bar.Close, domain.ExitTime, true
	}
	return 0, "", false
}

// updateTrail activates and ratchets the trailing stop from the bar close.
// The stop only ever moves in the favorable direction.
func (st *tradeState) updateTrail(close float64, cfg Config) {
	profit := close - st.entry
	if st.direction == domain.Short {
		profit = st.entry - close
	}

	if !st.trailOn && profit >= st.atr*cfg.TrailActivationATR {
		st.trailOn = true
		if st.direction == domain.Long {
			st.trailStop = close - st.atr*cfg.TrailDistanceATR
		} else {
			st.trailStop = close + st.atr*cfg.TrailDistanceATR
		}
	}
	if !st.trailOn {
		return
	}

	if st.direction == domain.Long {
		if next := close - st.atr*cfg.TrailDistanceATR; next > st.trailStop {
			st.trailStop = next
		}
	} else {
		if next := close + st.atr*cfg.TrailDistanceATR; next < st.trailStop {
			st.trailStop = next
		}
	}

	if profit >= st.atr*cfg.TargetATRMult {
		st.runnerMode = true
	}
}

func closedTrade(klines []*domain.Kline, sig *domain.Signal, exitIdx int, exitPrice float64, reason domain.ExitReason, truncated bool) *domain.Trade {
	pnlPct := (exitPrice - sig.EntryPrice) / sig.EntryPrice * 100
	if sig.Direction == domain.Short {
		pnlPct = (sig.EntryPrice - exitPrice) / sig.EntryPrice * 100
	}
	return &domain.Trade{
		Symbol:        klines[sig.BarIndex].Symbol,
		Direction:     sig.Direction,
		EntryBarIndex: sig.BarIndex,
		ExitBarIndex:  exitIdx,
		EntryPrice:    sig.EntryPrice,
		ExitPrice:     exitPrice,
		EntryTime:     sig.Time,
		ExitTime:      klines[exitIdx].OpenTime,
		ExitReason:    reason,
		Truncated:     truncated,
		ATRAtEntry:    sig.ATRAtEntry,
		PnLPct:        pnlPct,
	}
}
