package risk

import (
	"fmt"
	"math"
	"time"
)

// Config holds position sizing and trade-frequency limits.
type Config struct {
	AccountSize     float64 // Reference account size in USD
	RiskPerTradePct float64 // Percent of account risked between entry and stop
	MaxLeverage     float64 // Cap on notional exposure as a multiple of account size
	MaxDailyTrades  int     // Max trades per UTC day; 0 disables the limit
}

// Validate rejects out-of-range risk parameters at load time.
func (c Config) Validate() error {
	if c.AccountSize <= 0 {
		return fmt.Errorf("account size must be positive, got %f", c.AccountSize)
	}
	if c.RiskPerTradePct <= 0 || c.RiskPerTradePct >= 100 {
		return fmt.Errorf("risk per trade must be in (0,100) percent, got %f", c.RiskPerTradePct)
	}
	if c.MaxLeverage <= 0 {
		return fmt.Errorf("max leverage must be positive, got %f", c.MaxLeverage)
	}
	if c.MaxDailyTrades < 0 {
		return fmt.Errorf("max daily trades must not be negative, got %d", c.MaxDailyTrades)
	}
	return nil
}

// Manager sizes positions from the stop distance and enforces the daily
// trade cap. Daily counts are keyed by bar timestamps, not wall clock, so
// backtests stay deterministic.
type Manager struct {
	cfg        Config
	dailyCount map[string]int
}

// NewManager creates a risk manager instance.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, dailyCount: make(map[string]int)}, nil
}

// Quantity returns the position size in asset units for an entry/stop pair:
// the configured risk amount divided by the per-unit stop distance, capped
// so notional exposure never exceeds MaxLeverage times the account.
func (m *Manager) Quantity(entry, stop float64) float64 {
	perUnitRisk := math.Abs(entry - stop)
	if perUnitRisk <= 0 || entry <= 0 {
		return 0
	}
	qty := m.cfg.AccountSize * m.cfg.RiskPerTradePct / 100 / perUnitRisk
	maxQty := m.cfg.AccountSize * m.cfg.MaxLeverage / entry
	return math.Min(qty, maxQty)
}

// AccountSize returns the reference account size.
func (m *Manager) AccountSize() float64 {
	return m.cfg.AccountSize
}

// CanTrade reports whether another trade is allowed on the UTC day of ts.
func (m *Manager) CanTrade(ts time.Time) bool {
	if m.cfg.MaxDailyTrades == 0 {
		return true
	}
	return m.dailyCount[dayKey(ts)] < m.cfg.MaxDailyTrades
}

// RecordTrade counts a trade against the UTC day of ts.
func (m *Manager) RecordTrade(ts time.Time) {
	m.dailyCount[dayKey(ts)]++
}

// Reset clears all daily counters, making the manager reusable across runs.
func (m *Manager) Reset() {
	m.dailyCount = make(map[string]int)
}

func dayKey(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}
