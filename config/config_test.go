package config

import (
	"strings"
	"testing"

	"cryptoSRBounce/internal/domain"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Symbol != "DOTUSDT" || cfg.Interval != "1h" {
		t.Errorf("market defaults = %s/%s, want DOTUSDT/1h", cfg.Symbol, cfg.Interval)
	}
	if cfg.Asset != "DOT" {
		t.Errorf("Asset = %s, want DOT derived from the symbol", cfg.Asset)
	}
	if cfg.SRLookback != 10 || cfg.SRTolerancePct != 0.15 {
		t.Errorf("S/R defaults = %d/%f, want 10/0.15", cfg.SRLookback, cfg.SRTolerancePct)
	}
	if cfg.TrendLookback != 30 || !cfg.UseTrendFilter {
		t.Errorf("trend defaults = %d/%v, want 30/true", cfg.TrendLookback, cfg.UseTrendFilter)
	}
	if cfg.ATRPeriod != 14 || cfg.StopATRMult != 1.5 || cfg.TargetATRMult != 2.0 {
		t.Errorf("ATR defaults = %d/%f/%f", cfg.ATRPeriod, cfg.StopATRMult, cfg.TargetATRMult)
	}
	if !cfg.UseTrailingStop || cfg.TrailActivationATR != 1.0 || cfg.TrailDistanceATR != 0.3 {
		t.Errorf("trailing defaults wrong: %v/%f/%f", cfg.UseTrailingStop, cfg.TrailActivationATR, cfg.TrailDistanceATR)
	}
	if cfg.MaxHoldBars != 10 || cfg.MinGapBars != 5 {
		t.Errorf("hold/gap defaults = %d/%d, want 10/5", cfg.MaxHoldBars, cfg.MinGapBars)
	}
	if cfg.RSIPeriod != 14 || cfg.RSIExitHigh != 65 || cfg.RSIExitLow != 35 {
		t.Errorf("RSI defaults = %d/%f/%f", cfg.RSIPeriod, cfg.RSIExitHigh, cfg.RSIExitLow)
	}
	if cfg.SkipFriday {
		t.Error("SkipFriday must default to false")
	}
	if cfg.AccountSize != 10000 || cfg.RiskPerTradePct != 0.5 || cfg.MaxDailyTrades != 10 {
		t.Errorf("risk defaults = %f/%f/%d", cfg.AccountSize, cfg.RiskPerTradePct, cfg.MaxDailyTrades)
	}
	if cfg.DBPath != "./data/srbounce.db" {
		t.Errorf("DBPath = %s", cfg.DBPath)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SYMBOL", "ETHUSDT")
	t.Setenv("SR_LOOKBACK", "24")
	t.Setenv("USE_TRAILING_STOP", "false")
	t.Setenv("SKIP_FRIDAY", "true")
	t.Setenv("ALLOWED_SESSIONS", "asia,europe")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Symbol != "ETHUSDT" || cfg.Asset != "ETH" {
		t.Errorf("symbol override = %s/%s, want ETHUSDT/ETH", cfg.Symbol, cfg.Asset)
	}
	if cfg.SRLookback != 24 {
		t.Errorf("SRLookback = %d, want 24", cfg.SRLookback)
	}
	if cfg.UseTrailingStop || !cfg.SkipFriday {
		t.Error("boolean overrides not applied")
	}
	want := []domain.Session{domain.SessionAsia, domain.SessionEurope}
	if len(cfg.AllowedSessions) != 2 || cfg.AllowedSessions[0] != want[0] || cfg.AllowedSessions[1] != want[1] {
		t.Errorf("AllowedSessions = %v, want %v", cfg.AllowedSessions, want)
	}
}

func TestLoadConfig_CollectsAllErrors(t *testing.T) {
	t.Setenv("SR_LOOKBACK", "-1")
	t.Setenv("TREND_LOOKBACK", "2")
	t.Setenv("MAX_HOLD_BARS", "0")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected a validation error")
	}
	for _, fragment := range []string{"SR_LOOKBACK", "TREND_LOOKBACK", "MAX_HOLD_BARS"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error should mention %s, got: %v", fragment, err)
		}
	}
}

func TestLoadConfig_UnknownSession(t *testing.T) {
	t.Setenv("ALLOWED_SESSIONS", "europe,tokyo")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for an unknown session name")
	}
}

func TestLoadConfig_MalformedNumberFallsBack(t *testing.T) {
	t.Setenv("ATR_PERIOD", "not-a-number")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ATRPeriod != 14 {
		t.Errorf("ATRPeriod = %d, want the default 14 for a malformed value", cfg.ATRPeriod)
	}
}

func TestBacktestConfig_RoundTrip(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	bt := cfg.BacktestConfig()
	if err := bt.Validate(); err != nil {
		t.Fatalf("default backtest config must validate, got %v", err)
	}
	if bt.Symbol != cfg.Symbol {
		t.Errorf("Symbol = %s, want %s", bt.Symbol, cfg.Symbol)
	}
	if bt.Indicators.SRLookback != cfg.SRLookback || bt.Indicators.Asset != cfg.Asset {
		t.Error("indicator parameters not carried over")
	}
	if bt.Signals.MinGapBars != cfg.MinGapBars || bt.Signals.SkipFriday != cfg.SkipFriday {
		t.Error("signal parameters not carried over")
	}
	if bt.Simulation.TargetATRMult != cfg.TargetATRMult || bt.Simulation.MaxHoldBars != cfg.MaxHoldBars {
		t.Error("simulation parameters not carried over")
	}
	if bt.Risk.AccountSize != cfg.AccountSize || bt.Risk.MaxDailyTrades != cfg.MaxDailyTrades {
		t.Error("risk parameters not carried over")
	}
}
