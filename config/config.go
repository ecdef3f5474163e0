package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cryptoSRBounce/internal/adapters/logger"
	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/risk"
	"cryptoSRBounce/internal/strategy/backtesting"
	"cryptoSRBounce/internal/strategy/indicators"
	"cryptoSRBounce/internal/strategy/signals"
	"cryptoSRBounce/internal/strategy/simulation"
)

// Config holds all application configuration.
type Config struct {
	// Binance API (public kline endpoints work without keys)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Market
	Symbol   string
	Interval string
	Asset    string // Base asset for round-number spacing (e.g., "DOT")

	// S/R Detection
	SRLookback        int
	SRTolerancePct    float64
	UseRoundNumberSR  bool
	RoundNumberWeight float64

	// Trend Filter
	TrendLookback    int
	TrendDeadbandPct float64
	UseTrendFilter   bool

	// Contrarian filter (used when the trend is flat)
	UseCTFilter bool
	CTBars      int

	// ATR-based stops
	ATRPeriod     int
	StopATRMult   float64
	TargetATRMult float64

	// Runner mode
	UseTrailingStop    bool
	TrailActivationATR float64
	TrailDistanceATR   float64

	// Exits
	MaxHoldBars int
	MinGapBars  int
	RSIPeriod   int
	RSIExitHigh float64
	RSIExitLow  float64

	// Boundary filters
	SkipFriday       bool
	UseSessionFilter bool
	AllowedSessions  []domain.Session

	// Risk / sizing
	AccountSize     float64
	RiskPerTradePct float64
	MaxLeverage     float64
	MaxDailyTrades  int

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel

	// Connection settings for the exchange client
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

// LoadConfig loads configuration from environment variables (.env file).
// Validation errors are collected and returned as a single failure so a
// bad environment surfaces everything at once.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string

	// Binance API. Keys stay optional: this system only reads public data.
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Market
	cfg.Symbol = getEnv("SYMBOL", "DOTUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	cfg.Interval = getEnv("INTERVAL", "1h")
	cfg.Asset = getEnv("ASSET", strings.TrimSuffix(strings.TrimSuffix(cfg.Symbol, "USDT"), "USD"))

	// S/R detection
	cfg.SRLookback = getEnvAsInt("SR_LOOKBACK", 10)
	cfg.SRTolerancePct = getEnvAsFloat("SR_TOLERANCE_PCT", 0.15)
	cfg.UseRoundNumberSR = getEnvAsBool("USE_ROUND_NUMBER_SR", true)
	cfg.RoundNumberWeight = getEnvAsFloat("ROUND_NUMBER_WEIGHT", 0.5)
	if cfg.SRLookback <= 0 {
		errs = append(errs, "SR_LOOKBACK must be positive")
	}
	if cfg.SRTolerancePct < 0 {
		errs = append(errs, "SR_TOLERANCE_PCT cannot be negative")
	}
	if cfg.RoundNumberWeight < 0 || cfg.RoundNumberWeight > 1 {
		errs = append(errs, "ROUND_NUMBER_WEIGHT must be between 0.0 and 1.0")
	}

	// Trend filter
	cfg.TrendLookback = getEnvAsInt("TREND_LOOKBACK", 30)
	cfg.TrendDeadbandPct = getEnvAsFloat("TREND_DEADBAND_PCT", 0.0)
	cfg.UseTrendFilter = getEnvAsBool("USE_TREND_FILTER", true)
	if cfg.TrendLookback < 4 {
		errs = append(errs, "TREND_LOOKBACK must be at least 4")
	}
	if cfg.TrendDeadbandPct < 0 {
		errs = append(errs, "TREND_DEADBAND_PCT cannot be negative")
	}

	// Contrarian filter
	cfg.UseCTFilter = getEnvAsBool("USE_CT_FILTER", true)
	cfg.CTBars = getEnvAsInt("CT_BARS", 2)
	if cfg.UseCTFilter && cfg.CTBars < 2 {
		errs = append(errs, "CT_BARS must be at least 2")
	}

	// ATR stops
	cfg.ATRPeriod = getEnvAsInt("ATR_PERIOD", 14)
	cfg.StopATRMult = getEnvAsFloat("STOP_ATR_MULT", 1.5)
	cfg.TargetATRMult = getEnvAsFloat("TARGET_ATR_MULT", 2.0)
	if cfg.ATRPeriod <= 0 {
		errs = append(errs, "ATR_PERIOD must be positive")
	}
	if cfg.StopATRMult <= 0 || cfg.TargetATRMult <= 0 {
		errs = append(errs, "STOP_ATR_MULT and TARGET_ATR_MULT must be positive")
	}

	// Runner mode
	cfg.UseTrailingStop = getEnvAsBool("USE_TRAILING_STOP", true)
	cfg.TrailActivationATR = getEnvAsFloat("TRAIL_ACTIVATION_ATR", 1.0)
	cfg.TrailDistanceATR = getEnvAsFloat("TRAIL_DISTANCE_ATR", 0.3)
	if cfg.UseTrailingStop && (cfg.TrailActivationATR <= 0 || cfg.TrailDistanceATR <= 0) {
		errs = append(errs, "TRAIL_ACTIVATION_ATR and TRAIL_DISTANCE_ATR must be positive when trailing is enabled")
	}

	// Exits
	cfg.MaxHoldBars = getEnvAsInt("MAX_HOLD_BARS", 10)
	cfg.MinGapBars = getEnvAsInt("MIN_GAP_BARS", 5)
	cfg.RSIPeriod = getEnvAsInt("RSI_PERIOD", 14)
	cfg.RSIExitHigh = getEnvAsFloat("RSI_EXIT_HIGH", 65.0)
	cfg.RSIExitLow = getEnvAsFloat("RSI_EXIT_LOW", 35.0)
	if cfg.MaxHoldBars <= 0 {
		errs = append(errs, "MAX_HOLD_BARS must be positive")
	}
	if cfg.MinGapBars < 0 {
		errs = append(errs, "MIN_GAP_BARS cannot be negative")
	}
	if cfg.RSIPeriod <= 0 {
		errs = append(errs, "RSI_PERIOD must be positive")
	}
	if cfg.RSIExitHigh <= cfg.RSIExitLow || cfg.RSIExitHigh > 100 || cfg.RSIExitLow < 0 {
		errs = append(errs, "invalid RSI exit thresholds (RSI_EXIT_HIGH must be > RSI_EXIT_LOW, between 0-100)")
	}

	// Boundary filters
	cfg.SkipFriday = getEnvAsBool("SKIP_FRIDAY", false)
	cfg.UseSessionFilter = getEnvAsBool("USE_SESSION_FILTER", false)
	sessions, err := parseSessions(getEnv("ALLOWED_SESSIONS", "europe,us,overlap"))
	if err != nil {
		errs = append(errs, err.Error())
	}
	cfg.AllowedSessions = sessions

	// Risk / sizing
	cfg.AccountSize = getEnvAsFloat("ACCOUNT_SIZE", 10000.0)
	cfg.RiskPerTradePct = getEnvAsFloat("RISK_PER_TRADE_PCT", 0.5)
	cfg.MaxLeverage = getEnvAsFloat("MAX_LEVERAGE", 3.0)
	cfg.MaxDailyTrades = getEnvAsInt("MAX_DAILY_TRADES", 10)
	if cfg.AccountSize <= 0 {
		errs = append(errs, "ACCOUNT_SIZE must be positive")
	}
	if cfg.RiskPerTradePct <= 0 || cfg.RiskPerTradePct >= 100 {
		errs = append(errs, "RISK_PER_TRADE_PCT must be between 0 and 100 (exclusive)")
	}
	if cfg.MaxLeverage <= 0 {
		errs = append(errs, "MAX_LEVERAGE must be positive")
	}
	if cfg.MaxDailyTrades < 0 {
		errs = append(errs, "MAX_DAILY_TRADES cannot be negative")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/srbounce.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	// Connection settings
	reconnectDelaySeconds := getEnvAsInt("RECONNECT_DELAY_SECONDS", 5)
	if reconnectDelaySeconds <= 0 {
		errs = append(errs, "RECONNECT_DELAY_SECONDS must be positive")
	}
	cfg.ReconnectDelay = time.Duration(reconnectDelaySeconds) * time.Second
	cfg.MaxReconnectAttempts = getEnvAsInt("MAX_RECONNECT_ATTEMPTS", 10)
	if cfg.MaxReconnectAttempts < 0 {
		errs = append(errs, "MAX_RECONNECT_ATTEMPTS cannot be negative")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// BacktestConfig assembles the validated parameters into the per-run config
// consumed by the engine.
func (c *Config) BacktestConfig() backtesting.Config {
	return backtesting.Config{
		Symbol: c.Symbol,
		Indicators: indicators.Config{
			ATRPeriod:         c.ATRPeriod,
			RSIPeriod:         c.RSIPeriod,
			SRLookback:        c.SRLookback,
			TrendLookback:     c.TrendLookback,
			TrendDeadbandPct:  c.TrendDeadbandPct,
			UseRoundNumberSR:  c.UseRoundNumberSR,
			RoundNumberWeight: c.RoundNumberWeight,
			Asset:             c.Asset,
		},
		Signals: signals.Config{
			SRTolerancePct:   c.SRTolerancePct,
			UseTrendFilter:   c.UseTrendFilter,
			UseCTFilter:      c.UseCTFilter,
			CTBars:           c.CTBars,
			MinGapBars:       c.MinGapBars,
			SkipFriday:       c.SkipFriday,
			UseSessionFilter: c.UseSessionFilter,
			AllowedSessions:  c.AllowedSessions,
		},
		Simulation: simulation.Config{
			StopATRMult:        c.StopATRMult,
			TargetATRMult:      c.TargetATRMult,
			UseTrailingStop:    c.UseTrailingStop,
			TrailActivationATR: c.TrailActivationATR,
			TrailDistanceATR:   c.TrailDistanceATR,
			RSIExitHigh:        c.RSIExitHigh,
			RSIExitLow:         c.RSIExitLow,
			MaxHoldBars:        c.MaxHoldBars,
		},
		Risk: risk.Config{
			AccountSize:     c.AccountSize,
			RiskPerTradePct: c.RiskPerTradePct,
			MaxLeverage:     c.MaxLeverage,
			MaxDailyTrades:  c.MaxDailyTrades,
		},
	}
}

func parseSessions(raw string) ([]domain.Session, error) {
	var out []domain.Session
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		switch s := domain.Session(part); s {
		case domain.SessionAsia, domain.SessionEurope, domain.SessionUS, domain.SessionOverlap:
			out = append(out, s)
		default:
			return nil, fmt.Errorf("unknown session %q in ALLOWED_SESSIONS", part)
		}
	}
	return out, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
