package domain

// Direction represents the side of a simulated trade (long or short).
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// TrendDirection classifies the recent price trend.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// ExitReason indicates which rule closed a simulated trade.
type ExitReason string

const (
	ExitStop         ExitReason = "stop"          // Fixed ATR-based stop hit
	ExitTarget       ExitReason = "target"        // Fixed ATR-based target hit
	ExitTrailingStop ExitReason = "trailing_stop" // Ratcheting trail hit
	ExitRSI          ExitReason = "rsi_exit"      // RSI extreme reached
	ExitTime         ExitReason = "time_exit"     // Max hold bars reached (or data ran out)
)

// Session names a UTC trading session window.
type Session string

const (
	SessionAsia    Session = "asia"    // 00:00-08:00 UTC
	SessionEurope  Session = "europe"  // 08:00-16:00 UTC
	SessionUS      Session = "us"      // 14:00-22:00 UTC
	SessionOverlap Session = "overlap" // 14:00-16:00 UTC (EU/US overlap)
)

// SessionForHour maps a UTC hour to its session. The EU/US overlap window
// takes precedence over the plain europe and us windows.
func SessionForHour(hour int) Session {
	switch {
	case hour >= 14 && hour < 16:
		return SessionOverlap
	case hour >= 8 && hour < 16:
		return SessionEurope
	case hour >= 16 && hour < 22:
		return SessionUS
	default:
		return SessionAsia
	}
}
