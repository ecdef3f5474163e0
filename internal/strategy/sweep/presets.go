package sweep

import "cryptoSRBounce/internal/strategy/backtesting"

// Presets returns the documented experiment grid: trailing-stop variations,
// stop/target ratios, S/R lookbacks, and the round-number blend toggle, all
// against a no-trail baseline.
func Presets() []Variant {
	trail := func(activation, distance float64) func(cfg *backtesting.Config) {
		return func(cfg *backtesting.Config) {
			cfg.Simulation.UseTrailingStop = true
			cfg.Simulation.TrailActivationATR = activation
			cfg.Simulation.TrailDistanceATR = distance
		}
	}
	rr := func(stop, target float64) func(cfg *backtesting.Config) {
		return func(cfg *backtesting.Config) {
			cfg.Simulation.UseTrailingStop = false
			cfg.Simulation.StopATRMult = stop
			cfg.Simulation.TargetATRMult = target
		}
	}

	return []Variant{
		{Label: "No Trail (baseline)", Apply: func(cfg *backtesting.Config) {
			cfg.Simulation.UseTrailingStop = false
		}},

		{Label: "Trail 0.5/0.2", Apply: trail(0.5, 0.2)},
		{Label: "Trail 1.0/0.3", Apply: trail(1.0, 0.3)},
		{Label: "Trail 1.0/0.5", Apply: trail(1.0, 0.5)},
		{Label: "Trail 1.5/0.5", Apply: trail(1.5, 0.5)},
		{Label: "Trail 1.5/0.75", Apply: trail(1.5, 0.75)},
		{Label: "Trail 2.0/0.5 (at target)", Apply: trail(2.0, 0.5)},

		{Label: "1:2 R:R", Apply: rr(1.0, 2.0)},
		{Label: "1:3 R:R", Apply: rr(1.0, 3.0)},
		{Label: "1.5:3 R:R", Apply: rr(1.5, 3.0)},
		{Label: "2:4 R:R", Apply: rr(2.0, 4.0)},

		{Label: "12-bar S/R", Apply: func(cfg *backtesting.Config) {
			cfg.Simulation.UseTrailingStop = false
			cfg.Indicators.SRLookback = 12
		}},
		{Label: "48-bar S/R", Apply: func(cfg *backtesting.Config) {
			cfg.Simulation.UseTrailingStop = false
			cfg.Indicators.SRLookback = 48
		}},

		{Label: "No round #s", Apply: func(cfg *backtesting.Config) {
			cfg.Simulation.UseTrailingStop = false
			cfg.Indicators.UseRoundNumberSR = false
		}},
	}
}
