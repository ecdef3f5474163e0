package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"cryptoSRBounce/config"
	"cryptoSRBounce/internal/adapters/logger"
	"cryptoSRBounce/internal/adapters/sqlite"
	"cryptoSRBounce/internal/app"
	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/strategy/backtesting"
	"cryptoSRBounce/internal/strategy/sweep"
	"cryptoSRBounce/internal/utils"
)

func main() {
	csvIn := flag.String("csv", "", "load klines from this CSV instead of the database")
	months := flag.Int("months", 3, "how many months of stored history to sweep over")
	balanced := flag.Bool("balanced", false, "rank by the balanced score instead of raw PnL")
	grid := flag.Bool("grid", false, "sweep a stop/target multiplier grid instead of the presets")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	var klines []*domain.Kline
	if *csvIn != "" {
		klines, err = utils.ReadKlinesFromCSV(*csvIn)
		if err != nil {
			log.Fatalf("Error loading klines from %s: %v", *csvIn, err)
		}
	} else {
		repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize SQLite repository: %v", err)
		}
		defer repo.Close()

		service, err := app.NewBacktestService(cfg, appLogger, nil, repo, repo)
		if err != nil {
			log.Fatalf("FATAL: Failed to build backtest service: %v", err)
		}
		end := time.Now().UTC()
		start := end.AddDate(0, -*months, 0)
		klines, err = service.LoadKlines(ctx, start, end)
		if err != nil {
			log.Fatalf("Error loading klines: %v", err)
		}
	}
	appLogger.Info(ctx, "Loaded klines", map[string]interface{}{"count": len(klines)})

	variants := sweep.Presets()
	if *grid {
		variants = stopTargetGrid()
	}

	score := sweep.DefaultScore
	if *balanced {
		score = sweep.BalancedScore
	}

	fmt.Printf("Sweeping %d variants over %d bars...\n\n", len(variants), len(klines))
	results := sweep.Run(ctx, klines, cfg.BacktestConfig(), variants, score)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Variant\tTrades\tWinRate\tTotalPnL%\tMaxDD%\tPF\tScore\t")
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "%s\tERROR: %v\t\t\t\t\t\t\n", r.Label, r.Err)
		case r.NoTrades:
			fmt.Fprintf(w, "%s\t0\t-\t-\t-\t-\t-\t\n", r.Label)
		default:
			s := r.Summary
			pf := fmt.Sprintf("%.2f", s.ProfitFactor)
			if math.IsInf(s.ProfitFactor, 1) {
				pf = "inf"
			}
			fmt.Fprintf(w, "%s\t%d\t%.1f%%\t%.2f\t%.2f\t%s\t%.2f\t\n",
				r.Label, s.TradeCount, s.WinRate*100, s.TotalPnLPct, s.MaxDrawdownPct, pf, r.Score)
		}
	}
	w.Flush()
}

// stopTargetGrid expands a small stop/target multiplier cross-product. The
// label encodes both values so the report rows stay identifiable.
func stopTargetGrid() []sweep.Variant {
	ranges := []sweep.ParameterRange{
		{Name: "stop", Min: 1.0, Max: 2.0, Step: 0.5},
		{Name: "target", Min: 1.5, Max: 3.0, Step: 0.5},
	}
	return sweep.GridVariants(ranges,
		func(values map[string]float64) string {
			return fmt.Sprintf("stop=%.1f target=%.1f", values["stop"], values["target"])
		},
		func(cfg *backtesting.Config, values map[string]float64) {
			cfg.Simulation.StopATRMult = values["stop"]
			cfg.Simulation.TargetATRMult = values["target"]
		})
}
