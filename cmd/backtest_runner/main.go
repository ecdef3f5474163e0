package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"cryptoSRBounce/config"
	"cryptoSRBounce/internal/adapters/logger"
	"cryptoSRBounce/internal/adapters/sqlite"
	"cryptoSRBounce/internal/app"
	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/strategy/analytics"
	"cryptoSRBounce/internal/strategy/backtesting"
	"cryptoSRBounce/internal/utils"
)

func main() {
	csvIn := flag.String("csv", "", "load klines from this CSV instead of the database")
	months := flag.Int("months", 3, "how many months of stored history to backtest")
	label := flag.String("label", "baseline", "label stored with the run")
	tradesOut := flag.String("trades-csv", "", "optional path to dump simulated trades as CSV")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	// 2. Open the store and build the application service
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize SQLite repository: %v", err)
	}
	defer repo.Close()

	service, err := app.NewBacktestService(cfg, appLogger, nil, repo, repo)
	if err != nil {
		log.Fatalf("FATAL: Failed to build backtest service: %v", err)
	}

	// 3. Load klines
	var klines []*domain.Kline
	if *csvIn != "" {
		klines, err = utils.ReadKlinesFromCSV(*csvIn)
		if err != nil {
			log.Fatalf("Error loading klines from %s: %v", *csvIn, err)
		}
	} else {
		end := time.Now().UTC()
		start := end.AddDate(0, -*months, 0)
		klines, err = service.LoadKlines(ctx, start, end)
		if err != nil {
			log.Fatalf("Error loading klines: %v", err)
		}
	}
	appLogger.Info(ctx, "Loaded klines", map[string]interface{}{"count": len(klines)})

	// 4. Run and persist
	btCfg := cfg.BacktestConfig()
	runID, result, err := service.RunAndPersist(ctx, *label, klines, btCfg)
	if err != nil {
		log.Fatalf("Backtest failed: %v", err)
	}

	printReport(runID, *label, btCfg, result)

	if *tradesOut != "" && len(result.Trades) > 0 {
		if err := utils.WriteTradesToCSV(result.Trades, *tradesOut); err != nil {
			log.Fatalf("Error writing trades CSV: %v", err)
		}
		fmt.Printf("\nTrades written to %s\n", *tradesOut)
	}
}

func printReport(runID int64, label string, cfg backtesting.Config, result *backtesting.Result) {
	fmt.Printf("\n## Backtest %q (run %d, %s)\n\n", label, runID, cfg.Symbol)
	fmt.Printf("Signals emitted: %d (trend-filtered %d, session %d, day %d, gap-suppressed %d)\n",
		result.Stats.Signals.Emitted,
		result.Stats.Signals.FilteredByTrend,
		result.Stats.Signals.FilteredBySession,
		result.Stats.Signals.FilteredByDay,
		result.Stats.Signals.SuppressedByGap)
	fmt.Printf("Dropped: %d overlapping, %d over daily cap. Truncated trades: %d\n",
		result.Stats.OverlapDropped, result.Stats.DailyCapDropped, result.Stats.TruncatedTrades)

	if result.NoTrades {
		fmt.Println("\nNo trades were executed over this period.")
		return
	}

	s := result.Summary
	fmt.Printf("\nTrades: %d  WinRate: %.1f%%  ProfitFactor: %s\n",
		s.TradeCount, s.WinRate*100, formatPF(s.ProfitFactor))
	fmt.Printf("Total PnL: %.2f%% ($%.2f)  MaxDrawdown: %.2f%%  AvgHold: %s\n",
		s.TotalPnLPct, s.TotalPnLUSD, s.MaxDrawdownPct, s.AverageHold)
	fmt.Printf("AvgWin: %.2f%%  AvgLoss: %.2f%%  Streaks: %dW / %dL\n",
		s.AverageWinPct, s.AverageLossPct, s.MaxConsecutiveWins, s.MaxConsecutiveLosses)

	printBreakdown("By exit reason", result.ByExitReason)
	printBreakdown("By direction", result.ByDirection)
	printBreakdown("By entry weekday", result.ByWeekday)
}

func printBreakdown(title string, groups map[string]*analytics.Summary) {
	if len(groups) == 0 {
		return
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("\n%s:\n", title)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Group\tTrades\tWinRate\tTotalPnL%\tPF\t")
	for _, k := range keys {
		s := groups[k]
		fmt.Fprintf(w, "%s\t%d\t%.1f%%\t%.2f\t%s\t\n",
			k, s.TradeCount, s.WinRate*100, s.TotalPnLPct, formatPF(s.ProfitFactor))
	}
	w.Flush()
}

func formatPF(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", pf)
}
