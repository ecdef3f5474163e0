package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"cryptoSRBounce/config"
	"cryptoSRBounce/internal/adapters/logger"
	"cryptoSRBounce/internal/adapters/sqlite"
	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/ports"
	"cryptoSRBounce/internal/strategy/analytics"
	"cryptoSRBounce/internal/utils"
)

func main() {
	limit := flag.Int("limit", 20, "how many stored runs to compare")
	tradesDir := flag.String("trades-dir", "", "also analyze trade CSV dumps in this directory")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize SQLite repository: %v", err)
	}
	defer repo.Close()

	runs, err := repo.FindRuns(ctx, cfg.Symbol, *limit)
	if err != nil {
		log.Fatalf("Error loading runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Printf("No stored runs for %s. Run the backtest runner first.\n", cfg.Symbol)
	} else {
		printRunComparison(ctx, repo, runs)
	}

	if *tradesDir != "" {
		analyzeTradeDumps(*tradesDir)
	}
}

func printRunComparison(ctx context.Context, repo *sqlite.Repository, runs []*domain.BacktestRun) {
	fmt.Printf("## Stored runs (%d)\n\n", len(runs))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "ID\tLabel\tCreated\tTrades\tWinRate\tTotalPnL%\tPnL$\tMaxDD%\tPF\t")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.1f%%\t%.2f\t%.2f\t%.2f\t%s\t\n",
			run.ID, run.Label, run.CreatedAt.Format("2006-01-02 15:04"),
			run.TradeCount, run.WinRate*100, run.TotalPnLPct, run.TotalPnLUSD,
			run.MaxDrawdownPct, formatPF(run.ProfitFactor))
	}
	w.Flush()

	// Exit-reason breakdown for the newest run with trades.
	for _, run := range runs {
		if run.TradeCount == 0 {
			continue
		}
		trades, err := repo.FindTradesByRun(ctx, run.ID)
		if err != nil {
			log.Printf("Error loading trades for run %d: %v", run.ID, err)
			return
		}
		fmt.Printf("\n## Exit reasons for run %d (%q)\n\n", run.ID, run.Label)
		printGroups(analyticsByExitReason(trades))
		return
	}
}

func analyzeTradeDumps(dir string) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		log.Fatalf("Error scanning %s: %v", dir, err)
	}
	if len(files) == 0 {
		fmt.Printf("\nNo trade CSV files found in %s.\n", dir)
		return
	}
	sort.Strings(files)

	fmt.Printf("\n## Trade dumps in %s\n\n", dir)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "File\tTrades\tWinRate\tTotalPnL%\tMaxDD%\tPF\t")
	for _, file := range files {
		trades, err := utils.ReadTradesFromCSV(file)
		if err != nil {
			log.Printf("Error reading trades from %s: %v", file, err)
			continue
		}
		summary, err := analytics.Aggregate(trades)
		if err != nil {
			if errors.Is(err, ports.ErrNoTrades) {
				fmt.Fprintf(w, "%s\t0\t-\t-\t-\t-\t\n", filepath.Base(file))
				continue
			}
			log.Printf("Error aggregating %s: %v", file, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%.1f%%\t%.2f\t%.2f\t%s\t\n",
			filepath.Base(file), summary.TradeCount, summary.WinRate*100,
			summary.TotalPnLPct, summary.MaxDrawdownPct, formatPF(summary.ProfitFactor))
	}
	w.Flush()
}

func analyticsByExitReason(trades []*domain.Trade) map[string]*analytics.Summary {
	groups, err := analytics.AggregateBy(trades, analytics.ByExitReason)
	if err != nil {
		return nil
	}
	return groups
}

func printGroups(groups map[string]*analytics.Summary) {
	if len(groups) == 0 {
		return
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Reason\tTrades\tWinRate\tTotalPnL%\tPF\t")
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
