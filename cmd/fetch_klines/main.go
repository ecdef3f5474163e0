package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"cryptoSRBounce/config"
	"cryptoSRBounce/internal/adapters/binanceclient"
	"cryptoSRBounce/internal/adapters/logger"
	"cryptoSRBounce/internal/adapters/sqlite"
	"cryptoSRBounce/internal/utils"
)

func main() {
	months := flag.Int("months", 3, "how many months of history to fetch")
	csvOut := flag.String("csv", "", "optional CSV output path (in addition to the database)")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Exchange Client (Binance Adapter)
	client, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
		RetryDelay: cfg.ReconnectDelay,
		MaxRetries: cfg.MaxReconnectAttempts,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	// 4. Initialize the kline store
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize SQLite repository: %v", err)
	}
	defer repo.Close()

	end := time.Now().UTC()
	start := end.AddDate(0, -*months, 0)

	fmt.Printf("Fetching %s %s klines from %s to %s...\n",
		cfg.Symbol, cfg.Interval, start.Format("2006-01-02"), end.Format("2006-01-02"))
	klines, err := client.GetKlinesRange(context.Background(), cfg.Symbol, cfg.Interval, start, end)
	if err != nil {
		appLogger.Error(context.Background(), err, "Error fetching klines")
		log.Fatalf("Error fetching klines: %v", err)
	}
	appLogger.Info(context.Background(), "Fetched klines", map[string]interface{}{"count": len(klines)})

	if err := repo.SaveKlines(context.Background(), klines); err != nil {
		appLogger.Error(context.Background(), err, "Error saving klines")
		log.Fatalf("Error saving klines: %v", err)
	}
	appLogger.Info(context.Background(), "Saved klines to database", map[string]interface{}{"path": cfg.DBPath})

	if *csvOut != "" {
		if err := utils.WriteKlinesToCSV(klines, *csvOut); err != nil {
			appLogger.Error(context.Background(), err, "Error writing CSV")
			log.Fatalf("Error writing CSV: %v", err)
		}
		appLogger.Info(context.Background(), "Saved klines to CSV", map[string]interface{}{"filename": *csvOut})
	}
}
