package app

import (
	"context"
	"fmt"
	"time"

	"cryptoSRBounce/config"
	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/ports"
	"cryptoSRBounce/internal/strategy/backtesting"
)

// BacktestService orchestrates data acquisition, backtest execution and
// result persistence.
type BacktestService struct {
	cfg          *config.Config
	logger       ports.Logger
	market       ports.MarketDataClient
	klineRepo    ports.KlineRepository
	backtestRepo ports.BacktestRepository
}

// NewBacktestService creates a new application service instance. The market
// client may be nil when operating purely on stored or CSV data.
func NewBacktestService(
	cfg *config.Config,
	logger ports.Logger,
	market ports.MarketDataClient,
	klineRepo ports.KlineRepository,
	backtestRepo ports.BacktestRepository,
) (*BacktestService, error) {
	if cfg == nil || logger == nil || klineRepo == nil || backtestRepo == nil {
		return nil, fmt.Errorf("missing required dependencies for BacktestService")
	}
	return &BacktestService{
		cfg:          cfg,
		logger:       logger,
		market:       market,
		klineRepo:    klineRepo,
		backtestRepo: backtestRepo,
	}, nil
}

// LoadKlines returns klines for the configured symbol and interval. Stored
// data is used when it covers the requested range; otherwise the exchange is
// queried and the result cached in the repository for later runs.
func (s *BacktestService) LoadKlines(ctx context.Context, start, end time.Time) ([]*domain.Kline, error) {
	klines, err := s.klineRepo.FindRange(ctx, s.cfg.Symbol, s.cfg.Interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading stored klines: %w", err)
	}
	if len(klines) > 0 {
		s.logger.Info(ctx, "Loaded klines from store", map[string]interface{}{
			"symbol":   s.cfg.Symbol,
			"interval": s.cfg.Interval,
			"count":    len(klines),
		})
		return klines, nil
	}

	if s.market == nil {
		return nil, fmt.Errorf("no stored klines for %s %s and no market client configured",
			s.cfg.Symbol, s.cfg.Interval)
	}

	s.logger.Info(ctx, "No stored klines, fetching from exchange", map[string]interface{}{
		"symbol": s.cfg.Symbol,
		"start":  start,
		"end":    end,
	})
	klines, err = s.market.GetKlinesRange(ctx, s.cfg.Symbol, s.cfg.Interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching klines from exchange: %w", err)
	}
	if err := s.klineRepo.SaveKlines(ctx, klines); err != nil {
		// Caching is best-effort; the fetched data is still usable.
		s.logger.Warn(ctx, "Failed to cache fetched klines", map[string]interface{}{"error": err.Error()})
	}
	return klines, nil
}

// RunAndPersist executes a backtest over the given klines and stores the run
// summary and its trades. The stored run ID is returned; a run that produced
// no trades is persisted with zeroed metrics so the attempt is still on
// record.
func (s *BacktestService) RunAndPersist(ctx context.Context, label string, klines []*domain.Kline, btCfg backtesting.Config) (int64, *backtesting.Result, error) {
	result, err := backtesting.Run(ctx, klines, btCfg)
	if err != nil {
		return 0, nil, fmt.Errorf("backtest failed: %w", err)
	}

	run := &domain.BacktestRun{
		Label:     label,
		Symbol:    btCfg.Symbol,
		Interval:  s.cfg.Interval,
		StartTime: klines[0].OpenTime,
		EndTime:   klines[len(klines)-1].CloseTime,
		CreatedAt: time.Now().UTC(),
	}
	if !result.NoTrades {
		run.TradeCount = result.Summary.TradeCount
		run.WinRate = result.Summary.WinRate
		run.ProfitFactor = result.Summary.ProfitFactor
		run.TotalPnLPct = result.Summary.TotalPnLPct
		run.TotalPnLUSD = result.Summary.TotalPnLUSD
		run.MaxDrawdownPct = result.Summary.MaxDrawdownPct
	}

	runID, err := s.backtestRepo.CreateRun(ctx, run)
	if err != nil {
		return 0, nil, fmt.Errorf("persisting run: %w", err)
	}
	for _, t := range result.Trades {
		if _, err := s.backtestRepo.CreateTrade(ctx, runID, t); err != nil {
			return 0, nil, fmt.Errorf("persisting trade at bar %d: %w", t.EntryBarIndex, err)
		}
	}

	s.logger.Info(ctx, "Backtest run persisted", map[string]interface{}{
		"runID":  runID,
		"label":  label,
		"trades": len(result.Trades),
	})
	return runID, result, nil
}
