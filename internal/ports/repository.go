package ports

import (
	"context"
	"time"

	"cryptoSRBounce/internal/domain"
)

// KlineRepository defines the interface for storing and retrieving historical klines.
type KlineRepository interface {
	// SaveKlines upserts a batch of klines. Duplicate (symbol, interval, open_time)
	// rows are replaced rather than duplicated.
	SaveKlines(ctx context.Context, klines []*domain.Kline) error
	// FindRange retrieves klines for a symbol/interval between start and end,
	// ordered by open time ascending.
	FindRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error)
	// Count returns the number of stored klines for a symbol/interval.
	Count(ctx context.Context, symbol, interval string) (int, error)
}

// BacktestRepository defines the interface for persisting backtest runs and their trades.
type BacktestRepository interface {
	// CreateRun saves a run record and returns its assigned ID.
	CreateRun(ctx context.Context, run *domain.BacktestRun) (int64, error)
	// CreateTrade saves a trade belonging to a run and returns its assigned ID.
	CreateTrade(ctx context.Context, runID int64, trade *domain.Trade) (int64, error)
	// FindRuns retrieves the most recent runs for a symbol, up to a limit.
	FindRuns(ctx context.Context, symbol string, limit int) ([]*domain.BacktestRun, error)
	// FindTradesByRun retrieves all trades for a run, ordered by entry time.
	FindTradesByRun(ctx context.Context, runID int64) ([]*domain.Trade, error)
}
