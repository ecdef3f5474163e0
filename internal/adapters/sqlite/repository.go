package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"cryptoSRBounce/internal/domain"
	"cryptoSRBounce/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.KlineRepository and ports.BacktestRepository
// using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/srbounce.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency between the fetcher and runners.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite serializes writers internally; one connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite database ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS klines (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		open_time TIMESTAMP NOT NULL,
		close_time TIMESTAMP NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		PRIMARY KEY (symbol, interval, open_time)
	);

	CREATE TABLE IF NOT EXISTS backtest_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL,
		trade_count INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		profit_factor REAL NOT NULL, -- -1 encodes an unbounded (no-loss) profit factor
		total_pnl_pct REAL NOT NULL,
		total_pnl_usd REAL NOT NULL,
		max_drawdown_pct REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS backtest_trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES backtest_runs(id),
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_bar INTEGER NOT NULL,
		exit_bar INTEGER NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		exit_time TIMESTAMP NOT NULL,
		exit_reason TEXT NOT NULL,
		truncated INTEGER NOT NULL DEFAULT 0,
		atr_at_entry REAL NOT NULL,
		quantity REAL NOT NULL,
		pnl_pct REAL NOT NULL,
		pnl_usd REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_klines_lookup ON klines (symbol, interval, open_time);
	CREATE INDEX IF NOT EXISTS idx_runs_symbol ON backtest_runs (symbol, created_at);
	CREATE INDEX IF NOT EXISTS idx_trades_run ON backtest_trades (run_id, entry_time);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// --- ports.KlineRepository ---

// SaveKlines upserts a batch of klines in a single transaction.
func (r *Repository) SaveKlines(ctx context.Context, klines []*domain.Kline) error {
	if len(klines) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrDBConnection, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO klines (symbol, interval, open_time, close_time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrQueryFailed, err)
	}
	defer stmt.Close()

	for _, k := range klines {
		if _, err := stmt.ExecContext(ctx, k.Symbol, k.Interval, k.OpenTime.UTC(), k.CloseTime.UTC(),
			k.Open, k.High, k.Low, k.Close, k.Volume); err != nil {
			return fmt.Errorf("%w: insert kline at %s: %v", ports.ErrQueryFailed, k.OpenTime, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Saved klines", map[string]interface{}{"count": len(klines)})
	return nil
}

// FindRange retrieves klines ordered by open time ascending.
func (r *Repository) FindRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT symbol, interval, open_time, close_time, open, high, low, close, volume
		FROM klines
		WHERE symbol = ? AND interval = ? AND open_time >= ? AND open_time <= ?
		ORDER BY open_time ASC`,
		symbol, interval, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var klines []*domain.Kline
	for rows.Next() {
		k := &domain.Kline{}
		if err := rows.Scan(&k.Symbol, &k.Interval, &k.OpenTime, &k.CloseTime,
			&k.Open, &k.High, &k.Low, &k.Close, &k.Volume); err != nil {
			return nil, fmt.Errorf("%w: scan kline: %v", ports.ErrQueryFailed, err)
		}
		k.OpenTime = k.OpenTime.UTC()
		k.CloseTime = k.CloseTime.UTC()
		klines = append(klines, k)
	}
	return klines, rows.Err()
}

// Count returns the number of stored klines for a symbol/interval.
func (r *Repository) Count(ctx context.Context, symbol, interval string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM klines WHERE symbol = ? AND interval = ?`, symbol, interval).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ports.ErrQueryFailed, err)
	}
	return n, nil
}

// --- ports.BacktestRepository ---

// CreateRun saves a run record and returns its assigned ID.
func (r *Repository) CreateRun(ctx context.Context, run *domain.BacktestRun) (int64, error) {
	pf := run.ProfitFactor
	if math.IsInf(pf, 1) {
		pf = -1 // SQLite REAL cannot hold +Inf; -1 is otherwise impossible
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO backtest_runs
		(label, symbol, interval, start_time, end_time, created_at, trade_count, win_rate, profit_factor, total_pnl_pct, total_pnl_usd, max_drawdown_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Label, run.Symbol, run.Interval, run.StartTime.UTC(), run.EndTime.UTC(), run.CreatedAt.UTC(),
		run.TradeCount, run.WinRate, pf, run.TotalPnLPct, run.TotalPnLUSD, run.MaxDrawdownPct)
	if err != nil {
		return 0, fmt.Errorf("%w: insert run: %v", ports.ErrQueryFailed, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: run id: %v", ports.ErrQueryFailed, err)
	}
	return id, nil
}

// CreateTrade saves a trade belonging to a run and returns its assigned ID.
func (r *Repository) CreateTrade(ctx context.Context, runID int64, t *domain.Trade) (int64, error) {
	truncated := 0
	if t.Truncated {
		truncated = 1
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO backtest_trades
		(run_id, symbol, direction, entry_bar, exit_bar, entry_price, exit_price, entry_time, exit_time, exit_reason, truncated, atr_at_entry, quantity, pnl_pct, pnl_usd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, t.Symbol, string(t.Direction), t.EntryBarIndex, t.ExitBarIndex, t.EntryPrice, t.ExitPrice,
		t.EntryTime.UTC(), t.ExitTime.UTC(), string(t.ExitReason), truncated, t.ATRAtEntry, t.Quantity, t.PnLPct, t.PnLUSD)
	if err != nil {
		return 0, fmt.Errorf("%w: insert trade: %v", ports.ErrQueryFailed, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: trade id: %v", ports.ErrQueryFailed, err)
	}
	return id, nil
}

// FindRuns retrieves the most recent runs for a symbol, newest first.
func (r *Repository) FindRuns(ctx context.Context, symbol string, limit int) ([]*domain.BacktestRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, symbol, interval, start_time, end_time, created_at, trade_count, win_rate, profit_factor, total_pnl_pct, total_pnl_usd, max_drawdown_pct
		FROM backtest_runs WHERE symbol = ? ORDER BY created_at DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var runs []*domain.BacktestRun
	for rows.Next() {
		run := &domain.BacktestRun{}
		if err := rows.Scan(&run.ID, &run.Label, &run.Symbol, &run.Interval, &run.StartTime, &run.EndTime,
			&run.CreatedAt, &run.TradeCount, &run.WinRate, &run.ProfitFactor,
			&run.TotalPnLPct, &run.TotalPnLUSD, &run.MaxDrawdownPct); err != nil {
			return nil, fmt.Errorf("%w: scan run: %v", ports.ErrQueryFailed, err)
		}
		if run.ProfitFactor == -1 {
			run.ProfitFactor = math.Inf(1)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindTradesByRun retrieves all trades for a run, ordered by entry time.
func (r *Repository) FindTradesByRun(ctx context.Context, runID int64) ([]*domain.Trade, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, symbol, direction, entry_bar, exit_bar, entry_price, exit_price, entry_time, exit_time, exit_reason, truncated, atr_at_entry, quantity, pnl_pct, pnl_usd
		FROM backtest_trades WHERE run_id = ? ORDER BY entry_time ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		t := &domain.Trade{}
		var direction, reason string
		var truncated int
		if err := rows.Scan(&t.ID, &t.Symbol, &direction, &t.EntryBarIndex, &t.ExitBarIndex,
			&t.EntryPrice, &t.ExitPrice, &t.EntryTime, &t.ExitTime, &reason, &truncated,
			&t.ATRAtEntry, &t.Quantity, &t.PnLPct, &t.PnLUSD); err != nil {
			return nil, fmt.Errorf("%w: scan trade: %v", ports.ErrQueryFailed, err)
		}
		t.Direction = domain.Direction(direction)
		t.ExitReason = domain.ExitReason(reason)
		t.Truncated = truncated != 0
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
