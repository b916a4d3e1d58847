package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"futuresBot/internal/domain"
	"futuresBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Repository implements the ports.TradeRepository and ports.StatusLogRepository interfaces using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance and applies pending migrations.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trading_bot.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL lets the monitor read while the bot writes.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		err = fmt.Errorf("failed to apply database migrations: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database migrations applied")

	return &Repository{db: db, logger: cfg.Logger}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose: failed to set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose: up failed: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- TradeRepository Implementation ---

// CreateTrade saves a new trade record and returns its assigned ID.
func (r *Repository) CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error) {
	const query = `
	INSERT INTO trades (symbol, strategy, decision, price, quantity, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)`

	if trade.Timestamp.IsZero() {
		trade.Timestamp = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx, query,
		trade.Symbol, string(trade.Strategy), string(trade.Decision), trade.Price, trade.Quantity, trade.Timestamp.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade for symbol %s: %w: %w", trade.Symbol, ports.ErrInsertFailed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade %s: %w", trade.Symbol, err)
	}
	trade.ID = id
	r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": id, "symbol": trade.Symbol, "decision": trade.Decision})
	return id, nil
}

// FindRecentTrades returns trades newest first. A limit <= 0 returns all of them.
func (r *Repository) FindRecentTrades(ctx context.Context, limit int) ([]*domain.Trade, error) {
	const query = `
	SELECT id, symbol, strategy, decision, price, quantity, timestamp
	FROM trades
	ORDER BY timestamp DESC, id DESC
	LIMIT ?`

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// --- StatusLogRepository Implementation ---

// CreateStatusLog saves a per-cycle snapshot and returns its assigned ID.
func (r *Repository) CreateStatusLog(ctx context.Context, log *domain.StatusLog) (int64, error) {
	const query = `
	INSERT INTO status_logs (timestamp, strategy, signal, close_price, rsi, balance_usdt)
	VALUES (?, ?, ?, ?, ?, ?)`

	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx, query,
		log.Timestamp.UTC(), string(log.Strategy), string(log.Signal), log.ClosePrice,
		nullFloat(log.RSI), nullFloat(log.USDTBalance))
	if err != nil {
		return 0, fmt.Errorf("failed to insert status log: %w: %w", ports.ErrInsertFailed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for status log: %w", err)
	}
	log.ID = id
	r.logger.Debug(ctx, "Status log created", map[string]interface{}{"statusLogID": id, "signal": log.Signal})
	return id, nil
}

// FindLatestStatusLog returns the newest snapshot, or nil if none exists.
func (r *Repository) FindLatestStatusLog(ctx context.Context) (*domain.StatusLog, error) {
	const query = `
	SELECT id, timestamp, strategy, signal, close_price, rsi, balance_usdt
	FROM status_logs
	ORDER BY timestamp DESC, id DESC
	LIMIT 1`

	row := r.db.QueryRowContext(ctx, query)
	log, err := scanStatusLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not an error, just empty
		}
		return nil, fmt.Errorf("failed to query latest status log: %w: %w", ports.ErrQueryFailed, err)
	}
	return log, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var strategy, decision string
	err := s.Scan(&t.ID, &t.Symbol, &strategy, &decision, &t.Price, &t.Quantity, &t.Timestamp)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.Strategy = domain.StrategyName(strategy)
	t.Decision = domain.Signal(decision)
	return t, nil
}

func scanStatusLog(s scanner) (*domain.StatusLog, error) {
	l := &domain.StatusLog{}
	var strategy, signal string
	var rsi, balance sql.NullFloat64
	err := s.Scan(&l.ID, &l.Timestamp, &strategy, &signal, &l.ClosePrice, &rsi, &balance)
	if err != nil {
		return nil, err
	}
	l.Strategy = domain.StrategyName(strategy)
	l.Signal = domain.Signal(signal)
	if rsi.Valid {
		v := rsi.Float64
		l.RSI = &v
	}
	if balance.Valid {
		v := balance.Float64
		l.USDTBalance = &v
	}
	return l, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
