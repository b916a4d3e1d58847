package ports

import (
	"context"

	"futuresBot/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving executed trades.
type TradeRepository interface {
	// CreateTrade saves a new trade record and returns its assigned ID.
	CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error)
	// FindRecentTrades returns trades newest first. A limit <= 0 returns all of them.
	FindRecentTrades(ctx context.Context, limit int) ([]*domain.Trade, error)
}

// StatusLogRepository defines the interface for per-cycle status snapshots.
type StatusLogRepository interface {
	// CreateStatusLog saves a snapshot and returns its assigned ID.
	CreateStatusLog(ctx context.Context, log *domain.StatusLog) (int64, error)
	// FindLatestStatusLog returns the newest snapshot.
	// Returns nil, nil if none has been written yet.
	FindLatestStatusLog(ctx context.Context) (*domain.StatusLog, error)
}
