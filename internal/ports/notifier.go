package ports

import (
	"context"

	"futuresBot/internal/domain"
)

// Notifier pushes operator-facing alerts. Implementations must not block the
// trading cycle on delivery failures.
type Notifier interface {
	NotifyTrade(ctx context.Context, trade *domain.Trade, order *OrderResponse)
	NotifyError(ctx context.Context, operation string, err error)
	NotifyStatus(ctx context.Context, message string)
}

// StatusMirror copies status snapshots to an external time-series store.
type StatusMirror interface {
	WriteStatus(ctx context.Context, symbol string, log *domain.StatusLog) error
}
