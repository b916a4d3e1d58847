package app

import (
	"context"
	"testing"

	"futuresBot/internal/domain"
	"futuresBot/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartup(t *testing.T) {
	t.Run("syncs time and clears orders", func(t *testing.T) {
		f := newFixture(t, domain.StrategyConservative)
		require.NoError(t, f.svc.Startup(context.Background()))
		assert.Equal(t, []string{"SetServerTime", "CancelAllOpenOrders"}, f.exchange.calls)
		assert.Len(t, f.notifier.statuses, 1)
	})

	t.Run("time sync failure is not fatal", func(t *testing.T) {
		f := newFixture(t, domain.StrategyConservative)
		f.exchange.errors["SetServerTime"] = ports.ErrTimeout
		require.NoError(t, f.svc.Startup(context.Background()))
		assert.Equal(t, 1, f.exchange.called("CancelAllOpenOrders"))
		assert.Contains(t, f.logger.warnMsgs, "Failed to synchronize server time, continuing")
	})

	t.Run("cancel failure is reported", func(t *testing.T) {
		f := newFixture(t, domain.StrategyConservative)
		f.exchange.errors["CancelAllOpenOrders"] = ports.ErrOrderCancelFailed
		err := f.svc.Startup(context.Background())
		assert.ErrorIs(t, err, ports.ErrOrderCancelFailed)
	})
}

func TestCloseAllPositions(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		wantOrder *placedOrder
	}{
		{name: "flat", amount: 0},
		{name: "long", amount: 0.015, wantOrder: &placedOrder{side: domain.Sell, quantity: "0.015", reduceOnly: true}},
		{name: "short", amount: -0.2, wantOrder: &placedOrder{side: domain.Buy, quantity: "0.200", reduceOnly: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, domain.StrategyConservative)
			f.exchange.position.Amount = tt.amount

			order, err := f.svc.CloseAllPositions(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, f.exchange.called("CancelAllOpenOrders"))
			if tt.wantOrder == nil {
				assert.Nil(t, order)
				assert.Empty(t, f.exchange.marketOrders)
				return
			}
			require.NotNil(t, order)
			require.Len(t, f.exchange.marketOrders, 1)
			assert.Equal(t, *tt.wantOrder, f.exchange.marketOrders[0])
		})
	}
}

func TestShutdown(t *testing.T) {
	t.Run("flattens position", func(t *testing.T) {
		f := newFixture(t, domain.StrategyConservative)
		f.exchange.position.Amount = 0.01
		f.svc.Shutdown(context.Background())
		require.Len(t, f.exchange.marketOrders, 1)
		assert.True(t, f.exchange.marketOrders[0].reduceOnly)
		assert.Len(t, f.notifier.statuses, 1)
	})

	t.Run("failures are only logged", func(t *testing.T) {
		f := newFixture(t, domain.StrategyConservative)
		f.exchange.errors["GetPosition"] = ports.ErrExchangeUnavailable
		f.svc.Shutdown(context.Background())
		assert.Contains(t, f.logger.errorMsgs, "Failed to close positions on shutdown")
		assert.Contains(t, f.notifier.errors, "shutdown")
	})
}
