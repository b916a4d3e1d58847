package app

import (
	"context"
	"testing"

	"futuresBot/internal/domain"
	"futuresBot/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateTrailingStop_Disabled(t *testing.T) {
	f := newFixture(t, domain.StrategyConservative)
	f.cfg.TrailingStopEnabled = false

	res, err := f.svc.UpdateTrailingStop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TrailDisabled, res.Status)
	assert.Empty(t, f.exchange.calls)
}

func TestUpdateTrailingStop_NoPosition(t *testing.T) {
	f := newFixture(t, domain.StrategyConservative)

	res, err := f.svc.UpdateTrailingStop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TrailNoPosition, res.Status)
	assert.Equal(t, []string{"GetPosition"}, f.exchange.calls)
}

func TestUpdateTrailingStop(t *testing.T) {
	tests := []struct {
		name        string
		amount      float64
		entry       float64
		mark        float64
		openOrders  []ports.OpenOrder
		wantStatus  string
		wantStop    string
		wantSide    domain.OrderSide
		wantQty     string
		wantProfit  float64
		wantCancels int
	}{
		{
			name: "long below threshold", amount: 0.01, entry: 30000, mark: 30120,
			wantStatus: TrailProfitNotReached, wantProfit: 0.004,
		},
		{
			name: "long armed without stop", amount: 0.01, entry: 30000, mark: 30180,
			wantStatus: TrailUpdated, wantStop: "30030.00", wantSide: domain.Sell, wantQty: "0.010", wantProfit: 0.006, wantCancels: 1,
		},
		{
			name: "long with looser stop is tightened", amount: 0.01, entry: 30000, mark: 30300,
			openOrders: []ports.OpenOrder{{Type: ports.OrderTypeStopMarket, Side: domain.Sell, StopPrice: 29400, ReduceOnly: true}},
			wantStatus: TrailUpdated, wantStop: "30030.00", wantSide: domain.Sell, wantQty: "0.010", wantProfit: 0.01, wantCancels: 1,
		},
		{
			name: "long at exact threshold tightens worse stop", amount: 0.01, entry: 30000, mark: 30150,
			openOrders: []ports.OpenOrder{{Type: ports.OrderTypeStopMarket, Side: domain.Sell, StopPrice: 29400, ReduceOnly: true}},
			wantStatus: TrailUpdated, wantStop: "30030.00", wantSide: domain.Sell, wantQty: "0.010", wantProfit: 0.005, wantCancels: 1,
		},
		{
			name: "short at exact threshold tightens worse stop", amount: -0.02, entry: 30150, mark: 30000,
			openOrders: []ports.OpenOrder{{Type: ports.OrderTypeStopMarket, Side: domain.Buy, StopPrice: 30753, ReduceOnly: true}},
			wantStatus: TrailUpdated, wantStop: "30119.85", wantSide: domain.Buy, wantQty: "0.020", wantProfit: 0.005, wantCancels: 1,
		},
		{
			name: "long with better stop is left alone", amount: 0.01, entry: 30000, mark: 30300,
			openOrders: []ports.OpenOrder{{Type: ports.OrderTypeStopMarket, Side: domain.Sell, StopPrice: 30100, ReduceOnly: true}},
			wantStatus: TrailIgnored, wantProfit: 0.01,
		},
		{
			name: "long with equal stop is left alone", amount: 0.01, entry: 30000, mark: 30300,
			openOrders: []ports.OpenOrder{{Type: ports.OrderTypeStopMarket, Side: domain.Sell, StopPrice: 30030, ReduceOnly: true}},
			wantStatus: TrailIgnored, wantProfit: 0.01,
		},
		{
			name: "non-stop orders are not considered", amount: 0.01, entry: 30000, mark: 30300,
			openOrders: []ports.OpenOrder{{Type: "LIMIT", Side: domain.Sell, StopPrice: 0}},
			wantStatus: TrailUpdated, wantStop: "30030.00", wantSide: domain.Sell, wantQty: "0.010", wantProfit: 0.01, wantCancels: 1,
		},
		{
			name: "short armed without stop", amount: -0.02, entry: 30000, mark: 29800,
			wantStatus: TrailUpdated, wantStop: "29970.00", wantSide: domain.Buy, wantQty: "0.020", wantProfit: 30000.0/29800 - 1, wantCancels: 1,
		},
		{
			name: "short with better stop is left alone", amount: -0.02, entry: 30000, mark: 29700,
			openOrders: []ports.OpenOrder{{Type: ports.OrderTypeStopMarket, Side: domain.Buy, StopPrice: 29900, ReduceOnly: true}},
			wantStatus: TrailIgnored, wantProfit: 30000.0/29700 - 1,
		},
		{
			name: "short losing", amount: -0.02, entry: 30000, mark: 30100,
			wantStatus: TrailProfitNotReached, wantProfit: 30000.0/30100 - 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, domain.StrategyConservative)
			f.exchange.position.Amount = tt.amount
			f.exchange.position.EntryPrice = tt.entry
			f.exchange.markPrice = tt.mark
			f.exchange.openOrders = tt.openOrders

			res, err := f.svc.UpdateTrailingStop(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.InDelta(t, tt.wantProfit, res.Profit, 1e-9)
			assert.Equal(t, tt.wantCancels, f.exchange.called("CancelAllOpenOrders"))

			if tt.wantStatus != TrailUpdated {
				assert.Empty(t, f.exchange.stopOrders)
				return
			}
			require.Len(t, f.exchange.stopOrders, 1)
			stop := f.exchange.stopOrders[0]
			assert.Equal(t, tt.wantStop, stop.stopPrice)
			assert.Equal(t, tt.wantSide, stop.side)
			assert.Equal(t, tt.wantQty, stop.quantity)
			assert.NotNil(t, res.Order)
		})
	}
}

func TestUpdateTrailingStop_StopFailureAlerts(t *testing.T) {
	f := newFixture(t, domain.StrategyConservative)
	f.exchange.position.Amount = 0.01
	f.exchange.position.EntryPrice = 30000
	f.exchange.markPrice = 30300
	f.exchange.errors["PlaceStopMarketOrder"] = ports.ErrOrderPlacementFailed

	res, err := f.svc.UpdateTrailingStop(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ports.ErrOrderPlacementFailed)
	assert.Contains(t, f.notifier.errors, "trailing stop")
}

func TestUpdateTrailingStop_NeverLoosens(t *testing.T) {
	// Once a breakeven stop exists, repeated checks at any profit leave it in place.
	f := newFixture(t, domain.StrategyConservative)
	f.exchange.position.Amount = 0.01
	f.exchange.position.EntryPrice = 30000
	f.exchange.openOrders = []ports.OpenOrder{{Type: ports.OrderTypeStopMarket, Side: domain.Sell, StopPrice: 30030, ReduceOnly: true}}

	for _, mark := range []float64{30150, 30500, 31000, 30200} {
		f.exchange.markPrice = mark
		res, err := f.svc.UpdateTrailingStop(context.Background())
		require.NoError(t, err)
		assert.Equal(t, TrailIgnored, res.Status)
	}
	assert.Empty(t, f.exchange.stopOrders)
	assert.Zero(t, f.exchange.called("CancelAllOpenOrders"))
}
