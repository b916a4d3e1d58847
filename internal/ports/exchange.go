package ports

import (
	"context"
	"time"

	"futuresBot/internal/domain"
)

// OrderResponse represents the essential details returned after placing an order.
type OrderResponse struct {
	OrderID       int64     `json:"order_id"`
	Symbol        string    `json:"symbol"`
	ClientOrderID string    `json:"client_order_id"`
	Price         float64   `json:"price"`
	AvgPrice      float64   `json:"avg_price"`
	StopPrice     float64   `json:"stop_price"`
	OrigQuantity  float64   `json:"orig_quantity"`
	ExecutedQty   float64   `json:"executed_qty"`
	Status        string    `json:"status"`
	Type          string    `json:"type"`
	Side          string    `json:"side"`
	ReduceOnly    bool      `json:"reduce_only"`
	Timestamp     time.Time `json:"timestamp"`
}

// OpenOrder is a resting order as reported by the exchange.
type OpenOrder struct {
	OrderID       int64
	Symbol        string
	Type          string // e.g. STOP_MARKET
	Side          domain.OrderSide
	StopPrice     float64
	OrigQuantity  float64
	ReduceOnly    bool
	ClosePosition bool
}

// IsStop reports whether the order is a protective stop.
func (o OpenOrder) IsStop() bool {
	return o.Type == OrderTypeStopMarket || o.Type == "STOP"
}

// OrderTypeStopMarket is the exchange order type used for protective stops.
const OrderTypeStopMarket = "STOP_MARKET"

// SymbolPrecision carries the decimal places accepted by the exchange for a symbol.
type SymbolPrecision struct {
	PricePrecision    int
	QuantityPrecision int
}

// ExchangeClient defines the interface for interacting with a futures exchange.
// This abstraction allows decoupling the bot logic from a specific exchange implementation.
type ExchangeClient interface {
	// SetServerTime synchronizes the client's time offset with the exchange.
	SetServerTime(ctx context.Context) error

	// GetKlines retrieves the most recent closed-and-open candles, oldest first.
	GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error)

	// GetPosition returns the live position for symbol. A flat position has Amount == 0.
	GetPosition(ctx context.Context, symbol string) (*domain.Position, error)

	// GetMarkPrice retrieves the current mark price for a given symbol.
	GetMarkPrice(ctx context.Context, symbol string) (float64, error)

	// GetAccountBalance retrieves the available balance for a specific asset (e.g., "USDT").
	GetAccountBalance(ctx context.Context, asset string) (float64, error)

	// GetSymbolPrecision returns price and quantity decimals for symbol.
	GetSymbolPrecision(ctx context.Context, symbol string) (SymbolPrecision, error)

	// PlaceMarketOrder places a market order, optionally reduce-only.
	PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string, reduceOnly bool) (*OrderResponse, error)

	// PlaceStopMarketOrder places a reduce-only stop-market order.
	PlaceStopMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string, stopPrice string) (*OrderResponse, error)

	// CancelAllOpenOrders cancels every resting order for symbol.
	CancelAllOpenOrders(ctx context.Context, symbol string) error

	// GetOpenOrders lists resting orders for symbol.
	GetOpenOrders(ctx context.Context, symbol string) ([]OpenOrder, error)
}
