package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"futuresBot/internal/domain"
	"futuresBot/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	clientOrderIDPrefix = "fb-"
)

// Client implements the ports.ExchangeClient interface using the go-binance library.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
	limiter       *rate.Limiter

	precisionMu    sync.RWMutex
	precisionCache map[string]ports.SymbolPrecision
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey            string
	SecretKey         string
	UseTestnet        bool
	Logger            ports.Logger
	RequestTimeout    time.Duration // Per-request HTTP timeout (e.g., 10 * time.Second)
	RequestsPerSecond float64       // Client-side throttle
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Warn(context.Background(), "APIKey or SecretKey is empty. Client will only work for public endpoints.")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	// Set BaseURL directly instead of using global futures.UseTestnet
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
		cfg.Logger.Info(context.Background(), "Binance client configured for Testnet", map[string]interface{}{"baseURL": client.BaseURL})
	} else {
		client.BaseURL = baseURLProduction
		cfg.Logger.Info(context.Background(), "Binance client configured for Production", map[string]interface{}{"baseURL": client.BaseURL})
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	// futures.NewClient shares http.DefaultClient; never mutate it.
	client.HTTPClient = &http.Client{Timeout: timeout}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	return &Client{
		futuresClient:  client,
		logger:         cfg.Logger,
		limiter:        rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		precisionCache: make(map[string]ports.SymbolPrecision),
	}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		// Map specific Binance error codes to custom errors
		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp for this request is outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022: // Signature for this request is not valid
			mappedErr = ports.ErrAuthenticationFailed
		case -1121: // Invalid symbol
			mappedErr = ports.ErrSymbolNotFound
		case -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1125, -1127, -1128, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		case -2010: // New order rejected
			mappedErr = ports.ErrOrderPlacementFailed
		case -2011: // Cancel order rejected
			mappedErr = ports.ErrOrderCancelFailed
		case -2013: // Order does not exist
			mappedErr = ports.ErrOrderNotFound
		case -2014, -2015: // API-key format invalid / invalid key, IP or permissions
			mappedErr = ports.ErrInvalidAPIKeys
		case -2019: // Margin is insufficient
			mappedErr = ports.ErrInsufficientFunds
		case -2021: // Order would immediately trigger
			mappedErr = ports.ErrOrderPlacementFailed
		case -2022: // ReduceOnly Order is rejected
			mappedErr = ports.ErrOrderPlacementFailed
		case -3005, -3041: // Insufficient balance / position
			mappedErr = ports.ErrInsufficientFunds
		case -4003, -4014: // Qty or price not within permissible range
			mappedErr = ports.ErrInvalidRequest
		case -4044: // Position not found
			mappedErr = ports.ErrPositionNotFound
		case -4047: // Exceeded the maximum allowable position at current leverage.
			mappedErr = ports.ErrInsufficientFunds
		default:
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "no such host") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		// Default for other errors (e.g., parsing errors within the adapter)
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// wait blocks on the client-side rate limiter.
func (c *Client) wait(ctx context.Context, op string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return c.handleError(ctx, err, op)
	}
	return nil
}

// SetServerTime synchronizes the client's time with the server's time.
func (c *Client) SetServerTime(ctx context.Context) error {
	op := "SetServerTime"
	if err := c.wait(ctx, op); err != nil {
		return err
	}
	offset, err := c.futuresClient.NewSetServerTimeService().Do(ctx)
	if err != nil {
		return c.handleError(ctx, err, op)
	}
	c.logger.Debug(ctx, op+" successful", map[string]interface{}{"offsetMs": offset})
	return nil
}

// GetKlines retrieves the latest candles for the given symbol, oldest first.
func (c *Client) GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error) {
	op := "GetKlines"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	binanceKlines, err := c.futuresClient.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	domainKlines := make([]*domain.Kline, 0, len(binanceKlines))
	for _, bk := range binanceKlines {
		dk, err := translateBinanceKline(bk, symbol, interval)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("failed to translate kline: %w", err), op)
		}
		domainKlines = append(domainKlines, dk)
	}
	c.logger.Debug(ctx, op+" successful", map[string]interface{}{"symbol": symbol, "interval": interval, "count": len(domainKlines)})
	return domainKlines, nil
}

// GetPosition reads the one-way position for symbol from the account endpoint,
// which also carries the last update time. A missing entry is a flat position.
func (c *Client) GetPosition(ctx context.Context, symbol string) (*domain.Position, error) {
	op := "GetPosition"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	account, err := c.futuresClient.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	var open *domain.Position
	legs := 0
	for _, p := range account.Positions {
		if p == nil || p.Symbol != symbol {
			continue
		}
		pos, err := translateAccountPosition(p)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if pos.Amount == 0 {
			continue
		}
		legs++
		if open == nil {
			open = pos
		}
	}
	if open == nil {
		c.logger.Debug(ctx, op+": No open position for symbol", map[string]interface{}{"symbol": symbol})
		return &domain.Position{Symbol: symbol}, nil
	}
	if legs > 1 {
		// Hedge mode is not supported; only the first leg is managed.
		c.logger.Warn(ctx, op+": Multiple open position legs, using the first", map[string]interface{}{
			"symbol": symbol,
			"legs":   legs,
			"amount": open.Amount,
		})
	}
	return open, nil
}

// GetMarkPrice retrieves the current mark price for a given symbol.
func (c *Client) GetMarkPrice(ctx context.Context, symbol string) (float64, error) {
	op := "GetMarkPrice"
	if err := c.wait(ctx, op); err != nil {
		return 0, err
	}
	tickers, err := c.futuresClient.NewPremiumIndexService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	if len(tickers) == 0 {
		err := fmt.Errorf("no price data returned for symbol %s", symbol)
		return 0, c.handleError(ctx, err, op)
	}

	price, err := strconv.ParseFloat(tickers[0].MarkPrice, 64)
	if err != nil {
		parseErr := fmt.Errorf("could not parse price '%s': %w", tickers[0].MarkPrice, err)
		return 0, c.handleError(ctx, parseErr, op)
	}
	return price, nil
}

// GetAccountBalance retrieves the available balance for a specific asset (e.g., "USDT").
func (c *Client) GetAccountBalance(ctx context.Context, asset string) (float64, error) {
	op := "GetAccountBalance"
	if err := c.wait(ctx, op); err != nil {
		return 0, err
	}
	account, err := c.futuresClient.NewGetAccountService().Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}

	for _, bal := range account.Assets {
		if bal.Asset == asset {
			balance, err := strconv.ParseFloat(bal.AvailableBalance, 64)
			if err != nil {
				parseErr := fmt.Errorf("could not parse balance '%s' for asset %s: %w", bal.AvailableBalance, asset, err)
				return 0, c.handleError(ctx, parseErr, op)
			}
			return balance, nil
		}
	}

	// An asset that was never funded is reported as absent.
	c.logger.Warn(ctx, op+": Asset not present in account, treating balance as zero", map[string]interface{}{"asset": asset})
	return 0, nil
}

// GetSymbolPrecision returns price and quantity decimals from exchange info.
// Results are cached for the lifetime of the client.
func (c *Client) GetSymbolPrecision(ctx context.Context, symbol string) (ports.SymbolPrecision, error) {
	op := "GetSymbolPrecision"
	c.precisionMu.RLock()
	p, ok := c.precisionCache[symbol]
	c.precisionMu.RUnlock()
	if ok {
		return p, nil
	}

	if err := c.wait(ctx, op); err != nil {
		return ports.SymbolPrecision{}, err
	}
	info, err := c.futuresClient.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return ports.SymbolPrecision{}, c.handleError(ctx, err, op)
	}
	for _, s := range info.Symbols {
		if s.Symbol == symbol {
			p = ports.SymbolPrecision{PricePrecision: s.PricePrecision, QuantityPrecision: s.QuantityPrecision}
			c.precisionMu.Lock()
			c.precisionCache[symbol] = p
			c.precisionMu.Unlock()
			c.logger.Debug(ctx, op+" cached", map[string]interface{}{"symbol": symbol, "pricePrecision": p.PricePrecision, "quantityPrecision": p.QuantityPrecision})
			return p, nil
		}
	}
	return ports.SymbolPrecision{}, fmt.Errorf("%s failed: %w: %s", op, ports.ErrSymbolNotFound, symbol)
}

// PlaceMarketOrder places a market order.
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string, reduceOnly bool) (*ports.OrderResponse, error) {
	op := "PlaceMarketOrder"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	svc := c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(futures.SideType(side)).
		Type(futures.OrderTypeMarket).
		Quantity(quantity).
		NewClientOrderID(newClientOrderID())
	if reduceOnly {
		svc = svc.ReduceOnly(true)
	}
	order, err := svc.Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	resp := translateOrderResponse(order)
	c.logger.Info(ctx, op+" successful", map[string]interface{}{"symbol": symbol, "side": side, "quantity": quantity, "reduceOnly": reduceOnly, "orderID": resp.OrderID, "avgPrice": resp.AvgPrice})
	return resp, nil
}

// PlaceStopMarketOrder places a reduce-only stop-market order triggered on mark price.
func (c *Client) PlaceStopMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string, stopPrice string) (*ports.OrderResponse, error) {
	op := "PlaceStopMarketOrder"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}

	order, err := c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(futures.SideType(side)).
		Type(futures.OrderTypeStopMarket).
		Quantity(quantity).
		StopPrice(stopPrice).
		ReduceOnly(true).
		WorkingType(futures.WorkingTypeMarkPrice).
		NewClientOrderID(newClientOrderID()).
		Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	resp := translateOrderResponse(order)
	c.logger.Info(ctx, op+" successful", map[string]interface{}{"symbol": symbol, "side": side, "quantity": quantity, "stopPrice": stopPrice, "orderID": resp.OrderID})
	return resp, nil
}

// CancelAllOpenOrders cancels every resting order for symbol.
func (c *Client) CancelAllOpenOrders(ctx context.Context, symbol string) error {
	op := "CancelAllOpenOrders"
	if err := c.wait(ctx, op); err != nil {
		return err
	}
	if err := c.futuresClient.NewCancelAllOpenOrdersService().Symbol(symbol).Do(ctx); err != nil {
		return c.handleError(ctx, err, op)
	}
	c.logger.Info(ctx, op+" successful", map[string]interface{}{"symbol": symbol})
	return nil
}

// GetOpenOrders lists resting orders for symbol.
func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]ports.OpenOrder, error) {
	op := "GetOpenOrders"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	orders, err := c.futuresClient.NewListOpenOrdersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	out := make([]ports.OpenOrder, 0, len(orders))
	for _, o := range orders {
		if o == nil {
			continue
		}
		out = append(out, translateOpenOrder(o))
	}
	return out, nil
}

func newClientOrderID() string {
	// Binance caps client order ids at 36 characters.
	return clientOrderIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// --- Translation Helpers ---

func translateOrderResponse(order *futures.CreateOrderResponse) *ports.OrderResponse {
	if order == nil {
		return nil
	}
	price, _ := strconv.ParseFloat(order.Price, 64)
	avgPrice, _ := strconv.ParseFloat(order.AvgPrice, 64)
	stopPrice, _ := strconv.ParseFloat(order.StopPrice, 64)
	origQty, _ := strconv.ParseFloat(order.OrigQuantity, 64)
	execQty, _ := strconv.ParseFloat(order.ExecutedQuantity, 64)

	return &ports.OrderResponse{
		OrderID:       order.OrderID,
		Symbol:        order.Symbol,
		ClientOrderID: order.ClientOrderID,
		Price:         price,
		AvgPrice:      avgPrice,
		StopPrice:     stopPrice,
		OrigQuantity:  origQty,
		ExecutedQty:   execQty,
		Status:        string(order.Status),
		Type:          string(order.Type),
		Side:          string(order.Side),
		ReduceOnly:    order.ReduceOnly,
		Timestamp:     time.UnixMilli(order.UpdateTime),
	}
}

func translateOpenOrder(o *futures.Order) ports.OpenOrder {
	stopPrice, _ := strconv.ParseFloat(o.StopPrice, 64)
	origQty, _ := strconv.ParseFloat(o.OrigQuantity, 64)
	return ports.OpenOrder{
		OrderID:       o.OrderID,
		Symbol:        o.Symbol,
		Type:          string(o.Type),
		Side:          domain.OrderSide(o.Side),
		StopPrice:     stopPrice,
		OrigQuantity:  origQty,
		ReduceOnly:    o.ReduceOnly,
		ClosePosition: o.ClosePosition,
	}
}

func translateAccountPosition(p *futures.AccountPosition) (*domain.Position, error) {
	amt, err := strconv.ParseFloat(p.PositionAmt, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing position amount '%s': %w", p.PositionAmt, err)
	}
	entry, err := strconv.ParseFloat(p.EntryPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing entry price '%s': %w", p.EntryPrice, err)
	}
	pos := &domain.Position{
		Symbol:     p.Symbol,
		Amount:     amt,
		EntryPrice: entry,
	}
	if p.UpdateTime > 0 {
		pos.UpdateTime = time.UnixMilli(p.UpdateTime)
	}
	return pos, nil
}

func translateBinanceKline(bk *futures.Kline, symbol, interval string) (*domain.Kline, error) {
	if bk == nil {
		return nil, errors.New("received nil kline")
	}
	open, err := strconv.ParseFloat(bk.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing open price '%s': %w", bk.Open, err)
	}
	high, err := strconv.ParseFloat(bk.High, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing high price '%s': %w", bk.High, err)
	}
	low, err := strconv.ParseFloat(bk.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing low price '%s': %w", bk.Low, err)
	}
	cls, err := strconv.ParseFloat(bk.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing close price '%s': %w", bk.Close, err)
	}
	vol, err := strconv.ParseFloat(bk.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing volume '%s': %w", bk.Volume, err)
	}

	return &domain.Kline{
		OpenTime:  time.UnixMilli(bk.OpenTime),
		CloseTime: time.UnixMilli(bk.CloseTime),
		Symbol:    symbol,   // Use passed symbol as it's not in futures.Kline
		Interval:  interval, // Use passed interval
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
	}, nil
}
