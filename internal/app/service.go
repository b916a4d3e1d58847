package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"futuresBot/config"
	"futuresBot/internal/domain"
	"futuresBot/internal/ports"
	"futuresBot/internal/risk"
)

// Outcome statuses returned by Execute.
const (
	OutcomeExecuted          = "executed"
	OutcomeHold              = "hold"
	OutcomeIgnored           = "ignored"
	OutcomeClosedByTimeLimit = "closed_by_time_limit"
)

// Outcome is the result of one execute cycle.
type Outcome struct {
	Status    string           `json:"status"`
	Signal    domain.Signal    `json:"signal"`
	Reason    string           `json:"reason,omitempty"`
	Side      domain.OrderSide `json:"side,omitempty"`
	Quantity  float64          `json:"order_quantity,omitempty"`
	Decision  *domain.Decision `json:"decision,omitempty"`
	Execution *ExecutionResult `json:"execution,omitempty"`
	Trade     *domain.Trade    `json:"trade,omitempty"`
}

// TradingService orchestrates decision cycles, order sequences and stop maintenance.
type TradingService struct {
	cfg      *config.Config
	logger   ports.Logger
	exchange ports.ExchangeClient
	trades   ports.TradeRepository
	statuses ports.StatusLogRepository
	strategy ports.Strategy
	risk     *risk.RiskManager
	notifier ports.Notifier
	mirror   ports.StatusMirror
	now      func() time.Time

	// Serialises every exchange-mutating operation.
	mu sync.Mutex
}

// NewTradingService creates a new application service instance.
// notifier and mirror are optional.
func NewTradingService(
	cfg *config.Config,
	logger ports.Logger,
	exchange ports.ExchangeClient,
	trades ports.TradeRepository,
	statuses ports.StatusLogRepository,
	strat ports.Strategy,
	rm *risk.RiskManager,
	notifier ports.Notifier,
	mirror ports.StatusMirror,
) (*TradingService, error) {

	// Validate dependencies
	if cfg == nil || logger == nil || exchange == nil || trades == nil || statuses == nil || strat == nil || rm == nil {
		return nil, fmt.Errorf("missing required dependencies for TradingService")
	}

	if cfg.Symbol == "" {
		return nil, fmt.Errorf("configuration Symbol must not be empty")
	}
	if cfg.CandleLimit < strat.RequiredDataPoints() {
		return nil, fmt.Errorf("configuration CandleLimit %d is below the %d candles the strategy needs", cfg.CandleLimit, strat.RequiredDataPoints())
	}
	if cfg.StopLoss <= 0 || cfg.StopLoss >= 1 {
		return nil, fmt.Errorf("configuration StopLoss must be between 0 and 1")
	}

	if notifier == nil {
		notifier = noopNotifier{}
	}
	if mirror == nil {
		mirror = noopMirror{}
	}

	return &TradingService{
		cfg:      cfg,
		logger:   logger,
		exchange: exchange,
		trades:   trades,
		statuses: statuses,
		strategy: strat,
		risk:     rm,
		notifier: notifier,
		mirror:   mirror,
		now:      time.Now,
	}, nil
}

// Analyze computes the current decision without touching orders or storage.
func (s *TradingService) Analyze(ctx context.Context) (*domain.Decision, error) {
	position, err := s.exchange.GetPosition(ctx, s.cfg.Symbol)
	if err != nil {
		return nil, fmt.Errorf("analyze: failed to get position: %w", err)
	}
	return s.decide(ctx, position)
}

// Execute runs one full cycle: time exit, decision, status log, reconciliation
// and the order sequence.
func (s *TradingService) Execute(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op := "Execute"

	position, err := s.exchange.GetPosition(ctx, s.cfg.Symbol)
	if err != nil {
		s.notifier.NotifyError(ctx, "execute", err)
		return nil, fmt.Errorf("%s: failed to get position: %w", op, err)
	}

	if s.holdingTooLong(position) {
		s.logger.Warn(ctx, op+": Max holding time exceeded, closing position", map[string]interface{}{
			"symbol":     s.cfg.Symbol,
			"amount":     position.Amount,
			"held":       position.HoldingDuration(s.now()).String(),
			"maxHolding": s.cfg.MaxHoldingTime.String(),
		})
		if _, err := s.closeAllPositions(ctx); err != nil {
			s.notifier.NotifyError(ctx, "time exit", err)
			return nil, fmt.Errorf("%s: time-based exit failed: %w", op, err)
		}
		s.notifier.NotifyStatus(ctx, fmt.Sprintf("⏱ %s position closed after max holding time", s.cfg.Symbol))
		return &Outcome{Status: OutcomeClosedByTimeLimit, Signal: domain.SignalHold}, nil
	}

	decision, err := s.decide(ctx, position)
	if err != nil {
		if !errors.Is(err, ports.ErrIndicatorUnavailable) {
			s.notifier.NotifyError(ctx, "execute", err)
		}
		return nil, err
	}

	s.recordStatus(ctx, decision)

	if decision.Signal == domain.SignalHold {
		return &Outcome{Status: OutcomeHold, Signal: decision.Signal, Decision: decision}, nil
	}

	rec := Reconcile(decision.Signal, decision.Quantity, position)
	switch rec.Action {
	case ActionNone:
		s.logger.Info(ctx, op+": No quantity available, skipping order", map[string]interface{}{"signal": decision.Signal})
		return &Outcome{Status: OutcomeIgnored, Signal: decision.Signal, Reason: "zero quantity", Decision: decision}, nil
	case ActionIgnore:
		s.logger.Info(ctx, op+": Signal ignored", map[string]interface{}{"signal": decision.Signal, "reason": rec.Reason})
		return &Outcome{Status: OutcomeIgnored, Signal: decision.Signal, Reason: rec.Reason, Decision: decision}, nil
	}

	outcome := &Outcome{
		Status:   OutcomeExecuted,
		Signal:   decision.Signal,
		Side:     rec.Side,
		Quantity: rec.Quantity,
		Decision: decision,
	}

	// Orders are about to go out; bookkeeping afterwards must outlive the request.
	ctx = context.WithoutCancel(ctx)
	result, err := s.executeOrderSequence(ctx, rec.Side, rec.Quantity, decision.Quantity)
	outcome.Execution = result
	if err != nil {
		s.notifier.NotifyError(ctx, "order sequence", err)
		var perr *PartialExecutionError
		if errors.As(err, &perr) {
			// The main order filled, so the trade happened.
			s.persistTrade(ctx, decision)
		}
		return outcome, err
	}

	outcome.Trade = s.persistTrade(ctx, decision)
	if outcome.Trade != nil {
		s.notifier.NotifyTrade(ctx, outcome.Trade, result.MainOrder)
	}
	return outcome, nil
}

func (s *TradingService) holdingTooLong(position *domain.Position) bool {
	if s.strategy.Name() != domain.StrategyAggressive || position.IsFlat() || s.cfg.MaxHoldingTime <= 0 {
		return false
	}
	return position.HoldingDuration(s.now()) > s.cfg.MaxHoldingTime
}

// decide gathers market data and asks the strategy for a signal.
func (s *TradingService) decide(ctx context.Context, position *domain.Position) (*domain.Decision, error) {
	symbol := s.cfg.Symbol

	klines, err := s.exchange.GetKlines(ctx, symbol, s.cfg.Interval, s.cfg.CandleLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get klines: %w", err)
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("exchange returned no klines for %s: %w", symbol, ports.ErrIndicatorUnavailable)
	}

	mark, err := s.exchange.GetMarkPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get mark price: %w", err)
	}

	balance, err := s.exchange.GetAccountBalance(ctx, s.cfg.QuoteAsset)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s balance: %w", s.cfg.QuoteAsset, err)
	}

	signal, qty, snap, err := s.strategy.Decide(ctx, klines, ports.MarketState{MarkPrice: mark, QuoteBalance: balance})
	if err != nil {
		return nil, fmt.Errorf("strategy %s produced no decision: %w", s.strategy.Name(), err)
	}

	var amount float64
	if position != nil {
		amount = position.Amount
	}
	return &domain.Decision{
		Symbol:                symbol,
		Strategy:              s.strategy.Name(),
		Signal:                signal,
		Quantity:              qty,
		CurrentPositionAmount: amount,
		ReferencePrice:        snap.LastClose,
		MarkPrice:             mark,
		QuoteBalance:          balance,
		Indicators:            snap,
	}, nil
}

// recordStatus stores the cycle snapshot. Failures are logged; they never abort trading.
func (s *TradingService) recordStatus(ctx context.Context, d *domain.Decision) {
	log := &domain.StatusLog{
		Timestamp:  s.now().UTC(),
		Strategy:   d.Strategy,
		Signal:     d.Signal,
		ClosePrice: d.ReferencePrice,
	}
	balance := d.QuoteBalance
	log.USDTBalance = &balance
	rsi := d.Indicators.RSI
	log.RSI = &rsi

	if _, err := s.statuses.CreateStatusLog(ctx, log); err != nil {
		s.logger.Error(ctx, err, "Failed to save status log")
	}
	if err := s.mirror.WriteStatus(ctx, s.cfg.Symbol, log); err != nil {
		s.logger.Warn(ctx, "Failed to mirror status log", map[string]interface{}{"error": err.Error()})
	}
}

func (s *TradingService) persistTrade(ctx context.Context, d *domain.Decision) *domain.Trade {
	trade := &domain.Trade{
		Symbol:    d.Symbol,
		Strategy:  d.Strategy,
		Decision:  d.Signal,
		Price:     d.ReferencePrice,
		Quantity:  d.Quantity,
		Timestamp: s.now().UTC(),
	}
	if _, err := s.trades.CreateTrade(ctx, trade); err != nil {
		s.logger.Error(ctx, err, "Failed to save trade record", map[string]interface{}{
			"symbol":   trade.Symbol,
			"decision": trade.Decision,
		})
		s.notifier.NotifyError(ctx, "save trade", err)
		return nil
	}
	s.logger.Info(ctx, "Trade recorded", map[string]interface{}{
		"tradeID":  trade.ID,
		"decision": trade.Decision,
		"price":    trade.Price,
		"quantity": trade.Quantity,
	})
	return trade
}

type noopNotifier struct{}

func (noopNotifier) NotifyTrade(context.Context, *domain.Trade, *ports.OrderResponse) {}
func (noopNotifier) NotifyError(context.Context, string, error)                       {}
func (noopNotifier) NotifyStatus(context.Context, string)                             {}

type noopMirror struct{}

func (noopMirror) WriteStatus(context.Context, string, *domain.StatusLog) error { return nil }
