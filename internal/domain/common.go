package domain

// OrderSide represents the side of an order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// Opposite returns the side that reduces a position opened with s.
func (s OrderSide) Opposite() OrderSide {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Signal is the directional output of a strategy for one cycle.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Side maps a trading signal to the order side that follows it.
// HOLD has no side and returns false.
func (s Signal) Side() (OrderSide, bool) {
	switch s {
	case SignalBuy:
		return Buy, true
	case SignalSell:
		return Sell, true
	default:
		return "", false
	}
}

// StrategyName selects the decision rules used by the bot.
type StrategyName string

const (
	StrategyConservative StrategyName = "conservative"
	StrategyAggressive   StrategyName = "aggressive"
)

// ParseStrategyName validates a configured strategy selector.
func ParseStrategyName(s string) (StrategyName, bool) {
	switch StrategyName(s) {
	case StrategyConservative:
		return StrategyConservative, true
	case StrategyAggressive:
		return StrategyAggressive, true
	default:
		return "", false
	}
}
