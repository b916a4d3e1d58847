package domain

import "time"

// Trade is a persisted record of an order the exchange accepted.
type Trade struct {
	ID        int64        `json:"id"`
	Symbol    string       `json:"symbol"`
	Strategy  StrategyName `json:"strategy"`
	Decision  Signal       `json:"decision"`
	Price     float64      `json:"price"`    // Last close at decision time
	Quantity  float64      `json:"quantity"` // Strategy quantity, not the reconciled order size
	Timestamp time.Time    `json:"timestamp"`
}

// StatusLog is a per-cycle snapshot written whenever indicators were computed.
type StatusLog struct {
	ID          int64        `json:"id"`
	Timestamp   time.Time    `json:"timestamp"`
	Strategy    StrategyName `json:"strategy"`
	Signal      Signal       `json:"signal"`
	ClosePrice  float64      `json:"close_price"`
	RSI         *float64     `json:"rsi"`
	USDTBalance *float64     `json:"balance_usdt"`
}
