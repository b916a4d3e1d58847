package domain

// IndicatorSnapshot holds the indicator values computed for the latest candle.
type IndicatorSnapshot struct {
	SMAFast    float64 `json:"sma_fast"`
	SMASlow    float64 `json:"sma_slow"`
	RSI        float64 `json:"rsi"`
	BBUpper    float64 `json:"bb_upper"`
	BBMiddle   float64 `json:"bb_middle"`
	BBLower    float64 `json:"bb_lower"`
	VolumeAvg  float64 `json:"volume_avg"`
	LastClose  float64 `json:"last_close"`
	LastVolume float64 `json:"last_volume"`
}

// Decision is the outcome of one analysis cycle.
type Decision struct {
	Symbol                string            `json:"symbol"`
	Strategy              StrategyName      `json:"strategy"`
	Signal                Signal            `json:"signal"`
	Quantity              float64           `json:"quantity"`
	CurrentPositionAmount float64           `json:"current_position_amount"`
	ReferencePrice        float64           `json:"reference_price"`
	MarkPrice             float64           `json:"mark_price"`
	QuoteBalance          float64           `json:"quote_balance"`
	Indicators            IndicatorSnapshot `json:"indicators"`
}
