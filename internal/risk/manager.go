package risk

import (
	"github.com/shopspring/decimal"
)

// BreakevenBuffer is the fraction beyond entry at which the trailing stop is
// parked once the profit threshold is reached.
const BreakevenBuffer = 0.001

// QuantityDecimals is the precision used for balance-based position sizing.
const QuantityDecimals = 3

// RiskConfig holds configuration for risk management
type RiskConfig struct {
	StopLossPercent float64 // Fraction of mark price, e.g. 0.02
	RiskPercentage  float64 // Percent of quote balance per trade, e.g. 1.0
	TrailCallback   float64 // Profit fraction that arms the breakeven stop
}

// RiskManager implements sizing and stop-price maths.
type RiskManager struct {
	config RiskConfig
}

// NewRiskManager creates a new risk manager instance
func NewRiskManager(config RiskConfig) *RiskManager {
	return &RiskManager{config: config}
}

// Config returns the configuration the manager was built with.
func (r *RiskManager) Config() RiskConfig {
	return r.config
}

// GetPositionSize calculates (balance * risk% / 100) / price rounded to 3 decimals.
// A non-positive balance or price yields zero.
func (r *RiskManager) GetPositionSize(accountBalance float64, currentPrice float64) float64 {
	if accountBalance <= 0 || currentPrice <= 0 {
		return 0
	}
	size := decimal.NewFromFloat(accountBalance).
		Mul(decimal.NewFromFloat(r.config.RiskPercentage)).
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromFloat(currentPrice)).
		Round(QuantityDecimals)
	f, _ := size.Float64()
	return f
}

// GetStopLoss calculates the protective stop for a position opened at markPrice,
// rounded to the symbol price precision.
func (r *RiskManager) GetStopLoss(markPrice float64, isLong bool, pricePrecision int) float64 {
	mark := decimal.NewFromFloat(markPrice)
	sl := decimal.NewFromFloat(r.config.StopLossPercent)
	var stop decimal.Decimal
	if isLong {
		stop = mark.Mul(decimal.NewFromInt(1).Sub(sl))
	} else {
		stop = mark.Mul(decimal.NewFromInt(1).Add(sl))
	}
	f, _ := stop.Round(int32(pricePrecision)).Float64()
	return f
}

// GetBreakevenPrice returns the price just beyond entry that locks in a small gain.
func (r *RiskManager) GetBreakevenPrice(entryPrice float64, isLong bool, pricePrecision int) float64 {
	entry := decimal.NewFromFloat(entryPrice)
	buf := decimal.NewFromFloat(BreakevenBuffer)
	var price decimal.Decimal
	if isLong {
		price = entry.Mul(decimal.NewFromInt(1).Add(buf))
	} else {
		price = entry.Mul(decimal.NewFromInt(1).Sub(buf))
	}
	f, _ := price.Round(int32(pricePrecision)).Float64()
	return f
}

// ProfitFraction is the unrealised gain relative to entry:
// mark/entry - 1 for longs, entry/mark - 1 for shorts.
func ProfitFraction(entryPrice, markPrice float64, isLong bool) float64 {
	if entryPrice <= 0 || markPrice <= 0 {
		return 0
	}
	entry := decimal.NewFromFloat(entryPrice)
	mark := decimal.NewFromFloat(markPrice)
	var ratio decimal.Decimal
	if isLong {
		ratio = mark.Div(entry)
	} else {
		ratio = entry.Div(mark)
	}
	f, _ := ratio.Sub(decimal.NewFromInt(1)).Float64()
	return f
}

// TrailArmed reports whether profit has reached the configured callback.
// Both sides are compared as decimals so a profit landing exactly on the
// callback arms the stop.
func (r *RiskManager) TrailArmed(profit float64) bool {
	return decimal.NewFromFloat(profit).GreaterThanOrEqual(decimal.NewFromFloat(r.config.TrailCallback))
}

// IsAtLeastAsFavorable reports whether an existing stop already protects as
// much as candidate. For longs a higher stop is better, for shorts a lower one.
func IsAtLeastAsFavorable(existing, candidate float64, isLong bool) bool {
	if isLong {
		return existing >= candidate
	}
	return existing <= candidate
}

// FormatDecimal renders v with exactly places decimals for exchange requests.
func FormatDecimal(v float64, places int) string {
	return decimal.NewFromFloat(v).StringFixed(int32(places))
}
