package domain

import (
	"math"
	"time"
)

// Position is the live exchange position for a symbol.
// Amount is signed: positive for long, negative for short, zero when flat.
type Position struct {
	Symbol     string
	Amount     float64
	EntryPrice float64
	UpdateTime time.Time // Last time the exchange changed the position
}

// IsLong reports whether the position is long.
func (p *Position) IsLong() bool { return p != nil && p.Amount > 0 }

// IsShort reports whether the position is short.
func (p *Position) IsShort() bool { return p != nil && p.Amount < 0 }

// IsFlat reports whether there is no exposure. A nil position is flat.
func (p *Position) IsFlat() bool { return p == nil || p.Amount == 0 }

// AbsAmount returns the unsigned size of the position.
func (p *Position) AbsAmount() float64 {
	if p == nil {
		return 0
	}
	return math.Abs(p.Amount)
}

// CloseSide returns the order side that flattens the position.
func (p *Position) CloseSide() OrderSide {
	if p.IsShort() {
		return Buy
	}
	return Sell
}

// HoldingDuration is the time elapsed since the last position update.
func (p *Position) HoldingDuration(now time.Time) time.Duration {
	if p == nil || p.UpdateTime.IsZero() {
		return 0
	}
	return now.Sub(p.UpdateTime)
}
