package app

import "futuresBot/internal/domain"

// ReconcileAction says what the sequencer must do for a signal.
type ReconcileAction string

const (
	ActionNone   ReconcileAction = "none"   // HOLD or no quantity
	ActionIgnore ReconcileAction = "ignore" // Signal already reflected by the position
	ActionOrder  ReconcileAction = "order"
)

// ReconcileResult is the order needed to move from the current position to the signal.
type ReconcileResult struct {
	Action   ReconcileAction
	Side     domain.OrderSide
	Quantity float64
	Reason   string
}

// Reconcile maps a signal and the live position to a single order. An opposite
// position is flipped in one order sized abs(current)+quantity; a same-direction
// signal never adds exposure.
func Reconcile(signal domain.Signal, quantity float64, position *domain.Position) ReconcileResult {
	side, ok := signal.Side()
	if !ok || quantity <= 0 {
		return ReconcileResult{Action: ActionNone}
	}

	switch side {
	case domain.Buy:
		if position.IsLong() {
			return ReconcileResult{Action: ActionIgnore, Reason: "already long"}
		}
	case domain.Sell:
		if position.IsShort() {
			return ReconcileResult{Action: ActionIgnore, Reason: "already short"}
		}
	}

	return ReconcileResult{
		Action:   ActionOrder,
		Side:     side,
		Quantity: position.AbsAmount() + quantity,
	}
}
