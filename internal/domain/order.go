package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the order side on the book.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Direction distinguishes opening and closing trades for a position.
type Direction string

const (
	DirectionOpen  Direction = "OPEN"
	DirectionClose Direction = "CLOSE"
)

// OrderIntent describes a desired order. It is produced by the strategy
// layer and never mutated by the engine.
type OrderIntent struct {
	ConditionID string // market identifier
	TokenID     string // outcome token to trade
	Side        Side
	Direction   Direction
	Price       decimal.Decimal
	Size        decimal.Decimal
}

// PendingState is the lifecycle state of a tracked order.
type PendingState string

const (
	StateCreated         PendingState = "CREATED"
	StateSubmitted       PendingState = "SUBMITTED"
	StateOpen            PendingState = "OPEN"
	StatePartiallyFilled PendingState = "PARTIALLY_FILLED"
	StateFilled          PendingState = "FILLED"
	StateCancelled       PendingState = "CANCELLED"
	StateExpired         PendingState = "EXPIRED"
)

// PendingOrder is the registry record for an in-flight or recently terminal
// order. It is owned by the registry; external callers only ever see copies.
type PendingOrder struct {
	ClientOrderID   string
	ExchangeOrderID string
	ConditionID     string
	TokenID         string
	Side            Side
	Price           decimal.Decimal
	Size            decimal.Decimal
	State           PendingState
	SubmittedAt     time.Time
}

// NewPendingOrder builds the initial registry record for an intent.
func NewPendingOrder(clientOrderID string, intent OrderIntent, now time.Time) *PendingOrder {
	return &PendingOrder{
		ClientOrderID: clientOrderID,
		ConditionID:   intent.ConditionID,
		TokenID:       intent.TokenID,
		Side:          intent.Side,
		Price:         intent.Price,
		Size:          intent.Size,
		State:         StateCreated,
		SubmittedAt:   now,
	}
}

// IsActive reports whether the order can still transition.
func (o *PendingOrder) IsActive() bool {
	return IsActive(o.State)
}
