package event

import (
	"github.com/shopspring/decimal"

	"predict_go/internal/domain"
)

// Type defines the type of order lifecycle event.
type Type uint16

const (
	EvOrderSubmitted Type = iota + 1
	EvOrderOpened
	EvOrderPartialFill
	EvOrderFilled
	EvOrderCancelled
	EvOrderExpired
)

// OrderEvent records one accepted lifecycle transition. Events are emitted
// by the tracker after validation, so a journal of them replays cleanly.
type OrderEvent struct {
	Type          Type                `json:"type"`
	ClientOrderID string              `json:"client_order_id"`
	ConditionID   string              `json:"condition_id"`
	State         domain.PendingState `json:"state"`
	FillSize      decimal.Decimal     `json:"fill_size"`
	FillPrice     decimal.Decimal     `json:"fill_price"`
	TsUnixMicros  int64               `json:"ts"`
}

// ForState maps a pending state to its event type. Submitted is emitted by
// executors; the rest come from tracker handlers.
func ForState(s domain.PendingState) Type {
	switch s {
	case domain.StateSubmitted:
		return EvOrderSubmitted
	case domain.StateOpen:
		return EvOrderOpened
	case domain.StatePartiallyFilled:
		return EvOrderPartialFill
	case domain.StateFilled:
		return EvOrderFilled
	case domain.StateCancelled:
		return EvOrderCancelled
	case domain.StateExpired:
		return EvOrderExpired
	default:
		return 0
	}
}
