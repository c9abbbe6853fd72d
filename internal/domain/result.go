package domain

import "github.com/shopspring/decimal"

// FillInfo is the payload of a fill event. It is ephemeral: forwarded to
// callbacks and folded into the tracker's running totals, never stored.
type FillInfo struct {
	Size    decimal.Decimal // filled size delta
	Price   decimal.Decimal
	Fee     *decimal.Decimal
	TradeID string
}

// OrderResult is the terminal snapshot of an order. Constructed on demand
// from registry state plus the tracker's running totals; immutable after
// construction.
type OrderResult struct {
	ClientOrderID   string
	ExchangeOrderID string
	FinalState      PendingState
	TotalFilled     decimal.Decimal
	AvgFillPrice    *decimal.Decimal // nil when nothing filled
	Fee             *decimal.Decimal
	TradeID         string
}

// Quote is the current top of book for one outcome token.
type Quote struct {
	TokenID string
	BestBid decimal.Decimal
	BestAsk decimal.Decimal
}
