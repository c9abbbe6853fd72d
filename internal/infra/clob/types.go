// Package clob talks to the prediction-market CLOB order service. The wire
// format is venue-specific; only the mapped status vocabulary leaks out.
package clob

import (
	"github.com/shopspring/decimal"
)

// Exchange status vocabulary the engine maps onto pending states.
const (
	StatusMatched   = "MATCHED"
	StatusLive      = "LIVE"
	StatusDelayed   = "DELAYED"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "EXPIRED"
)

// OrderRequest is the submit payload.
type OrderRequest struct {
	ClientOrderID string          `json:"client_order_id"`
	TokenID       string          `json:"token_id"`
	Side          string          `json:"side"`
	Price         decimal.Decimal `json:"price"`
	Size          decimal.Decimal `json:"size"`
}

// OrderResponse is the venue's answer to a submit or status call.
type OrderResponse struct {
	OrderID     string          `json:"order_id"`
	Status      string          `json:"status"`
	SizeMatched decimal.Decimal `json:"size_matched"`
	AvgPrice    decimal.Decimal `json:"avg_price"`
	ErrorMsg    string          `json:"error_msg,omitempty"`
}

// userEventMsg is one message from the user websocket channel.
type userEventMsg struct {
	EventType     string          `json:"event_type"` // "order" or "trade"
	OrderID       string          `json:"order_id"`
	ClientOrderID string          `json:"client_order_id"`
	Status        string          `json:"status"`
	Price         decimal.Decimal `json:"price"`
	SizeMatched   decimal.Decimal `json:"size_matched"`
	Fee           decimal.Decimal `json:"fee"`
	TradeID       string          `json:"trade_id"`
}
