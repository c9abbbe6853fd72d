package order

import (
	"time"

	"predict_go/internal/domain"
)

// Handle bundles the per-order callbacks a caller wants invoked as the
// order moves through its lifecycle. All fields are optional.
type Handle struct {
	OnFill     func(domain.FillInfo)
	OnComplete func(domain.OrderResult)
	OnCancel   func(domain.OrderResult)

	// Timeout, when set, forces the order to Expired if it is still
	// non-terminal when the timer fires.
	Timeout time.Duration
}

// HandleBuilder builds a Handle fluently.
type HandleBuilder struct {
	h Handle
}

// NewHandle starts a handle builder.
func NewHandle() *HandleBuilder {
	return &HandleBuilder{}
}

// OnFill sets the fill callback.
func (b *HandleBuilder) OnFill(fn func(domain.FillInfo)) *HandleBuilder {
	b.h.OnFill = fn
	return b
}

// OnComplete sets the callback invoked when the order fills completely.
func (b *HandleBuilder) OnComplete(fn func(domain.OrderResult)) *HandleBuilder {
	b.h.OnComplete = fn
	return b
}

// OnCancel sets the callback invoked when the order is cancelled or expires.
func (b *HandleBuilder) OnCancel(fn func(domain.OrderResult)) *HandleBuilder {
	b.h.OnCancel = fn
	return b
}

// Timeout sets the per-order expiry timeout.
func (b *HandleBuilder) Timeout(d time.Duration) *HandleBuilder {
	b.h.Timeout = d
	return b
}

// Build returns the assembled handle.
func (b *HandleBuilder) Build() Handle {
	return b.h
}
