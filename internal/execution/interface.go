package execution

import (
	"context"

	"predict_go/internal/domain"
)

// Execution is the uniform submit/cancel contract for order execution.
type Execution interface {
	// Submit sends a new order to the execution venue and returns the
	// current snapshot of its outcome. Non-terminal snapshots mean the
	// order is resting; use the tracker to await completion.
	Submit(ctx context.Context, intent domain.OrderIntent) (*domain.OrderResult, error)

	// Cancel cancels an existing order by client order ID.
	Cancel(ctx context.Context, clientOrderID string) error
}
