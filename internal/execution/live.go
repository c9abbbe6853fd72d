package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"predict_go/internal/domain"
	"predict_go/internal/infra"
	"predict_go/internal/infra/clob"
	"predict_go/internal/order"
)

// OrderService is the slice of the CLOB client the live executor needs.
type OrderService interface {
	SubmitOrder(ctx context.Context, req clob.OrderRequest) (*clob.OrderResponse, error)
	CancelOrder(ctx context.Context, exchangeOrderID string) error
}

// LiveConfig tunes the live executor.
type LiveConfig struct {
	// SubmitTimeout bounds each order-service call.
	SubmitTimeout time.Duration
}

// LiveExecution submits real orders through the rate-limited order service.
// Each call acquires a rate-limit token first and races the service against
// SubmitTimeout. Exchange status strings are mapped onto pending states;
// asynchronous updates arrive separately through the user feed.
type LiveExecution struct {
	mu sync.Mutex

	svc      OrderService
	limiter  *infra.RateLimiter
	breaker  *infra.CircuitBreaker
	clock    infra.Clock
	ids      IDSource
	guard    *SubmitGuard
	registry *order.Registry
	tracker  *order.Tracker
	timeout  time.Duration

	// active maps client order IDs to exchange order IDs for cancellation.
	active map[string]string
}

// NewLiveExecution creates a live executor.
func NewLiveExecution(cfg LiveConfig, svc OrderService, limiter *infra.RateLimiter, breaker *infra.CircuitBreaker, clock infra.Clock, registry *order.Registry, tracker *order.Tracker, guard *SubmitGuard, ids IDSource) *LiveExecution {
	timeout := cfg.SubmitTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if ids == nil {
		ids = NewUUIDSource()
	}
	return &LiveExecution{
		svc:      svc,
		limiter:  limiter,
		breaker:  breaker,
		clock:    clock,
		ids:      ids,
		guard:    guard,
		registry: registry,
		tracker:  tracker,
		timeout:  timeout,
		active:   make(map[string]string),
	}
}

// Submit sends the order to the exchange.
func (e *LiveExecution) Submit(ctx context.Context, intent domain.OrderIntent) (*domain.OrderResult, error) {
	if e.guard != nil && e.guard.IsDuplicate(intent.TokenID, intent.Side, intent.Price, intent.Size) {
		return nil, domain.NewTradingError(domain.SeverityNonRetryable, "live submit", domain.ErrDuplicateSubmit)
	}

	if e.breaker != nil && !e.breaker.Allow() {
		return nil, domain.NewTradingError(domain.SeverityRetryable, "live submit", domain.ErrCircuitOpen)
	}

	if err := e.limiter.WaitForToken(ctx); err != nil {
		return nil, domain.NewTradingError(domain.SeverityRetryable, "live submit",
			fmt.Errorf("rate limit wait: %w", err))
	}

	id := e.ids.Next()
	po := domain.NewPendingOrder(id, intent, e.clock.Now())
	e.registry.Track(po)

	next, err := domain.TryTransition(po.State, domain.StateSubmitted)
	if err != nil {
		return nil, domain.NewTradingError(domain.SeverityFatal, "live submit", err)
	}
	e.registry.UpdateState(id, next)

	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.svc.SubmitOrder(cctx, clob.OrderRequest{
		ClientOrderID: id,
		TokenID:       intent.TokenID,
		Side:          string(intent.Side),
		Price:         intent.Price,
		Size:          intent.Size,
	})
	if err != nil {
		if e.breaker != nil {
			e.breaker.RecordFailure()
		}
		e.tracker.HandleRejected(id)

		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewTradingError(domain.SeverityRetryable, "live submit",
				fmt.Errorf("%w: %v", domain.ErrWaitTimeout, err))
		}
		return nil, domain.NewTradingError(domain.SeverityRetryable, "live submit", err)
	}
	if e.breaker != nil {
		e.breaker.RecordSuccess()
	}

	e.registry.UpdateExchangeOrderID(id, resp.OrderID)
	e.mu.Lock()
	e.active[id] = resp.OrderID
	e.mu.Unlock()

	e.applyStatus(id, intent, resp)

	res, err := e.tracker.Result(id)
	if err != nil {
		return nil, err
	}
	if domain.IsTerminal(res.FinalState) {
		e.mu.Lock()
		delete(e.active, id)
		e.mu.Unlock()
	}

	slog.Info("LIVE EXECUTION: Order Submitted",
		slog.String("id", id),
		slog.String("exchange_id", resp.OrderID),
		slog.String("status", resp.Status))

	return &res, nil
}

// Cancel cancels an active live order by client order ID.
func (e *LiveExecution) Cancel(ctx context.Context, clientOrderID string) error {
	e.mu.Lock()
	exchangeID, ok := e.active[clientOrderID]
	e.mu.Unlock()
	if !ok {
		return domain.NewTradingError(domain.SeverityNonRetryable, "live cancel",
			fmt.Errorf("%w: %s", domain.ErrOrderNotFound, clientOrderID))
	}

	if err := e.limiter.WaitForToken(ctx); err != nil {
		return domain.NewTradingError(domain.SeverityRetryable, "live cancel",
			fmt.Errorf("rate limit wait: %w", err))
	}

	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.svc.CancelOrder(cctx, exchangeID); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.NewTradingError(domain.SeverityRetryable, "live cancel",
				fmt.Errorf("%w: %v", domain.ErrWaitTimeout, err))
		}
		return domain.NewTradingError(domain.SeverityRetryable, "live cancel", err)
	}

	e.mu.Lock()
	delete(e.active, clientOrderID)
	e.mu.Unlock()

	e.tracker.HandleCancelled(clientOrderID)
	return nil
}

// applyStatus maps the synchronous submit response onto tracker events.
func (e *LiveExecution) applyStatus(id string, intent domain.OrderIntent, resp *clob.OrderResponse) {
	fillPrice := resp.AvgPrice
	if fillPrice.IsZero() {
		fillPrice = intent.Price
	}

	switch {
	case resp.Status == clob.StatusMatched || resp.SizeMatched.GreaterThanOrEqual(intent.Size):
		e.tracker.HandleFilled(id, domain.FillInfo{Size: intent.Size, Price: fillPrice})

	case resp.SizeMatched.IsPositive():
		e.tracker.HandleOpened(id)
		e.tracker.HandlePartialFill(id, domain.FillInfo{Size: resp.SizeMatched, Price: fillPrice})

	case resp.Status == clob.StatusCancelled:
		e.tracker.HandleCancelled(id)

	case resp.Status == clob.StatusExpired:
		e.tracker.HandleExpired(id)

	default:
		e.tracker.HandleOpened(id)
	}
}
