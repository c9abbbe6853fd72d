package order

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"predict_go/internal/domain"
	"predict_go/internal/event"
	"predict_go/internal/infra"
)

// DefaultWaitTimeout bounds WaitForOrder when no explicit timeout is
// configured.
const DefaultWaitTimeout = 30 * time.Second

type waitOutcome struct {
	result domain.OrderResult
	err    error
}

type waiter struct {
	ch    chan waitOutcome
	timer infra.Timer
}

// Tracker bridges asynchronous exchange/simulation events into registry
// state and caller-visible outcomes. Event delivery is at-least-once and
// may be duplicated or reordered, so every handler validates the requested
// transition and silently drops illegal ones; the drop count is exposed for
// observability.
//
// All mutation is serialized under one mutex; user callbacks run outside it
// and are isolated so a panicking callback cannot corrupt tracker state or
// stall other orders.
type Tracker struct {
	mu       sync.Mutex
	registry *Registry
	clock    infra.Clock

	waitTimeout time.Duration

	handles      map[string]Handle
	handleTimers map[string]infra.Timer
	waiters      map[string][]*waiter

	// Running totals, keyed by client order ID.
	filled   map[string]decimal.Decimal
	notional map[string]decimal.Decimal
	fees     map[string]decimal.Decimal
	tradeIDs map[string]string

	dropped  atomic.Uint64
	disposed bool

	onEvent func(event.OrderEvent)      // optional journal hook
	errSink func(orderID string, r any) // optional callback-panic sink
}

// NewTracker creates a tracker over the given registry. waitTimeout bounds
// WaitForOrder; zero selects DefaultWaitTimeout.
func NewTracker(registry *Registry, clock infra.Clock, waitTimeout time.Duration) *Tracker {
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitTimeout
	}
	return &Tracker{
		registry:     registry,
		clock:        clock,
		waitTimeout:  waitTimeout,
		handles:      make(map[string]Handle),
		handleTimers: make(map[string]infra.Timer),
		waiters:      make(map[string][]*waiter),
		filled:       make(map[string]decimal.Decimal),
		notional:     make(map[string]decimal.Decimal),
		fees:         make(map[string]decimal.Decimal),
		tradeIDs:     make(map[string]string),
	}
}

// SetEventSink registers a hook invoked for every accepted transition.
// Used by the journal; must be set before events flow.
func (t *Tracker) SetEventSink(fn func(event.OrderEvent)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEvent = fn
}

// SetErrorSink registers a sink for recovered callback panics. By default
// they are logged and discarded.
func (t *Tracker) SetErrorSink(fn func(orderID string, r any)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errSink = fn
}

// RegisterHandle stores the callback bundle for an order. A configured
// handle timeout schedules a timer that forces the order to Expired if it
// is still non-terminal; any prior timer for the same ID is cancelled.
func (t *Tracker) RegisterHandle(id string, h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.disposed {
		return
	}

	if prev, ok := t.handleTimers[id]; ok {
		prev.Stop()
		delete(t.handleTimers, id)
	}

	t.handles[id] = h

	if h.Timeout > 0 {
		t.handleTimers[id] = t.clock.AfterFunc(h.Timeout, func() {
			t.HandleExpired(id)
		})
	}
}

// WaitForOrder blocks until the order reaches a terminal state, then
// returns its result. Resolves immediately if the order is already
// terminal; fails immediately with ErrOrderNotFound if the ID is unknown.
// A tracker-level timeout, independent of any handle timeout, fails the
// wait with ErrWaitTimeout without changing order state.
func (t *Tracker) WaitForOrder(ctx context.Context, id string) (domain.OrderResult, error) {
	t.mu.Lock()

	if t.disposed {
		t.mu.Unlock()
		return domain.OrderResult{}, domain.ErrTrackerDisposed
	}

	rec, ok := t.registry.Get(id)
	if !ok {
		t.mu.Unlock()
		return domain.OrderResult{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}

	if domain.IsTerminal(rec.State) {
		res := t.buildResultLocked(rec)
		t.mu.Unlock()
		return res, nil
	}

	w := &waiter{ch: make(chan waitOutcome, 1)}
	w.timer = t.clock.AfterFunc(t.waitTimeout, func() {
		t.timeoutWaiter(id, w)
	})
	t.waiters[id] = append(t.waiters[id], w)
	t.mu.Unlock()

	select {
	case <-ctx.Done():
		t.dropWaiter(id, w)
		return domain.OrderResult{}, ctx.Err()
	case out := <-w.ch:
		return out.result, out.err
	}
}

// timeoutWaiter fires when a wait-level timer expires before terminal
// completion. Only the waiter fails; the order itself is untouched.
func (t *Tracker) timeoutWaiter(id string, w *waiter) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.removeWaiterLocked(id, w) {
		w.ch <- waitOutcome{err: fmt.Errorf("%w: %s", domain.ErrWaitTimeout, id)}
	}
}

// dropWaiter detaches a waiter whose caller gave up (context cancelled).
func (t *Tracker) dropWaiter(id string, w *waiter) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.removeWaiterLocked(id, w) {
		w.timer.Stop()
	}
}

// removeWaiterLocked unlinks w; returns false if it was already resolved.
func (t *Tracker) removeWaiterLocked(id string, w *waiter) bool {
	ws := t.waiters[id]
	for i, cand := range ws {
		if cand == w {
			t.waiters[id] = append(ws[:i], ws[i+1:]...)
			if len(t.waiters[id]) == 0 {
				delete(t.waiters, id)
			}
			return true
		}
	}
	return false
}

// HandleOpened records the venue acknowledging the order onto the book.
func (t *Tracker) HandleOpened(id string) {
	t.apply(id, domain.StateOpen, nil)
}

// HandlePartialFill applies a partial fill event.
func (t *Tracker) HandlePartialFill(id string, fill domain.FillInfo) {
	t.apply(id, domain.StatePartiallyFilled, &fill)
}

// HandleFilled applies a full fill event.
func (t *Tracker) HandleFilled(id string, fill domain.FillInfo) {
	t.apply(id, domain.StateFilled, &fill)
}

// HandleCancelled applies a cancellation event.
func (t *Tracker) HandleCancelled(id string) {
	t.apply(id, domain.StateCancelled, nil)
}

// HandleExpired applies an expiry event.
func (t *Tracker) HandleExpired(id string) {
	t.apply(id, domain.StateExpired, nil)
}

// HandleRejected applies an exchange-side rejection. The lifecycle table
// has no separate rejected state; a refused order ends Cancelled.
func (t *Tracker) HandleRejected(id string) {
	t.apply(id, domain.StateCancelled, nil)
}

// DroppedEvents returns how many events were ignored as stale or duplicate
// deliveries.
func (t *Tracker) DroppedEvents() uint64 {
	return t.dropped.Load()
}

// Cleanup reclaims terminal orders older than ttl: the registry records and
// the tracker's running totals for them, in one sweep. Returns how many
// orders were reclaimed. Results for cleaned orders are no longer
// resolvable.
func (t *Tracker) Cleanup(ttl time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := t.registry.Cleanup(ttl, t.clock.Now())
	for _, id := range removed {
		delete(t.filled, id)
		delete(t.notional, id)
		delete(t.fees, id)
		delete(t.tradeIDs, id)
		delete(t.handles, id)
		if timer, ok := t.handleTimers[id]; ok {
			timer.Stop()
			delete(t.handleTimers, id)
		}
	}
	return len(removed)
}

// Dispose cancels every outstanding timer and fails every pending waiter
// with ErrTrackerDisposed. The tracker accepts no further events.
func (t *Tracker) Dispose() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.disposed {
		return
	}
	t.disposed = true

	for id, timer := range t.handleTimers {
		timer.Stop()
		delete(t.handleTimers, id)
	}

	for id, ws := range t.waiters {
		for _, w := range ws {
			w.timer.Stop()
			w.ch <- waitOutcome{err: domain.ErrTrackerDisposed}
		}
		delete(t.waiters, id)
	}

	t.handles = make(map[string]Handle)
}

// apply validates and performs one state transition, fires callbacks and
// resolves waiters. This is the single serialization point for all order
// mutation.
func (t *Tracker) apply(id string, to domain.PendingState, fill *domain.FillInfo) {
	var calls []func()

	t.mu.Lock()

	if t.disposed {
		t.mu.Unlock()
		return
	}

	rec, ok := t.registry.Get(id)
	if !ok || !domain.CanTransition(rec.State, to) {
		// Stale or duplicate delivery. Expected under at-least-once
		// transport; count it and move on.
		t.dropped.Add(1)
		t.mu.Unlock()
		return
	}

	t.registry.UpdateState(id, to)
	rec.State = to

	h := t.handles[id]

	if fill != nil {
		delta := fill.Size
		total := t.filled[id].Add(delta)
		if to == domain.StateFilled && total.GreaterThan(rec.Size) {
			delta = rec.Size.Sub(t.filled[id])
			total = rec.Size
		}
		t.filled[id] = total
		t.notional[id] = t.notional[id].Add(delta.Mul(fill.Price))
		if fill.Fee != nil {
			t.fees[id] = t.fees[id].Add(*fill.Fee)
		}
		if fill.TradeID != "" {
			t.tradeIDs[id] = fill.TradeID
		}

		if h.OnFill != nil {
			f := *fill
			calls = append(calls, t.isolate(id, func() { h.OnFill(f) }))
		}
	}

	if t.onEvent != nil {
		ev := event.OrderEvent{
			Type:          event.ForState(to),
			ClientOrderID: id,
			ConditionID:   rec.ConditionID,
			State:         to,
			TsUnixMicros:  t.clock.Now().UnixMicro(),
		}
		if fill != nil {
			ev.FillSize = fill.Size
			ev.FillPrice = fill.Price
		}
		sink := t.onEvent
		calls = append(calls, t.isolate(id, func() { sink(ev) }))
	}

	if domain.IsTerminal(to) {
		res := t.buildResultLocked(rec)

		if timer, ok := t.handleTimers[id]; ok {
			timer.Stop()
			delete(t.handleTimers, id)
		}

		for _, w := range t.waiters[id] {
			w.timer.Stop()
			w.ch <- waitOutcome{result: res}
		}
		delete(t.waiters, id)

		switch to {
		case domain.StateFilled:
			if h.OnComplete != nil {
				calls = append(calls, t.isolate(id, func() { h.OnComplete(res) }))
			}
		case domain.StateCancelled, domain.StateExpired:
			if h.OnCancel != nil {
				calls = append(calls, t.isolate(id, func() { h.OnCancel(res) }))
			}
		}

		delete(t.handles, id)
	}

	t.mu.Unlock()

	for _, call := range calls {
		call()
	}
}

// isolate wraps a callback so a panic is recovered and reported instead of
// propagating into event processing.
func (t *Tracker) isolate(id string, fn func()) func() {
	sink := t.errSink
	return func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("CALLBACK_PANIC", slog.String("order_id", id), slog.Any("panic", r))
				if sink != nil {
					sink(id, r)
				}
			}
		}()
		fn()
	}
}

// buildResultLocked assembles the terminal snapshot for rec from the
// registry record and the tracker's running totals.
func (t *Tracker) buildResultLocked(rec domain.PendingOrder) domain.OrderResult {
	id := rec.ClientOrderID
	res := domain.OrderResult{
		ClientOrderID:   id,
		ExchangeOrderID: rec.ExchangeOrderID,
		FinalState:      rec.State,
		TotalFilled:     t.filled[id],
		TradeID:         t.tradeIDs[id],
	}

	if res.TotalFilled.IsPositive() {
		avg := t.notional[id].Div(res.TotalFilled)
		res.AvgFillPrice = &avg
	}
	if fee, ok := t.fees[id]; ok && !fee.IsZero() {
		f := fee
		res.Fee = &f
	}

	return res
}

// Result returns the current snapshot for an order, terminal or not.
// Executors use this to report submission outcomes.
func (t *Tracker) Result(id string) (domain.OrderResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.registry.Get(id)
	if !ok {
		return domain.OrderResult{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return t.buildResultLocked(rec), nil
}
