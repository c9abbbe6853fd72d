package order

import (
	"fmt"
	"sync"
	"time"

	"predict_go/internal/domain"
)

// Registry is the authoritative store of in-flight and recently terminal
// orders, indexed by client order ID and by market. All external access is
// read-only through accessors; records are mutated only via UpdateState and
// UpdateExchangeOrderID.
type Registry struct {
	mu       sync.RWMutex
	orders   map[string]*domain.PendingOrder
	byMarket map[string]map[string]struct{} // conditionID -> client order IDs
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		orders:   make(map[string]*domain.PendingOrder),
		byMarket: make(map[string]map[string]struct{}),
	}
}

// Track inserts a new pending order. A duplicate client order ID is an
// invariant violation, not a runtime condition: the process halts rather
// than silently overwriting state.
func (r *Registry) Track(o *domain.PendingOrder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.ClientOrderID]; exists {
		panic(fmt.Sprintf("INVARIANT_VIOLATION: order %s tracked twice", o.ClientOrderID))
	}

	r.orders[o.ClientOrderID] = o

	ids, ok := r.byMarket[o.ConditionID]
	if !ok {
		ids = make(map[string]struct{})
		r.byMarket[o.ConditionID] = ids
	}
	ids[o.ClientOrderID] = struct{}{}
}

// UpdateState overwrites the order state. No-op if the ID is unknown.
// Callers are expected to have validated the transition first.
func (r *Registry) UpdateState(id string, s domain.PendingState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.orders[id]; ok {
		o.State = s
	}
}

// UpdateExchangeOrderID records the venue-assigned order ID.
func (r *Registry) UpdateExchangeOrderID(id, exchangeOrderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.orders[id]; ok {
		o.ExchangeOrderID = exchangeOrderID
	}
}

// Get returns a copy of the record for the given client order ID.
func (r *Registry) Get(id string) (domain.PendingOrder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.PendingOrder{}, false
	}
	return *o, true
}

// ByMarket returns copies of all records for the given market.
func (r *Registry) ByMarket(conditionID string) []domain.PendingOrder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.byMarket[conditionID]
	if !ok {
		return nil
	}

	result := make([]domain.PendingOrder, 0, len(ids))
	for id := range ids {
		result = append(result, *r.orders[id])
	}
	return result
}

// ActiveOrders returns copies of all non-terminal records. The paper
// executor sweeps these for aged orders.
func (r *Registry) ActiveOrders() []domain.PendingOrder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.PendingOrder
	for _, o := range r.orders {
		if o.IsActive() {
			result = append(result, *o)
		}
	}
	return result
}

// ActiveCount returns the number of non-terminal records.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, o := range r.orders {
		if o.IsActive() {
			count++
		}
	}
	return count
}

// Cleanup removes terminal records older than ttl from both indices and
// returns the client order IDs removed. Long-running processes must call
// this periodically or terminal orders accumulate without bound; the tracker
// uses the returned IDs to reclaim its per-order totals in the same sweep.
func (r *Registry) Cleanup(ttl time.Duration, now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, o := range r.orders {
		if !domain.IsTerminal(o.State) {
			continue
		}
		if now.Sub(o.SubmittedAt) <= ttl {
			continue
		}

		delete(r.orders, id)
		if ids, ok := r.byMarket[o.ConditionID]; ok {
			delete(ids, id)
			if len(ids) == 0 {
				delete(r.byMarket, o.ConditionID)
			}
		}
		removed = append(removed, id)
	}
	return removed
}
