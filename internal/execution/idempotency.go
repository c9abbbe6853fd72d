package execution

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"predict_go/internal/domain"
	"predict_go/internal/infra"
)

// SubmitGuard filters duplicate order submissions inside a TTL window.
// The key is the order signature (token, side, price, size); a legitimate
// resubmission after the TTL elapses is always accepted.
type SubmitGuard struct {
	mu      sync.Mutex
	clock   infra.Clock
	ttl     time.Duration
	entries map[string]time.Time // signature -> expiry
}

// NewSubmitGuard creates a guard with the given TTL.
func NewSubmitGuard(clock infra.Clock, ttl time.Duration) *SubmitGuard {
	return &SubmitGuard{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]time.Time),
	}
}

// IsDuplicate reports whether an identical signature was seen within the
// TTL. A fresh signature is recorded as a side effect. Expired entries are
// evicted lazily on each call.
func (g *SubmitGuard) IsDuplicate(tokenID string, side domain.Side, price, size decimal.Decimal) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	for key, expiry := range g.entries {
		if now.After(expiry) {
			delete(g.entries, key)
		}
	}

	key := fmt.Sprintf("%s|%s|%s|%s", tokenID, side, price.String(), size.String())
	if _, seen := g.entries[key]; seen {
		return true
	}

	g.entries[key] = now.Add(g.ttl)
	return false
}
