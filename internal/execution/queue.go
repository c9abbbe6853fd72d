package execution

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// QueueConfig tunes the resting-order fill simulator.
type QueueConfig struct {
	// BaseFillRate is the probability of a fill once the order has fully
	// worked its way to the front of the queue.
	BaseFillRate float64

	// DecayRatePerMS is the fraction of queue position recovered per
	// millisecond in queue. Zero disables time-based fills.
	DecayRatePerMS float64

	// SizePenalty shrinks fill probability as order size grows: larger
	// resting orders are less likely to be fully consumed by opposing
	// flow inside a fixed window.
	SizePenalty float64

	// AdverseSelectionFactor multiplies the probability when the opposite
	// side's best price has moved through the entry price. Real flow
	// would have executed against the resting order.
	AdverseSelectionFactor float64
}

// QueueEntry is one simulated resting order. QueuePosition starts at 1.0
// (back of queue) and decays toward 0 over time.
type QueueEntry struct {
	Price         decimal.Decimal
	Size          decimal.Decimal
	IsBuy         bool
	EnqueuedAt    time.Time
	QueuePosition float64

	removed bool
}

// QueueModel estimates the probability that a resting limit order executes,
// as a function of time in queue, order size and adverse price movement.
// Used only by the paper executor.
type QueueModel struct {
	mu  sync.Mutex
	cfg QueueConfig
	rng func() float64
}

// NewQueueModel creates a queue model. rng must return draws in [0,1); it
// is called exactly once per TryFill so fixed sequences reproduce runs.
func NewQueueModel(cfg QueueConfig, rng func() float64) *QueueModel {
	return &QueueModel{cfg: cfg, rng: rng}
}

// Enqueue registers a new resting order at the back of the queue.
func (m *QueueModel) Enqueue(price, size decimal.Decimal, isBuy bool, now time.Time) *QueueEntry {
	return &QueueEntry{
		Price:         price,
		Size:          size,
		IsBuy:         isBuy,
		EnqueuedAt:    now,
		QueuePosition: 1.0,
	}
}

// TryFill draws once against the current fill probability. On success it
// returns the effective fill price: never worse than the entry limit, but
// better if the market moved favorably. Removed entries never fill.
func (m *QueueModel) TryFill(e *QueueEntry, bestBid, bestAsk decimal.Decimal, now time.Time) (decimal.Decimal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.removed {
		return decimal.Decimal{}, false
	}

	elapsedMS := float64(now.Sub(e.EnqueuedAt).Milliseconds())
	position := 1.0
	if m.cfg.DecayRatePerMS > 0 {
		position = 1.0 - elapsedMS*m.cfg.DecayRatePerMS
		if position < 0 {
			position = 0
		}
	}
	e.QueuePosition = position

	p := m.cfg.BaseFillRate * (1.0 - position)

	if m.cfg.SizePenalty > 0 {
		size, _ := e.Size.Float64()
		p /= 1.0 + m.cfg.SizePenalty*size
	}

	if m.adverselySelected(e, bestBid, bestAsk) {
		p *= m.cfg.AdverseSelectionFactor
	}

	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	// Exactly one draw per call, regardless of p.
	draw := m.rng()
	if draw >= p {
		return decimal.Decimal{}, false
	}

	if e.IsBuy {
		return decimal.Min(e.Price, bestAsk), true
	}
	return decimal.Max(e.Price, bestBid), true
}

// Remove stops tracking the entry (manual cancel).
func (m *QueueModel) Remove(e *QueueEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.removed = true
}

// adverselySelected reports whether the opposite side's best price has
// crossed the entry price.
func (m *QueueModel) adverselySelected(e *QueueEntry, bestBid, bestAsk decimal.Decimal) bool {
	if e.IsBuy {
		return bestAsk.LessThanOrEqual(e.Price)
	}
	return bestBid.GreaterThanOrEqual(e.Price)
}
