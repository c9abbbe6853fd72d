package execution

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"predict_go/internal/domain"
	"predict_go/internal/infra"
	"predict_go/internal/order"
)

// PaperConfig tunes the simulated executor.
type PaperConfig struct {
	// FillProbability drives the fixed-probability fill model (ignored
	// when UseQueueModel is set).
	FillProbability float64

	// SlippageBps worsens the effective fill price: buys pay more, sells
	// receive less, by SlippageBps/10000.
	SlippageBps int64

	// MaxOrderAge force-cancels resting orders older than this on every
	// submit. Zero disables the sweep.
	MaxOrderAge time.Duration

	// MaxFillHistory bounds the retained fill log; oldest entries drop
	// first. Zero keeps everything.
	MaxFillHistory int

	// UseQueueModel switches from the fixed-probability model to the
	// resting-order queue simulator fed by OnQuote.
	UseQueueModel bool

	Queue QueueConfig
}

// Fill is one simulated execution, retained for inspection.
type Fill struct {
	OrderID      string
	TokenID      string
	Side         domain.Side
	Price        decimal.Decimal
	Size         decimal.Decimal
	TsUnixMicros int64
}

type restingOrder struct {
	entry   *QueueEntry
	tokenID string
}

// PaperExecution simulates order execution without touching an exchange.
// Submissions either resolve immediately through the fixed-probability
// model or rest in the queue simulator until quotes arrive via OnQuote.
type PaperExecution struct {
	mu sync.Mutex

	cfg      PaperConfig
	clock    infra.Clock
	rng      func() float64
	ids      IDSource
	registry *order.Registry
	tracker  *order.Tracker
	guard    *SubmitGuard

	queue  *QueueModel
	queued map[string]*restingOrder
	fills  []Fill
}

// NewPaperExecution creates a paper executor. rng may be nil for the
// default source; inject a fixed sequence for reproducible runs.
func NewPaperExecution(cfg PaperConfig, clock infra.Clock, registry *order.Registry, tracker *order.Tracker, guard *SubmitGuard, ids IDSource, rng func() float64) *PaperExecution {
	if rng == nil {
		rng = rand.Float64
	}
	if ids == nil {
		ids = NewSeqSource("paper")
	}
	return &PaperExecution{
		cfg:      cfg,
		clock:    clock,
		rng:      rng,
		ids:      ids,
		registry: registry,
		tracker:  tracker,
		guard:    guard,
		queue:    NewQueueModel(cfg.Queue, rng),
		queued:   make(map[string]*restingOrder),
	}
}

// Submit simulates submitting an order. Aged resting orders are swept
// first; duplicates inside the idempotency window are rejected.
func (p *PaperExecution) Submit(ctx context.Context, intent domain.OrderIntent) (*domain.OrderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	p.sweepAgedLocked(now)

	if p.guard != nil && p.guard.IsDuplicate(intent.TokenID, intent.Side, intent.Price, intent.Size) {
		return nil, domain.NewTradingError(domain.SeverityNonRetryable, "paper submit", domain.ErrDuplicateSubmit)
	}

	id := p.ids.Next()
	po := domain.NewPendingOrder(id, intent, now)
	p.registry.Track(po)

	next, err := domain.TryTransition(po.State, domain.StateSubmitted)
	if err != nil {
		return nil, domain.NewTradingError(domain.SeverityFatal, "paper submit", err)
	}
	p.registry.UpdateState(id, next)

	if p.cfg.UseQueueModel {
		p.queued[id] = &restingOrder{
			entry:   p.queue.Enqueue(intent.Price, intent.Size, intent.Side == domain.SideBuy, now),
			tokenID: intent.TokenID,
		}
		p.tracker.HandleOpened(id)
	} else if p.rng() < p.cfg.FillProbability {
		price := applySlippage(intent.Price, intent.Side, p.cfg.SlippageBps)
		p.tracker.HandleFilled(id, domain.FillInfo{Size: intent.Size, Price: price})
		p.recordFillLocked(Fill{
			OrderID:      id,
			TokenID:      intent.TokenID,
			Side:         intent.Side,
			Price:        price,
			Size:         intent.Size,
			TsUnixMicros: now.UnixMicro(),
		})

		slog.Info("PAPER EXECUTION: Order Filled",
			slog.String("id", id),
			slog.String("token", intent.TokenID),
			slog.String("side", string(intent.Side)),
			slog.String("price", price.String()),
			slog.String("size", intent.Size.String()))
	} else {
		p.tracker.HandleOpened(id)
	}

	res, err := p.tracker.Result(id)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Cancel cancels a resting simulated order.
func (p *PaperExecution) Cancel(ctx context.Context, clientOrderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, ok := p.registry.Get(clientOrderID)
	if !ok {
		return domain.NewTradingError(domain.SeverityNonRetryable, "paper cancel",
			fmt.Errorf("%w: %s", domain.ErrOrderNotFound, clientOrderID))
	}
	if !rec.IsActive() {
		return domain.NewTradingError(domain.SeverityNonRetryable, "paper cancel",
			fmt.Errorf("order %s already %s", clientOrderID, rec.State))
	}

	if ro, resting := p.queued[clientOrderID]; resting {
		p.queue.Remove(ro.entry)
		delete(p.queued, clientOrderID)
	}

	p.tracker.HandleCancelled(clientOrderID)
	slog.Info("PAPER EXECUTION: Order Cancelled", slog.String("id", clientOrderID))
	return nil
}

// OnQuote feeds a top-of-book update to the queue simulator, filling any
// resting orders whose draw succeeds.
func (p *PaperExecution) OnQuote(quote domain.Quote) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	for id, ro := range p.queued {
		if ro.tokenID != quote.TokenID {
			continue
		}

		price, filled := p.queue.TryFill(ro.entry, quote.BestBid, quote.BestAsk, now)
		if !filled {
			continue
		}

		delete(p.queued, id)
		p.tracker.HandleFilled(id, domain.FillInfo{Size: ro.entry.Size, Price: price})

		// The order may have gone terminal through another path (handle
		// timeout expiry) while still resting here; the tracker drops the
		// fill event then, and the history must agree with it.
		if rec, ok := p.registry.Get(id); !ok || rec.State != domain.StateFilled {
			continue
		}

		p.recordFillLocked(Fill{
			OrderID:      id,
			TokenID:      ro.tokenID,
			Side:         sideOf(ro.entry.IsBuy),
			Price:        price,
			Size:         ro.entry.Size,
			TsUnixMicros: now.UnixMicro(),
		})

		slog.Info("PAPER EXECUTION: Resting Order Filled",
			slog.String("id", id),
			slog.String("token", ro.tokenID),
			slog.String("price", price.String()))
	}
}

// Fills returns a copy of the retained fill history.
func (p *PaperExecution) Fills() []Fill {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := make([]Fill, len(p.fills))
	copy(result, p.fills)
	return result
}

// sweepAgedLocked force-cancels active orders older than MaxOrderAge.
func (p *PaperExecution) sweepAgedLocked(now time.Time) {
	if p.cfg.MaxOrderAge <= 0 {
		return
	}

	for _, o := range p.registry.ActiveOrders() {
		if now.Sub(o.SubmittedAt) <= p.cfg.MaxOrderAge {
			continue
		}

		if ro, resting := p.queued[o.ClientOrderID]; resting {
			p.queue.Remove(ro.entry)
			delete(p.queued, o.ClientOrderID)
		}
		p.tracker.HandleCancelled(o.ClientOrderID)

		slog.Info("PAPER EXECUTION: Aged Order Swept",
			slog.String("id", o.ClientOrderID),
			slog.Duration("age", now.Sub(o.SubmittedAt)))
	}
}

func (p *PaperExecution) recordFillLocked(f Fill) {
	p.fills = append(p.fills, f)
	if p.cfg.MaxFillHistory > 0 && len(p.fills) > p.cfg.MaxFillHistory {
		p.fills = p.fills[len(p.fills)-p.cfg.MaxFillHistory:]
	}
}

// applySlippage worsens the effective price by bps/10000: buys up, sells
// down.
func applySlippage(price decimal.Decimal, side domain.Side, bps int64) decimal.Decimal {
	if bps == 0 {
		return price
	}

	scale := decimal.NewFromInt(10000)
	if side == domain.SideBuy {
		return price.Mul(scale.Add(decimal.NewFromInt(bps))).Div(scale)
	}
	return price.Mul(scale.Sub(decimal.NewFromInt(bps))).Div(scale)
}

func sideOf(isBuy bool) domain.Side {
	if isBuy {
		return domain.SideBuy
	}
	return domain.SideSell
}
