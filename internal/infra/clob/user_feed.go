package clob

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"predict_go/internal/domain"
	"predict_go/internal/infra"
	"predict_go/internal/order"
)

// UserFeed consumes the user websocket channel and translates exchange
// order events into tracker handler calls. Delivery is at-least-once; the
// tracker absorbs duplicates and reordering, so the feed just forwards.
type UserFeed struct {
	url     string
	tracker *order.Tracker

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ReadTimeout time.Duration
	Backoff     infra.BackoffPolicy
}

// NewUserFeed creates a feed targeting the given websocket URL.
func NewUserFeed(url string, tracker *order.Tracker) *UserFeed {
	return &UserFeed{
		url:         url,
		tracker:     tracker,
		ReadTimeout: 60 * time.Second,
		Backoff:     infra.DefaultBackoff,
	}
}

// Start launches the connect/read loop.
func (f *UserFeed) Start(ctx context.Context) {
	ctx, f.cancel = context.WithCancel(ctx)
	f.wg.Add(1)
	go f.runLoop(ctx)
}

// Stop terminates the feed and waits for the loop to exit.
func (f *UserFeed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.closeConn()
	f.wg.Wait()
}

func (f *UserFeed) runLoop(ctx context.Context) {
	defer f.wg.Done()
	retry := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := f.connect(ctx); err != nil {
			slog.Warn("User feed connection failed",
				slog.Any("error", err), slog.Int("retry", retry))
			delay := f.Backoff.Delay(retry)
			retry++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		f.readLoop(ctx)
	}
}

func (f *UserFeed) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	return nil
}

func (f *UserFeed) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		f.mu.Lock()
		conn := f.conn
		f.mu.Unlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(f.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			slog.Warn("User feed read failed", slog.Any("error", err))
			f.closeConn()
			return
		}

		f.dispatch(msg)
	}
}

// dispatch maps one exchange message onto tracker handlers. Unknown
// payloads are logged and skipped; the tracker drops anything stale.
func (f *UserFeed) dispatch(msg []byte) {
	var ev userEventMsg
	if err := json.Unmarshal(msg, &ev); err != nil {
		slog.Warn("User feed message unparseable", slog.Any("error", err))
		return
	}
	if ev.ClientOrderID == "" {
		return
	}

	switch ev.EventType {
	case "trade":
		fill := domain.FillInfo{
			Size:    ev.SizeMatched,
			Price:   ev.Price,
			TradeID: ev.TradeID,
		}
		if !ev.Fee.IsZero() {
			fee := ev.Fee
			fill.Fee = &fee
		}
		if ev.Status == StatusMatched {
			f.tracker.HandleFilled(ev.ClientOrderID, fill)
		} else {
			f.tracker.HandlePartialFill(ev.ClientOrderID, fill)
		}

	case "order":
		switch ev.Status {
		case StatusLive, StatusDelayed:
			f.tracker.HandleOpened(ev.ClientOrderID)
		case StatusCancelled:
			f.tracker.HandleCancelled(ev.ClientOrderID)
		case StatusExpired:
			f.tracker.HandleExpired(ev.ClientOrderID)
		case StatusMatched:
			f.tracker.HandleFilled(ev.ClientOrderID, domain.FillInfo{
				Size:  ev.SizeMatched,
				Price: ev.Price,
			})
		default:
			slog.Warn("User feed unknown order status",
				slog.String("status", ev.Status),
				slog.String("client_order_id", ev.ClientOrderID))
		}

	default:
		slog.Warn("User feed unknown event type", slog.String("type", ev.EventType))
	}
}

func (f *UserFeed) closeConn() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
}
