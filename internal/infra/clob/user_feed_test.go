package clob

import (
	"testing"
	"time"

	"predict_go/internal/domain"
	"predict_go/internal/infra"
	"predict_go/internal/order"
)

type feedHarness struct {
	registry *order.Registry
	tracker  *order.Tracker
	feed     *UserFeed
}

func newFeedHarness(t *testing.T) *feedHarness {
	t.Helper()
	clock := infra.NewFakeClock(time.Unix(1000, 0))
	registry := order.NewRegistry()
	tracker := order.NewTracker(registry, clock, time.Minute)

	po := domain.NewPendingOrder("ord-1", domain.OrderIntent{
		ConditionID: "cond-a",
		TokenID:     "tok-1",
		Side:        domain.SideBuy,
		Direction:   domain.DirectionOpen,
		Price:       dec("0.65"),
		Size:        dec("10"),
	}, clock.Now())
	registry.Track(po)
	registry.UpdateState("ord-1", domain.StateSubmitted)

	return &feedHarness{
		registry: registry,
		tracker:  tracker,
		feed:     NewUserFeed("ws://unused", tracker),
	}
}

func (h *feedHarness) state(t *testing.T) domain.PendingState {
	t.Helper()
	rec, ok := h.registry.Get("ord-1")
	if !ok {
		t.Fatal("order missing from registry")
	}
	return rec.State
}

func TestUserFeed_DispatchOrderStatuses(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want domain.PendingState
	}{
		{"live opens", `{"event_type":"order","client_order_id":"ord-1","status":"LIVE"}`, domain.StateOpen},
		{"delayed opens", `{"event_type":"order","client_order_id":"ord-1","status":"DELAYED"}`, domain.StateOpen},
		{"cancelled", `{"event_type":"order","client_order_id":"ord-1","status":"CANCELLED"}`, domain.StateCancelled},
		{"expired", `{"event_type":"order","client_order_id":"ord-1","status":"EXPIRED"}`, domain.StateExpired},
		{"matched fills", `{"event_type":"order","client_order_id":"ord-1","status":"MATCHED","size_matched":"10","price":"0.65"}`, domain.StateFilled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newFeedHarness(t)
			h.feed.dispatch([]byte(tt.msg))
			if got := h.state(t); got != tt.want {
				t.Errorf("state = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUserFeed_DispatchTradeEvents(t *testing.T) {
	h := newFeedHarness(t)
	h.feed.dispatch([]byte(`{"event_type":"order","client_order_id":"ord-1","status":"LIVE"}`))

	h.feed.dispatch([]byte(`{"event_type":"trade","client_order_id":"ord-1","status":"LIVE","size_matched":"4","price":"0.60","trade_id":"tr-1","fee":"0.01"}`))
	if got := h.state(t); got != domain.StatePartiallyFilled {
		t.Fatalf("state after partial trade = %s", got)
	}

	h.feed.dispatch([]byte(`{"event_type":"trade","client_order_id":"ord-1","status":"MATCHED","size_matched":"6","price":"0.62","trade_id":"tr-2"}`))
	if got := h.state(t); got != domain.StateFilled {
		t.Fatalf("state after final trade = %s", got)
	}

	res, err := h.tracker.Result("ord-1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.TotalFilled.Equal(dec("10")) {
		t.Errorf("total filled = %s, want 10", res.TotalFilled)
	}
}

func TestUserFeed_DispatchIgnoresGarbage(t *testing.T) {
	h := newFeedHarness(t)

	h.feed.dispatch([]byte(`not json`))
	h.feed.dispatch([]byte(`{"event_type":"order","status":"LIVE"}`))                              // no client order ID
	h.feed.dispatch([]byte(`{"event_type":"quote","client_order_id":"ord-1"}`))                    // unknown type
	h.feed.dispatch([]byte(`{"event_type":"order","client_order_id":"ord-1","status":"WEDGED"}`)) // unknown status

	if got := h.state(t); got != domain.StateSubmitted {
		t.Errorf("garbage messages changed state to %s", got)
	}
}
