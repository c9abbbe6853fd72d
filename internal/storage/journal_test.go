package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"predict_go/internal/domain"
	"predict_go/internal/event"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewJournal error: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_AppendAndLoad(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	events := []event.OrderEvent{
		{
			Type:          event.EvOrderSubmitted,
			ClientOrderID: "ord-1",
			ConditionID:   "cond-a",
			State:         domain.StateSubmitted,
			TsUnixMicros:  1_000_000,
		},
		{
			Type:          event.EvOrderPartialFill,
			ClientOrderID: "ord-1",
			ConditionID:   "cond-a",
			State:         domain.StatePartiallyFilled,
			FillSize:      decimal.RequireFromString("4"),
			FillPrice:     decimal.RequireFromString("0.60"),
			TsUnixMicros:  2_000_000,
		},
		{
			Type:          event.EvOrderFilled,
			ClientOrderID: "ord-1",
			ConditionID:   "cond-a",
			State:         domain.StateFilled,
			FillSize:      decimal.RequireFromString("6"),
			FillPrice:     decimal.RequireFromString("0.62"),
			TsUnixMicros:  3_000_000,
		},
	}
	for _, ev := range events {
		if err := j.Append(ctx, ev); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}

	got, err := j.LoadByOrder(ctx, "ord-1")
	if err != nil {
		t.Fatalf("LoadByOrder error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("loaded %d events, want 3", len(got))
	}

	// Insertion order preserved.
	for i, want := range []event.Type{event.EvOrderSubmitted, event.EvOrderPartialFill, event.EvOrderFilled} {
		if got[i].Type != want {
			t.Errorf("event[%d].Type = %d, want %d", i, got[i].Type, want)
		}
	}
	if !got[1].FillSize.Equal(decimal.RequireFromString("4")) {
		t.Errorf("fill size = %s, want 4", got[1].FillSize)
	}
	if !got[2].FillPrice.Equal(decimal.RequireFromString("0.62")) {
		t.Errorf("fill price = %s, want 0.62", got[2].FillPrice)
	}
}

func TestJournal_LoadFiltersByOrder(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	j.Append(ctx, event.OrderEvent{Type: event.EvOrderSubmitted, ClientOrderID: "ord-1", ConditionID: "cond-a"})
	j.Append(ctx, event.OrderEvent{Type: event.EvOrderSubmitted, ClientOrderID: "ord-2", ConditionID: "cond-a"})

	got, err := j.LoadByOrder(ctx, "ord-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ClientOrderID != "ord-1" {
		t.Errorf("filter leaked events: %+v", got)
	}
}

func TestJournal_LoadUnknownOrder(t *testing.T) {
	j := openTestJournal(t)

	got, err := j.LoadByOrder(context.Background(), "ord-ghost")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no events, got %d", len(got))
	}
}
