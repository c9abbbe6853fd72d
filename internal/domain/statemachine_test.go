package domain

import (
	"errors"
	"testing"
)

var allStates = []PendingState{
	StateCreated, StateSubmitted, StateOpen,
	StatePartiallyFilled, StateFilled, StateCancelled, StateExpired,
}

// legalEdges mirrors the lifecycle table; every pair outside it must be
// rejected.
var legalEdges = map[PendingState][]PendingState{
	StateCreated:         {StateSubmitted},
	StateSubmitted:       {StateOpen, StatePartiallyFilled, StateFilled, StateCancelled, StateExpired},
	StateOpen:            {StatePartiallyFilled, StateFilled, StateCancelled, StateExpired},
	StatePartiallyFilled: {StatePartiallyFilled, StateFilled, StateCancelled},
}

func isLegal(from, to PendingState) bool {
	for _, next := range legalEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

func TestCanTransition_AllPairs(t *testing.T) {
	for _, from := range allStates {
		for _, to := range allStates {
			want := isLegal(from, to)
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransition_TerminalStatesRejectEverything(t *testing.T) {
	for _, from := range []PendingState{StateFilled, StateCancelled, StateExpired} {
		for _, to := range allStates {
			if CanTransition(from, to) {
				t.Errorf("terminal state %s must reject transition to %s", from, to)
			}
		}
	}
}

func TestCanTransition_PartialFillSelfEdge(t *testing.T) {
	if !CanTransition(StatePartiallyFilled, StatePartiallyFilled) {
		t.Error("PartiallyFilled -> PartiallyFilled must be legal")
	}
}

func TestTryTransition(t *testing.T) {
	got, err := TryTransition(StateCreated, StateSubmitted)
	if err != nil {
		t.Fatalf("TryTransition(Created, Submitted) error: %v", err)
	}
	if got != StateSubmitted {
		t.Errorf("TryTransition returned %s, want %s", got, StateSubmitted)
	}

	got, err = TryTransition(StateFilled, StateOpen)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if got != StateFilled {
		t.Errorf("failed transition must return the old state, got %s", got)
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range allStates {
		want := s == StateFilled || s == StateCancelled || s == StateExpired
		if got := IsTerminal(s); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, got, want)
		}
		if IsActive(s) == want {
			t.Errorf("IsActive(%s) must be the inverse of IsTerminal", s)
		}
	}
}
