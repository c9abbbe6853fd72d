package domain

// transitions is the fixed adjacency table for order lifecycle states.
// Terminal states have no outgoing edges.
var transitions = map[PendingState][]PendingState{
	StateCreated:         {StateSubmitted},
	StateSubmitted:       {StateOpen, StatePartiallyFilled, StateFilled, StateCancelled, StateExpired},
	StateOpen:            {StatePartiallyFilled, StateFilled, StateCancelled, StateExpired},
	StatePartiallyFilled: {StatePartiallyFilled, StateFilled, StateCancelled},
	StateFilled:          {},
	StateCancelled:       {},
	StateExpired:         {},
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to PendingState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TryTransition returns the new state, or ErrInvalidTransition if the edge
// is not in the table. This is the strict entry point for direct callers;
// event handlers use CanTransition and drop illegal events instead.
func TryTransition(from, to PendingState) (PendingState, error) {
	if !CanTransition(from, to) {
		return from, invalidTransition(from, to)
	}
	return to, nil
}

// IsTerminal reports whether the state has no outgoing edges.
func IsTerminal(s PendingState) bool {
	return s == StateFilled || s == StateCancelled || s == StateExpired
}

// IsActive reports whether the state can still transition.
func IsActive(s PendingState) bool {
	switch s {
	case StateCreated, StateSubmitted, StateOpen, StatePartiallyFilled:
		return true
	}
	return false
}
