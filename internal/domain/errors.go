package domain

import (
	"errors"
	"fmt"
)

// Severity classifies trading errors for retry decisions.
type Severity int

const (
	SeverityRetryable Severity = iota
	SeverityNonRetryable
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityRetryable:
		return "RETRYABLE"
	case SeverityNonRetryable:
		return "NON_RETRYABLE"
	case SeverityFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// TradingError carries a severity so callers can decide whether to retry.
type TradingError struct {
	Severity Severity
	Op       string
	Err      error
}

func (e *TradingError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Severity, e.Op, e.Err)
}

func (e *TradingError) Unwrap() error { return e.Err }

// NewTradingError wraps err with an operation name and severity.
func NewTradingError(severity Severity, op string, err error) *TradingError {
	return &TradingError{Severity: severity, Op: op, Err: err}
}

// IsRetryable reports whether err (or anything it wraps) is retryable.
func IsRetryable(err error) bool {
	var te *TradingError
	if errors.As(err, &te) {
		return te.Severity == SeverityRetryable
	}
	return errors.Is(err, ErrWaitTimeout)
}

// Sentinel errors surfaced by the engine. Invariant violations (duplicate
// Track of a client order ID) are not errors: they panic.
var (
	// ErrOrderNotFound: cancel or wait on an unknown client order ID.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition: a direct caller requested an edge not in the
	// lifecycle table. Event handlers never return this; they drop.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrWaitTimeout: we gave up waiting for a terminal state. Distinct
	// from any exchange-side rejection.
	ErrWaitTimeout = errors.New("timed out waiting for order")

	// ErrTrackerDisposed: the tracker was shut down while callers waited.
	ErrTrackerDisposed = errors.New("tracker disposed")

	// ErrDuplicateSubmit: an identical order signature was submitted
	// within the idempotency window.
	ErrDuplicateSubmit = errors.New("duplicate order submission")

	// ErrCircuitOpen: the live order path is failing fast after repeated
	// order-service errors.
	ErrCircuitOpen = errors.New("order service circuit open")
)

func invalidTransition(from, to PendingState) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
