package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestTradingError_WrapsAndClassifies(t *testing.T) {
	inner := fmt.Errorf("boom: %w", ErrDuplicateSubmit)
	err := NewTradingError(SeverityNonRetryable, "submit", inner)

	if !errors.Is(err, ErrDuplicateSubmit) {
		t.Error("TradingError must unwrap to the sentinel")
	}
	if IsRetryable(err) {
		t.Error("non-retryable error reported as retryable")
	}

	retryable := NewTradingError(SeverityRetryable, "submit", errors.New("503"))
	if !IsRetryable(retryable) {
		t.Error("retryable error not reported as retryable")
	}
}

func TestIsRetryable_WaitTimeout(t *testing.T) {
	err := fmt.Errorf("%w: ord-1", ErrWaitTimeout)
	if !IsRetryable(err) {
		t.Error("a bare wait timeout should be retryable")
	}
}
