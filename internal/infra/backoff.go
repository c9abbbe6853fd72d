package infra

import (
	"time"
)

// BackoffPolicy computes exponential retry delays: Base * 2^retryCount,
// capped at Max.
type BackoffPolicy struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff is the reconnect policy used when a caller configures
// nothing.
var DefaultBackoff = BackoffPolicy{
	Base: 1 * time.Second,
	Max:  60 * time.Second,
}

// Delay returns the backoff duration for a given retry count.
// If retryCount is negative, it returns Base.
func (p BackoffPolicy) Delay(retryCount int) time.Duration {
	if retryCount < 0 {
		return p.Base
	}

	// 2^30 seconds is already far past any sane Max; cap early to avoid
	// shifting into overflow.
	if retryCount > 30 {
		return p.Max
	}

	backoff := p.Base * time.Duration(1<<retryCount)

	if backoff > p.Max {
		return p.Max
	}

	return backoff
}
