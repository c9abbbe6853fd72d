package infra

import (
	"testing"
	"time"
)

func TestBackoffPolicy_Delay(t *testing.T) {
	tests := []struct {
		name       string
		retryCount int
		want       time.Duration
	}{
		{"first retry", 0, 1 * time.Second},
		{"second retry", 1, 2 * time.Second},
		{"third retry", 2, 4 * time.Second},
		{"fifth retry", 4, 16 * time.Second},
		{"capped at max", 6, 60 * time.Second},
		{"far past max", 20, 60 * time.Second},
		{"shift overflow guard", 64, 60 * time.Second},
		{"negative count", -1, 1 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultBackoff.Delay(tt.retryCount); got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.retryCount, got, tt.want)
			}
		})
	}
}

func TestBackoffPolicy_CustomBounds(t *testing.T) {
	p := BackoffPolicy{Base: 100 * time.Millisecond, Max: time.Second}

	if got := p.Delay(0); got != 100*time.Millisecond {
		t.Errorf("Delay(0) = %v, want 100ms", got)
	}
	if got := p.Delay(2); got != 400*time.Millisecond {
		t.Errorf("Delay(2) = %v, want 400ms", got)
	}
	if got := p.Delay(8); got != time.Second {
		t.Errorf("Delay(8) = %v, want the 1s cap", got)
	}
}
