package execution

import (
	"testing"
	"time"

	"predict_go/internal/infra"
	"predict_go/internal/order"
)

func testFactory(mode string) *Factory {
	cfg := &infra.Config{}
	cfg.Trading.Mode = mode
	cfg.Clob.RestURL = "https://clob.example.com"
	cfg.Execution.OrderRateBurst = 10
	cfg.Execution.OrderRatePerSecond = 5
	cfg.Paper.FillProbability = 1.0

	clock := infra.NewFakeClock(time.Unix(1000, 0))
	registry := order.NewRegistry()
	tracker := order.NewTracker(registry, clock, time.Minute)
	return NewFactory(cfg, clock, registry, tracker)
}

func TestFactory_CreatePaper(t *testing.T) {
	exec, err := testFactory("paper").Create()
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, ok := exec.(*PaperExecution); !ok {
		t.Errorf("Create returned %T, want *PaperExecution", exec)
	}
}

func TestFactory_CreateUnknownMode(t *testing.T) {
	if _, err := testFactory("BACKTEST").Create(); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestFactory_LiveRequiresConfirmation(t *testing.T) {
	t.Setenv("CONFIRM_REAL_MONEY", "")

	defer func() {
		if recover() == nil {
			t.Error("live mode without CONFIRM_REAL_MONEY must panic")
		}
	}()
	testFactory("LIVE").Create()
}

func TestFactory_LiveWithConfirmation(t *testing.T) {
	t.Setenv("CONFIRM_REAL_MONEY", "true")

	exec, err := testFactory("LIVE").Create()
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, ok := exec.(*LiveExecution); !ok {
		t.Errorf("Create returned %T, want *LiveExecution", exec)
	}
}
