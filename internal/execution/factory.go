package execution

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"predict_go/internal/infra"
	"predict_go/internal/infra/clob"
	"predict_go/internal/order"
)

// Mode represents the trading execution mode.
type Mode string

const (
	ModePaper Mode = "PAPER"
	ModeLive  Mode = "LIVE"
)

// Factory creates execution instances based on configuration.
type Factory struct {
	config   *infra.Config
	clock    infra.Clock
	registry *order.Registry
	tracker  *order.Tracker
}

// NewFactory creates a new factory over shared engine components.
func NewFactory(cfg *infra.Config, clock infra.Clock, registry *order.Registry, tracker *order.Tracker) *Factory {
	return &Factory{config: cfg, clock: clock, registry: registry, tracker: tracker}
}

// Create returns the Execution implementation for the configured mode.
func (f *Factory) Create() (Execution, error) {
	mode := Mode(strings.ToUpper(f.config.Trading.Mode))

	slog.Info("Initializing Execution System", "mode", mode)

	guard := NewSubmitGuard(f.clock, time.Duration(f.config.Execution.IdempotencyTTLMS)*time.Millisecond)

	switch mode {
	case ModePaper:
		pc := f.config.Paper
		return NewPaperExecution(PaperConfig{
			FillProbability: pc.FillProbability,
			SlippageBps:     pc.SlippageBps,
			MaxOrderAge:     time.Duration(pc.MaxOrderAgeMS) * time.Millisecond,
			MaxFillHistory:  pc.MaxFillHistory,
			UseQueueModel:   pc.UseQueueModel,
			Queue: QueueConfig{
				BaseFillRate:           pc.Queue.BaseFillRate,
				DecayRatePerMS:         pc.Queue.DecayRatePerMS,
				SizePenalty:            pc.Queue.SizePenalty,
				AdverseSelectionFactor: pc.Queue.AdverseSelectionFactor,
			},
		}, f.clock, f.registry, f.tracker, guard, nil, nil), nil

	case ModeLive:
		// SAFETY LATCH: live mode moves real money.
		if os.Getenv("CONFIRM_REAL_MONEY") != "true" {
			err := fmt.Errorf("SAFETY_GUARD: live trading requires 'CONFIRM_REAL_MONEY=true' environment variable")
			slog.Error(err.Error())
			panic(err) // Fail Fast
		}

		slog.Info("🚨🚨🚨 Connecting to LIVE order service 🚨🚨🚨")
		client := clob.NewClient(f.config.Clob.RestURL, f.config.Clob.APIKey, f.config.Clob.APISecret)
		limiter := infra.NewRateLimiter(f.clock, f.config.Execution.OrderRateBurst, f.config.Execution.OrderRatePerSecond)
		breaker := infra.NewCircuitBreaker(f.clock, infra.DefaultCircuitBreakerConfig("order-service"))

		return NewLiveExecution(LiveConfig{
			SubmitTimeout: time.Duration(f.config.Execution.SubmitTimeoutMS) * time.Millisecond,
		}, client, limiter, breaker, f.clock, f.registry, f.tracker, guard, nil), nil

	default:
		return nil, fmt.Errorf("unknown execution mode: %s", mode)
	}
}
