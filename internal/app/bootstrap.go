package app

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"predict_go/internal/event"
	"predict_go/internal/execution"
	"predict_go/internal/infra"
	"predict_go/internal/order"
	"predict_go/internal/storage"
)

// Bootstrap orchestrates SDK startup: config, logging, journal, registry,
// tracker and the configured executor.
type Bootstrap struct {
	Config   *infra.Config
	Clock    infra.Clock
	Registry *order.Registry
	Tracker  *order.Tracker
	Journal  *storage.Journal
	Executor execution.Execution
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization.
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping prediction-market SDK...")

	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	setupLogger(cfg.Logging.Level)

	b.Clock = infra.NewRealClock()
	b.Registry = order.NewRegistry()
	b.Tracker = order.NewTracker(b.Registry, b.Clock,
		time.Duration(cfg.Execution.WaitTimeoutMS)*time.Millisecond)

	if cfg.Journal.Path != "" {
		journal, err := storage.NewJournal(cfg.Journal.Path)
		if err != nil {
			return err
		}
		b.Journal = journal

		b.Tracker.SetEventSink(func(ev event.OrderEvent) {
			if err := journal.Append(context.Background(), ev); err != nil {
				slog.Error("Journal append failed", slog.Any("error", err))
			}
		})
		slog.Info("📜 Order journal opened", slog.String("path", cfg.Journal.Path))
	}

	executor, err := execution.NewFactory(cfg, b.Clock, b.Registry, b.Tracker).Create()
	if err != nil {
		return err
	}
	b.Executor = executor

	return nil
}

// Close releases tracker timers, pending waiters and the journal.
func (b *Bootstrap) Close() {
	if b.Tracker != nil {
		b.Tracker.Dispose()
	}
	if b.Journal != nil {
		if err := b.Journal.Close(); err != nil {
			slog.Error("Journal close failed", slog.Any("error", err))
		}
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
