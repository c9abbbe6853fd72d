package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"predict_go/internal/app"
	"predict_go/internal/domain"
	"predict_go/internal/infra/clob"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := bootstrap.Config

	// In live mode, exchange events arrive asynchronously over the user
	// websocket channel and flow into the tracker.
	if cfg.Clob.WSURL != "" {
		feed := clob.NewUserFeed(cfg.Clob.WSURL, bootstrap.Tracker)
		feed.Start(ctx)
		defer feed.Stop()
		slog.InfoContext(ctx, "✅ User feed started", slog.String("url", cfg.Clob.WSURL))
	}

	// Demo round trip: submit one order and await its outcome. Strategy
	// runtimes replace this loop with their own logic.
	intent := domain.OrderIntent{
		ConditionID: "demo-condition",
		TokenID:     "demo-token-yes",
		Side:        domain.SideBuy,
		Direction:   domain.DirectionOpen,
		Price:       decimal.RequireFromString("0.65"),
		Size:        decimal.RequireFromString("10"),
	}

	res, err := bootstrap.Executor.Submit(ctx, intent)
	if err != nil {
		slog.Error("Submit failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Order submitted",
		slog.String("id", res.ClientOrderID),
		slog.String("state", string(res.FinalState)))

	final, err := bootstrap.Tracker.WaitForOrder(ctx, res.ClientOrderID)
	if err != nil {
		slog.Error("Wait failed", slog.Any("error", err))
		os.Exit(1)
	}

	avg := "-"
	if final.AvgFillPrice != nil {
		avg = final.AvgFillPrice.String()
	}
	slog.Info("Order complete",
		slog.String("id", final.ClientOrderID),
		slog.String("state", string(final.FinalState)),
		slog.String("filled", final.TotalFilled.String()),
		slog.String("avg_price", avg))
}
