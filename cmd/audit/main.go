// Command audit consumes order events from RabbitMQ and appends one line per
// event to the audit log file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/safar/go-trip-orders/internal/config"
	"github.com/safar/go-trip-orders/internal/events"
	"github.com/safar/go-trip-orders/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Env, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	audit := events.NewAuditLog(cfg.Log.AuditFile)
	logger.Info("audit consumer starting",
		zap.String("queue", cfg.AMQP.Queue),
		zap.String("file", cfg.Log.AuditFile))

	err = events.Consume(ctx, cfg.AMQP.URL, cfg.AMQP.Queue, func(_ context.Context, ev events.Event) error {
		return audit.Append(ev)
	}, logger.Named("audit"))
	if err != nil && ctx.Err() == nil {
		logger.Fatal("consume order events", zap.Error(err))
	}
	logger.Info("audit consumer stopped")
}
