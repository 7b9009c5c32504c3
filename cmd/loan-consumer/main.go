// Command loan-consumer drains the loan event queue into logs/loan.log.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/ludoteca-console/internal/config"
	"github.com/iliyamo/ludoteca-console/internal/queue"
)

func main() {
	_ = godotenv.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dir := config.LoanLogDir()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: config.RabbitURL(), Dir: dir, Log: log}
	log.Info("loan-consumer started", "queue", queue.LoanQueueName, "dir", dir)
	_ = c.Run(ctx)
	log.Info("loan-consumer stopped")
}
