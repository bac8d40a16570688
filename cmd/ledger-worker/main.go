package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	applog "ledger/internal/log"
	"ledger/internal/worker"
)

// summaryInterval is how often the running tally is logged.
const summaryInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ledger-worker:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := cli.LoadEnvFile(); err != nil {
		return err
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required to run the worker")
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer client.Close()

	tally := worker.NewTallyWorker(logger)
	// Invalid events are acked and dropped.
	handle := func(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
		err := tally.HandleTransactionCreated(ctx, msg)
		if errors.Is(err, worker.ErrInvalidMessage) {
			logger.WarnContext(ctx, "Dropping invalid transaction event", applog.FieldError, err)
			return nil
		}
		return err
	}
	logger.Info("Starting ledger-worker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeTransactionEvents(gctx, handle)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		ticker := time.NewTicker(summaryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				tally.LogSummary(gctx)
			}
		}
	})

	err = g.Wait()
	tally.LogSummary(context.Background())
	logger.Info("Worker stopped", applog.FieldOperation, applog.OpShutdown)
	return err
}
