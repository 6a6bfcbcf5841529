package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	"ledger/internal/log"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger("info", log.ComponentAMQP)
	cfg := cli.LoadAndValidateConfig(boot.Logger)
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentAMQP)

	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required for the events consumer")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	logger.Info("Consuming ledger events",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	go func() {
		err := client.ConsumeLedgerChanged(ctx, func(msg *amqp.LedgerChangedMessage) error {
			logger.Info("Ledger changed",
				log.FieldEntity, msg.Entity,
				log.FieldOperation, msg.Op,
				log.FieldRecordID, msg.RecordID,
				log.FieldVersion, msg.Version,
				log.FieldMessageID, msg.ID,
				"at", msg.Timestamp)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("Consumer stopped", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}
	cancel()

	// Let an in-flight handler finish its ack.
	time.Sleep(500 * time.Millisecond)
	logger.Info("Events consumer stopped")
}
