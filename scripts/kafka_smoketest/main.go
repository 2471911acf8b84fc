package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/amirasaad/atm/infra/eventbus"
	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// RunSmokeTest sends a ledger event through the Kafka event bus and waits until the
// bus consumer hands it back, verifying the local cluster end to end.
func RunSmokeTest() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))
	if brokers == "" {
		brokers = "localhost:9092"
	}
	topic := "atm.ledger.smoketest"

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Create the topic up front so the consumer group has partitions to join.
	{
		dialer := &kafka.Dialer{Timeout: 5 * time.Second}
		conn, err := dialer.DialContext(ctx, "tcp", strings.Split(brokers, ",")[0])
		if err != nil {
			logger.Error("dial failed", "error", err)
			return err
		}
		defer func() { _ = conn.Close() }()
		err = conn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		if err != nil && !strings.Contains(strings.ToLower(err.Error()), "already exists") {
			logger.Error("create topic failed", "topic", topic, "error", err)
			return err
		}
		logger.Info("topic ready", "topic", topic)
	}

	bus, err := eventbus.NewWithKafka(brokers, logger, &eventbus.KafkaEventBusConfig{
		Topic:   topic,
		GroupID: "atm-smoketest-" + uuid.NewString(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	sent := events.NewDepositCompleted(1, "Checking", decimal.RequireFromString("250.00"),
		decimal.RequireFromString("1250.00"), time.Now().UTC())

	received := make(chan *events.DepositCompleted, 1)
	bus.Register(events.EventTypeDepositCompleted, func(_ context.Context, e events.Event) error {
		if evt, ok := e.(*events.DepositCompleted); ok && evt.ID == sent.ID {
			select {
			case received <- evt:
			default:
			}
		}
		return nil
	})

	if err := bus.Emit(ctx, sent); err != nil {
		logger.Error("emit failed", "error", err)
		return err
	}
	logger.Info("produced", "type", sent.Type(), "id", sent.ID)

	select {
	case evt := <-received:
		logger.Info("consumed", "type", evt.Type(), "id", evt.ID, "balanceAfter", evt.BalanceAfter)
	case <-ctx.Done():
		logger.Error("event never arrived", "id", sent.ID)
		return errors.New("kafka smoke test timed out")
	}

	logger.Info("kafka smoke test passed")
	return nil
}

// main runs the smoke test and exits non-zero on failure.
func main() {
	if err := RunSmokeTest(); err != nil {
		os.Exit(1)
	}
}
