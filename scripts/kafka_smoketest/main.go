// Command kafka_smoketest publishes a CustomerCreated event through the
// Kafka event bus and waits for the bus's own consumer to deliver it back.
// It verifies a local broker before running the server with
// EVENT_BUS_DRIVER=kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	infra_eventbus "github.com/amirasaad/acmebank/infra/eventbus"
	"github.com/amirasaad/acmebank/pkg/domain/events"
)

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// RunSmokeTest round-trips one event through the broker.
func RunSmokeTest(ctx context.Context, logger *slog.Logger) error {
	cfg := infra_eventbus.DefaultKafkaEventBusConfig()
	cfg.GroupID = env("GROUP_ID", "acmebank-smoketest")
	cfg.TopicPrefix = env("TOPIC_PREFIX", cfg.TopicPrefix)

	bus, err := infra_eventbus.NewWithKafka(env("BROKERS", "localhost:9092"), logger, cfg)
	if err != nil {
		logger.Error("connect failed", "error", err)
		return err
	}
	defer func() { _ = bus.Close() }()

	got := make(chan string, 1)
	bus.Register(events.EventTypeCustomerCreated, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.CustomerCreated); ok {
			select {
			case got <- ev.AccountID:
			default:
			}
		}
		return nil
	})

	sent := events.NewCustomerCreated("99999", "Smoke Test", time.Now())
	if err := bus.Emit(ctx, sent); err != nil {
		logger.Error("produce failed", "error", err)
		return err
	}
	logger.Info("produced", "type", sent.Type())

	select {
	case id := <-got:
		logger.Info("consumed", "account_id", id)
	case <-ctx.Done():
		return errors.New("timed out waiting for the event to come back")
	}
	logger.Info("kafka smoke test passed")
	return nil
}

// main runs the smoke test and exits non-zero on failure.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := RunSmokeTest(ctx, logger); err != nil {
		logger.Error("kafka smoke test failed", "error", err)
		os.Exit(1)
	}
}
