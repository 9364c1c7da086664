// Package initializer turns an App config into the shared dependencies:
// logger, storage unit of work and event bus.
package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	infra_eventbus "github.com/amirasaad/acmebank/infra/eventbus"
	"github.com/amirasaad/acmebank/infra/repository/csvfile"
	"github.com/amirasaad/acmebank/infra/repository/gormstore"
	"github.com/amirasaad/acmebank/infra/repository/memory"
	"github.com/amirasaad/acmebank/pkg/config"
	"github.com/amirasaad/acmebank/pkg/domain/events"
	"github.com/amirasaad/acmebank/pkg/eventbus"
	"github.com/amirasaad/acmebank/pkg/repository"
)

var (
	ErrUnsupportedStorage  = errors.New("unsupported storage driver")
	ErrUnsupportedEventBus = errors.New("unsupported event bus driver")
)

// Cleanup releases what InitializeDependencies opened.
type Cleanup func()

// InitializeDependencies wires storage and the event bus for cfg. logger is
// usually the result of SetupLogger.
func InitializeDependencies(cfg *config.App, logger *slog.Logger) (*config.Deps, Cleanup, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("Failed to release resource", "error", err)
			}
		}
	}

	uow, closeStore, err := initStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	bus, err := initEventBus(cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if c, ok := bus.(interface{ Close() error }); ok {
		closers = append(closers, c.Close)
	}
	registerAuditHandlers(bus, logger)

	return &config.Deps{
		Uow:      uow,
		EventBus: bus,
		Logger:   logger,
		Config:   cfg,
	}, cleanup, nil
}

func initStore(cfg *config.App, logger *slog.Logger) (repository.UnitOfWork, func() error, error) {
	storage := cfg.Storage
	if storage == nil {
		storage = &config.Storage{Driver: "csv", CustomersFile: "bank.csv", LedgerFile: "transactions.csv"}
	}
	switch storage.Driver {
	case "", "csv":
		opts := []csvfile.Option{csvfile.WithLogger(logger)}
		if cfg.Bank != nil {
			opts = append(opts, csvfile.WithDefaultOverdraftLimit(cfg.Bank.OverdraftLimit.Amount()))
		}
		logger.Info("Using CSV storage", "customers", storage.CustomersFile, "ledger", storage.LedgerFile)
		return csvfile.NewUoW(csvfile.New(storage.CustomersFile, storage.LedgerFile, opts...)), nil, nil
	case "memory":
		logger.Warn("Using in-memory storage; nothing survives a restart")
		return memory.NewUoW(memory.New()), nil, nil
	case "sqlite", "postgres":
		db, err := gormstore.Open(storage.Driver, storage.DSN, cfg.Env)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s storage: %w", storage.Driver, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using SQL storage", "driver", storage.Driver)
		return gormstore.NewUoW(db), sqlDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedStorage, storage.Driver)
	}
}

// initEventBus picks the bus named by the config. A configured but
// unreachable broker degrades to the in-memory bus; a missing address or an
// unknown driver is an error.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	driver := ""
	if cfg.EventBus != nil {
		driver = cfg.EventBus.Driver
	}
	switch driver {
	case "", "memory":
		return infra_eventbus.NewWithMemory(logger), nil
	case "redis":
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, errors.New("event bus driver redis requires REDIS_URL")
		}
		bus, err := infra_eventbus.NewWithRedis(cfg.Redis.URL, cfg.Redis.Group, logger)
		if err != nil {
			logger.Warn("Redis event bus unavailable, falling back to memory", "error", err)
			return infra_eventbus.NewWithMemory(logger), nil
		}
		return bus, nil
	case "kafka":
		if cfg.Kafka == nil || cfg.Kafka.Brokers == "" {
			return nil, errors.New("event bus driver kafka requires KAFKA_BROKERS")
		}
		bus, err := infra_eventbus.NewWithKafka(cfg.Kafka.Brokers, logger, &infra_eventbus.KafkaEventBusConfig{
			GroupID:     cfg.Kafka.GroupID,
			TopicPrefix: cfg.Kafka.TopicPrefix,
		})
		if err != nil {
			logger.Warn("Kafka event bus unavailable, falling back to memory", "error", err)
			return infra_eventbus.NewWithMemory(logger), nil
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEventBus, driver)
	}
}

// registerAuditHandlers logs account state changes as they arrive on the bus.
func registerAuditHandlers(bus eventbus.Bus, logger *slog.Logger) {
	log := logger.With("handler", "audit")
	bus.Register(events.EventTypeAccountDeactivated, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.AccountDeactivated); ok {
			log.Warn("Checking account deactivated", "account_id", ev.AccountID, "balance", ev.Balance)
		}
		return nil
	})
	bus.Register(events.EventTypeAccountReactivated, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.AccountReactivated); ok {
			log.Info("Checking account reactivated", "account_id", ev.AccountID, "balance", ev.Balance)
		}
		return nil
	})
	bus.Register(events.EventTypeCustomerCreated, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.CustomerCreated); ok {
			log.Info("Customer created", "account_id", ev.AccountID)
		}
		return nil
	})
}
