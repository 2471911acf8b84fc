package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/amirasaad/atm/infra"
	infra_eventbus "github.com/amirasaad/atm/infra/eventbus"
	infra_repository "github.com/amirasaad/atm/infra/repository"
	"github.com/amirasaad/atm/infra/repository/memory"
	"github.com/amirasaad/atm/pkg/app"
	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/pkg/eventbus"
	"github.com/amirasaad/atm/pkg/repository"
)

// ErrUnsupportedEventsDriver is returned for an unknown EVENTS_DRIVER value.
var ErrUnsupportedEventsDriver = errors.New("unsupported events driver")

// InitializeDependencies initializes all the application dependencies. The returned
// cleanup releases the event bus and the database connection, in that order.
func InitializeDependencies(cfg *config.App) (deps *app.Deps, cleanup func(), err error) {
	logger := setupLogger(cfg.Log, os.Stdout)
	deps = &app.Deps{Logger: logger}
	var closers []func() error
	cleanup = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i](); cerr != nil {
				logger.Warn("Failed to release resource", "error", cerr)
			}
		}
	}
	defer func() {
		if err != nil {
			cleanup()
			cleanup = func() {}
		}
	}()

	uow, closeStore, err := initStore(cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, closeStore)
	deps.Uow = uow

	if cfg.DB.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		created, err := repository.Seed(ctx, uow, repository.DefaultAccounts, time.Now())
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to seed accounts: %w", err)
		}
		logger.Info("Seeded accounts", "created", created)
	}

	bus, closeBus, err := initEventBus(cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, closeBus)
	deps.EventBus = bus

	return deps, cleanup, nil
}

func initStore(cfg *config.App, logger *slog.Logger) (repository.UnitOfWork, func() error, error) {
	if cfg.DB.Driver == config.DriverMemory {
		logger.Warn("Using in-memory ledger store; balances are lost on restart")
		return memory.NewUoW(), func() error { return nil }, nil
	}

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	if err := infra.Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("Database ready", "driver", cfg.DB.Driver)
	return infra_repository.NewUoW(db), sqlDB.Close, nil
}

// initEventBus builds the bus selected by EVENTS_DRIVER. A Redis server that cannot be
// reached degrades to the in-memory bus; missing broker settings are an error.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, func() error, error) {
	noop := func() error { return nil }
	events := cfg.Events
	if events == nil {
		events = &config.Events{Driver: config.EventsMemory}
	}

	switch strings.ToLower(strings.TrimSpace(events.Driver)) {
	case "", config.EventsMemory:
		return infra_eventbus.NewWithMemory(logger), noop, nil

	case config.EventsKafka:
		if events.Kafka == nil || strings.TrimSpace(events.Kafka.Brokers) == "" {
			return nil, nil, errors.New("events driver kafka requires EVENTS_KAFKA_BROKERS")
		}
		bus, err := infra_eventbus.NewWithKafka(events.Kafka.Brokers, logger, &infra_eventbus.KafkaEventBusConfig{
			Topic:        events.Kafka.Topic,
			GroupID:      events.Kafka.GroupID,
			SASLUsername: events.Kafka.SASLUsername,
			SASLPassword: events.Kafka.SASLPassword,
			TLSEnabled:   events.Kafka.TLS,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Kafka event bus: %w", err)
		}
		logger.Info("Using Kafka event bus", "brokers", events.Kafka.Brokers)
		return bus, bus.Close, nil

	case config.EventsRedis:
		if events.Redis == nil || strings.TrimSpace(events.Redis.URL) == "" {
			return nil, nil, errors.New("events driver redis requires EVENTS_REDIS_URL")
		}
		bus, err := infra_eventbus.NewWithRedis(events.Redis.URL, events.Redis.Stream, events.Redis.Group, logger)
		if err != nil {
			logger.Warn("Redis event bus unavailable, falling back to in-memory bus", "error", err)
			return infra_eventbus.NewWithMemory(logger), noop, nil
		}
		logger.Info("Using Redis event bus", "stream", events.Redis.Stream)
		return bus, bus.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedEventsDriver, events.Driver)
}
