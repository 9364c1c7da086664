package initializer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	infra_eventbus "github.com/amirasaad/acmebank/infra/eventbus"
	"github.com/amirasaad/acmebank/infra/repository/csvfile"
	"github.com/amirasaad/acmebank/infra/repository/gormstore"
	"github.com/amirasaad/acmebank/infra/repository/memory"
	"github.com/amirasaad/acmebank/pkg/config"
	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/events"
	"github.com/amirasaad/acmebank/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	quiet     = slog.New(slog.NewTextHandler(io.Discard, nil))
	fixedTime = time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)
)

func TestInitEventBus_DefaultsToMemory(t *testing.T) {
	bus, err := initEventBus(&config.App{}, quiet)
	require.NoError(t, err)
	require.IsType(t, &infra_eventbus.MemoryEventBus{}, bus)

	bus, err = initEventBus(&config.App{EventBus: &config.EventBus{Driver: "memory"}}, quiet)
	require.NoError(t, err)
	require.IsType(t, &infra_eventbus.MemoryEventBus{}, bus)
}

func TestInitEventBus_ExplicitRedisRequiresURL(t *testing.T) {
	_, err := initEventBus(&config.App{
		EventBus: &config.EventBus{Driver: "redis"},
		Redis:    &config.Redis{},
	}, quiet)
	require.Error(t, err)
}

func TestInitEventBus_RedisConnectionErrorFallsBackToMemory(t *testing.T) {
	bus, err := initEventBus(&config.App{
		EventBus: &config.EventBus{Driver: "redis"},
		Redis:    &config.Redis{URL: "redis://127.0.0.1:1"},
	}, quiet)
	require.NoError(t, err)
	require.IsType(t, &infra_eventbus.MemoryEventBus{}, bus)
}

func TestInitEventBus_ExplicitKafkaRequiresBrokers(t *testing.T) {
	_, err := initEventBus(&config.App{EventBus: &config.EventBus{Driver: "kafka"}}, quiet)
	require.Error(t, err)
}

func TestInitEventBus_KafkaConnectionErrorFallsBackToMemory(t *testing.T) {
	bus, err := initEventBus(&config.App{
		EventBus: &config.EventBus{Driver: "kafka"},
		Kafka:    &config.Kafka{Brokers: "127.0.0.1:1"},
	}, quiet)
	require.NoError(t, err)
	require.IsType(t, &infra_eventbus.MemoryEventBus{}, bus)
}

func TestInitEventBus_UnsupportedDriverErrors(t *testing.T) {
	_, err := initEventBus(&config.App{EventBus: &config.EventBus{Driver: "nope"}}, quiet)
	require.ErrorIs(t, err, ErrUnsupportedEventBus)
}

func TestInitStore(t *testing.T) {
	dir := t.TempDir()

	uow, closer, err := initStore(&config.App{
		Storage: &config.Storage{
			Driver:        "csv",
			CustomersFile: filepath.Join(dir, "bank.csv"),
			LedgerFile:    filepath.Join(dir, "transactions.csv"),
		},
		Bank: &config.Bank{OverdraftLimit: config.Money(money.Units(-250))},
	}, quiet)
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.IsType(t, &csvfile.UoW{}, uow)

	uow, _, err = initStore(&config.App{Storage: &config.Storage{Driver: "memory"}}, quiet)
	require.NoError(t, err)
	assert.IsType(t, &memory.UoW{}, uow)

	uow, closer, err = initStore(&config.App{
		Env:     "test",
		Storage: &config.Storage{Driver: "sqlite", DSN: "file:" + t.Name() + "?mode=memory&cache=shared"},
	}, quiet)
	require.NoError(t, err)
	require.NotNil(t, closer)
	t.Cleanup(func() { _ = closer() })
	assert.IsType(t, &gormstore.UoW{}, uow)

	_, _, err = initStore(&config.App{Storage: &config.Storage{Driver: "mongo"}}, quiet)
	require.ErrorIs(t, err, ErrUnsupportedStorage)
}

func TestInitializeDependencies(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&config.Log{Format: "json"}, &buf)

	deps, cleanup, err := InitializeDependencies(&config.App{
		Storage:  &config.Storage{Driver: "memory"},
		EventBus: &config.EventBus{Driver: "memory"},
	}, logger)
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, deps.Uow)
	require.NotNil(t, deps.EventBus)

	acc := account.NewChecking(money.Units(-90), account.DefaultOverdraftLimit)
	require.NoError(t, deps.EventBus.Emit(context.Background(), events.NewAccountDeactivated("10001", acc, fixedTime)))
	assert.Contains(t, buf.String(), "Checking account deactivated")
	assert.Contains(t, buf.String(), "10001")
}
