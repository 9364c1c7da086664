package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/events"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/money"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEventBus_EmitAndRegister(t *testing.T) {
	bus := NewWithMemory(slog.Default())
	var got []events.Event
	bus.Register(events.EventTypeTransactionRecorded, func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})

	rec := events.NewTransactionRecorded(ledger.Record{TxID: 4, Type: ledger.Deposit, Amount: money.Units(1)})
	require.NoError(t, bus.Emit(context.Background(), rec))
	require.NoError(t, bus.Emit(context.Background(), events.NewAccountReactivated("10001", 0, time.Now())))

	require.Len(t, got, 1)
	assert.Equal(t, rec, got[0])
	assert.Len(t, bus.Published(), 2)

	bus.ClearPublished()
	assert.Empty(t, bus.Published())
}

func TestMemoryEventBus_HandlerFailures(t *testing.T) {
	bus := NewWithMemory(nil)
	boom := errors.New("boom")
	calls := 0
	bus.Register(events.EventTypeAccountDeactivated, func(context.Context, events.Event) error {
		calls++
		panic("handler bug")
	})
	bus.Register(events.EventTypeAccountDeactivated, func(context.Context, events.Event) error {
		calls++
		return boom
	})

	err := bus.Emit(context.Background(), events.NewAccountDeactivated("10001", account.NewChecking(money.Units(-90), account.DefaultOverdraftLimit), time.Now()))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls, "a panicking handler does not stop the others")
}

func TestEnvelope_RoundTrip(t *testing.T) {
	in := events.NewTransactionRecorded(ledger.Record{
		TxID: 9, Type: ledger.Transfer,
		FromAccountID: "10001", ToAccountID: "10002",
		Amount: money.MustParse("12.50"), ResultingBalance: money.Units(3),
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	raw, err := encodeEnvelope(in)
	require.NoError(t, err)

	out, err := decodeEnvelope(raw, events.EventTypes())
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = decodeEnvelope([]byte(`{"type":"Nope.Nope","payload":{}}`), events.EventTypes())
	require.Error(t, err)
	_, err = decodeEnvelope([]byte(`not json`), events.EventTypes())
	require.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "events:transaction:recorded", nameFor("events", events.EventTypeTransactionRecorded))
	assert.Equal(t, "acmebank.events.account.deactivated", topicNameFor("acmebank.events", events.EventTypeAccountDeactivated))
	assert.Equal(t, []string{"a:9092", "b:9093"}, parseBrokers(" a:9092, ,b:9093"))
}

func TestNewWithRedis_Validation(t *testing.T) {
	_, err := NewWithRedis("", "g", nil)
	require.Error(t, err)
	_, err = NewWithRedis("http://not-redis", "g", nil)
	require.Error(t, err)
}

func TestRedisEventBus_EmitUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	bus := newRedisBus(client, "", nil)
	defer bus.Close() //nolint:errcheck

	err := bus.Emit(context.Background(), events.NewCustomerCreated("10001", "Ann Lee", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "emit failed")
}

func TestNewWithKafka_RequiresBrokers(t *testing.T) {
	_, err := NewWithKafka(" , ", nil, nil)
	require.Error(t, err)
}
