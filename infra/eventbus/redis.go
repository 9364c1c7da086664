package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/acmebank/pkg/domain/events"
	"github.com/amirasaad/acmebank/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus publishes events to one Redis stream per event type and
// consumes them through a consumer group. Messages whose handler fails are
// copied to a dead-letter stream.
type RedisEventBus struct {
	client *redis.Client
	group  string
	types  map[string]func() events.Event
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithRedis connects to url (e.g. "redis://localhost:6379").
func NewWithRedis(url, group string, logger *slog.Logger) (*RedisEventBus, error) {
	if url == "" {
		return nil, errors.New("redis event bus: url is required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}
	return newRedisBus(client, group, logger), nil
}

func newRedisBus(client *redis.Client, group string, logger *slog.Logger) *RedisEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	if group == "" {
		group = "acmebank"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client: client,
		group:  group,
		types:  events.EventTypes(),
		logger: logger.With("bus", "redis"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Emit appends the event envelope to the stream of its type.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	eventType := events.EventType(event.Type())
	raw, err := encodeEnvelope(event)
	if err != nil {
		return fmt.Errorf("redis event bus: %w", err)
	}
	if err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: nameFor("events", eventType),
		Values: map[string]any{"event": string(raw)},
	}).Err(); err != nil {
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	b.logger.Debug("event emitted", "type", eventType)
	return nil
}

// Register starts a consumer goroutine for eventType.
func (b *RedisEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	stream := nameFor("events", eventType)
	if err := b.client.XGroupCreateMkStream(b.ctx, stream, b.group, "0").Err(); err != nil &&
		!isBusyGroup(err) {
		b.logger.Error("failed to create consumer group", "stream", stream, "error", err)
	}
	consumer := fmt.Sprintf("%s-%d", nameFor("consumer", eventType), time.Now().UnixNano())

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(stream, consumer, handler)
	}()
	b.logger.Info("handler registered", "event_type", eventType, "consumer", consumer)
}

func (b *RedisEventBus) consume(stream, consumer string, handler eventbus.HandlerFunc) {
	for {
		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if b.ctx.Err() != nil {
			return
		}
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				b.logger.Error("error reading from stream", "error", err, "stream", stream)
				time.Sleep(time.Second)
			}
			continue
		}
		for _, s := range res {
			for _, msg := range s.Messages {
				b.handle(stream, msg, handler)
			}
		}
	}
}

func (b *RedisEventBus) handle(stream string, msg redis.XMessage, handler eventbus.HandlerFunc) {
	defer func() {
		if err := b.client.XAck(b.ctx, stream, b.group, msg.ID).Err(); err != nil {
			b.logger.Error("failed to acknowledge message", "error", err, "msg_id", msg.ID)
		}
	}()
	raw, _ := msg.Values["event"].(string)
	evt, err := decodeEnvelope([]byte(raw), b.types)
	if err != nil {
		b.logger.Error("dropping undecodable message", "error", err, "msg_id", msg.ID)
		b.pushToDLQ(stream, msg.Values)
		return
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("handler panic recovered", "panic", r, "event_type", evt.Type())
				b.pushToDLQ(stream, msg.Values)
			}
		}()
		if err := handler(b.ctx, evt); err != nil {
			b.logger.Error("handler error", "error", err, "event_type", evt.Type())
			b.pushToDLQ(stream, msg.Values)
		}
	}()
}

func (b *RedisEventBus) pushToDLQ(stream string, values map[string]any) {
	dlq := stream + ":dlq"
	if err := b.client.XAdd(b.ctx, &redis.XAddArgs{Stream: dlq, Values: values}).Err(); err != nil {
		b.logger.Error("failed to push to DLQ", "error", err, "stream", dlq)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlq)
}

// Close stops the consumers and closes the client.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
