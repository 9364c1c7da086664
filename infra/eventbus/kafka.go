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
	"github.com/segmentio/kafka-go"
)

// KafkaEventBusConfig holds configuration for the Kafka event bus.
type KafkaEventBusConfig struct {
	GroupID     string
	TopicPrefix string
}

// DefaultKafkaEventBusConfig returns default configuration for KafkaEventBus.
func DefaultKafkaEventBusConfig() *KafkaEventBusConfig {
	return &KafkaEventBusConfig{GroupID: "acmebank", TopicPrefix: "acmebank.events"}
}

// KafkaEventBus publishes each event type to its own topic.
type KafkaEventBus struct {
	brokers []string
	writer  *kafka.Writer
	config  *KafkaEventBusConfig
	types   map[string]func() events.Event
	logger  *slog.Logger

	readersMtx sync.Mutex
	readers    map[events.EventType]*kafka.Reader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithKafka creates a Kafka-backed event bus.
// brokers is a comma-separated list such as "localhost:9092,localhost:9093".
func NewWithKafka(brokers string, logger *slog.Logger, config *KafkaEventBusConfig) (*KafkaEventBus, error) {
	parsed := parseBrokers(brokers)
	if len(parsed) == 0 {
		return nil, errors.New("kafka event bus: brokers are required")
	}
	if config == nil {
		config = DefaultKafkaEventBusConfig()
	}
	if config.GroupID == "" {
		config.GroupID = "acmebank"
	}
	if strings.TrimSpace(config.TopicPrefix) == "" {
		config.TopicPrefix = "acmebank.events"
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &KafkaEventBus{
		brokers: parsed,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(parsed...),
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireOne,
			Balancer:               &kafka.Hash{},
		},
		config:  config,
		types:   events.EventTypes(),
		logger:  logger.With("bus", "kafka"),
		readers: make(map[events.EventType]*kafka.Reader),
		ctx:     ctx,
		cancel:  cancel,
	}

	conn, err := kafka.DialContext(ctx, "tcp", parsed[0])
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("kafka event bus: connection failed: %w", err)
	}
	_ = conn.Close()
	return bus, nil
}

// Emit publishes an event to the topic of its type.
func (b *KafkaEventBus) Emit(ctx context.Context, event events.Event) error {
	raw, err := encodeEnvelope(event)
	if err != nil {
		return fmt.Errorf("kafka event bus: %w", err)
	}
	eventType := events.EventType(event.Type())
	if err := b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topicNameFor(b.config.TopicPrefix, eventType),
		Key:   []byte(eventType),
		Value: raw,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("kafka event bus: publish failed: %w", err)
	}
	return nil
}

// Register starts a consumer for eventType. A handler failure sends the
// message to the type's DLQ topic.
func (b *KafkaEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.readersMtx.Lock()
	defer b.readersMtx.Unlock()
	if _, ok := b.readers[eventType]; ok {
		b.logger.Warn("consumer already registered", "event_type", eventType)
		return
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		GroupID:     b.config.GroupID,
		Topic:       topicNameFor(b.config.TopicPrefix, eventType),
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
	})
	b.readers[eventType] = reader

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(eventType, reader, handler)
	}()
}

func (b *KafkaEventBus) consume(eventType events.EventType, reader *kafka.Reader, handler eventbus.HandlerFunc) {
	for {
		msg, err := reader.FetchMessage(b.ctx)
		if err != nil {
			if b.ctx.Err() != nil {
				return
			}
			b.logger.Error("kafka consume error", "error", err, "event_type", eventType)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		evt, err := decodeEnvelope(msg.Value, b.types)
		if err == nil {
			err = handler(b.ctx, evt)
		}
		if err != nil {
			b.logger.Error("handler error", "error", err, "event_type", eventType, "offset", msg.Offset)
			if dlqErr := b.publishToDLQ(eventType, msg.Value); dlqErr != nil {
				b.logger.Error("dlq publish failed", "error", dlqErr)
			}
		}
		if err := reader.CommitMessages(b.ctx, msg); err != nil {
			b.logger.Error("kafka commit error", "error", err, "offset", msg.Offset)
		}
	}
}

func (b *KafkaEventBus) publishToDLQ(eventType events.EventType, raw []byte) error {
	return b.writer.WriteMessages(b.ctx, kafka.Message{
		Topic: topicNameFor(b.config.TopicPrefix+".dlq", eventType),
		Key:   []byte(eventType),
		Value: raw,
		Time:  time.Now(),
	})
}

// Close stops background goroutines and closes network resources.
func (b *KafkaEventBus) Close() error {
	b.cancel()
	b.readersMtx.Lock()
	for _, r := range b.readers {
		_ = r.Close()
	}
	b.readersMtx.Unlock()
	b.wg.Wait()
	return b.writer.Close()
}

func parseBrokers(brokers string) []string {
	var out []string
	for _, s := range strings.Split(brokers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
