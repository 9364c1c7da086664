package eventbus

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amirasaad/acmebank/pkg/domain/events"
)

// envelope is the wire format shared by the Redis and Kafka buses.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encodeEnvelope(event events.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	b, err := json.Marshal(envelope{Type: event.Type(), Payload: data})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return b, nil
}

// decodeEnvelope turns raw bytes back into a typed event using the
// constructor registered for its type.
func decodeEnvelope(raw []byte, types map[string]func() events.Event) (events.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	constructor, ok := types[env.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	evt := constructor()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return evt, nil
}

// nameFor maps "Transaction.Recorded" to "<prefix>:transaction:recorded".
func nameFor(prefix string, eventType events.EventType) string {
	parts := strings.Split(eventType.String(), ".")
	if len(parts) == 2 {
		return fmt.Sprintf("%s:%s:%s", prefix, strings.ToLower(parts[0]), strings.ToLower(parts[1]))
	}
	return fmt.Sprintf("%s:%s", prefix, strings.ToLower(eventType.String()))
}

// topicNameFor maps "Transaction.Recorded" to "<prefix>.transaction.recorded".
func topicNameFor(prefix string, eventType events.EventType) string {
	return strings.ReplaceAll(nameFor(prefix, eventType), ":", ".")
}
