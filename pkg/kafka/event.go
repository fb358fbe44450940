package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventVersion is the envelope schema version stamped on new events.
const EventVersion = 1

// ErrInvalidEvent is returned by Publish for an envelope missing a required field.
var ErrInvalidEvent = errors.New("invalid event envelope")

// Event is the envelope every message on the bus is wrapped in. Data holds
// the event-specific payload as raw JSON.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEvent builds an envelope around data with a fresh ID and a UTC timestamp.
func NewEvent(eventType, aggregateID, aggregateType, source string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s data: %w", eventType, err)
	}

	return &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Version:       EventVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Data:          payload,
		Metadata:      make(map[string]string),
	}, nil
}

// WithCorrelationID sets the correlation ID on the event.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// WithMetadata adds a key-value pair to the event metadata.
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// Validate reports a missing event ID, type or source.
func (e *Event) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("%w: event_id is required", ErrInvalidEvent)
	case e.EventType == "":
		return fmt.Errorf("%w: event_type is required", ErrInvalidEvent)
	case e.Source == "":
		return fmt.Errorf("%w: source is required", ErrInvalidEvent)
	}
	return nil
}

// PartitionKey keys messages by aggregate so events of one payment stay
// ordered. Events without an aggregate fall back to their own ID.
func (e *Event) PartitionKey() []byte {
	if e.AggregateID != "" {
		return []byte(e.AggregateID)
	}
	return []byte(e.EventID)
}

// headers returns the routing headers consumers can filter on without
// decoding the body.
func (e *Event) headers() []kafka.Header {
	h := []kafka.Header{
		{Key: "event_type", Value: []byte(e.EventType)},
		{Key: "source", Value: []byte(e.Source)},
		{Key: "version", Value: []byte(strconv.Itoa(e.Version))},
	}
	if e.CorrelationID != "" {
		h = append(h, kafka.Header{Key: "correlation_id", Value: []byte(e.CorrelationID)})
	}
	return h
}

// Marshal serializes the event to JSON bytes.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent decodes an envelope from a message value.
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &event, nil
}

// UnmarshalData decodes the payload into target.
func (e *Event) UnmarshalData(target any) error {
	if err := json.Unmarshal(e.Data, target); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", e.EventType, err)
	}
	return nil
}
