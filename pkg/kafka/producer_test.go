package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// ============================================================================
// Construction
// ============================================================================

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"kafka-1:9092"})

	assert.Equal(t, ProducerConfig{
		Brokers:      []string{"kafka-1:9092"},
		ClientID:     "payment-service",
		BatchSize:    100,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Compression:  kafka.Snappy,
	}, cfg)
	assert.Positive(t, cfg.BatchTimeout)
	assert.Greater(t, cfg.WriteTimeout, cfg.BatchTimeout)
}

func TestNewProducer_DoesNotDial(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)

	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)
	assert.Equal(t, "payment-service", p.dialer.ClientID)
	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	for _, brokers := range [][]string{nil, {}} {
		err := PingBrokers(t.Context(), brokers)
		assert.EqualError(t, err, "kafka: no brokers configured")
	}
}

func TestPing_UnreachableBrokers(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{}, []string{"127.0.0.1:1", "127.0.0.1:2"}, nil)

	err := p.Ping(t.Context())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all brokers unreachable")
	assert.Contains(t, err.Error(), "127.0.0.1:1")
	assert.Contains(t, err.Error(), "127.0.0.1:2")
}

// ============================================================================
// Publish
// ============================================================================

func TestProducer_Publish_WritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, nil)
	e := authorizedEvent(t).WithCorrelationID("corr-1")

	topic := Topic("payment", "attempt.updated")
	require.NoError(t, p.Publish(context.Background(), topic, e))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, topic, msg.Topic)
	assert.Equal(t, "pay-1", string(msg.Key))
	assert.Equal(t, "payment.attempt.authorized", headerValue(msg, "event_type"))
	assert.Equal(t, "payment-service", headerValue(msg, "source"))
	assert.Equal(t, "corr-1", headerValue(msg, "correlation_id"))
	assert.Equal(t, "1", headerValue(msg, "version"))

	decoded, err := UnmarshalEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, e.EventID, decoded.EventID)
}

func TestProducer_Publish_InjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	w := &fakeWriter{}
	require.NoError(t, NewProducerWithWriter(w, nil, nil).Publish(ctx, "trace-topic", authorizedEvent(t)))

	require.Len(t, w.messages, 1)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", headerValue(w.messages[0], "traceparent"))
}

func TestProducer_Publish_Failures(t *testing.T) {
	tests := []struct {
		name    string
		writer  *fakeWriter
		event   func(t *testing.T) *Event
		wantIs  error
		wantMsg string
	}{
		{
			name:    "broker error",
			writer:  &fakeWriter{err: errors.New("leader not available")},
			event:   authorizedEvent,
			wantMsg: "publish event to failures-topic: leader not available",
		},
		{
			name:   "invalid envelope",
			writer: &fakeWriter{},
			event:  func(*testing.T) *Event { return &Event{EventType: "payment.attempt.authorized"} },
			wantIs: ErrInvalidEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewProducerWithWriter(tt.writer, nil, nil).Publish(context.Background(), "failures-topic", tt.event(t))

			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.EqualError(t, err, tt.wantMsg)
			}
			assert.Empty(t, tt.writer.messages)
		})
	}
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewProducerWithWriter(w, nil, nil).Close())
	assert.True(t, w.closed)
}
