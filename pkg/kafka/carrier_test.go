package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const testTraceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func TestHeaderCarrier_GetSetKeys(t *testing.T) {
	headers := []kafka.Header{{Key: "event_type", Value: []byte("payment.attempt.authorized")}}
	carrier := NewHeaderCarrier(&headers)

	assert.Equal(t, "payment.attempt.authorized", carrier.Get("event_type"))
	assert.Empty(t, carrier.Get("missing"))

	carrier.Set("connector", "bluesnap")
	carrier.Set("event_type", "payment.attempt.updated")

	assert.Equal(t, "payment.attempt.updated", carrier.Get("event_type"))
	assert.Equal(t, "bluesnap", carrier.Get("connector"))
	assert.ElementsMatch(t, []string{"event_type", "connector"}, carrier.Keys())
	assert.Len(t, headers, 2, "Set must overwrite in place rather than append a duplicate")
}

func TestHeaderCarrier_Empty(t *testing.T) {
	var headers []kafka.Header
	carrier := NewHeaderCarrier(&headers)

	assert.Empty(t, carrier.Keys())
	assert.Empty(t, carrier.Get("traceparent"))
}

func TestHeaderCarrier_TraceContextRoundTrip(t *testing.T) {
	propagator := propagation.TraceContext{}

	inbound := []kafka.Header{{Key: "traceparent", Value: []byte(testTraceparent)}}
	ctx := propagator.Extract(context.Background(), NewHeaderCarrier(&inbound))

	sc := trace.SpanContextFromContext(ctx)
	require.True(t, sc.IsValid())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())

	var outbound []kafka.Header
	propagator.Inject(ctx, NewHeaderCarrier(&outbound))

	assert.Equal(t, testTraceparent, NewHeaderCarrier(&outbound).Get("traceparent"))
}
