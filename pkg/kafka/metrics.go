package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons recorded on kafka_producer_publish_errors_total.
const (
	reasonInvalid = "invalid_event"
	reasonMarshal = "marshal"
	reasonWrite   = "write"
)

var (
	publishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_producer_messages_published_total",
			Help: "Kafka messages acknowledged by the brokers",
		},
		[]string{"topic", "event_type"},
	)

	publishErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_producer_publish_errors_total",
			Help: "Kafka events that were not published, by reason",
		},
		[]string{"topic", "reason"},
	)

	publishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_producer_publish_duration_seconds",
			Help:    "Time spent in kafka WriteMessages",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"topic"},
	)

	messageBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_producer_message_bytes",
			Help:    "Encoded size of kafka event payloads",
			Buckets: prometheus.ExponentialBuckets(128, 2, 10),
		},
		[]string{"topic"},
	)
)
