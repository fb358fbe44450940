package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectorAttempts counts connector calls by resulting attempt status.
	// Calls that fail before a status is known are counted as "error".
	ConnectorAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_connector_attempts_total",
			Help: "Total number of payment connector calls by outcome",
		},
		[]string{"connector", "status"},
	)

	// ConnectorDuration observes the duration of connector calls.
	ConnectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_connector_duration_seconds",
			Help:    "Duration of payment connector calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"connector", "operation"},
	)
)

const statusError = "error"
