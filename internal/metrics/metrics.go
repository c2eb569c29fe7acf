package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Allocation outcomes.
const (
	OutcomeAssigned           = "assigned"
	OutcomeCreatedTrip        = "created_trip"
	OutcomeAlreadyAssigned    = "already_assigned"
	OutcomeCapacityExceeded   = "capacity_exceeded"
	OutcomeConfigurationError = "configuration_error"
	OutcomeError              = "error"
)

var (
	Allocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tecotransit_allocations_total",
			Help: "Trip allocation attempts by outcome",
		},
		[]string{"outcome"},
	)

	Confirmations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tecotransit_bookings_confirmed_total",
		Help: "Bookings promoted to Confirmed after their trip filled",
	})

	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tecotransit_notification_failures_total",
			Help: "Notifications that could not be queued or delivered",
		},
		[]string{"kind"},
	)

	Reschedules = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tecotransit_reschedules_total",
			Help: "Passengers processed by the reschedule job",
		},
		[]string{"result"},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)
