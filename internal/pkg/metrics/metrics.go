package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aidtrust",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aidtrust",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aidtrust",
			Subsystem: "applications",
			Name:      "transitions_total",
			Help:      "Application lifecycle transitions committed, by action.",
		},
		[]string{"action"},
	)

	fundsDisbursed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aidtrust",
			Subsystem: "funds",
			Name:      "disbursed_total",
			Help:      "Fund records issued, by fund type.",
		},
		[]string{"fund_type"},
	)

	auditInconsistencies = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "aidtrust",
			Subsystem: "audit",
			Name:      "inconsistent_applications",
			Help:      "Applications whose status does not match their latest audit record.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		transitions,
		fundsDisbursed,
		auditInconsistencies,
	)
}

// ObserveHTTP records a finished HTTP request
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordTransition counts a committed lifecycle transition
func RecordTransition(action string) {
	transitions.WithLabelValues(action).Inc()
}

// RecordDisbursement counts an issued fund
func RecordDisbursement(fundType string) {
	fundsDisbursed.WithLabelValues(fundType).Inc()
}

// SetAuditInconsistencies publishes the latest reconciliation result
func SetAuditInconsistencies(n int) {
	auditInconsistencies.Set(float64(n))
}
