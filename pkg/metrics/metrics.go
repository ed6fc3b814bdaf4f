// Package metrics holds the Prometheus collectors shared by the HTTP layer and
// the usecases. Collectors are registered on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hospital",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route template, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hospital",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route template and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	AppointmentAdmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hospital",
		Name:      "appointment_admissions_total",
		Help:      "Appointment admission decisions by outcome.",
	}, []string{"decision"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hospital",
		Name:      "http_rate_limited_total",
		Help:      "Requests rejected by the per-client rate limiter.",
	})
)
