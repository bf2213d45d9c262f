// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	checkoutTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_total",
			Help: "Checkouts by outcome",
		},
		[]string{"result"},
	)

	bookingsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Bookings successfully created",
		},
	)

	notificationsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Outbox publish attempts by outcome",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(checkoutTotal)
	prometheus.MustRegister(bookingsCreatedTotal)
	prometheus.MustRegister(notificationsPublishedTotal)
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, endpoint, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

// RecordCheckout counts a checkout attempt. result is "success", "empty" or "error".
func RecordCheckout(result string) {
	checkoutTotal.WithLabelValues(result).Inc()
}

func RecordBookingCreated() {
	bookingsCreatedTotal.Inc()
}

// RecordNotificationPublished counts an outbox publish; result is "ok" or "error".
func RecordNotificationPublished(result string) {
	notificationsPublishedTotal.WithLabelValues(result).Inc()
}
