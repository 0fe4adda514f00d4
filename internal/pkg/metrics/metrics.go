package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskcore_webhook_deliveries_total",
			Help: "Webhook delivery attempts by result",
		},
		[]string{"result"}, // delivered, failed
	)

	DeliveryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deskcore_webhook_delivery_duration_seconds",
			Help:    "Duration of webhook delivery HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	RetriesScheduled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deskcore_webhook_retries_scheduled_total",
			Help: "Delivery retries placed on the timer queue",
		},
	)

	DeliveriesExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deskcore_webhook_deliveries_exhausted_total",
			Help: "Deliveries that failed every attempt allowed by the retry policy",
		},
	)

	AuthFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deskcore_api_key_auth_failures_total",
			Help: "Rejected API key authorizations",
		},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskcore_http_requests_total",
			Help: "Inbound HTTP requests",
		},
		[]string{"method", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		DeliveriesTotal,
		DeliveryDuration,
		RetriesScheduled,
		DeliveriesExhausted,
		AuthFailures,
		RequestsTotal,
	)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
