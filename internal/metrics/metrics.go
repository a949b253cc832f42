// Package metrics holds the Prometheus collectors shared by both apps.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"app", "method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"app", "method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection", "operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_errors_total",
			Help: "Total number of failed document store operations",
		},
		[]string{"collection", "operation"},
	)
)

func RecordAPIRequest(app, method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(app, method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(app, method, route).Observe(duration.Seconds())
}

// ObserveStore records one store round trip. Use as
//
//	defer metrics.ObserveStore("projects", "find", time.Now(), &err)
func ObserveStore(collection, operation string, start time.Time, errp *error) {
	StoreOperationDuration.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
	if errp != nil && *errp != nil {
		StoreOperationErrors.WithLabelValues(collection, operation).Inc()
	}
}
