package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fxledger",
			Name:      "requests_total",
			Help:      "Requests handled by the ledger core, by route and status code.",
		},
		[]string{"route", "code"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fxledger",
			Name:      "request_duration_seconds",
			Help:      "Time spent in the ledger core per request.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"route"},
	)
)

// unmatchedRoute labels requests the router did not recognise, keeping label
// cardinality bounded.
const unmatchedRoute = "unmatched"

func observe(route string, code int, start time.Time) {
	requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}
