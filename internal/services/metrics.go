package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelx_gateway_requests_total",
			Help: "Total number of requests sent to remote APIs",
		},
		[]string{"service", "method", "outcome"}, // outcome: ok, api_error, network_error
	)

	gatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelx_gateway_request_duration_seconds",
			Help:    "Duration of requests sent to remote APIs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)
)

func recordRequest(service, method, outcome string, seconds float64) {
	gatewayRequests.WithLabelValues(service, method, outcome).Inc()
	gatewayDuration.WithLabelValues(service, method).Observe(seconds)
}
