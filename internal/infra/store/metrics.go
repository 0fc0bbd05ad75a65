package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "material_store_requests_total",
		Help: "Requests to the remote material store by operation and outcome.",
	}, []string{"op", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "material_store_request_duration_seconds",
		Help:    "Latency of requests to the remote material store.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)
