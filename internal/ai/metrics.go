package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ows_ai_requests_total",
			Help: "Generator requests, by kind, model and outcome.",
		},
		[]string{"kind", "model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ows_ai_request_duration_seconds",
			Help:    "Generator request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind", "model"},
	)
)
