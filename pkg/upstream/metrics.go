package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// upstreamRequests counts bounded calls by outcome.
	// Labels: upstream (hub, debates), source (live, fallback), reason (see Reason*)
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "organism",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Upstream calls by outcome",
	}, []string{"upstream", "source", "reason"})

	// upstreamDuration measures wall time of a bounded call, including timeouts.
	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "organism",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Upstream call latency in seconds",
		Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
	}, []string{"upstream"})
)
