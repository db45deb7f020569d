package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// statusResponses counts organism-status responses by HTTP code.
var statusResponses = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "organism",
	Subsystem: "status",
	Name:      "responses_total",
	Help:      "Organism status responses by HTTP status code",
}, []string{"code"})
