package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine_client",
			Name:      "requests_total",
			Help:      "Logical requests by operation and final outcome.",
		},
		[]string{"op", "outcome"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine_client",
			Name:      "retries_total",
			Help:      "Extra attempts made after a transient failure.",
		},
		[]string{"op"},
	)
)
