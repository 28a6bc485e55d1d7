package selector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	channelSameDevice = "same_device"
	channelMirror     = "mirror"
	channelDurable    = "durable"
)

var (
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "selector",
			Name:      "resolutions_total",
			Help:      "Completed resolutions by the cascade rule that chose the collection.",
		},
		[]string{"rule"},
	)

	persistFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "selector",
			Name:      "persist_failures_total",
			Help:      "Selection writes that failed, by persistence channel.",
		},
		[]string{"channel"},
	)
)
