package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bobball",
		Subsystem: "engine",
		Name:      "ticks_total",
		Help:      "Ticks advanced by AdvanceOneTick.",
	})
	rollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bobball",
		Subsystem: "engine",
		Name:      "rollbacks_total",
		Help:      "Rollbacks triggered by late events.",
	})
	rollbackDepth = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bobball",
		Subsystem: "engine",
		Name:      "rollback_depth_ticks",
		Help:      "Ticks replayed per rollback.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})
	desyncsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bobball",
		Subsystem: "engine",
		Name:      "desyncs_total",
		Help:      "Rollbacks whose target was older than every retained checkpoint.",
	})
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bobball",
		Subsystem: "engine",
		Name:      "events_total",
		Help:      "Events accepted into the pending ledger.",
	}, []string{"kind", "source"})
	advanceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bobball",
		Subsystem: "engine",
		Name:      "advance_duration_seconds",
		Help:      "Time spent inside AdvanceOneTick, replay included.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
	})
)
