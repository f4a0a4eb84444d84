package metrics

import "github.com/prometheus/client_golang/prometheus"

var SyncEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sphinxsync",
	Subsystem: "coordinator",
	Name:      "events",
}, []string{"kind", "result"})

var DirtyMarked = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "sphinxsync",
	Subsystem: "coordinator",
	Name:      "dirty_marked",
})

var ReindexTriggers = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sphinxsync",
	Subsystem: "coordinator",
	Name:      "reindex_triggers",
}, []string{"tier"})

var BulkMode = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "sphinxsync",
	Subsystem: "coordinator",
	Name:      "bulk_mode",
})

var SearchQueries = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sphinxsync",
	Subsystem: "search",
	Name:      "queries",
}, []string{"result"})

var ExcerptCache = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sphinxsync",
	Subsystem: "search",
	Name:      "excerpt_cache",
}, []string{"outcome"})

var RotationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "sphinxsync",
	Subsystem: "rotation",
	Name:      "duration_seconds",
	Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
}, []string{"kind"})

var RotationResults = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sphinxsync",
	Subsystem: "rotation",
	Name:      "results",
}, []string{"kind", "result"})

var ConfigBuilds = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sphinxsync",
	Subsystem: "config",
	Name:      "builds",
}, []string{"result"})

var TasksProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sphinxsync",
	Subsystem: "worker",
	Name:      "tasks",
}, []string{"type", "result"})

// Register registers every collector with reg. Call once at startup.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		SyncEvents, DirtyMarked, ReindexTriggers, BulkMode,
		SearchQueries, ExcerptCache,
		RotationDuration, RotationResults,
		ConfigBuilds, TasksProcessed,
	)
}
