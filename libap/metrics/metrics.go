// Package metrics declares the Prometheus collectors apocryphad exposes
// on the healthserver's /metrics endpoint: query counts by operator and
// outcome, cache effectiveness, the write generation, and persistence
// flush behavior.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// QueriesTotal counts evaluated queries by operator and outcome
	// ("ok" or "error").
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "apocrypha_queries_total",
		Help: "Total queries evaluated, by operator and outcome.",
	}, []string{"operator", "outcome"})

	// CacheLookupsTotal counts cache lookups by result ("hit" or "miss").
	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "apocrypha_cache_lookups_total",
		Help: "Total query cache lookups, by result.",
	}, []string{"result"})

	// CacheSize reports the current number of cached queries.
	CacheSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "apocrypha_cache_entries",
		Help: "Current number of entries in the query cache.",
	})

	// Generation mirrors the document's write generation counter.
	Generation = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "apocrypha_generation",
		Help: "Monotonic generation counter, incremented on every successful mutation.",
	})

	// FlushesTotal counts persistence flush attempts by outcome.
	FlushesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "apocrypha_flushes_total",
		Help: "Total persistence flush attempts, by outcome.",
	}, []string{"outcome"})

	// FlushDuration observes how long a flush's disk I/O (write + fsync +
	// rename) takes; the snapshot taken beforehand under the lock and the
	// wait for the next tick are not included.
	FlushDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "apocrypha_flush_duration_seconds",
		Help:    "Duration of persistence flushes.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		QueriesTotal,
		CacheLookupsTotal,
		CacheSize,
		Generation,
		FlushesTotal,
		FlushDuration,
	)
}
