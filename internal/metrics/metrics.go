package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Solve metrics
	solvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rootfinder_solves_total",
			Help: "Total number of solves by method and outcome",
		},
		[]string{"method", "status"},
	)

	solveIterations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rootfinder_solve_iterations",
			Help:    "Number of iterations performed per successful solve",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 500, 1000, 10000},
		},
		[]string{"method"},
	)

	solveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rootfinder_solve_duration_seconds",
			Help:    "Solve latency in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"method"},
	)

	// Cache metrics
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rootfinder_expression_cache_lookups_total",
			Help: "Expression cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)

	// Plot metrics
	plotPoints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rootfinder_plot_points_total",
			Help: "Sampled plot points by validity",
		},
		[]string{"valid"},
	)

	// Storage metrics
	runsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rootfinder_runs_persisted_total",
			Help: "Total number of solve runs written to history",
		},
	)
)

// RecordSolve records the outcome of one solve. Iterations are only observed for
// solves that produced a trace.
func RecordSolve(method, status string, iterations int, duration time.Duration) {
	solvesTotal.WithLabelValues(method, status).Inc()
	solveDuration.WithLabelValues(method).Observe(duration.Seconds())
	if iterations > 0 {
		solveIterations.WithLabelValues(method).Observe(float64(iterations))
	}
}

// RecordCacheLookup records an expression cache hit or miss. Its signature matches
// exprcache.LookupObserver.
func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(kind, result).Inc()
}

// RecordPlot records the valid and failed point counts of a sampled series
func RecordPlot(valid, failed int) {
	plotPoints.WithLabelValues("true").Add(float64(valid))
	plotPoints.WithLabelValues("false").Add(float64(failed))
}

// RecordRunPersisted records a run written to history
func RecordRunPersisted() {
	runsPersisted.Inc()
}
