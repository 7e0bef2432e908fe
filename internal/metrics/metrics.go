package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeComputed labels analyses that ran the analyzers.
	OutcomeComputed = "computed"
	// OutcomeCached labels analyses served from the result cache.
	OutcomeCached = "cached"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight_engine",
			Name:      "analyses_total",
			Help:      "Total number of metric analyses handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "insight_engine",
			Name:      "analysis_seconds",
			Help:      "Analysis latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight_engine",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups, partitioned by hit or miss.",
		},
		[]string{"result"},
	)

	plansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight_engine",
			Name:      "rebuild_plans_total",
			Help:      "Rebuild plans produced, partitioned by eligibility.",
		},
		[]string{"eligible"},
	)

	storeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight_engine",
			Name:      "store_errors_total",
			Help:      "Best-effort store operations that failed, partitioned by operation.",
		},
		[]string{"op"},
	)
)

// Register attaches the engine collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		cacheLookupsTotal,
		plansTotal,
		storeErrorsTotal,
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration and its outcome label.
func ObserveAnalysis(duration time.Duration, outcome string) {
	if outcome != OutcomeCached {
		outcome = OutcomeComputed
	}
	analysesTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
}

// ObserveCacheLookup records a result cache hit or miss.
func ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObservePlan records a produced rebuild plan by eligibility.
func ObservePlan(eligible bool) {
	label := "false"
	if eligible {
		label = "true"
	}
	plansTotal.WithLabelValues(label).Inc()
}

// ObserveStoreError records a swallowed store failure.
func ObserveStoreError(op string) {
	storeErrorsTotal.WithLabelValues(op).Inc()
}
