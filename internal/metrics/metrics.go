package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal       *prometheus.CounterVec
	ArticlesScored  *prometheus.CounterVec
	AlertsGenerated prometheus.Counter
	RunDuration     *prometheus.HistogramVec
)

// Init registers the toolkit collectors on the default registry. Call
// once from main before any run executes.
func Init() {
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolkit_runs_total",
			Help: "Total number of toolkit runs.",
		},
		[]string{"job", "status"},
	)

	ArticlesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolkit_articles_scored_total",
			Help: "Total number of articles scored per job.",
		},
		[]string{"job"},
	)

	AlertsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "toolkit_alerts_generated_total",
			Help: "Total number of alerts generated.",
		},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toolkit_run_duration_seconds",
			Help:    "Duration of toolkit runs.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"job"},
	)
}

// ObserveRun records the outcome of one run. Safe to call when Init
// was never invoked, which keeps the collectors optional in tests.
func ObserveRun(job, status string, elapsed time.Duration, articles, alertCount int) {
	if RunsTotal == nil {
		return
	}
	RunsTotal.WithLabelValues(job, status).Inc()
	ArticlesScored.WithLabelValues(job).Add(float64(articles))
	AlertsGenerated.Add(float64(alertCount))
	RunDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}
