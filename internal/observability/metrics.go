// Package observability holds the Prometheus collectors exported on /metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "strava_dashboard"

var (
	syncRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "runs_total",
		Help:      "Synchronization runs, labeled by result.",
	}, []string{"result"})

	syncPages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "pages_fetched_total",
		Help:      "Activity pages requested from Strava.",
	})

	syncInserted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "activities_inserted_total",
		Help:      "Activities written by synchronization runs.",
	})

	syncDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "duration_seconds",
		Help:      "Wall time of synchronization runs.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful synchronization.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, labeled by status class.",
	}, []string{"code"})
)

func init() {
	prometheus.MustRegister(syncRuns, syncPages, syncInserted, syncDuration, lastSuccess, httpRequests)
}

// Sync results used as the "result" label.
const (
	ResultOK           = "ok"
	ResultAuthFailed   = "auth_failed"
	ResultRemoteFailed = "remote_failed"
	ResultStoreFailed  = "store_failed"
)

// RecordSync records one finished synchronization run.
func RecordSync(result string, pages, inserted int, took time.Duration, at time.Time) {
	syncRuns.WithLabelValues(result).Inc()
	syncPages.Add(float64(pages))
	syncInserted.Add(float64(inserted))
	syncDuration.Observe(took.Seconds())
	if result == ResultOK {
		lastSuccess.Set(float64(at.Unix()))
	}
}

// RecordHTTP counts a response by status class ("2xx", "4xx", ...).
func RecordHTTP(status int) {
	httpRequests.WithLabelValues(statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
