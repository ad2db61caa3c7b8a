// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_requests_total",
			Help: "Total number of remote store calls",
		},
		[]string{"backend", "collection", "op"},
	)

	StoreRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_request_errors_total",
			Help: "Total number of failed remote store calls",
		},
		[]string{"backend", "collection", "op", "kind"},
	)

	StoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "store_request_duration_seconds",
			Help: "Duration of remote store calls in seconds",
		},
		[]string{"backend", "op"},
	)

	ReaperAccountsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reaper_accounts_scanned_total",
			Help: "Total number of accounts examined by the inactivity sweep",
		},
	)

	ReaperAccountsReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reaper_accounts_reaped_total",
			Help: "Total number of accounts fully reaped",
		},
	)

	ReaperAccountsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reaper_accounts_failed_total",
			Help: "Total number of account cascades that partially failed",
		},
	)

	ReaperRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "reaper_run_duration_seconds",
			Help: "Duration of one full inactivity sweep in seconds",
		},
	)
)
