package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var initOnce sync.Once

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AuthAttemptsCounter prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	ConflictRejections  prometheus.Counter
	UserDeletionsTotal  prometheus.Counter
	AdminActionsCounter *prometheus.CounterVec
)

// Init registers all collectors. Safe to call more than once; only the
// first call registers.
func Init(prefix string) {
	initOnce.Do(func() { register(prefix) })
}

func register(prefix string) {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of failed authentications",
		},
	)

	ConflictRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_appointment_conflicts_total",
			Help: "Appointments rejected by the slot conflict check",
		},
	)

	UserDeletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_user_deletions_total",
			Help: "Completed cascading user deletions",
		},
	)

	AdminActionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_admin_actions_total",
			Help: "Audit actions appended by admins",
		},
		[]string{"action"},
	)
}
