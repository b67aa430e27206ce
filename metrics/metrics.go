package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Go runtime memory and goroutine metrics come from the default registry's
// Go collector (go_memstats_*, go_goroutines) and are not duplicated here.
var (
	// HTTP surface

	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunt_http_requests_total",
			Help: "HTTP requests by status, method and route template",
		},
		[]string{"status", "method", "path"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hunt_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds by route template",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hunt_http_requests_in_progress",
			Help: "HTTP requests currently being served",
		},
		[]string{"method", "path"},
	)

	// RateLimiterRejections is labeled by limiter name (global, login, submit)
	RateLimiterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunt_rate_limiter_rejections_total",
			Help: "Requests rejected with 429, by limiter",
		},
		[]string{"limiter"},
	)

	// Game state

	AnswerSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunt_answer_submissions_total",
			Help: "Answer submissions by outcome",
		},
		[]string{"result"}, // correct, incorrect, already_complete, invalid, not_found
	)

	// TeamsCompleted counts false->true transitions of the completion flag
	TeamsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hunt_teams_completed_total",
			Help: "Teams that solved their riddle since process start",
		},
	)

	// TeamsByState is refreshed from the database, so it survives restarts
	// unlike TeamsCompleted
	TeamsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hunt_teams",
			Help: "Provisioned teams by state",
		},
		[]string{"state"}, // pending, complete
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunt_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"}, // accepted, rejected
	)

	// Storage

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hunt_db_operation_duration_seconds",
			Help:    "Repository operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	RiddleCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hunt_riddle_cache_hits_total",
			Help: "Riddle texts served from redis",
		},
	)

	RiddleCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hunt_riddle_cache_misses_total",
			Help: "Riddle lookups that fell back to the database",
		},
	)

	// Host

	SystemCPUUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hunt_system_cpu_usage_percent",
			Help: "CPU usage percentage by core",
		},
		[]string{"core"},
	)

	SystemDiskUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hunt_system_disk_usage_bytes",
			Help: "Disk usage in bytes",
		},
		[]string{"mountpoint", "type"}, // used, free, total
	)

	SystemLoadAverage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hunt_system_load_average",
			Help: "System load average",
		},
		[]string{"period"}, // 1min, 5min, 15min
	)
)

// RecordDBOperation records the duration of a repository call. Use with defer.
func RecordDBOperation(operation string, table string, startTime time.Time) {
	DatabaseOperationDuration.WithLabelValues(operation, table).Observe(time.Since(startTime).Seconds())
}

// SetTeamCounts updates TeamsByState from a total and a completed count
func SetTeamCounts(total, completed int64) {
	TeamsByState.WithLabelValues("pending").Set(float64(total - completed))
	TeamsByState.WithLabelValues("complete").Set(float64(completed))
}
