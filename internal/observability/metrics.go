package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_server_http_requests_total",
			Help: "Total HTTP requests handled by the policy server",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "policy_server_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	policySavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_server_policy_saves_total",
			Help: "Policy save attempts by policy type and outcome",
		},
		[]string{"policy_type", "outcome"},
	)

	membersRemovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_server_members_removed_total",
			Help: "Organization members removed by policy side effects",
		},
		[]string{"policy_type"},
	)
)

// RecordPolicySave counts a policy save attempt. Outcome is one of
// "saved", "rejected", or "error".
func RecordPolicySave(policyType, outcome string) {
	policySavesTotal.WithLabelValues(policyType, outcome).Inc()
}

// RecordMemberRemoved counts a membership removal triggered by enabling
// the given policy type.
func RecordMemberRemoved(policyType string) {
	membersRemovedTotal.WithLabelValues(policyType).Inc()
}

// MetricsMiddleware records request counts and durations for every handled
// request. Paths are normalized before use as labels so UUID segments do
// not blow up cardinality.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// normalizePath replaces UUID path segments with a placeholder.
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if isUUID(s) {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	for i, c := range s {
		switch i {
		case 8, 13, 18, 23:
			if c != '-' {
				return false
			}
		default:
			if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
				return false
			}
		}
	}
	return true
}
