package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	ApiCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bsky_api_calls_total",
			Help: "Total number of calls to the Bluesky API",
		},
		[]string{"method", "outcome"},
	)

	ApiCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bsky_api_call_duration_seconds",
			Help:    "Duration of calls to the Bluesky API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Number of browser sessions held in memory",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HttpRequestsTotal,
		HttpRequestDuration,
		ActiveConnections,
		ApiCalls,
		ApiCallDuration,
		ActiveSessions,
	)
}
