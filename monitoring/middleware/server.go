package middleware

import (
	"bskyfollowers/monitoring"
	"github.com/prometheus/client_golang/prometheus"
	"net/http"
)

type ServerMiddleware struct {
	handler http.Handler
	label   func(r *http.Request) string
}

func (m *ServerMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := m.label(r)
	if path == "/metrics" {
		// Skip collecting metrics from metrics endpoint itself
		m.handler.ServeHTTP(w, r)
		return
	}

	// increment total request counter
	monitoring.HttpRequestsTotal.WithLabelValues(path).Inc()

	// increment number of active connections
	monitoring.ActiveConnections.Inc()

	// begin timer to measure the requests duration
	timer := prometheus.NewTimer(monitoring.HttpRequestDuration.WithLabelValues(path))

	// complete processing request
	m.handler.ServeHTTP(w, r)

	// record request duration (post processing)
	timer.ObserveDuration()

	// decrement total number of active connections (post processing)
	monitoring.ActiveConnections.Dec()
}

// NewServerMiddleware wraps a handler. label maps a request to its metrics
// label and defaults to the raw URL path.
func NewServerMiddleware(handlerToWrap http.Handler, label func(r *http.Request) string) *ServerMiddleware {
	if label == nil {
		label = func(r *http.Request) string { return r.URL.Path }
	}
	return &ServerMiddleware{handlerToWrap, label}
}
