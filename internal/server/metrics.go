package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// DefaultMetricsAddr is the default address for the metrics server.
	DefaultMetricsAddr = ":9090"

	// DefaultMetricsReadTimeout is the default read timeout for the metrics server.
	DefaultMetricsReadTimeout = 10 * time.Second

	// DefaultMetricsWriteTimeout is the default write timeout for the metrics server.
	DefaultMetricsWriteTimeout = 10 * time.Second

	// DefaultMetricsIdleTimeout is the default idle timeout for the metrics server.
	DefaultMetricsIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful server shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// Metrics holds the Prometheus instruments for tool activity.
type Metrics struct {
	registry *prometheus.Registry

	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	refreshes    *prometheus.CounterVec
}

// NewMetrics creates a metrics set on its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contactkeeper_tool_calls_total",
			Help: "Total tool invocations by tool name and outcome.",
		}, []string{"tool", "status"}),
		toolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactkeeper_tool_duration_seconds",
			Help:    "Tool invocation latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contactkeeper_token_refreshes_total",
			Help: "Total credential refresh attempts by outcome.",
		}, []string{"status"}),
	}
}

// ObserveToolCall records one tool invocation.
func (m *Metrics) ObserveToolCall(tool, status string, elapsed time.Duration) {
	m.toolCalls.WithLabelValues(tool, status).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ObserveRefresh records one credential refresh attempt.
func (m *Metrics) ObserveRefresh(status string) {
	m.refreshes.WithLabelValues(status).Inc()
}

// Handler returns the scrape handler for this metrics set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MetricsServer serves Prometheus metrics on a dedicated port. This
// isolates metrics from the MCP transport, preventing unauthorized
// access to operational metrics.
type MetricsServer struct {
	httpServer *http.Server
	metrics    *Metrics
	addr       string
}

// NewMetricsServer creates a metrics server exposing a /metrics
// endpoint for Prometheus scraping.
func NewMetricsServer(addr string, metrics *Metrics) *MetricsServer {
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	return &MetricsServer{addr: addr, metrics: metrics}
}

// Start starts the metrics server in a blocking manner.
// Call this in a goroutine if you need non-blocking operation.
func (s *MetricsServer) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: DefaultMetricsReadTimeout,
		WriteTimeout:      DefaultMetricsWriteTimeout,
		IdleTimeout:       DefaultMetricsIdleTimeout,
	}

	slog.Info("starting metrics server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		slog.Info("shutting down metrics server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured address for the metrics server.
func (s *MetricsServer) Addr() string {
	return s.addr
}
