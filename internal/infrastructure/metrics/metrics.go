package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Service metrics - using explicit registration
var (
	// Request counters
	RequestsTotal *prometheus.CounterVec

	// Tool call counters
	ToolCallsTotal *prometheus.CounterVec

	// Tool duration histogram
	ToolDuration *prometheus.HistogramVec

	// Upstream search API attempt counter
	UpstreamAttemptsTotal *prometheus.CounterVec

	// OAuth2 token issuance counter
	TokenIssuancesTotal prometheus.Counter
)

// init creates and registers all metrics with the default registry
func init() {
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gcse",
			Subsystem: "mcp",
			Name:      "requests_total",
			Help:      "Total number of MCP requests",
		},
		[]string{"method", "status"},
	)

	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gcse",
			Subsystem: "mcp",
			Name:      "tool_calls_total",
			Help:      "Total tool invocations",
		},
		[]string{"tool_name", "status"},
	)

	ToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gcse",
			Subsystem: "mcp",
			Name:      "tool_duration_seconds",
			Help:      "Tool execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"tool_name"},
	)

	UpstreamAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gcse",
			Subsystem: "mcp",
			Name:      "upstream_attempts_total",
			Help:      "Total HTTP attempts against the Custom Search API, including retries",
		},
		[]string{"outcome"},
	)

	TokenIssuancesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gcse",
			Subsystem: "mcp",
			Name:      "token_issuances_total",
			Help:      "Total OAuth2 bearer tokens issued (cache misses only)",
		},
	)

	collectors := []prometheus.Collector{
		RequestsTotal,
		ToolCallsTotal,
		ToolDuration,
		UpstreamAttemptsTotal,
		TokenIssuancesTotal,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			log.Warn().Err(err).Msg("failed to register metric")
		}
	}
}

// RecordRequest increments the HTTP request counter
func RecordRequest(method, status string) {
	RequestsTotal.WithLabelValues(method, status).Inc()
}

// RecordToolCall increments the tool invocation counter
func RecordToolCall(toolName, status string) {
	ToolCallsTotal.WithLabelValues(toolName, status).Inc()
}

// ObserveToolDuration records the execution duration of a tool call
func ObserveToolDuration(toolName string, seconds float64) {
	ToolDuration.WithLabelValues(toolName).Observe(seconds)
}

// RecordUpstreamAttempt increments the upstream attempt counter
func RecordUpstreamAttempt(outcome string) {
	UpstreamAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordTokenIssuance increments the token issuance counter
func RecordTokenIssuance() {
	TokenIssuancesTotal.Inc()
}
