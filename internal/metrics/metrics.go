// Package metrics holds the Prometheus collectors for the MCP server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label constants.
const (
	Tool      = "tool"
	Status    = "status"
	Operation = "operation"
	Method    = "method"
	Code      = "code"
)

var (
	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// ToolCallsTotal Total number of tool dispatches by outcome.
	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Total number of tool dispatches",
		},
		[]string{Tool, Status},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// ToolCallDuration Time spent dispatching a tool, including the upstream call.
	ToolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tool_call_duration_seconds",
			Help:    "Time spent dispatching a tool",
			Buckets: prometheus.DefBuckets,
		},
		[]string{Tool},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// UpstreamRequestsTotal Total number of calls made to the event platform API.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of calls made to the event platform API",
		},
		[]string{Operation, Status},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// UpstreamRequestDuration Latency of calls to the event platform API.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Latency of calls to the event platform API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{Operation},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// RPCRequestsTotal Total number of JSON-RPC requests by method and error code (0 on success).
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jsonrpc_requests_total",
			Help: "Total number of JSON-RPC requests",
		},
		[]string{Method, Code},
	)
)

//nolint:gochecknoinits // This is how the prometheus magic works.
func init() {
	_ = prometheus.Register(ToolCallsTotal)
	_ = prometheus.Register(ToolCallDuration)
	_ = prometheus.Register(UpstreamRequestsTotal)
	_ = prometheus.Register(UpstreamRequestDuration)
	_ = prometheus.Register(RPCRequestsTotal)
}

// Handler returns the exposition handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
