// Package tools holds the MCP tool table for the event platform: argument
// validation, one handler per tool, and the dispatch boundary that turns
// every outcome into an Envelope.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"events-mcp/internal/metrics"
)

// Dispatch outcome labels.
const (
	statusOK          = "ok"
	statusInvalid     = "invalid_arguments"
	statusUnknownTool = "unknown_tool"
	statusFailed      = "upstream_error"
	statusPanic       = "panic"
)

// Registry is the immutable tool table. Build it once with NewRegistry and
// share it; it is safe for concurrent use.
type Registry struct {
	defs   []Definition
	byName map[Name]int
	api    Upstream
	logger *slog.Logger
}

// NewRegistry builds the registry over the given upstream.
func NewRegistry(api Upstream, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	defs := definitions()
	byName := make(map[Name]int, len(defs))
	for i, d := range defs {
		byName[d.Name] = i
	}
	return &Registry{defs: defs, byName: byName, api: api, logger: logger}
}

// List returns the tool definitions in declaration order.
func (r *Registry) List() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Lookup finds a definition by its wire name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.byName[Name(name)]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Dispatch validates args and runs the named tool. It never returns an error
// and never panics: every failure is reported in the envelope.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (env Envelope) {
	start := time.Now()
	status := statusOK
	label := name
	logger := r.logger.With(slog.String("tool", name), slog.String("call_id", uuid.NewString()))

	defer func() {
		if p := recover(); p != nil {
			logger.ErrorContext(ctx, "tool handler panicked",
				slog.Any("panic", p),
				slog.String("stack", string(debug.Stack())))
			status = statusPanic
			env = Envelope{Error: fmt.Sprintf("%v", p), Tool: name}
		}
		metrics.ToolCallsTotal.WithLabelValues(label, status).Inc()
		metrics.ToolCallDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		logger.InfoContext(ctx, "tool dispatched",
			slog.String("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", env.Error))
	}()

	def, ok := r.Lookup(name)
	if !ok {
		label = "unknown"
		status = statusUnknownTool
		return Failed(fmt.Sprintf("Unknown tool: %s", name))
	}

	parsed, err := parseArguments(args)
	if err != nil {
		status = statusInvalid
		return result(nil, err)
	}
	invoke, err := def.bind(parsed)
	if err != nil {
		status = statusInvalid
		return result(nil, err)
	}

	payload, err := invoke(ctx, r.api)
	if err != nil {
		status = statusFailed
	}
	return result(payload, err)
}

// result is the single place a handler outcome becomes an Envelope.
func result(payload any, err error) Envelope {
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return Failed(verr.Message)
		}
		return Failed(err.Error())
	}
	return Succeeded(payload)
}
