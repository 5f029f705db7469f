package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/tidwall/gjson"

	"events-mcp/internal/metrics"
	"events-mcp/internal/tools"
)

// MCP methods served on POST /mcp.
const (
	methodInitialize = "initialize"
	methodToolsList  = "tools/list"
	methodToolsCall  = "tools/call"
	methodPing       = "ping"
)

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reply(w, r, "", errorResponse(nil, InvalidRequest, "Invalid Request: body too large"))
			return
		}
		s.reply(w, r, "", errorResponse(nil, ParseError, "Parse error: "+err.Error()))
		return
	}

	req, rpcErr := parseRequest(body)
	if rpcErr != nil {
		s.reply(w, r, req.Method, Response{JSONRPC: JSONRPCVersion, ID: req.ID, Error: rpcErr})
		return
	}
	s.reply(w, r, req.Method, s.dispatch(r.Context(), req))
}

// dispatch routes a well-formed request by method.
func (s *Server) dispatch(ctx context.Context, req Request) Response {
	switch req.Method {
	case methodInitialize:
		return resultResponse(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    Capabilities{Tools: map[string]any{}},
			ServerInfo:      Implementation{Name: ServerName, Version: ServerVersion},
			Instructions:    tools.Instructions,
		})
	case methodToolsList:
		return resultResponse(req.ID, ToolsListResult{Tools: s.toolInfos()})
	case methodToolsCall:
		return s.callTool(ctx, req)
	case methodPing:
		return resultResponse(req.ID, struct{}{})
	default:
		return errorResponse(req.ID, MethodNotFound, "Method not found: "+req.Method)
	}
}

func (s *Server) callTool(ctx context.Context, req Request) Response {
	params := gjson.ParseBytes(req.Params)
	if len(req.Params) > 0 && !params.IsObject() {
		return errorResponse(req.ID, InvalidParams, "Invalid params: params must be an object")
	}
	name := params.Get("name")
	if name.Type != gjson.String || name.Str == "" {
		return errorResponse(req.ID, InvalidParams, "Invalid params: 'name' is required")
	}

	var args json.RawMessage
	if a := params.Get("arguments"); a.Exists() {
		args = json.RawMessage(a.Raw)
	}

	env := s.registry.Dispatch(ctx, name.Str, args)
	text, err := indent(env)
	if err != nil {
		s.logger.ErrorContext(ctx, "encoding tool result",
			slog.String("tool", name.Str),
			slog.String("error", err.Error()))
		env = tools.Failed(err.Error())
		text, _ = indent(env)
	}
	return resultResponse(req.ID, CallResult{
		Content: []Content{{Type: "text", Text: text}},
		IsError: !env.Success,
	})
}

// indent renders an envelope as the two-space indented text block agents read.
func indent(env tools.Envelope) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// reply writes exactly one JSON-RPC message, framed per the response mode.
func (s *Server) reply(w http.ResponseWriter, r *http.Request, method string, resp Response) {
	code := 0
	if resp.Error != nil {
		code = resp.Error.Code
	}
	metrics.RPCRequestsTotal.WithLabelValues(methodLabel(method), strconv.Itoa(code)).Inc()
	if code != 0 {
		s.logger.WarnContext(r.Context(), "json-rpc error",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", method),
			slog.Int("code", code),
			slog.String("message", resp.Error.Message))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		s.logger.ErrorContext(r.Context(), "encoding json-rpc response", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	payload := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	if !s.streams(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
		return
	}
	if err := writeSSE(w, payload); err != nil {
		s.logger.WarnContext(r.Context(), "writing sse frame", slog.String("error", err.Error()))
	}
}

// streams reports whether the reply goes out as an SSE frame.
func (s *Server) streams(r *http.Request) bool {
	switch s.cfg.ResponseMode {
	case ResponseJSON:
		return false
	case ResponseAuto:
		return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
	default:
		return true
	}
}

// writeSSE emits payload as a single flushed "data:" frame.
func writeSSE(w http.ResponseWriter, payload []byte) error {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// methodLabel bounds metric cardinality to the served methods.
func methodLabel(method string) string {
	switch method {
	case methodInitialize, methodToolsList, methodToolsCall, methodPing:
		return method
	case "":
		return "invalid"
	default:
		return "unknown"
	}
}
