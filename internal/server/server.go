// Package server provides the HTTP handlers and routing for the MCP server.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"events-mcp/internal/metrics"
	"events-mcp/internal/tools"
)

// Response modes for POST /mcp.
const (
	ResponseSSE  = "sse"
	ResponseJSON = "json"
	ResponseAuto = "auto"
)

// MaxRequestBodySize bounds a JSON-RPC request body.
const MaxRequestBodySize = 1 << 20

// Config contains server configuration values such as the auth token and
// response framing.
type Config struct {
	Token        string
	ResponseMode string
	// MetricsPath mounts the Prometheus handler; empty disables it.
	MetricsPath string
}

// Server contains the configured router and tool registry for the MCP server.
type Server struct {
	cfg      Config
	router   *chi.Mux
	registry *tools.Registry
	logger   *slog.Logger
}

// New constructs a Server with middleware and routes configured.
func New(cfg Config, registry *tools.Registry, logger *slog.Logger) *Server {
	if cfg.ResponseMode == "" {
		cfg.ResponseMode = ResponseSSE
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		registry: registry,
		logger:   logger,
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.accessLog)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)

	s.router.Get("/.well-known/mcp.json", s.handleDiscovery)
	s.router.Get("/.well-known/mcp", s.handleDiscovery)
	s.router.Get("/mcp", s.handleDiscovery)

	s.router.With(s.auth).Post("/mcp", s.handleRPC)
	s.router.With(s.auth).Get("/mcp/tools", s.handleListTools)
	s.router.With(s.auth).Post("/mcp/tools/{name}", s.handleCallTool)

	if cfg.MetricsPath != "" {
		s.router.Handle(cfg.MetricsPath, metrics.Handler())
	}

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := []byte(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare(got, []byte("Bearer "+s.cfg.Token)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cors allows every origin and answers preflight requests on any path.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one structured line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.InfoContext(r.Context(), "http request",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote", r.RemoteAddr),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)))
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "mcp-server-running"})
}

func (s *Server) handleDiscovery(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Discovery{
		Name:            ServerName,
		Version:         ServerVersion,
		ProtocolVersion: ProtocolVersion,
		Description:     serverDescription,
		Instructions:    tools.Instructions,
		Tools:           s.toolInfos(),
	})
}

// toolInfos renders the registry listing. tools/list and discovery both use it.
func (s *Server) toolInfos() []ToolInfo {
	defs := s.registry.List()
	out := make([]ToolInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, ToolInfo{
			Name:        string(d.Name),
			Description: d.Description,
			InputSchema: d.InputSchema,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
