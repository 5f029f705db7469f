package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"

	"events-mcp/internal/tools"
)

// handleListTools serves the plain REST listing used by older clients.
func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	defs := s.registry.List()
	out := make([]toolSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, toolSummary{Name: string(d.Name), Description: d.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

// handleCallTool runs one tool with the request body as its arguments and
// returns the bare envelope.
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := s.registry.Lookup(name); !ok {
		writeJSON(w, http.StatusNotFound, tools.Failed("Unknown tool: "+name))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, tools.Failed("request body too large"))
		return
	}
	if len(body) > 0 && !gjson.ValidBytes(body) {
		writeJSON(w, http.StatusBadRequest, tools.Failed("invalid json"))
		return
	}

	env := s.registry.Dispatch(r.Context(), name, json.RawMessage(body))
	writeJSON(w, http.StatusOK, env)
}
