package server

import "events-mcp/internal/tools"

// Server identity advertised by initialize and discovery.
const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "bigbull-events"
	ServerVersion   = "1.0.0"

	serverDescription = "MCP server for Big Bull club events: upcoming events, event details and bookings"
)

// ToolInfo is one entry of tools/list and of the discovery document.
type ToolInfo struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	InputSchema tools.Schema `json:"inputSchema"`
}

type ToolsListResult struct {
	Tools []ToolInfo `json:"tools"`
}

type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Capabilities struct {
	Tools map[string]any `json:"tools"`
}

type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    Capabilities   `json:"capabilities"`
	ServerInfo      Implementation `json:"serverInfo"`
	Instructions    string         `json:"instructions"`
}

// CallResult is the result of tools/call. IsError is always present.
type CallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Discovery is served on the well-known endpoints.
type Discovery struct {
	Name            string     `json:"name"`
	Version         string     `json:"version"`
	ProtocolVersion string     `json:"protocol_version"`
	Description     string     `json:"description"`
	Instructions    string     `json:"instructions"`
	Tools           []ToolInfo `json:"tools"`
}

// toolSummary is the REST listing entry.
type toolSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
