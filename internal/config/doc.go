// Package config handles configuration loading for events-mcp.
//
// # Sources
//
// Values are layered, later sources winning:
//
//  1. Built-in defaults (Default)
//  2. A YAML or TOML file, selected with -config or EVENTS_MCP_CONFIG
//  3. Environment variables (PORT, MCP_TOKEN, TENANT_ID, ...)
//
// # Environment Variable Expansion
//
// File values can reference environment variables:
//
//	upstream:
//	  tenant_secret: "${TENANT_SECRET}"
//
// # Example
//
//	server:
//	  host: "0.0.0.0"
//	  port: 8000
//	  token: "${MCP_TOKEN}"
//	  response_mode: "sse"   # sse, json, auto
//
//	upstream:
//	  base_url: "https://api.nyteflow.brynklabs.in/api/customer"
//	  tenant_id: "${TENANT_ID}"
//	  tenant_secret: "${TENANT_SECRET}"
//	  connect_timeout: "5s"
//	  timeout: "15s"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
// The same keys work in TOML under [server], [upstream], [logging] and
// [metrics] tables.
package config
