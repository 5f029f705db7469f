package server

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// JSONRPCVersion is the only protocol version accepted on the wire.
const JSONRPCVersion = "2.0"

// Standard JSON-RPC error codes.
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
)

// Request is a JSON-RPC 2.0 request. ID stays raw so it can be echoed
// byte-for-byte; it is nil when the request carried no id.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return e.Message }

func resultResponse(id json.RawMessage, result any) Response {
	return Response{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, msg string) Response {
	return Response{JSONRPC: JSONRPCVersion, ID: id, Error: &RPCError{Code: code, Message: msg}}
}

// parseRequest checks the envelope of a single request. On failure the
// returned Request still carries whatever id could be recovered.
func parseRequest(body []byte) (Request, *RPCError) {
	var req Request
	if !gjson.ValidBytes(body) {
		return req, &RPCError{Code: ParseError, Message: "Parse error: Invalid JSON"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return req, &RPCError{Code: InvalidRequest, Message: "Invalid Request: expected a single JSON object"}
	}

	if id := root.Get("id"); id.Exists() {
		switch id.Type {
		case gjson.String, gjson.Number, gjson.Null:
			req.ID = json.RawMessage(id.Raw)
		default:
			return req, &RPCError{Code: InvalidRequest, Message: "Invalid Request: id must be a string, number or null"}
		}
	}

	version := root.Get("jsonrpc")
	if version.Type != gjson.String || version.Str != JSONRPCVersion {
		return req, &RPCError{Code: InvalidRequest, Message: "Invalid Request: jsonrpc must be '2.0'"}
	}
	req.JSONRPC = version.Str

	method := root.Get("method")
	if method.Type != gjson.String || method.Str == "" {
		return req, &RPCError{Code: InvalidRequest, Message: "Invalid Request: method is required"}
	}
	req.Method = method.Str

	if params := root.Get("params"); params.Exists() {
		req.Params = json.RawMessage(params.Raw)
	}
	return req, nil
}
