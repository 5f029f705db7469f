package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ValidationError reports a missing or malformed tool argument. The upstream
// is never called when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, format string, a ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, a...)}
}

// parseArguments accepts an absent/null argument set as empty.
func parseArguments(raw json.RawMessage) (gjson.Result, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return gjson.Parse(`{}`), nil
	}
	if !gjson.Valid(trimmed) {
		return gjson.Result{}, invalid("arguments", "arguments must be valid JSON")
	}
	args := gjson.Parse(trimmed)
	if !args.IsObject() {
		return gjson.Result{}, invalid("arguments", "arguments must be a JSON object")
	}
	return args, nil
}

// present reports whether field carries a non-null value.
func present(args gjson.Result, field string) (gjson.Result, bool) {
	r := args.Get(field)
	if !r.Exists() || r.Type == gjson.Null {
		return r, false
	}
	return r, true
}

// intArg reads an optional integer argument. Fractional numbers and numeric
// strings are rejected.
func intArg(args gjson.Result, field string) (int64, bool, error) {
	r, ok := present(args, field)
	if !ok {
		return 0, false, nil
	}
	if r.Type != gjson.Number {
		return 0, true, invalid(field, "%s must be an integer", field)
	}
	f := r.Float()
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, true, invalid(field, "%s must be an integer", field)
	}
	return r.Int(), true, nil
}

// stringArg reads an optional string argument, trimmed.
func stringArg(args gjson.Result, field string) (string, bool, error) {
	r, ok := present(args, field)
	if !ok {
		return "", false, nil
	}
	if r.Type != gjson.String {
		return "", true, invalid(field, "%s must be a string", field)
	}
	return strings.TrimSpace(r.String()), true, nil
}

// requiredString reads a string argument that must be present and non-empty.
func requiredString(args gjson.Result, field string) (string, error) {
	s, ok, err := stringArg(args, field)
	if err != nil {
		return "", err
	}
	if !ok || s == "" {
		return "", invalid(field, "%s is required", field)
	}
	return s, nil
}

// positiveInt reads an integer argument that must be present and >= 1.
func positiveInt(args gjson.Result, field string) (int64, error) {
	v, ok, err := intArg(args, field)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, invalid(field, "%s is required", field)
	}
	if v < 1 {
		return 0, invalid(field, "%s must be at least 1", field)
	}
	return v, nil
}

// isUTCTimestamp accepts RFC 3339 timestamps in UTC with the trailing Z,
// with or without fractional seconds.
func isUTCTimestamp(s string) bool {
	if !strings.HasSuffix(s, "Z") {
		return false
	}
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}
