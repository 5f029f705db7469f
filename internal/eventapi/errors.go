package eventapi

import (
    "context"
    "errors"
    "fmt"
)

// ErrMalformedPayload marks an upstream body that could not be interpreted.
var ErrMalformedPayload = errors.New("malformed upstream payload")

// maxErrorBody bounds how much of an upstream error body ends up in messages.
const maxErrorBody = 200

// HTTPError is returned when the upstream answers with status >= 400.
type HTTPError struct {
    Status int
    Body   string
}

func (e *HTTPError) Error() string {
    body := e.Body
    if len(body) > maxErrorBody {
        body = body[:maxErrorBody] + "..."
    }
    if body == "" {
        return fmt.Sprintf("HTTP %d", e.Status)
    }
    return fmt.Sprintf("HTTP %d: %s", e.Status, body)
}

// LogicalError is returned when the upstream reports success=false.
type LogicalError struct {
    Message string
}

func (e *LogicalError) Error() string { return e.Message }

func statusLabel(err error) string {
    var httpErr *HTTPError
    var logicalErr *LogicalError
    switch {
    case err == nil:
        return "ok"
    case errors.As(err, &httpErr):
        return "http_error"
    case errors.As(err, &logicalErr):
        return "logical_error"
    case errors.Is(err, ErrMalformedPayload):
        return "malformed"
    case errors.Is(err, context.DeadlineExceeded):
        return "timeout"
    case errors.Is(err, context.Canceled):
        return "canceled"
    default:
        return "transport_error"
    }
}
