// Package eventapi provides a minimal client for the event platform's customer API.
package eventapi

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/tidwall/gjson"

    "events-mcp/internal/metrics"
)

// Default timeouts applied when the caller leaves them unset.
const (
    DefaultConnectTimeout = 5 * time.Second
    DefaultTimeout        = 15 * time.Second
)

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 4 << 20

// Operation names used for metrics labels.
const (
    opListEvents     = "list_events"
    opGetEvent       = "get_event"
    opCreateBooking  = "create_booking"
    opBookingDetails = "booking_details"
)

// Config carries the tenant identity and endpoint of the upstream API.
type Config struct {
    BaseURL        string
    TenantID       string
    TenantSecret   string
    ConnectTimeout time.Duration
    Timeout        time.Duration
}

// Client is a minimal HTTP client for the event platform.
type Client struct {
    BaseURL      string
    TenantID     string
    TenantSecret string
    HTTP         *http.Client
}

// New returns a new client. If httpClient is nil, one bounded by the configured
// connect and total timeouts is used.
func New(cfg Config, httpClient *http.Client) *Client {
    if httpClient == nil {
        httpClient = NewHTTPClient(cfg.ConnectTimeout, cfg.Timeout)
    }
    return &Client{
        BaseURL:      strings.TrimRight(cfg.BaseURL, "/"),
        TenantID:     cfg.TenantID,
        TenantSecret: cfg.TenantSecret,
        HTTP:         httpClient,
    }
}

// NewHTTPClient builds an http.Client whose dial is bounded by connectTimeout
// and whose whole exchange is bounded by timeout.
func NewHTTPClient(connectTimeout, timeout time.Duration) *http.Client {
    if connectTimeout <= 0 {
        connectTimeout = DefaultConnectTimeout
    }
    if timeout <= 0 {
        timeout = DefaultTimeout
    }
    transport := http.DefaultTransport.(*http.Transport).Clone()
    transport.DialContext = (&net.Dialer{
        Timeout:   connectTimeout,
        KeepAlive: 30 * time.Second,
    }).DialContext
    return &http.Client{Timeout: timeout, Transport: transport}
}

// EventQuery selects a page of upcoming events.
type EventQuery struct {
    Page      int
    Size      int
    SortBy    string
    SortDir   string
    AfterDate string
}

// BookingRequest is the body sent to create a booking.
type BookingRequest struct {
    EventID           int64  `json:"eventId"`
    BookingEntityType string `json:"bookingEntityType"`
    BookingEntityID   int64  `json:"bookingEntityId"`
    Quantity          int64  `json:"quantity"`
    CustomerName      string `json:"customerName"`
    CustomerEmail     string `json:"customerEmail"`
    CustomerWhatsapp  string `json:"customerWhatsapp"`
}

// GetAllEvents returns the raw page object (content, pageNo, totalElements, ...).
func (c *Client) GetAllEvents(ctx context.Context, q EventQuery) (json.RawMessage, error) {
    v := url.Values{}
    v.Set("page", strconv.Itoa(q.Page))
    v.Set("size", strconv.Itoa(q.Size))
    v.Set("sortBy", q.SortBy)
    v.Set("sortDir", q.SortDir)
    v.Set("afterDate", q.AfterDate)
    return c.do(ctx, opListEvents, http.MethodGet, "/events", v, nil, "Upstream API returned success=false")
}

// GetEventBySlug returns the raw event detail object (event, bookingTypes, eventTables).
func (c *Client) GetEventBySlug(ctx context.Context, slug string) (json.RawMessage, error) {
    return c.do(ctx, opGetEvent, http.MethodGet, "/events/"+url.PathEscape(slug), nil, nil, "Event not found")
}

// BookEvent creates a booking and returns the raw confirmation object.
func (c *Client) BookEvent(ctx context.Context, req BookingRequest) (json.RawMessage, error) {
    body, err := json.Marshal(req)
    if err != nil {
        return nil, fmt.Errorf("encoding booking request: %w", err)
    }
    return c.do(ctx, opCreateBooking, http.MethodPost, "/bookings", nil, body, "Booking failed")
}

// GetBookingDetails returns the raw booking confirmation for a booking owned by customerID.
func (c *Client) GetBookingDetails(ctx context.Context, bookingID string, customerID int64) (json.RawMessage, error) {
    v := url.Values{}
    v.Set("customerId", strconv.FormatInt(customerID, 10))
    return c.do(ctx, opBookingDetails, http.MethodGet, "/bookings/"+url.PathEscape(bookingID), v, nil, "Booking not found")
}

// do performs one call and unwraps the {success, data|message} envelope.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body []byte, failMsg string) (data json.RawMessage, err error) {
    start := time.Now()
    defer func() {
        metrics.UpstreamRequestsTotal.WithLabelValues(op, statusLabel(err)).Inc()
        metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
    }()

    reqURL, err := c.buildURL(path, query)
    if err != nil { return nil, err }
    var rdr io.Reader
    if body != nil {
        rdr = bytes.NewReader(body)
    }
    req, err := http.NewRequestWithContext(ctx, method, reqURL, rdr)
    if err != nil { return nil, err }
    c.setHeaders(req)

    resp, err := c.HTTP.Do(req)
    if err != nil { return nil, fmt.Errorf("%s %s: %w", method, path, err) }
    defer resp.Body.Close()

    raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
    if err != nil { return nil, fmt.Errorf("reading %s response: %w", path, err) }
    if resp.StatusCode >= 400 {
        return nil, &HTTPError{Status: resp.StatusCode, Body: string(raw)}
    }
    return unwrap(raw, failMsg)
}

// unwrap checks the upstream envelope and returns its data member verbatim.
func unwrap(raw []byte, failMsg string) (json.RawMessage, error) {
    if !gjson.ValidBytes(raw) {
        return nil, fmt.Errorf("%w: response is not valid JSON", ErrMalformedPayload)
    }
    env := gjson.ParseBytes(raw)
    if !env.IsObject() {
        return nil, fmt.Errorf("%w: response is not a JSON object", ErrMalformedPayload)
    }
    if !env.Get("success").Bool() {
        msg := env.Get("message").String()
        if msg == "" {
            msg = failMsg
        }
        return nil, &LogicalError{Message: msg}
    }
    d := env.Get("data")
    if !d.Exists() {
        return json.RawMessage("null"), nil
    }
    return json.RawMessage(d.Raw), nil
}

func (c *Client) setHeaders(req *http.Request) {
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("Accept", "application/json")
    req.Header.Set("X-Tenant-Id", c.TenantID)
    req.Header.Set("X-Tenant-Secret", c.TenantSecret)
}

// buildURL composes the request URL with query params.
func (c *Client) buildURL(path string, query url.Values) (string, error) {
    u, err := url.Parse(c.BaseURL + path)
    if err != nil { return "", fmt.Errorf("invalid base url: %w", err) }
    if len(query) > 0 {
        u.RawQuery = query.Encode()
    }
    return u.String(), nil
}
