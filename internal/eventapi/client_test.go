package eventapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"events-mcp/internal/metrics"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/api/customer/", TenantID: "tenant-1", TenantSecret: "secret-1"}, nil)
}

func TestGetAllEventsSendsQueryAndHeaders(t *testing.T) {
	t.Parallel()

	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = io.WriteString(w, `{"success":true,"data":{"content":[{"id":1}],"pageNo":0,"totalElements":1}}`)
	})

	data, err := c.GetAllEvents(context.Background(), EventQuery{
		Page: 1, Size: 4, SortBy: "eventDateTime", SortDir: "asc", AfterDate: "2026-02-04T00:00:00.000Z",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"id":1}],"pageNo":0,"totalElements":1}`, string(data))

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/customer/events", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "4", q.Get("size"))
	assert.Equal(t, "eventDateTime", q.Get("sortBy"))
	assert.Equal(t, "asc", q.Get("sortDir"))
	assert.Equal(t, "2026-02-04T00:00:00.000Z", q.Get("afterDate"))
	assert.Equal(t, "tenant-1", got.Header.Get("X-Tenant-Id"))
	assert.Equal(t, "secret-1", got.Header.Get("X-Tenant-Secret"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
}

func TestGetEventBySlugEscapesPath(t *testing.T) {
	t.Parallel()

	var rawPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `{"success":true,"data":{"event":{"slug":"desi drip"}}}`)
	})

	_, err := c.GetEventBySlug(context.Background(), "desi drip")
	require.NoError(t, err)
	assert.Equal(t, "/api/customer/events/desi%20drip", rawPath)
}

func TestBookEventPostsCamelCaseBody(t *testing.T) {
	t.Parallel()

	var body map[string]any
	var method string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"success":true,"data":{"bookingId":"b-1","customerId":9,"razorpayOrderId":"order_1"}}`)
	})

	data, err := c.BookEvent(context.Background(), BookingRequest{
		EventID: 270, BookingEntityType: "TICKET_TYPE", BookingEntityID: 12, Quantity: 2,
		CustomerName: "Asha", CustomerEmail: "asha@example.com", CustomerWhatsapp: "+911234567890",
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), "order_1")
	assert.Equal(t, http.MethodPost, method)
	assert.EqualValues(t, 270, body["eventId"])
	assert.Equal(t, "TICKET_TYPE", body["bookingEntityType"])
	assert.EqualValues(t, 2, body["quantity"])
	assert.Equal(t, "+911234567890", body["customerWhatsapp"])
}

func TestGetBookingDetailsPassesCustomerID(t *testing.T) {
	t.Parallel()

	var path, customerID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		customerID = r.URL.Query().Get("customerId")
		_, _ = io.WriteString(w, `{"success":true,"data":{"booking":{"id":"x"}}}`)
	})

	_, err := c.GetBookingDetails(context.Background(), "6f1c2a9e-5b7d-4e1a-9c3f-0a1b2c3d4e5f", 42)
	require.NoError(t, err)
	assert.Equal(t, "/api/customer/bookings/6f1c2a9e-5b7d-4e1a-9c3f-0a1b2c3d4e5f", path)
	assert.Equal(t, "42", customerID)
}

func TestHTTPErrorStatus(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "bad gateway")
	})

	before := testutil.ToFloat64(metrics.UpstreamRequestsTotal.WithLabelValues(opGetEvent, "http_error"))
	_, err := c.GetEventBySlug(context.Background(), "desi-drip")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.Status)
	assert.Equal(t, "bad gateway", httpErr.Body)
	assert.Equal(t, "HTTP 502: bad gateway", err.Error())
	after := testutil.ToFloat64(metrics.UpstreamRequestsTotal.WithLabelValues(opGetEvent, "http_error"))
	assert.Equal(t, before+1, after)
}

func TestLogicalErrorRegardlessOfStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "upstream message", body: `{"success":false,"message":"Event has ended"}`, want: "Event has ended"},
		{name: "default message", body: `{"success":false}`, want: "Event not found"},
		{name: "missing success", body: `{"data":{}}`, want: "Event not found"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.GetEventBySlug(context.Background(), "desi-drip")
			var logicalErr *LogicalError
			require.ErrorAs(t, err, &logicalErr)
			assert.Equal(t, tt.want, logicalErr.Message)
		})
	}
}

func TestMalformedPayload(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"<html>", `[1,2]`, ``} {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		_, err := c.GetEventBySlug(context.Background(), "desi-drip")
		assert.ErrorIs(t, err, ErrMalformedPayload, "body %q", body)
	}
}

func TestMissingDataIsNull(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"success":true}`)
	})
	data, err := c.GetEventBySlug(context.Background(), "desi-drip")
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestContextCancellationAbandonsCall(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GetEventBySlug(ctx, "desi-drip")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestNewHTTPClientDefaults(t *testing.T) {
	t.Parallel()

	hc := NewHTTPClient(0, 0)
	assert.Equal(t, DefaultTimeout, hc.Timeout)

	hc = NewHTTPClient(time.Second, 3*time.Second)
	assert.Equal(t, 3*time.Second, hc.Timeout)
}

func TestStatusLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ok", statusLabel(nil))
	assert.Equal(t, "http_error", statusLabel(&HTTPError{Status: 500}))
	assert.Equal(t, "logical_error", statusLabel(&LogicalError{Message: "x"}))
	assert.Equal(t, "timeout", statusLabel(context.DeadlineExceeded))
	assert.Equal(t, "transport_error", statusLabel(errors.New("dial tcp: refused")))
}
