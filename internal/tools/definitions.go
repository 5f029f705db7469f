package tools

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"events-mcp/internal/eventapi"
)

// Name identifies a tool. The set of values is closed: every constant below
// has exactly one Definition in the registry and nothing else is dispatchable.
type Name string

const (
	GetAllEvents      Name = "get_all_events"
	GetEventBySlug    Name = "get_event_by_slug"
	BookEvent         Name = "book_event"
	GetBookingDetails Name = "get_booking_details"
)

// Booking entity kinds accepted by book_event.
const (
	EntityTicketType = "TICKET_TYPE"
	EntityTable      = "TABLE"
)

const (
	defaultPage    = 0
	defaultSize    = 4
	maxSize        = 50
	defaultSortBy  = "eventDateTime"
	defaultSortDir = "asc"
	minSlugLength  = 3

	afterDateExample = "2026-02-04T18:30:00.000Z"
	afterDatePattern = `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{1,9})?Z$`
)

// Schema is the JSON Schema advertised for a tool's arguments.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a single argument.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Format      string   `json:"format,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
}

// Definition is one entry of the tool table.
type Definition struct {
	Name        Name
	Description string
	InputSchema Schema
	bind        binder
}

// binder validates and defaults arguments, yielding the bound handler call.
type binder func(args gjson.Result) (call, error)

// call runs a bound handler against the upstream API.
type call func(ctx context.Context, api Upstream) (any, error)

func ptr[T any](v T) *T { return &v }

// definitions returns the tool table in declaration order.
func definitions() []Definition {
	return []Definition{
		{
			Name:        GetAllEvents,
			Description: getAllEventsDescription,
			InputSchema: Schema{
				Type: "object",
				Properties: map[string]Property{
					"page": {
						Type:        "integer",
						Description: "Page number (0-indexed)",
						Default:     defaultPage,
						Minimum:     ptr(0.0),
					},
					"size": {
						Type:        "integer",
						Description: "Number of events per page",
						Default:     defaultSize,
						Minimum:     ptr(1.0),
						Maximum:     ptr(float64(maxSize)),
					},
					"sortBy": {
						Type:        "string",
						Description: "Field to sort by",
						Default:     defaultSortBy,
					},
					"sortDir": {
						Type:        "string",
						Description: "Sort direction (asc or desc)",
						Enum:        []string{"asc", "desc"},
						Default:     defaultSortDir,
					},
					"afterDate": {
						Type:        "string",
						Description: "ISO 8601 datetime with timezone. Example: " + afterDateExample + " (MUST include time and the trailing Z)",
						Pattern:     afterDatePattern,
						Format:      "date-time",
					},
				},
				Required: []string{"page", "size", "sortBy", "sortDir", "afterDate"},
			},
			bind: bindGetAllEvents,
		},
		{
			Name:        GetEventBySlug,
			Description: getEventBySlugDescription,
			InputSchema: Schema{
				Type: "object",
				Properties: map[string]Property{
					"event_slug": {
						Type:        "string",
						Description: "Unique slug identifier for the event",
						MinLength:   ptr(minSlugLength),
					},
				},
				Required: []string{"event_slug"},
			},
			bind: bindGetEventBySlug,
		},
		{
			Name:        BookEvent,
			Description: bookEventDescription,
			InputSchema: Schema{
				Type: "object",
				Properties: map[string]Property{
					"event_id": {
						Type:        "integer",
						Description: "Numeric id of the event, from get_event_by_slug",
						Minimum:     ptr(1.0),
					},
					"booking_entity_type": {
						Type:        "string",
						Description: "What is being booked: TICKET_TYPE for entry tickets, TABLE for a table",
						Enum:        []string{EntityTicketType, EntityTable},
					},
					"booking_entity_id": {
						Type:        "integer",
						Description: "Id of the booking type or table, from get_event_by_slug",
						Minimum:     ptr(1.0),
					},
					"quantity": {
						Type:        "integer",
						Description: "Number of tickets or tables",
						Minimum:     ptr(1.0),
					},
					"customer_name": {
						Type:        "string",
						Description: "Full name of the customer",
					},
					"customer_email": {
						Type:        "string",
						Description: "Customer email address",
						Format:      "email",
					},
					"customer_whatsapp": {
						Type:        "string",
						Description: "Customer WhatsApp number with country code",
					},
				},
				Required: []string{
					"event_id", "booking_entity_type", "booking_entity_id", "quantity",
					"customer_name", "customer_email", "customer_whatsapp",
				},
			},
			bind: bindBookEvent,
		},
		{
			Name:        GetBookingDetails,
			Description: getBookingDetailsDescription,
			InputSchema: Schema{
				Type: "object",
				Properties: map[string]Property{
					"booking_id": {
						Type:        "string",
						Description: "booking_id (UUID) returned by book_event",
						Format:      "uuid",
					},
					"customer_id": {
						Type:        "integer",
						Description: "customer_id returned by book_event",
						Minimum:     ptr(1.0),
					},
				},
				Required: []string{"booking_id", "customer_id"},
			},
			bind: bindGetBookingDetails,
		},
	}
}

func bindGetAllEvents(args gjson.Result) (call, error) {
	q := eventapi.EventQuery{
		Page:    defaultPage,
		Size:    defaultSize,
		SortBy:  defaultSortBy,
		SortDir: defaultSortDir,
	}

	if v, ok, err := intArg(args, "page"); err != nil {
		return nil, err
	} else if ok {
		if v < 0 {
			return nil, invalid("page", "page must be 0 or greater")
		}
		q.Page = int(v)
	}
	if v, ok, err := intArg(args, "size"); err != nil {
		return nil, err
	} else if ok {
		if v < 1 || v > maxSize {
			return nil, invalid("size", "size must be between 1 and %d", maxSize)
		}
		q.Size = int(v)
	}
	if v, ok, err := stringArg(args, "sortBy"); err != nil {
		return nil, err
	} else if ok && v != "" {
		q.SortBy = v
	}
	if v, ok, err := stringArg(args, "sortDir"); err != nil {
		return nil, err
	} else if ok && v != "" {
		v = strings.ToLower(v)
		if v != "asc" && v != "desc" {
			return nil, invalid("sortDir", "sortDir must be asc or desc")
		}
		q.SortDir = v
	}

	after, _, err := stringArg(args, "afterDate")
	if err != nil || after == "" {
		return nil, invalid("afterDate",
			"afterDate is required and must be an ISO 8601 datetime with timezone (example: %s)", afterDateExample)
	}
	if !isUTCTimestamp(after) {
		return nil, invalid("afterDate",
			"afterDate %q is not an ISO 8601 datetime ending in Z (example: %s)", after, afterDateExample)
	}
	q.AfterDate = after

	return func(ctx context.Context, api Upstream) (any, error) {
		return getAllEvents(ctx, api, q)
	}, nil
}

func bindGetEventBySlug(args gjson.Result) (call, error) {
	slug, err := requiredString(args, "event_slug")
	if err != nil {
		return nil, err
	}
	if len(slug) < minSlugLength {
		return nil, invalid("event_slug", "event_slug must be at least %d characters", minSlugLength)
	}
	return func(ctx context.Context, api Upstream) (any, error) {
		return getEventBySlug(ctx, api, slug)
	}, nil
}

func bindBookEvent(args gjson.Result) (call, error) {
	var req eventapi.BookingRequest
	var err error

	if req.EventID, err = positiveInt(args, "event_id"); err != nil {
		return nil, err
	}
	kind, err := requiredString(args, "booking_entity_type")
	if err != nil {
		return nil, err
	}
	kind = strings.ToUpper(kind)
	if kind != EntityTicketType && kind != EntityTable {
		return nil, invalid("booking_entity_type", "booking_entity_type must be %s or %s", EntityTicketType, EntityTable)
	}
	req.BookingEntityType = kind
	if req.BookingEntityID, err = positiveInt(args, "booking_entity_id"); err != nil {
		return nil, err
	}
	if req.Quantity, err = positiveInt(args, "quantity"); err != nil {
		return nil, err
	}
	if req.CustomerName, err = requiredString(args, "customer_name"); err != nil {
		return nil, err
	}
	if req.CustomerEmail, err = requiredString(args, "customer_email"); err != nil {
		return nil, err
	}
	if addr, perr := mail.ParseAddress(req.CustomerEmail); perr != nil || addr.Address != req.CustomerEmail {
		return nil, invalid("customer_email", "customer_email %q is not a valid email address", req.CustomerEmail)
	}
	if req.CustomerWhatsapp, err = requiredString(args, "customer_whatsapp"); err != nil {
		return nil, err
	}

	return func(ctx context.Context, api Upstream) (any, error) {
		return bookEvent(ctx, api, req)
	}, nil
}

func bindGetBookingDetails(args gjson.Result) (call, error) {
	bookingID, err := requiredString(args, "booking_id")
	if err != nil {
		return nil, err
	}
	if _, perr := uuid.Parse(bookingID); perr != nil {
		return nil, invalid("booking_id", "booking_id must be the UUID returned by book_event")
	}
	customerID, err := positiveInt(args, "customer_id")
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, api Upstream) (any, error) {
		return getBookingDetails(ctx, api, bookingID, customerID)
	}, nil
}
