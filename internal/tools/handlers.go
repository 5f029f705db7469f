package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"events-mcp/internal/eventapi"
)

// Upstream is the slice of the event platform API the tools need.
type Upstream interface {
	GetAllEvents(ctx context.Context, q eventapi.EventQuery) (json.RawMessage, error)
	GetEventBySlug(ctx context.Context, slug string) (json.RawMessage, error)
	BookEvent(ctx context.Context, req eventapi.BookingRequest) (json.RawMessage, error)
	GetBookingDetails(ctx context.Context, bookingID string, customerID int64) (json.RawMessage, error)
}

const bookingPendingPayment = "Booking created. Complete payment for the Razorpay order to confirm it."

type eventList struct {
	Events json.RawMessage `json:"events"`
	Page   json.RawMessage `json:"page"`
	Total  json.RawMessage `json:"total"`
}

type eventDetail struct {
	Event        json.RawMessage `json:"event"`
	BookingTypes json.RawMessage `json:"bookingTypes"`
	Tables       json.RawMessage `json:"tables"`
}

type bookingConfirmation struct {
	BookingID       json.RawMessage `json:"booking_id"`
	CustomerID      json.RawMessage `json:"customer_id"`
	RazorpayOrderID json.RawMessage `json:"razorpay_order_id"`
	Message         string          `json:"message"`
}

type bookingDetails struct {
	Booking    json.RawMessage `json:"booking"`
	Event      json.RawMessage `json:"event"`
	TicketType json.RawMessage `json:"ticket_type"`
	Customer   json.RawMessage `json:"customer"`
	QRCode     json.RawMessage `json:"qr_code"`
}

func getAllEvents(ctx context.Context, api Upstream, q eventapi.EventQuery) (any, error) {
	data, err := api.GetAllEvents(ctx, q)
	if err != nil {
		return nil, err
	}
	page := gjson.ParseBytes(data)

	var out eventList
	if out.Events, err = field(page, "content"); err != nil {
		return nil, err
	}
	if out.Page, err = field(page, "pageNo"); err != nil {
		return nil, err
	}
	if out.Total, err = field(page, "totalElements"); err != nil {
		return nil, err
	}
	return out, nil
}

func getEventBySlug(ctx context.Context, api Upstream, slug string) (any, error) {
	data, err := api.GetEventBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	detail := gjson.ParseBytes(data)

	var out eventDetail
	if out.Event, err = field(detail, "event"); err != nil {
		return nil, err
	}
	out.BookingTypes = optionalField(detail, "bookingTypes")
	out.Tables = optionalField(detail, "eventTables")
	return out, nil
}

func bookEvent(ctx context.Context, api Upstream, req eventapi.BookingRequest) (any, error) {
	data, err := api.BookEvent(ctx, req)
	if err != nil {
		return nil, err
	}
	booking := gjson.ParseBytes(data)

	var out bookingConfirmation
	if out.BookingID, err = field(booking, "bookingId"); err != nil {
		return nil, err
	}
	if out.CustomerID, err = field(booking, "customerId"); err != nil {
		return nil, err
	}
	out.RazorpayOrderID = optionalField(booking, "razorpayOrderId")
	out.Message = booking.Get("message").String()
	if out.Message == "" {
		out.Message = bookingPendingPayment
	}
	return out, nil
}

func getBookingDetails(ctx context.Context, api Upstream, bookingID string, customerID int64) (any, error) {
	data, err := api.GetBookingDetails(ctx, bookingID, customerID)
	if err != nil {
		return nil, err
	}
	details := gjson.ParseBytes(data)

	var out bookingDetails
	if out.Booking, err = field(details, "booking"); err != nil {
		return nil, err
	}
	out.Event = optionalField(details, "event")
	out.TicketType = optionalField(details, "ticketType")
	out.Customer = optionalField(details, "customer")
	out.QRCode = optionalField(details, "qrCode")
	return out, nil
}

// field returns the raw value at path or a malformed-payload error.
func field(obj gjson.Result, path string) (json.RawMessage, error) {
	r := obj.Get(path)
	if !r.Exists() {
		return nil, fmt.Errorf("%w: missing %s", eventapi.ErrMalformedPayload, path)
	}
	return json.RawMessage(r.Raw), nil
}

// optionalField returns the raw value at path, or JSON null.
func optionalField(obj gjson.Result, path string) json.RawMessage {
	r := obj.Get(path)
	if !r.Exists() {
		return json.RawMessage("null")
	}
	return json.RawMessage(r.Raw)
}
