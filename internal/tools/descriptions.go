package tools

// Instructions is the agent guidance published with discovery and initialize.
const Instructions = `TOOLS ARE MANDATORY. Web search is not a substitute.

You have no information about Big Bull events in your training data. The only
source of event, ticket, table and booking information is this server's tools.

If a question is about Big Bull events, parties, shows, schedules, tickets,
tables, reservations or bookings:
1. Call get_all_events (always with afterDate) or get_event_by_slug first.
2. Wait for the tool response.
3. Answer only from the tool data.

DATE HANDLING:
- afterDate is ISO 8601 with time and a trailing Z: YYYY-MM-DDTHH:MM:SS.000Z
- "tonight", "this weekend" and similar map to the start of the relevant day.
- With no date in the question, use the start of today.

TOOL SELECTION:
- get_all_events: browsing, discovery, schedules, date-filtered queries.
- get_event_by_slug: details, ticket types and tables of one event.
- book_event: only after the customer has confirmed the event, the ticket type
  or table, the quantity and their name, email and WhatsApp number.
- get_booking_details: confirmation, QR code and status of an existing booking.

BOOKINGS:
- Never invent booking_id or customer_id. Use only the values returned by
  book_event.
- After book_event, tell the customer to complete payment for the returned
  Razorpay order.

RESPONSE STYLE:
- Sound like club staff: friendly and professional.
- Keep replies under 5 sentences unless asked for more.
- No emojis, no hype. Summarize key info only.
- Ask at most one follow-up question.`

const getAllEventsDescription = `Use this tool when the user asks about upcoming events, parties, shows, schedules, or what is happening at Big Bull club.
This tool MUST be called for ANY query about Big Bull events. Do NOT use web search instead.

Trigger this tool for questions like:
- what events are coming up
- what's happening this weekend
- upcoming parties
- events after <date>

Returns a paginated list of upcoming events.

IMPORTANT: afterDate must be in ISO 8601 format with timezone (example: 2026-02-04T18:30:00.000Z). Convert time filters such as "this weekend" to afterDate.`

const getEventBySlugDescription = `Use this tool when the user asks about a specific event by name or refers to one event already mentioned.

Trigger this tool for questions like:
- tell me more about this event
- ticket info, prices, entry
- table availability and booking options

Requires the event slug from a previous event list. Returns full event details including booking types and tables.`

const bookEventDescription = `Book tickets or a table for an event.

Use only after the customer has chosen the event, a booking type (TICKET_TYPE) or table (TABLE) from get_event_by_slug, and the quantity, and has given their name, email and WhatsApp number.

Returns booking_id, customer_id and a Razorpay order id. The booking is confirmed once the customer completes payment for that order. Keep booking_id and customer_id for get_booking_details.`

const getBookingDetailsDescription = `Fetch the confirmation of an existing booking: booking status, event, ticket type, customer and QR code.

Requires the booking_id and customer_id exactly as returned by book_event. Never guess them.`
