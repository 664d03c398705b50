package events

import "strconv"

// Ticket event type constants.
const (
	TicketCreatedType = "TicketCreated"
	TicketUpdatedType = "TicketUpdated"
	TicketClosedType  = "TicketClosed"
)

// TicketCreatedEvent is emitted after the upstream helpdesk accepts a
// new ticket.
type TicketCreatedEvent struct {
	BaseEvent

	// TicketID is the upstream identifier of the new ticket.
	TicketID int64 `json:"ticket_id"`

	// UserID is the widget identity that created the ticket.
	UserID string `json:"user_id"`

	// Subject is the ticket subject line.
	Subject string `json:"subject"`

	// RequestTypeID is the requested category, when one was chosen.
	RequestTypeID int64 `json:"request_type_id,omitempty"`
}

// NewTicketCreatedEvent creates a new TicketCreatedEvent.
func NewTicketCreatedEvent(ticketID int64, userID, subject string, requestTypeID int64) *TicketCreatedEvent {
	return &TicketCreatedEvent{
		BaseEvent:     NewBaseEvent(TicketCreatedType, strconv.FormatInt(ticketID, 10), "Ticket"),
		TicketID:      ticketID,
		UserID:        userID,
		Subject:       subject,
		RequestTypeID: requestTypeID,
	}
}

// TicketUpdatedEvent is emitted after a reply is appended to a ticket.
type TicketUpdatedEvent struct {
	BaseEvent

	TicketID int64  `json:"ticket_id"`
	UserID   string `json:"user_id"`
}

// NewTicketUpdatedEvent creates a new TicketUpdatedEvent.
func NewTicketUpdatedEvent(ticketID int64, userID string) *TicketUpdatedEvent {
	return &TicketUpdatedEvent{
		BaseEvent: NewBaseEvent(TicketUpdatedType, strconv.FormatInt(ticketID, 10), "Ticket"),
		TicketID:  ticketID,
		UserID:    userID,
	}
}

// TicketClosedEvent is emitted after the requester closes a ticket.
type TicketClosedEvent struct {
	BaseEvent

	TicketID int64  `json:"ticket_id"`
	UserID   string `json:"user_id"`
}

// NewTicketClosedEvent creates a new TicketClosedEvent.
func NewTicketClosedEvent(ticketID int64, userID string) *TicketClosedEvent {
	return &TicketClosedEvent{
		BaseEvent: NewBaseEvent(TicketClosedType, strconv.FormatInt(ticketID, 10), "Ticket"),
		TicketID:  ticketID,
		UserID:    userID,
	}
}
