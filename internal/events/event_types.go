package events

import (
	"time"

	"github.com/boardkit/ticket-board/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// Event represents a domain event emitted by the ticket service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketCode string                `json:"ticket_code"`
	Title      string                `json:"title"`
	Priority   domain.TicketPriority `json:"priority"`
	Status     domain.TicketStatus   `json:"status"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	TicketCode    string   `json:"ticket_code"`
	ChangedFields []string `json:"changed_fields"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketCode string              `json:"ticket_code"`
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	TicketCode string `json:"ticket_code"`
}
