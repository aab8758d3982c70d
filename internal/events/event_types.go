package events

import (
	"time"

	"github.com/spec-kit/support-intake/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload carries the classification assigned at intake.
type TicketCreatedPayload struct {
	Category domain.TicketCategory `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
	RouteTo  domain.Route          `json:"route_to"`
	Summary  string                `json:"summary"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}
