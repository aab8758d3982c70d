package dto

import (
	"time"

	"github.com/spec-kit/support-intake/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Email     string                `json:"email"`
	Message   string                `json:"message"`
	Category  domain.TicketCategory `json:"category"`
	Priority  domain.TicketPriority `json:"priority"`
	Summary   string                `json:"summary"`
	RouteTo   domain.Route          `json:"route_to"`
	Status    domain.TicketStatus   `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
}

// TicketMutationResponse is returned by create and update-status.
type TicketMutationResponse struct {
	Success bool           `json:"success"`
	Ticket  TicketResponse `json:"ticket"`
}

// TicketEnvelope wraps a single ticket read.
type TicketEnvelope struct {
	Ticket TicketResponse `json:"ticket"`
}

// TicketListResponse wraps the full ticket list.
type TicketListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
}

// ErrorBody is the payload under "error" in every failed response.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewTicketResponse maps a domain ticket to its wire form.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:        ticket.ID,
		Name:      ticket.Name,
		Email:     ticket.Email,
		Message:   ticket.Message,
		Category:  ticket.Category,
		Priority:  ticket.Priority,
		Summary:   ticket.Summary,
		RouteTo:   ticket.RouteTo,
		Status:    ticket.Status,
		CreatedAt: ticket.CreatedAt,
	}
}

// NewTicketListResponse maps tickets preserving order; never yields a nil slice.
func NewTicketListResponse(tickets []domain.Ticket) TicketListResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return TicketListResponse{Tickets: items}
}

// ToDomain converts the wire form back into a domain ticket.
func (t TicketResponse) ToDomain() domain.Ticket {
	return domain.Ticket{
		ID:        t.ID,
		Name:      t.Name,
		Email:     t.Email,
		Message:   t.Message,
		Category:  t.Category,
		Priority:  t.Priority,
		Summary:   t.Summary,
		RouteTo:   t.RouteTo,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
	}
}
