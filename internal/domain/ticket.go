package domain

import (
	"strings"
	"time"
)

// TicketStatus is the operator-facing lifecycle state of a ticket.
type TicketStatus string

const (
	TicketStatusNew      TicketStatus = "new"
	TicketStatusResolved TicketStatus = "resolved"
)

// TicketCategory is the AI-assigned topic of a ticket.
type TicketCategory string

const (
	CategoryBilling   TicketCategory = "billing"
	CategoryTechnical TicketCategory = "technical"
	CategorySales     TicketCategory = "sales"
	CategoryAccount   TicketCategory = "account"
	CategoryOther     TicketCategory = "other"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Route is the support queue a ticket is sent to.
type Route string

const (
	RouteBilling   Route = "billing_queue"
	RouteTechnical Route = "technical_queue"
	RouteSales     Route = "sales_queue"
	RouteGeneral   Route = "general_support"
)

// Ticket is a single support request with its classification.
type Ticket struct {
	ID        string
	Name      string
	Email     string
	Message   string
	Category  TicketCategory
	Priority  TicketPriority
	Summary   string
	RouteTo   Route
	Status    TicketStatus
	CreatedAt time.Time
}

// Classification holds the fields written once by the classifier at creation.
type Classification struct {
	Category TicketCategory
	Priority TicketPriority
	Summary  string
	RouteTo  Route
}

// Apply copies the classification onto the ticket.
func (c Classification) Apply(t *Ticket) {
	t.Category = c.Category
	t.Priority = c.Priority
	t.Summary = c.Summary
	t.RouteTo = c.RouteTo
}

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusResolved:
		return true
	}
	return false
}

func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryBilling, CategoryTechnical, CategorySales, CategoryAccount, CategoryOther:
		return true
	}
	return false
}

func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

func (r Route) Valid() bool {
	switch r {
	case RouteBilling, RouteTechnical, RouteSales, RouteGeneral:
		return true
	}
	return false
}

// Label renders a route for display, e.g. "BILLING QUEUE".
func (r Route) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(r), "_", " "))
}

// ParseStatus normalizes and validates a status value.
func ParseStatus(raw string) (TicketStatus, bool) {
	status := TicketStatus(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Valid()
}
