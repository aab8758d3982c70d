package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-intake/internal/domain"
	"github.com/spec-kit/support-intake/internal/events"
	"github.com/spec-kit/support-intake/internal/repository"
	"github.com/spec-kit/support-intake/pkg/util/errorutil"
)

// TicketClassifier assigns classification fields to an incoming request.
// Implementations never fail; they degrade to a fixed fallback instead.
type TicketClassifier interface {
	Classify(ctx context.Context, name, email, message string) domain.Classification
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	classifier TicketClassifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Classifier TicketClassifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes a support request as submitted.
type TicketCreateInput struct {
	Name    string
	Email   string
	Message string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicket classifies and stores a new support request.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	message := strings.TrimSpace(input.Message)

	missing := missingFields(name, email, message)
	if len(missing) > 0 {
		return nil, errorutil.NewValidationError("Missing required fields", map[string]any{"missing": missing})
	}

	ticket := &domain.Ticket{
		Name:    name,
		Email:   email,
		Message: message,
		Status:  domain.TicketStatusNew,
	}
	s.classifier.Classify(ctx, name, email, message).Apply(ticket)

	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.logger.Error("ticket insert failed", zap.Error(err))
		return nil, errorutil.NewStoreError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Category: ticket.Category,
			Priority: ticket.Priority,
			RouteTo:  ticket.RouteTo,
			Summary:  ticket.Summary,
		},
	})
	return ticket, nil
}

// ListTickets returns every ticket, newest first.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, errorutil.NewStoreError(err)
	}
	return tickets, nil
}

// GetTicket fetches a single ticket.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errorutil.NewValidationError("Missing id", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	return ticket, nil
}

// UpdateStatus sets a ticket's status. Setting the current status again
// succeeds without emitting an event.
func (s *TicketService) UpdateStatus(ctx context.Context, id, rawStatus string) (*domain.Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(rawStatus) == "" {
		return nil, errorutil.NewValidationError("Missing id or status", nil)
	}
	status, ok := domain.ParseStatus(rawStatus)
	if !ok {
		return nil, errorutil.NewValidationError("Unknown status", map[string]any{"status": rawStatus})
	}

	current, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}

	updated, err := s.tickets.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.lookupError(id, err)
	}

	if current.Status != updated.Status {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: updated.ID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: current.Status,
				NewStatus: updated.Status,
			},
		})
	}
	return updated, nil
}

func (s *TicketService) lookupError(id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errorutil.NewNotFound("ticket", map[string]any{"id": id})
	}
	s.logger.Error("ticket store failed", zap.String("ticket_id", id), zap.Error(err))
	return errorutil.NewStoreError(err)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func missingFields(name, email, message string) []string {
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if message == "" {
		missing = append(missing, "message")
	}
	return missing
}
