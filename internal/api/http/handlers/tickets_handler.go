package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-intake/internal/api/dto"
	"github.com/spec-kit/support-intake/internal/service"
	apperrors "github.com/spec-kit/support-intake/pkg/util/errorutil"
)

// TicketsHandler serves the intake and dashboard endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TicketMutationResponse{
		Success: true,
		Ticket:  dto.NewTicketResponse(ticket),
	})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketListResponse(tickets))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketEnvelope{Ticket: dto.NewTicketResponse(ticket)})
}

// UpdateStatus PATCH /tickets/:id.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketMutationResponse{
		Success: true,
		Ticket:  dto.NewTicketResponse(ticket),
	})
}
