package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spec-kit/support-intake/internal/api/dto"
	"github.com/spec-kit/support-intake/internal/client"
	"github.com/spec-kit/support-intake/internal/domain"
)

// TicketAPI is the ticket API surface the tools call.
type TicketAPI interface {
	CreateTicket(ctx context.Context, name, email, message string) (*domain.Ticket, error)
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error)
}

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	api TicketAPI
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(api TicketAPI) *Handlers {
	return &Handlers{api: api}
}

// CreateRequest represents the arguments for ticket_create.
type CreateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// UpdateStatusRequest represents the arguments for ticket_update_status.
type UpdateStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HandleCreate files a ticket.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return invalidRequest(err.Error()), nil
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Message) == "" {
		return invalidRequest("name, email and message are required"), nil
	}

	ticket, err := h.api.CreateTicket(ctx, input.Name, input.Email, input.Message)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(dto.TicketMutationResponse{Success: true, Ticket: dto.NewTicketResponse(ticket)})
}

// HandleList lists every ticket.
func (h *Handlers) HandleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tickets, err := h.api.ListTickets(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(dto.NewTicketListResponse(tickets))
}

// HandleUpdateStatus changes one ticket's status.
func (h *Handlers) HandleUpdateStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateStatusRequest](req)
	if err != nil {
		return invalidRequest(err.Error()), nil
	}
	if strings.TrimSpace(input.ID) == "" {
		return invalidRequest("id is required"), nil
	}
	status, ok := domain.ParseStatus(input.Status)
	if !ok {
		return invalidRequest("status must be one of: new, resolved"), nil
	}

	ticket, err := h.api.UpdateStatus(ctx, input.ID, status)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(dto.TicketMutationResponse{Success: true, Ticket: dto.NewTicketResponse(ticket)})
}

// Result helpers

func invalidRequest(message string) *mcp.CallToolResult {
	return errorResult(&client.APIError{Status: http.StatusBadRequest, Code: "VALIDATION_FAILED", Message: message})
}

// errorResult creates an MCP error result. API errors keep their code and
// message; transport failures are reported without internals.
func errorResult(err error) *mcp.CallToolResult {
	body := dto.ErrorBody{Code: "UNAVAILABLE", Message: "ticket service unreachable"}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		body = dto.ErrorBody{Code: apiErr.Code, Message: apiErr.Message}
		if body.Code == "" {
			body.Code = http.StatusText(apiErr.Status)
		}
	}

	content, _ := json.Marshal(dto.ErrorResponse{Error: body})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
