// Package client talks to the ticket HTTP API. It is shared by the CLI, the
// terminal UIs and the MCP tools.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spec-kit/support-intake/internal/api/dto"
	"github.com/spec-kit/support-intake/internal/domain"
)

// DefaultBaseURL is used when no server address is configured.
const DefaultBaseURL = "http://127.0.0.1:8080"

// APIError is a non-2xx response from the ticket API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("ticket api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("ticket api: %s (%d): %s", e.Code, e.Status, e.Message)
}

// Client is a thin JSON client for the ticket API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateTicket submits a support request and returns the classified ticket.
func (c *Client) CreateTicket(ctx context.Context, name, email, message string) (*domain.Ticket, error) {
	var out dto.TicketMutationResponse
	req := dto.CreateTicketRequest{Name: name, Email: email, Message: message}
	if err := c.do(ctx, http.MethodPost, "/tickets", req, &out); err != nil {
		return nil, err
	}
	ticket := out.Ticket.ToDomain()
	return &ticket, nil
}

// ListTickets returns every ticket, newest first.
func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	var out dto.TicketListResponse
	if err := c.do(ctx, http.MethodGet, "/tickets", nil, &out); err != nil {
		return nil, err
	}
	tickets := make([]domain.Ticket, 0, len(out.Tickets))
	for _, t := range out.Tickets {
		tickets = append(tickets, t.ToDomain())
	}
	return tickets, nil
}

// GetTicket fetches one ticket.
func (c *Client) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	var out dto.TicketEnvelope
	if err := c.do(ctx, http.MethodGet, "/tickets/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	ticket := out.Ticket.ToDomain()
	return &ticket, nil
}

// UpdateStatus sets a ticket's status.
func (c *Client) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	var out dto.TicketMutationResponse
	req := dto.UpdateStatusRequest{Status: string(status)}
	if err := c.do(ctx, http.MethodPatch, "/tickets/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	ticket := out.Ticket.ToDomain()
	return &ticket, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach ticket api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) error {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	var body dto.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
	}
	return apiErr
}
