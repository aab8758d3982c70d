package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-intake/internal/api/dto"
	"github.com/spec-kit/support-intake/internal/domain"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]string
}

type recorder struct {
	mu    sync.Mutex
	calls []recordedRequest
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.calls...)
}

// fakeServer answers the ticket routes with canned payloads and records calls.
func fakeServer(t *testing.T, status int, payload any) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recordedRequest{Method: r.Method, Path: r.URL.Path}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &call.Body)
		}
		rec.mu.Lock()
		rec.calls = append(rec.calls, call)
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func sampleTicket(status domain.TicketStatus) dto.TicketResponse {
	return dto.TicketResponse{
		ID:        "tkt-1",
		Name:      "Ada",
		Email:     "ada@example.com",
		Message:   "I was charged twice",
		Category:  domain.CategoryBilling,
		Priority:  domain.TicketPriorityHigh,
		Summary:   "Duplicate charge.",
		RouteTo:   domain.RouteBilling,
		Status:    status,
		CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newCLIApp(&out)
	err := app.Run(append([]string{"supportctl"}, args...))
	return out.String(), err
}

func TestCLISubmit(t *testing.T) {
	srv, calls := fakeServer(t, http.StatusCreated, dto.TicketMutationResponse{Success: true, Ticket: sampleTicket(domain.TicketStatusNew)})

	out, err := runCLI(t, "--server", srv.URL, "submit", "--name", "Ada", "--email", "ada@example.com", "--message", "I was charged twice")
	require.NoError(t, err)

	require.Len(t, calls.all(), 1)
	assert.Equal(t, http.MethodPost, calls.all()[0].Method)
	assert.Equal(t, "/tickets", calls.all()[0].Path)
	assert.Equal(t, "I was charged twice", calls.all()[0].Body["message"])

	var resp dto.TicketMutationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, domain.RouteBilling, resp.Ticket.RouteTo)
}

func TestCLISubmit_RequiresFlags(t *testing.T) {
	srv, calls := fakeServer(t, http.StatusCreated, nil)

	_, err := runCLI(t, "--server", srv.URL, "submit", "--name", "Ada")
	assert.Error(t, err)
	assert.Empty(t, calls.all())
}

func TestCLIList(t *testing.T) {
	srv, calls := fakeServer(t, http.StatusOK, dto.TicketListResponse{Tickets: []dto.TicketResponse{sampleTicket(domain.TicketStatusNew)}})

	out, err := runCLI(t, "--server", srv.URL, "list")
	require.NoError(t, err)
	require.Len(t, calls.all(), 1)
	assert.Equal(t, http.MethodGet, calls.all()[0].Method)

	var resp dto.TicketListResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Tickets, 1)
	assert.Equal(t, "tkt-1", resp.Tickets[0].ID)
}

func TestCLIServerFromEnv(t *testing.T) {
	srv, calls := fakeServer(t, http.StatusOK, dto.TicketListResponse{Tickets: []dto.TicketResponse{}})
	t.Setenv(serverEnvVar, srv.URL)

	_, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Len(t, calls.all(), 1)
}

func TestCLIGet(t *testing.T) {
	srv, calls := fakeServer(t, http.StatusOK, dto.TicketEnvelope{Ticket: sampleTicket(domain.TicketStatusNew)})

	out, err := runCLI(t, "--server", srv.URL, "get", "tkt-1")
	require.NoError(t, err)
	assert.Equal(t, "/tickets/tkt-1", calls.all()[0].Path)

	var resp dto.TicketEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Duplicate charge.", resp.Ticket.Summary)
}

func TestCLIResolve(t *testing.T) {
	srv, calls := fakeServer(t, http.StatusOK, dto.TicketMutationResponse{Success: true, Ticket: sampleTicket(domain.TicketStatusResolved)})

	out, err := runCLI(t, "--server", srv.URL, "resolve", "tkt-1")
	require.NoError(t, err)

	require.Len(t, calls.all(), 1)
	assert.Equal(t, http.MethodPatch, calls.all()[0].Method)
	assert.Equal(t, "/tickets/tkt-1", calls.all()[0].Path)
	assert.Equal(t, "resolved", calls.all()[0].Body["status"])
	assert.Contains(t, out, `"status": "resolved"`)
}

func TestCLIStatus(t *testing.T) {
	srv, calls := fakeServer(t, http.StatusOK, dto.TicketMutationResponse{Success: true, Ticket: sampleTicket(domain.TicketStatusNew)})

	_, err := runCLI(t, "--server", srv.URL, "status", "tkt-1", "NEW")
	require.NoError(t, err)
	require.Len(t, calls.all(), 1)
	assert.Equal(t, "new", calls.all()[0].Body["status"])
}

func TestCLIStatus_Validation(t *testing.T) {
	srv, calls := fakeServer(t, http.StatusOK, nil)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing id", args: []string{"status"}},
		{name: "missing status", args: []string{"status", "tkt-1"}},
		{name: "unknown status", args: []string{"status", "tkt-1", "closed"}},
		{name: "resolve without id", args: []string{"resolve"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, append([]string{"--server", srv.URL}, tt.args...)...)
			assert.ErrorContains(t, err, "VALIDATION_FAILED")
		})
	}
	assert.Empty(t, calls.all())
}

func TestCLI_APIErrorIsReported(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusNotFound, dto.ErrorResponse{Error: dto.ErrorBody{Code: "NOT_FOUND", Message: "ticket not found"}})

	_, err := runCLI(t, "--server", srv.URL, "resolve", "missing")
	require.Error(t, err)
	assert.Equal(t, "[NOT_FOUND] ticket not found", err.Error())
}
