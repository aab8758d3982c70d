package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-intake/internal/domain"
)

const ticketJSON = `{"id":"t1","name":"Ada","email":"ada@example.com","message":"help","category":"billing","priority":"high","summary":"Refund.","route_to":"billing_queue","status":"new","created_at":"2026-01-02T03:04:05Z"}`

func TestCreateTicket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tickets", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Ada","email":"ada@example.com","message":"help"}`, string(body))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"ticket":` + ticketJSON + `}`))
	}))
	defer srv.Close()

	ticket, err := New(srv.URL+"/").CreateTicket(context.Background(), "Ada", "ada@example.com", "help")

	require.NoError(t, err)
	assert.Equal(t, "t1", ticket.ID)
	assert.Equal(t, domain.RouteBilling, ticket.RouteTo)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), ticket.CreatedAt.UTC())
}

func TestListTickets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"tickets":[` + ticketJSON + `]}`))
	}))
	defer srv.Close()

	tickets, err := New(srv.URL).ListTickets(context.Background())

	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, domain.TicketStatusNew, tickets[0].Status)
}

func TestUpdateStatusAndGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tickets/t1", r.URL.Path)
		switch r.Method {
		case http.MethodPatch:
			var req map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "resolved", req["status"])
			_, _ = w.Write([]byte(`{"success":true,"ticket":{"id":"t1","status":"resolved"}}`))
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"ticket":{"id":"t1","status":"resolved"}}`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)

	updated, err := c.UpdateStatus(context.Background(), "t1", domain.TicketStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)

	got, err := c.GetTicket(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
}

func TestAPIErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tickets/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"ticket not found"}}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()
	c := New(srv.URL)

	_, err := c.UpdateStatus(context.Background(), "missing", domain.TicketStatusResolved)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "ticket not found", apiErr.Message)

	_, err = c.ListTickets(context.Background())
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Code)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListTickets(context.Background())

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestNewDefaultsBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("  ").BaseURL())
	assert.Equal(t, "http://x:1", New("http://x:1///").BaseURL())
}
