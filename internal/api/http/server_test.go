package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-intake/internal/api/dto"
	"github.com/spec-kit/support-intake/internal/api/http/handlers"
	"github.com/spec-kit/support-intake/internal/classifier"
	"github.com/spec-kit/support-intake/internal/config"
	"github.com/spec-kit/support-intake/internal/domain"
	"github.com/spec-kit/support-intake/internal/events"
	"github.com/spec-kit/support-intake/internal/observability"
	"github.com/spec-kit/support-intake/internal/persistence"
	"github.com/spec-kit/support-intake/internal/repository"
	"github.com/spec-kit/support-intake/internal/service"
)

type stubGenerator struct {
	reply string
	err   error
}

func (s stubGenerator) Generate(context.Context, string) (string, error) {
	return s.reply, s.err
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type testServer struct {
	app     *fiber.App
	repo    repository.TicketRepository
	metrics *observability.Metrics
}

func setupServer(t *testing.T, gen classifier.Generator) testServer {
	t.Helper()
	store, err := persistence.NewSQLite(context.Background(), config.SQLiteConfig{Path: persistence.MemoryPath}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	repo := repository.NewSQLiteTicketRepository(store.DB)
	metrics := observability.NewMetrics()
	svc := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repo,
		Classifier: classifier.New(gen, zap.NewNop(), classifier.WithMetrics(metrics)),
		Dispatcher: events.NewInMemoryDispatcher(zap.NewNop()),
	})

	app := NewApp(AppOptions{
		Name:    "support-intake-test",
		Metrics: metrics,
		Routes: RouteConfig{
			Health:  handlers.NewHealthHandler("support-intake", "test", store, nil),
			Metrics: handlers.NewMetricsHandler(metrics),
			Tickets: handlers.NewTicketsHandler(svc),
		},
	})
	return testServer{app: app, repo: repo, metrics: metrics}
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*nethttp.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

const technicalReply = `{"category":"technical","priority":"high","summary":"Login page returns 500.","route_to":"technical_queue"}`

func TestCreateTicket_ClassifiedAndPersisted(t *testing.T) {
	srv := setupServer(t, stubGenerator{reply: technicalReply})

	resp, body := doJSON(t, srv.app, nethttp.MethodPost, "/tickets",
		`{"name":"Ada","email":"ada@example.com","message":"I cannot log in, the page errors out"}`)

	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))
	var created dto.TicketMutationResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.True(t, created.Success)
	assert.NotEmpty(t, created.Ticket.ID)
	assert.Equal(t, domain.CategoryTechnical, created.Ticket.Category)
	assert.Equal(t, domain.TicketPriorityHigh, created.Ticket.Priority)
	assert.Equal(t, domain.RouteTechnical, created.Ticket.RouteTo)
	assert.Equal(t, "Login page returns 500.", created.Ticket.Summary)
	assert.Equal(t, domain.TicketStatusNew, created.Ticket.Status)
	assert.False(t, created.Ticket.CreatedAt.IsZero())
	assert.NotEmpty(t, resp.Header.Get(observability.RequestIDHeader))

	stored, err := srv.repo.GetByID(context.Background(), created.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RouteTechnical, stored.RouteTo)
}

func TestCreateTicket_ClassifierFailureStillCreates(t *testing.T) {
	for name, gen := range map[string]classifier.Generator{
		"network error":  stubGenerator{err: errors.New("dial tcp: i/o timeout")},
		"malformed json": stubGenerator{reply: "Sure! Here is the JSON you asked for"},
		"missing key":    nil,
	} {
		t.Run(name, func(t *testing.T) {
			srv := setupServer(t, gen)

			resp, body := doJSON(t, srv.app, nethttp.MethodPost, "/tickets",
				`{"name":"Bo","email":"bo@example.com","message":"hello"}`)

			require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))
			var created dto.TicketMutationResponse
			require.NoError(t, json.Unmarshal(body, &created))
			assert.Equal(t, domain.CategoryOther, created.Ticket.Category)
			assert.Equal(t, domain.TicketPriorityMedium, created.Ticket.Priority)
			assert.Equal(t, domain.RouteGeneral, created.Ticket.RouteTo)
			assert.Equal(t, classifier.FallbackSummary, created.Ticket.Summary)
		})
	}
}

func TestCreateTicket_MissingFieldsRejected(t *testing.T) {
	srv := setupServer(t, stubGenerator{reply: technicalReply})

	for _, payload := range []string{
		`{"email":"a@b.c","message":"m"}`,
		`{"name":"a","message":"m"}`,
		`{"name":"a","email":"a@b.c","message":"   "}`,
		`{"name":`,
	} {
		resp, body := doJSON(t, srv.app, nethttp.MethodPost, "/tickets", payload)
		assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode, payload)

		var errResp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(body, &errResp))
		assert.Equal(t, "VALIDATION_FAILED", errResp.Error.Code)
	}

	tickets, err := srv.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestListTickets_EmptyIsArray(t *testing.T) {
	srv := setupServer(t, nil)

	resp, body := doJSON(t, srv.app, nethttp.MethodGet, "/tickets", "")

	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"tickets":[]}`, string(body))
}

func TestResolveThenList(t *testing.T) {
	srv := setupServer(t, stubGenerator{reply: technicalReply})

	_, body := doJSON(t, srv.app, nethttp.MethodPost, "/tickets", `{"name":"a","email":"a@b.c","message":"m"}`)
	var created dto.TicketMutationResponse
	require.NoError(t, json.Unmarshal(body, &created))

	resp, body := doJSON(t, srv.app, nethttp.MethodPatch, "/tickets/"+created.Ticket.ID, `{"status":"resolved"}`)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))
	var updated dto.TicketMutationResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.True(t, updated.Success)
	assert.Equal(t, domain.TicketStatusResolved, updated.Ticket.Status)
	assert.Equal(t, created.Ticket.Summary, updated.Ticket.Summary)

	_, body = doJSON(t, srv.app, nethttp.MethodGet, "/tickets", "")
	var list dto.TicketListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Tickets, 1)
	assert.Equal(t, domain.TicketStatusResolved, list.Tickets[0].Status)

	resp, body = doJSON(t, srv.app, nethttp.MethodGet, "/tickets/"+created.Ticket.ID, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var single dto.TicketEnvelope
	require.NoError(t, json.Unmarshal(body, &single))
	assert.Equal(t, created.Ticket.ID, single.Ticket.ID)
}

func TestUpdateStatus_Errors(t *testing.T) {
	srv := setupServer(t, nil)
	_, body := doJSON(t, srv.app, nethttp.MethodPost, "/tickets", `{"name":"a","email":"a@b.c","message":"m"}`)
	var created dto.TicketMutationResponse
	require.NoError(t, json.Unmarshal(body, &created))

	resp, _ := doJSON(t, srv.app, nethttp.MethodPatch, "/tickets/"+created.Ticket.ID, `{}`)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, srv.app, nethttp.MethodPatch, "/tickets/"+created.Ticket.ID, `{"status":"escalated"}`)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, srv.app, nethttp.MethodPatch, "/tickets/nope", `{"status":"resolved"}`)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	var errResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Error.Code)

	stored, err := srv.repo.GetByID(context.Background(), created.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, stored.Status)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := setupServer(t, nil)

	resp, body := doJSON(t, srv.app, nethttp.MethodGet, "/health/live", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"alive"`)

	resp, body = doJSON(t, srv.app, nethttp.MethodGet, "/health/ready", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"redis":"disabled"`)

	doJSON(t, srv.app, nethttp.MethodPost, "/tickets", `{"name":"a","email":"a@b.c","message":"m"}`)

	resp, body = doJSON(t, srv.app, nethttp.MethodGet, "/metrics", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var snap observability.Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, int64(1), snap.Counters["classifier.fallback.missing_api_key"])
}

func TestReady_StoreDown(t *testing.T) {
	app := NewApp(AppOptions{Routes: RouteConfig{
		Health:  handlers.NewHealthHandler("svc", "v", stubPinger{err: errors.New("db gone")}, stubPinger{}),
		Metrics: handlers.NewMetricsHandler(nil),
		Tickets: handlers.NewTicketsHandler(nil),
	}})

	resp, body := doJSON(t, app, nethttp.MethodGet, "/health/ready", "")

	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "db gone")
	assert.Contains(t, string(body), `"redis":"ok"`)
}

func TestUnknownRouteRendersErrorBody(t *testing.T) {
	srv := setupServer(t, nil)

	resp, body := doJSON(t, srv.app, nethttp.MethodGet, "/nowhere", "")

	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	var errResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Error.Code)
}
