package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/boardkit/ticket-board/internal/api/http"
	"github.com/boardkit/ticket-board/internal/api/http/handlers"
	"github.com/boardkit/ticket-board/internal/auth"
	"github.com/boardkit/ticket-board/internal/domain"
	"github.com/boardkit/ticket-board/internal/observability"
	"github.com/boardkit/ticket-board/internal/repository"
	"github.com/boardkit/ticket-board/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := service.NewTicketService(service.Dependencies{
		TicketRepo: repository.NewMemoryRepository(),
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0, "*")
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(nil, nil),
		Tickets:        handlers.NewTicketsHandler(svc),
		Auth:           handlers.NewAuthHandler(auth.NewTokenManager("test-secret", 5), ""),
		AuthMiddleware: auth.NewMiddleware(auth.NewTokenManager("test-secret", 5), false),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", raw, err)
	}
	return resp, env
}

func TestCreateAndListRoundTrip(t *testing.T) {
	app := newTestApp(t)

	resp, env := doJSON(t, app, http.MethodPost, "/api/tickets", map[string]any{
		"ticket_code": "TCK-100",
		"title":       "Payment gateway issue",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", resp.StatusCode, env.Error)
	}
	if !env.Success {
		t.Fatalf("expected success envelope, got error %q", env.Error)
	}

	var created domain.Ticket
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created ticket: %v", err)
	}
	if created.ID == "" || created.TicketCode != "TCK-100" {
		t.Errorf("unexpected created ticket: %+v", created)
	}
	if created.Priority != domain.TicketPriorityMedium || created.Status != domain.TicketStatusScheduled {
		t.Errorf("expected defaults applied, got %s/%s", created.Priority, created.Status)
	}

	resp, env = doJSON(t, app, http.MethodGet, "/api/tickets", nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("list failed: %d %q", resp.StatusCode, env.Error)
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal(env.Data, &tickets); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets))
	}
}

func TestCreateValidationFailureEnvelope(t *testing.T) {
	app := newTestApp(t)

	resp, env := doJSON(t, app, http.MethodPost, "/api/tickets", map[string]any{
		"ticket_code": "TCK-1",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if env.Success || env.Error == "" {
		t.Errorf("expected failure envelope with message, got %+v", env)
	}
}

func TestUpdateIgnoresIdentityFields(t *testing.T) {
	app := newTestApp(t)

	_, env := doJSON(t, app, http.MethodPost, "/api/tickets", map[string]any{
		"ticket_code": "TCK-1",
		"title":       "Original",
	})
	var created domain.Ticket
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	// id and created_at in the payload are not part of the update schema
	resp, env := doJSON(t, app, http.MethodPut, "/api/tickets/"+created.ID, map[string]any{
		"id":         "forged-id",
		"created_at": "1999-01-01T00:00:00Z",
		"title":      "Renamed",
	})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("update failed: %d %q", resp.StatusCode, env.Error)
	}
	var updated domain.Ticket
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("id must be immutable, got %s", updated.ID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("created_at must be immutable")
	}
	if updated.Title != "Renamed" {
		t.Errorf("expected title update, got %s", updated.Title)
	}
}

func TestGetUnknownTicketReturns404Envelope(t *testing.T) {
	app := newTestApp(t)

	resp, env := doJSON(t, app, http.MethodGet, "/api/tickets/unknown", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if env.Success || env.Error == "" {
		t.Errorf("expected failure envelope, got %+v", env)
	}
}

func TestDeleteTicketEnvelope(t *testing.T) {
	app := newTestApp(t)

	_, env := doJSON(t, app, http.MethodPost, "/api/tickets", map[string]any{
		"ticket_code": "TCK-1",
		"title":       "Doomed",
	})
	var created domain.Ticket
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	resp, env := doJSON(t, app, http.MethodDelete, "/api/tickets/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("delete failed: %d %q", resp.StatusCode, env.Error)
	}
	var ack struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Data, &ack); err != nil || ack.Message == "" {
		t.Errorf("expected message payload, got %s", env.Data)
	}

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/tickets/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}
