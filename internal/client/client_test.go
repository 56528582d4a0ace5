package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/boardkit/ticket-board/pkg/util"
)

func TestListTicketsDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tickets" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"t1","ticket_code":"TCK-1","title":"First"}]}`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	tickets, err := c.ListTickets(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(tickets) != 1 || tickets[0].TicketCode != "TCK-1" {
		t.Fatalf("unexpected payload: %v", tickets)
	}
}

func TestGetTicketNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"ticket not found"}`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	_, err := c.GetTicket(context.Background(), "missing")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if apperrors.ToDomainError(err).Message != "ticket not found" {
		t.Errorf("expected server message, got %q", apperrors.ToDomainError(err).Message)
	}
}

func TestErrorFallsBackToStatusMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream exploded`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	_, err := c.ListTickets(context.Background())
	domainErr := apperrors.ToDomainError(err)
	if domainErr == nil || domainErr.HTTPStatus != http.StatusBadGateway {
		t.Fatalf("expected HTTP error with status 502, got %v", err)
	}
	if domainErr.Message == "" {
		t.Error("expected a generated status-derived message")
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	c := New("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := c.ListTickets(context.Background())
	if !apperrors.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestCreateTicketSendsPayloadAndToken(t *testing.T) {
	var received TicketCreate
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"srv-1","ticket_code":"TCK-9","title":"X"}}`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	c.SetToken("secret-token")
	ticket, err := c.CreateTicket(context.Background(), TicketCreate{TicketCode: "TCK-9", Title: "X"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ticket.ID != "srv-1" {
		t.Errorf("expected server id, got %s", ticket.ID)
	}
	if received.TicketCode != "TCK-9" || received.Title != "X" {
		t.Errorf("unexpected request payload: %+v", received)
	}
	if authHeader != "Bearer secret-token" {
		t.Errorf("expected bearer token header, got %q", authHeader)
	}
}

func TestPatchOmitsNilFields(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"t1"}}`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	title := "Renamed"
	if _, err := c.UpdateTicket(context.Background(), "t1", TicketPatch{Title: &title}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if len(raw) != 1 {
		t.Errorf("patch must carry only set fields, got %v", raw)
	}
	if _, ok := raw["title"]; !ok {
		t.Error("expected title in patch")
	}
	if _, ok := raw["id"]; ok {
		t.Error("patch must never carry an id")
	}
	if _, ok := raw["created_at"]; ok {
		t.Error("patch must never carry created_at")
	}
}

func TestDeleteTicket(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"message":"ticket deleted"}}`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	if err := c.DeleteTicket(context.Background(), "t1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}
