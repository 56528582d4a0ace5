package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/boardkit/ticket-board/internal/domain"
	apperrors "github.com/boardkit/ticket-board/pkg/util"
)

// TicketCreate is the wire payload for POST /api/tickets.
type TicketCreate struct {
	TicketCode   string                `json:"ticket_code"`
	Title        string                `json:"title"`
	Description  string                `json:"description,omitempty"`
	Status       domain.TicketStatus   `json:"status,omitempty"`
	Priority     domain.TicketPriority `json:"priority,omitempty"`
	Category     string                `json:"category,omitempty"`
	CustomerName string                `json:"customer_name,omitempty"`
	CustomerType domain.CustomerType   `json:"customer_type,omitempty"`
	CSAMName     string                `json:"csam_name,omitempty"`
	AssignedTo   *string               `json:"assigned_to,omitempty"`
	Deadline     time.Time             `json:"deadline"`
	Tags         []string              `json:"tags,omitempty"`
	Notes        []string              `json:"notes,omitempty"`
	Subtasks     []SubtaskPayload      `json:"subtasks,omitempty"`
}

// SubtaskPayload carries a checklist item on the wire.
type SubtaskPayload struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TicketPatch is the wire payload for PUT /api/tickets/{id}. Nil fields
// are omitted entirely; the ticket id and creation timestamp cannot be
// expressed here, which keeps them out of every update by construction.
type TicketPatch struct {
	Title        *string                `json:"title,omitempty"`
	Description  *string                `json:"description,omitempty"`
	Status       *domain.TicketStatus   `json:"status,omitempty"`
	Priority     *domain.TicketPriority `json:"priority,omitempty"`
	Category     *string                `json:"category,omitempty"`
	CustomerName *string                `json:"customer_name,omitempty"`
	CustomerType *domain.CustomerType   `json:"customer_type,omitempty"`
	CSAMName     *string                `json:"csam_name,omitempty"`
	AssignedTo   *string                `json:"assigned_to,omitempty"`
	Deadline     *time.Time             `json:"deadline,omitempty"`
	Tags         *[]string              `json:"tags,omitempty"`
	Notes        *[]string              `json:"notes,omitempty"`
	Subtasks     *[]SubtaskPayload      `json:"subtasks,omitempty"`
}

// envelope mirrors the uniform `{success, data, error}` wrapper the
// ticket API puts around every response.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Client talks to the remote ticket API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken attaches a bearer token to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// ListTickets fetches the full collection.
func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := c.do(ctx, http.MethodGet, "/api/tickets", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetTicket fetches a single ticket.
func (c *Client) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodGet, "/api/tickets/"+id, nil, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// CreateTicket creates a ticket and returns the server-assigned record.
func (c *Client) CreateTicket(ctx context.Context, input TicketCreate) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodPost, "/api/tickets", input, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicket sends a partial update and returns the merged ticket.
func (c *Client) UpdateTicket(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodPut, "/api/tickets/"+id, patch, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// DeleteTicket removes a ticket.
func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tickets/"+id, nil, nil)
}

// Authenticate exchanges the admin password for a bearer token and
// keeps it for subsequent requests.
func (c *Client) Authenticate(ctx context.Context, password string) error {
	payload := map[string]string{"password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/token", payload, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewNetworkError(err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return apperrors.NewHTTPError(resp.StatusCode, "")
		}
		return apperrors.NewInternalError(fmt.Errorf("decode response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return apperrors.NewHTTPError(resp.StatusCode, env.Error)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperrors.NewInternalError(fmt.Errorf("decode payload: %w", err))
		}
	}
	return nil
}
