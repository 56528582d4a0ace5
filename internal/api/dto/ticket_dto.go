package dto

import (
	"time"

	"github.com/boardkit/ticket-board/internal/domain"
	"github.com/boardkit/ticket-board/internal/service"
)

// Envelope is the uniform response wrapper for every API endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps a success payload.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail wraps an error message.
func Fail(message string) Envelope {
	return Envelope{Success: false, Error: message}
}

// SubtaskPayload carries a checklist item in requests.
type SubtaskPayload struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// CreateTicketRequest payload. Identity and timestamps are assigned by
// the server and have no place in this schema.
type CreateTicketRequest struct {
	TicketCode   string                `json:"ticket_code"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     string                `json:"category"`
	CustomerName string                `json:"customer_name"`
	CustomerType domain.CustomerType   `json:"customer_type"`
	CSAMName     string                `json:"csam_name"`
	AssignedTo   *string               `json:"assigned_to"`
	Deadline     time.Time             `json:"deadline"`
	Tags         []string              `json:"tags"`
	Notes        []string              `json:"notes"`
	Subtasks     []SubtaskPayload      `json:"subtasks"`
}

// UpdateTicketRequest is a partial update. id and created_at are not
// part of this schema, so a payload carrying them simply has those
// members dropped during decoding.
type UpdateTicketRequest struct {
	Title        *string                `json:"title"`
	Description  *string                `json:"description"`
	Status       *domain.TicketStatus   `json:"status"`
	Priority     *domain.TicketPriority `json:"priority"`
	Category     *string                `json:"category"`
	CustomerName *string                `json:"customer_name"`
	CustomerType *domain.CustomerType   `json:"customer_type"`
	CSAMName     *string                `json:"csam_name"`
	AssignedTo   *string                `json:"assigned_to"`
	Deadline     *time.Time             `json:"deadline"`
	Tags         *[]string              `json:"tags"`
	Notes        *[]string              `json:"notes"`
	Subtasks     *[]SubtaskPayload      `json:"subtasks"`
}

// DeleteTicketResponse acknowledges a removal.
type DeleteTicketResponse struct {
	Message string `json:"message"`
}

// TokenRequest payload for POST /auth/token.
type TokenRequest struct {
	Password string `json:"password"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToCreateInput converts the request into a service input.
func (r CreateTicketRequest) ToCreateInput() service.TicketCreateInput {
	return service.TicketCreateInput{
		TicketCode:   r.TicketCode,
		Title:        r.Title,
		Description:  r.Description,
		Status:       r.Status,
		Priority:     r.Priority,
		Category:     r.Category,
		CustomerName: r.CustomerName,
		CustomerType: r.CustomerType,
		CSAMName:     r.CSAMName,
		AssignedTo:   r.AssignedTo,
		Deadline:     r.Deadline,
		Tags:         r.Tags,
		Notes:        r.Notes,
		Subtasks:     toSubtaskInputs(r.Subtasks),
	}
}

// ToUpdateInput converts the request into a service input.
func (r UpdateTicketRequest) ToUpdateInput() service.TicketUpdateInput {
	input := service.TicketUpdateInput{
		Title:        r.Title,
		Description:  r.Description,
		Status:       r.Status,
		Priority:     r.Priority,
		Category:     r.Category,
		CustomerName: r.CustomerName,
		CustomerType: r.CustomerType,
		CSAMName:     r.CSAMName,
		AssignedTo:   r.AssignedTo,
		Deadline:     r.Deadline,
		Tags:         r.Tags,
		Notes:        r.Notes,
	}
	if r.Subtasks != nil {
		subtasks := toSubtaskInputs(*r.Subtasks)
		input.Subtasks = &subtasks
	}
	return input
}

func toSubtaskInputs(payloads []SubtaskPayload) []service.SubtaskInput {
	inputs := make([]service.SubtaskInput, 0, len(payloads))
	for _, p := range payloads {
		inputs = append(inputs, service.SubtaskInput{
			ID:        p.ID,
			Text:      p.Text,
			Completed: p.Completed,
		})
	}
	return inputs
}
