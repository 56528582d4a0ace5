package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/boardkit/ticket-board/internal/domain"
	"github.com/boardkit/ticket-board/internal/events"
	"github.com/boardkit/ticket-board/internal/repository"
	apperrors "github.com/boardkit/ticket-board/pkg/util"
)

// TicketService coordinates ticket workflows on top of the storage
// capability. The repository is authoritative for identity and
// timestamps; the service owns validation, defaults, and the merge
// semantics of partial updates.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// Dependencies bundles collaborators for the ticket service.
type Dependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
}

// SubtaskInput describes a checklist item in create/update payloads.
type SubtaskInput struct {
	ID        string
	Text      string
	Completed bool
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	TicketCode   string
	Title        string
	Description  string
	Status       domain.TicketStatus
	Priority     domain.TicketPriority
	Category     string
	CustomerName string
	CustomerType domain.CustomerType
	CSAMName     string
	AssignedTo   *string
	Deadline     time.Time
	Tags         []string
	Notes        []string
	Subtasks     []SubtaskInput
}

// TicketUpdateInput carries a partial update. Nil fields are left
// untouched; identity and creation time are not representable here at
// all, so they can never be overwritten.
type TicketUpdateInput struct {
	Title        *string
	Description  *string
	Status       *domain.TicketStatus
	Priority     *domain.TicketPriority
	Category     *string
	CustomerName *string
	CustomerType *domain.CustomerType
	CSAMName     *string
	AssignedTo   *string // empty string clears the assignee
	Deadline     *time.Time
	Tags         *[]string
	Notes        *[]string
	Subtasks     *[]SubtaskInput
}

// NewTicketService constructs the service.
func NewTicketService(deps Dependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// ListTickets returns the full collection in stable board order.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// GetTicket fetches a single ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return ticket, nil
}

// CreateTicket validates input, applies defaults, and stores the ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	code := strings.TrimSpace(input.TicketCode)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if code == "" {
		return nil, apperrors.NewValidationError("ticket code is required", nil)
	}

	ticket := &domain.Ticket{
		TicketCode:   code,
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		Status:       input.Status,
		Priority:     input.Priority,
		Category:     input.Category,
		CustomerName: input.CustomerName,
		CustomerType: input.CustomerType,
		CSAMName:     input.CSAMName,
		AssignedTo:   normalizeAssignee(input.AssignedTo),
		Deadline:     input.Deadline,
		Tags:         input.Tags,
		Notes:        input.Notes,
		Subtasks:     s.buildSubtasks(input.Subtasks),
	}

	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusScheduled
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if ticket.CustomerType == "" {
		ticket.CustomerType = domain.CustomerTypeSMB
	}
	if ticket.Tags == nil {
		ticket.Tags = []string{}
	}
	if ticket.Notes == nil {
		ticket.Notes = []string{}
	}
	if err := validateEnums(ticket.Status, ticket.Priority, ticket.CustomerType); err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusCompleted {
		now := s.now()
		ticket.CompletedAt = &now
	}

	if err := s.tickets.Insert(ctx, ticket); err != nil {
		return nil, mapRepoError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketCode: ticket.TicketCode,
			Title:      ticket.Title,
			Priority:   ticket.Priority,
			Status:     ticket.Status,
		},
	})
	return ticket, nil
}

// UpdateTicket merges a partial payload into the stored ticket and
// returns the fully merged result. A payload that changes nothing
// short-circuits: the ticket is returned as stored, UpdatedAt keeps its
// value, and no events are published. When fields do change, UpdatedAt
// moves forward; CompletedAt is stamped when the ticket enters
// COMPLETED and retained when it leaves.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("ticket id is required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	oldStatus := ticket.Status
	changed := s.applyUpdate(ticket, input)
	if len(changed) == 0 {
		return ticket, nil
	}
	if err := validateEnums(ticket.Status, ticket.Priority, ticket.CustomerType); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ticket.Title) == "" {
		return nil, apperrors.NewValidationError("title cannot be empty", nil)
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapRepoError(err)
	}

	if ticket.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Payload: events.TicketStatusChangedPayload{
				TicketCode: ticket.TicketCode,
				OldStatus:  oldStatus,
				NewStatus:  ticket.Status,
			},
		})
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Payload: events.TicketUpdatedPayload{
			TicketCode:    ticket.TicketCode,
			ChangedFields: changed,
		},
	})
	return ticket, nil
}

// DeleteTicket removes a ticket permanently.
func (s *TicketService) DeleteTicket(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("ticket id is required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
		Payload:  events.TicketDeletedPayload{TicketCode: ticket.TicketCode},
	})
	return nil
}

func (s *TicketService) applyUpdate(ticket *domain.Ticket, input TicketUpdateInput) []string {
	var changed []string
	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
		changed = append(changed, "title")
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
		changed = append(changed, "description")
	}
	if input.Status != nil && *input.Status != ticket.Status {
		if *input.Status == domain.TicketStatusCompleted {
			now := s.now()
			ticket.CompletedAt = &now
		}
		ticket.Status = *input.Status
		changed = append(changed, "status")
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
		changed = append(changed, "priority")
	}
	if input.Category != nil {
		ticket.Category = *input.Category
		changed = append(changed, "category")
	}
	if input.CustomerName != nil {
		ticket.CustomerName = *input.CustomerName
		changed = append(changed, "customer_name")
	}
	if input.CustomerType != nil {
		ticket.CustomerType = *input.CustomerType
		changed = append(changed, "customer_type")
	}
	if input.CSAMName != nil {
		ticket.CSAMName = *input.CSAMName
		changed = append(changed, "csam_name")
	}
	if input.AssignedTo != nil {
		ticket.AssignedTo = normalizeAssignee(input.AssignedTo)
		changed = append(changed, "assigned_to")
	}
	if input.Deadline != nil {
		ticket.Deadline = *input.Deadline
		changed = append(changed, "deadline")
	}
	if input.Tags != nil {
		ticket.Tags = *input.Tags
		changed = append(changed, "tags")
	}
	if input.Notes != nil {
		ticket.Notes = *input.Notes
		changed = append(changed, "notes")
	}
	if input.Subtasks != nil {
		ticket.Subtasks = s.mergeSubtasks(ticket.Subtasks, *input.Subtasks)
		changed = append(changed, "subtasks")
	}
	return changed
}

func (s *TicketService) buildSubtasks(inputs []SubtaskInput) []domain.Subtask {
	subtasks := make([]domain.Subtask, 0, len(inputs))
	for _, in := range inputs {
		sub := domain.Subtask{
			ID:        in.ID,
			Text:      strings.TrimSpace(in.Text),
			Completed: in.Completed,
		}
		if sub.ID == "" {
			sub.ID = uuid.NewString()
		}
		if sub.Completed {
			now := s.now()
			sub.CompletedAt = &now
		}
		subtasks = append(subtasks, sub)
	}
	return subtasks
}

// mergeSubtasks replaces the checklist while keeping completion
// timestamps of items that were already done.
func (s *TicketService) mergeSubtasks(existing []domain.Subtask, inputs []SubtaskInput) []domain.Subtask {
	byID := make(map[string]domain.Subtask, len(existing))
	for _, sub := range existing {
		byID[sub.ID] = sub
	}

	subtasks := make([]domain.Subtask, 0, len(inputs))
	for _, in := range inputs {
		sub := domain.Subtask{
			ID:        in.ID,
			Text:      strings.TrimSpace(in.Text),
			Completed: in.Completed,
		}
		if sub.ID == "" {
			sub.ID = uuid.NewString()
		}
		if sub.Completed {
			if prev, ok := byID[sub.ID]; ok && prev.Completed && prev.CompletedAt != nil {
				sub.CompletedAt = prev.CompletedAt
			} else {
				now := s.now()
				sub.CompletedAt = &now
			}
		}
		subtasks = append(subtasks, sub)
	}
	return subtasks
}

func normalizeAssignee(assignee *string) *string {
	if assignee == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*assignee)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validateEnums(status domain.TicketStatus, priority domain.TicketPriority, customerType domain.CustomerType) error {
	if !domain.ValidStatus(status) {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	if !domain.ValidPriority(priority) {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	if !domain.ValidCustomerType(customerType) {
		return apperrors.NewValidationError("invalid customer type", map[string]any{"customer_type": customerType})
	}
	return nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("ticket", nil)
	case errors.Is(err, repository.ErrDuplicateCode):
		return apperrors.NewConflict("ticket code already exists", nil)
	default:
		return err
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
