// Package store keeps an in-memory ticket collection synchronized with
// the remote ticket API. It is the only component that talks to the API
// on behalf of presentation code: callers read snapshots and route every
// mutation through the store's operations, which reconcile the local
// cache with whatever the server returns.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/boardkit/ticket-board/internal/client"
	"github.com/boardkit/ticket-board/internal/domain"
	"github.com/boardkit/ticket-board/internal/query"
	apperrors "github.com/boardkit/ticket-board/pkg/util"
)

// TicketAPI is the remote surface the store depends on.
type TicketAPI interface {
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	CreateTicket(ctx context.Context, input client.TicketCreate) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, id string, patch client.TicketPatch) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
}

// Store is the session-authoritative ticket cache.
//
// The mutex guards the fields for memory safety only; it is never held
// across a network call. Overlapping operations therefore race exactly
// as the API allows, and the later response wins in the cache.
type Store struct {
	mu        sync.Mutex
	api       TicketAPI
	logger    *zap.Logger
	tickets   []domain.Ticket
	loading   bool
	lastError string
	now       func() time.Time
}

// New constructs an empty store. Call Refresh to load the collection.
func New(api TicketAPI, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{api: api, logger: logger, now: time.Now}
}

// Tickets returns a snapshot copy of the current collection.
func (s *Store) Tickets() []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Loading reports whether a refresh is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the most recent failure message, empty when the
// last operation succeeded.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Find returns a copy of the cached ticket with the given id.
func (s *Store) Find(id string) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			return s.tickets[i].Clone(), true
		}
	}
	return domain.Ticket{}, false
}

// Filtered projects the current collection through the filter.
func (s *Store) Filtered(filter query.Filter) []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Apply(s.tickets, filter)
}

// Metadata derives presentation metadata for a cached ticket.
func (s *Store) Metadata(id string) (query.Metadata, bool) {
	ticket, ok := s.Find(id)
	if !ok {
		return query.Metadata{}, false
	}
	return query.Derive(ticket, s.now()), true
}

// Refresh replaces the local collection with the remote truth. On
// failure the last good collection is kept and the error recorded.
func (s *Store) Refresh(ctx context.Context) bool {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	tickets, err := s.api.ListTickets(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.failLocked("refresh", err)
		return false
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	s.tickets = tickets
	s.lastError = ""
	return true
}

// Create validates the input locally, fills defaults, and sends it to
// the API. On success the server-assigned ticket is appended to the
// cache and returned; on failure nil is returned and the error recorded
// without touching the cache.
func (s *Store) Create(ctx context.Context, input client.TicketCreate) *domain.Ticket {
	if strings.TrimSpace(input.Title) == "" {
		s.recordError("create", apperrors.NewValidationError("title is required", nil))
		return nil
	}
	if strings.TrimSpace(input.TicketCode) == "" {
		s.recordError("create", apperrors.NewValidationError("ticket code is required", nil))
		return nil
	}

	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if input.Status == "" {
		input.Status = domain.TicketStatusScheduled
	}
	if input.Tags == nil {
		input.Tags = []string{}
	}
	if input.Notes == nil {
		input.Notes = []string{}
	}
	if input.Subtasks == nil {
		input.Subtasks = []client.SubtaskPayload{}
	}

	ticket, err := s.api.CreateTicket(ctx, input)
	if err != nil {
		s.recordError("create", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = append(s.tickets, ticket.Clone())
	s.lastError = ""
	result := ticket.Clone()
	return &result
}

// Update sends a partial payload for the given ticket. The server is
// authoritative for the merged result, which replaces the cached entry.
func (s *Store) Update(ctx context.Context, id string, patch client.TicketPatch) *domain.Ticket {
	if strings.TrimSpace(id) == "" {
		s.recordError("update", apperrors.NewValidationError("ticket id is required", nil))
		return nil
	}

	ticket, err := s.api.UpdateTicket(ctx, id, patch)
	if err != nil {
		s.recordError("update", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(*ticket)
	s.lastError = ""
	result := ticket.Clone()
	return &result
}

// Remove deletes the ticket remotely and drops it from the cache.
func (s *Store) Remove(ctx context.Context, id string) bool {
	if strings.TrimSpace(id) == "" {
		s.recordError("remove", apperrors.NewValidationError("ticket id is required", nil))
		return false
	}

	if err := s.api.DeleteTicket(ctx, id); err != nil {
		s.recordError("remove", err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
			break
		}
	}
	s.lastError = ""
	return true
}

// SetStatus moves a ticket to a new board column. When the target is
// COMPLETED the cached entry gets a completion timestamp immediately as
// a local hint; the server's value replaces it when the response lands.
// If the update fails the hint is rolled back so the cached ticket is
// left exactly as it was.
func (s *Store) SetStatus(ctx context.Context, id string, status domain.TicketStatus) *domain.Ticket {
	hinted := false
	if status == domain.TicketStatusCompleted {
		s.mu.Lock()
		for i := range s.tickets {
			if s.tickets[i].ID == id && s.tickets[i].CompletedAt == nil {
				hint := s.now()
				s.tickets[i].CompletedAt = &hint
				hinted = true
				break
			}
		}
		s.mu.Unlock()
	}

	updated := s.Update(ctx, id, client.TicketPatch{Status: &status})
	if updated == nil && hinted {
		s.mu.Lock()
		for i := range s.tickets {
			if s.tickets[i].ID == id {
				s.tickets[i].CompletedAt = nil
				break
			}
		}
		s.mu.Unlock()
	}
	return updated
}

// SetPriority changes a ticket's priority.
func (s *Store) SetPriority(ctx context.Context, id string, priority domain.TicketPriority) *domain.Ticket {
	return s.Update(ctx, id, client.TicketPatch{Priority: &priority})
}

// Assign sets the ticket's assignee.
func (s *Store) Assign(ctx context.Context, id, assignee string) *domain.Ticket {
	return s.Update(ctx, id, client.TicketPatch{AssignedTo: &assignee})
}

// Unassign clears the ticket's assignee.
func (s *Store) Unassign(ctx context.Context, id string) *domain.Ticket {
	empty := ""
	return s.Update(ctx, id, client.TicketPatch{AssignedTo: &empty})
}

func (s *Store) snapshotLocked() []domain.Ticket {
	result := make([]domain.Ticket, 0, len(s.tickets))
	for i := range s.tickets {
		result = append(result, s.tickets[i].Clone())
	}
	return result
}

func (s *Store) replaceLocked(ticket domain.Ticket) {
	for i := range s.tickets {
		if s.tickets[i].ID == ticket.ID {
			s.tickets[i] = ticket.Clone()
			return
		}
	}
	// unknown id: the cache is stale, adopt the server's record
	s.tickets = append(s.tickets, ticket.Clone())
}

func (s *Store) recordError(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLocked(op, err)
}

func (s *Store) failLocked(op string, err error) {
	domainErr := apperrors.ToDomainError(err)
	s.lastError = domainErr.Message
	s.logger.Warn("ticket store operation failed",
		zap.String("op", op),
		zap.String("code", domainErr.Code),
		zap.Error(err),
	)
}
