package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boardkit/ticket-board/internal/domain"
)

// memoryRepository implements TicketRepository with in-memory data
// structures. It is the default backend when no POSTGRES_DSN is
// configured and the backend used by tests.
type memoryRepository struct {
	mu sync.RWMutex

	tickets map[string]*domain.Ticket // ID -> Ticket
	order   []string                  // insertion order of IDs
	byCode  map[string]string         // TicketCode -> ID
	now     func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() TicketRepository {
	return &memoryRepository{
		tickets: make(map[string]*domain.Ticket),
		byCode:  make(map[string]string),
		now:     time.Now,
	}
}

func (r *memoryRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Ticket, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.tickets[id].Clone())
	}
	return result, nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := ticket.Clone()
	return &clone, nil
}

func (r *memoryRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	clone := r.tickets[id].Clone()
	return &clone, nil
}

func (r *memoryRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byCode[ticket.TicketCode]; taken {
		return ErrDuplicateCode
	}

	now := r.now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	stored := ticket.Clone()
	r.tickets[ticket.ID] = &stored
	r.order = append(r.order, ticket.ID)
	r.byCode[ticket.TicketCode] = ticket.ID
	return nil
}

func (r *memoryRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tickets[ticket.ID]
	if !ok {
		return ErrNotFound
	}

	// TicketCode and CreatedAt are immutable once stored.
	ticket.TicketCode = existing.TicketCode
	ticket.CreatedAt = existing.CreatedAt
	ticket.UpdatedAt = r.now()

	stored := ticket.Clone()
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byCode, ticket.TicketCode)
	delete(r.tickets, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
