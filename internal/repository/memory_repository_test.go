package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boardkit/ticket-board/internal/domain"
)

func newTicket(code, title string) *domain.Ticket {
	return &domain.Ticket{
		TicketCode: code,
		Title:      title,
		Status:     domain.TicketStatusScheduled,
		Priority:   domain.TicketPriorityMedium,
		Deadline:   time.Now().Add(72 * time.Hour),
	}
}

func TestMemoryInsertAssignsIdentity(t *testing.T) {
	repo := NewMemoryRepository()
	ticket := newTicket("TCK-100", "First")

	if err := repo.Insert(context.Background(), ticket); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if ticket.ID == "" {
		t.Error("expected assigned id")
	}
	if ticket.CreatedAt.IsZero() || ticket.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be stamped")
	}
}

func TestMemoryInsertRejectsDuplicateCode(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, newTicket("TCK-100", "First")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	err := repo.Insert(ctx, newTicket("TCK-100", "Second"))
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}

	tickets, _ := repo.List(ctx)
	if len(tickets) != 1 {
		t.Errorf("expected 1 ticket after rejected duplicate, got %d", len(tickets))
	}
}

func TestMemoryListPreservesInsertionOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, code := range []string{"TCK-1", "TCK-2", "TCK-3"} {
		if err := repo.Insert(ctx, newTicket(code, code)); err != nil {
			t.Fatalf("insert %s failed: %v", code, err)
		}
	}

	tickets, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for i, code := range []string{"TCK-1", "TCK-2", "TCK-3"} {
		if tickets[i].TicketCode != code {
			t.Errorf("position %d: expected %s, got %s", i, code, tickets[i].TicketCode)
		}
	}
}

func TestMemoryListReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	ticket := newTicket("TCK-1", "Original")
	ticket.Tags = []string{"keep"}
	if err := repo.Insert(ctx, ticket); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	tickets, _ := repo.List(ctx)
	tickets[0].Title = "mutated"
	tickets[0].Tags[0] = "mutated"

	stored, _ := repo.GetByID(ctx, ticket.ID)
	if stored.Title != "Original" || stored.Tags[0] != "keep" {
		t.Error("list result aliases stored ticket")
	}
}

func TestMemoryUpdateProtectsImmutableFields(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	ticket := newTicket("TCK-1", "Original")
	if err := repo.Insert(ctx, ticket); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	created := ticket.CreatedAt

	modified := ticket.Clone()
	modified.TicketCode = "TCK-HACKED"
	modified.CreatedAt = time.Time{}
	modified.Title = "Renamed"
	if err := repo.Update(ctx, &modified); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stored, _ := repo.GetByID(ctx, ticket.ID)
	if stored.TicketCode != "TCK-1" {
		t.Errorf("ticket code must be immutable, got %s", stored.TicketCode)
	}
	if !stored.CreatedAt.Equal(created) {
		t.Error("created timestamp must be immutable")
	}
	if stored.Title != "Renamed" {
		t.Errorf("expected title update to apply, got %s", stored.Title)
	}
	if stored.UpdatedAt.Before(created) {
		t.Error("updated timestamp must not precede creation")
	}
}

func TestMemoryUpdateUnknownID(t *testing.T) {
	repo := NewMemoryRepository()
	ticket := newTicket("TCK-1", "Ghost")
	ticket.ID = "missing"

	if err := repo.Update(context.Background(), ticket); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	ticket := newTicket("TCK-1", "Doomed")
	if err := repo.Insert(ctx, ticket); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := repo.Delete(ctx, ticket.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := repo.Delete(ctx, ticket.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := repo.GetByCode(ctx, "TCK-1"); !errors.Is(err, ErrNotFound) {
		t.Error("code index should be cleared after delete")
	}

	// the code becomes reusable once the ticket is gone
	if err := repo.Insert(ctx, newTicket("TCK-1", "Reborn")); err != nil {
		t.Errorf("expected code reuse after delete, got %v", err)
	}
}
