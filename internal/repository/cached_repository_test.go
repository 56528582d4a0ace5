package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/boardkit/ticket-board/internal/domain"
)

// mapCache is an in-memory listCache standing in for Redis.
type mapCache struct {
	entries map[string][]byte
	getErr  error
	setErr  error
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	value, ok := c.entries[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return value, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	return nil
}

func (c *mapCache) Del(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

// countingRepository wraps an inner repository and counts List calls.
type countingRepository struct {
	TicketRepository
	listCalls int
}

func (r *countingRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	r.listCalls++
	return r.TicketRepository.List(ctx)
}

func newCachedFixture(t *testing.T) (*cachedRepository, *countingRepository, *mapCache) {
	t.Helper()
	inner := &countingRepository{TicketRepository: NewMemoryRepository()}
	cache := newMapCache()
	repo := &cachedRepository{
		inner:  inner,
		cache:  cache,
		ttl:    time.Minute,
		logger: zap.NewNop(),
	}
	return repo, inner, cache
}

func TestCachedListServesSecondReadFromCache(t *testing.T) {
	repo, inner, cache := newCachedFixture(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, newTicket("TCK-1", "First")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	first, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if inner.listCalls != 1 {
		t.Fatalf("expected one inner read, got %d", inner.listCalls)
	}
	if _, ok := cache.entries[listCacheKey]; !ok {
		t.Fatal("first read must populate the cache key")
	}

	second, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("cached list failed: %v", err)
	}
	if inner.listCalls != 1 {
		t.Errorf("second read must be served from cache, inner reads: %d", inner.listCalls)
	}
	if len(second) != len(first) || second[0].TicketCode != "TCK-1" {
		t.Errorf("cached result differs from inner result: %v", second)
	}
}

func TestCachedMutationsInvalidateListKey(t *testing.T) {
	repo, inner, cache := newCachedFixture(t)
	ctx := context.Background()

	ticket := newTicket("TCK-1", "First")
	if err := repo.Insert(ctx, ticket); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, ok := cache.entries[listCacheKey]; ok {
		t.Fatal("insert must drop the list key")
	}

	if _, err := repo.List(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	ticket.Title = "Renamed"
	if err := repo.Update(ctx, ticket); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, ok := cache.entries[listCacheKey]; ok {
		t.Fatal("update must drop the list key")
	}

	if _, err := repo.List(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if err := repo.Delete(ctx, ticket.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := cache.entries[listCacheKey]; ok {
		t.Fatal("delete must drop the list key")
	}

	tickets, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(tickets) != 0 {
		t.Errorf("expected empty collection after delete, got %d", len(tickets))
	}
	if inner.listCalls != 3 {
		t.Errorf("each invalidated read must hit the inner repository, got %d reads", inner.listCalls)
	}
}

func TestCachedListFallsThroughOnCacheFailure(t *testing.T) {
	repo, inner, cache := newCachedFixture(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, newTicket("TCK-1", "First")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")

	tickets, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list must survive a cache outage: %v", err)
	}
	if len(tickets) != 1 || inner.listCalls != 1 {
		t.Errorf("expected inner read during outage, got %d tickets, %d reads", len(tickets), inner.listCalls)
	}
}

func TestCachedListRebuildsCorruptEntry(t *testing.T) {
	repo, inner, cache := newCachedFixture(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, newTicket("TCK-1", "First")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	cache.entries[listCacheKey] = []byte("not json")

	tickets, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(tickets) != 1 || inner.listCalls != 1 {
		t.Errorf("corrupt entry must fall through to the inner repository")
	}
	if string(cache.entries[listCacheKey]) == "not json" {
		t.Error("corrupt entry must be replaced")
	}
}