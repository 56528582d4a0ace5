package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/boardkit/ticket-board/internal/domain"
)

const listCacheKey = "ticket-board:tickets"

// listCache is the cache surface the decorator needs. Production uses
// Redis behind it.
type listCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisListCache struct {
	client *redis.Client
}

func (c redisListCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c redisListCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c redisListCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// cachedRepository decorates a TicketRepository with a cache for the
// full list. Every mutation drops the cache key; reads fall through to
// the inner repository on any cache failure.
type cachedRepository struct {
	inner  TicketRepository
	cache  listCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedRepository wraps inner with a Redis list cache.
func NewCachedRepository(inner TicketRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) TicketRepository {
	return &cachedRepository{inner: inner, cache: redisListCache{client: client}, ttl: ttl, logger: logger}
}

func (r *cachedRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	if cached, err := r.cache.Get(ctx, listCacheKey); err == nil {
		var tickets []domain.Ticket
		if err := json.Unmarshal(cached, &tickets); err == nil {
			return tickets, nil
		}
		// corrupt entry, fall through and rebuild
		_ = r.cache.Del(ctx, listCacheKey)
	}

	tickets, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(tickets); err == nil {
		if err := r.cache.Set(ctx, listCacheKey, encoded, r.ttl); err != nil {
			r.logger.Warn("failed to populate ticket list cache", zap.Error(err))
		}
	}
	return tickets, nil
}

func (r *cachedRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *cachedRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	return r.inner.GetByCode(ctx, code)
}

func (r *cachedRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	if err := r.inner.Insert(ctx, ticket); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if err := r.inner.Update(ctx, ticket); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedRepository) invalidate(ctx context.Context) {
	if err := r.cache.Del(ctx, listCacheKey); err != nil {
		r.logger.Warn("failed to invalidate ticket list cache", zap.Error(err))
	}
}
