package redis

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/appealgen/internal/domain/payer"
	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
)

// payerTTL bounds staleness of the directory cache.  The directory changes
// rarely; writes invalidate eagerly anyway.
const payerTTL = 30 * time.Minute

const payerListKey = "payers:all"

// CachedPayerRepository decorates a payer.Repository with a read-through
// cache.  Lookups hit Redis first; writes pass through and invalidate.
type CachedPayerRepository struct {
	inner  payer.Repository
	cache  Cache
	logger logging.Logger
}

// NewCachedPayerRepository wraps inner with the cache.
func NewCachedPayerRepository(inner payer.Repository, cache Cache, logger logging.Logger) *CachedPayerRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CachedPayerRepository{inner: inner, cache: cache, logger: logger.Named("payer_cache")}
}

var _ payer.Repository = (*CachedPayerRepository)(nil)

func payerNameKey(name string) string {
	return "payers:name:" + strings.ToLower(strings.TrimSpace(name))
}

// GetByName resolves a payer through the cache.
func (r *CachedPayerRepository) GetByName(ctx context.Context, name string) (*payer.Payer, error) {
	var p payer.Payer
	err := r.cache.GetOrSet(ctx, payerNameKey(name), &p, payerTTL,
		func(ctx context.Context) (interface{}, error) {
			return r.inner.GetByName(ctx, name)
		})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListAll returns the directory through the cache.
func (r *CachedPayerRepository) ListAll(ctx context.Context) ([]*payer.Payer, error) {
	var out []*payer.Payer
	err := r.cache.GetOrSet(ctx, payerListKey, &out, payerTTL,
		func(ctx context.Context) (interface{}, error) {
			return r.inner.ListAll(ctx)
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Seed passes through and drops the list cache.
func (r *CachedPayerRepository) Seed(ctx context.Context, payers []*payer.Payer) error {
	if err := r.inner.Seed(ctx, payers); err != nil {
		return err
	}
	r.invalidate(ctx, payerListKey)
	return nil
}

// IncrementAppealCount passes through and drops the list cache so statistics
// stay fresh.  Name keys are left to expire; counters are advisory.
func (r *CachedPayerRepository) IncrementAppealCount(ctx context.Context, id uuid.UUID, successful bool) error {
	if err := r.inner.IncrementAppealCount(ctx, id, successful); err != nil {
		return err
	}
	r.invalidate(ctx, payerListKey)
	return nil
}

func (r *CachedPayerRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn("cache invalidation failed", logging.Err(err))
	}
}
