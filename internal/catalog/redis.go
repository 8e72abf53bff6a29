package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avoca/mortgage-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. The catalog changes rarely, so everything is cached with a short
// TTL and repopulated from the primary on miss.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

func (s *CachedStore) GetLender(ctx context.Context, id string) (*model.Lender, error) {
	data, err := s.rdb.Get(ctx, lenderKey(id)).Bytes()
	if err == nil {
		var l model.Lender
		if json.Unmarshal(data, &l) == nil {
			return &l, nil
		}
	}

	l, err := s.primary.GetLender(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheJSON(ctx, lenderKey(id), l)
	return l, nil
}

func (s *CachedStore) GetRate(ctx context.Context, id string) (*model.RateDefinition, error) {
	data, err := s.rdb.Get(ctx, rateKey(id)).Bytes()
	if err == nil {
		var r model.RateDefinition
		if json.Unmarshal(data, &r) == nil {
			return &r, nil
		}
	}

	r, err := s.primary.GetRate(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheJSON(ctx, rateKey(id), r)
	return r, nil
}

func (s *CachedStore) LoadCatalog(ctx context.Context) (model.Catalog, error) {
	data, err := s.rdb.Get(ctx, catalogKey).Bytes()
	if err == nil {
		var cat model.Catalog
		if json.Unmarshal(data, &cat) == nil {
			return cat, nil
		}
	}

	cat, err := s.primary.LoadCatalog(ctx)
	if err != nil {
		return cat, err
	}
	s.cacheJSON(ctx, catalogKey, cat)
	return cat, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ListLenders(ctx context.Context) ([]model.Lender, error) {
	return s.primary.ListLenders(ctx)
}

func (s *CachedStore) ListRatesByLender(ctx context.Context, lenderID string) ([]model.RateDefinition, error) {
	return s.primary.ListRatesByLender(ctx, lenderID)
}

// --- Cache helpers ---

func (s *CachedStore) cacheJSON(ctx context.Context, key string, v interface{}) {
	if data, err := json.Marshal(v); err == nil {
		s.rdb.Set(ctx, key, data, s.ttl)
	}
}

const catalogKey = "catalog:full"

func lenderKey(id string) string { return fmt.Sprintf("lender:%s", id) }
func rateKey(id string) string   { return fmt.Sprintf("rate:%s", id) }
