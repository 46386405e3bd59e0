package media

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/medialib/backend/internal/models"
)

const (
	recordKeyPrefix = "medialib:record:"
	listCacheKey    = "medialib:records"

	// DefaultCacheTTL is used when no TTL is configured.
	DefaultCacheTTL = 30 * time.Second
)

// RecordCache is the cache surface the store decorator needs. Misses and
// cache failures look the same to the decorator; it always falls back to
// the inner store. pkg/redis.Client satisfies this.
type RecordCache interface {
	GetString(ctx context.Context, key string) (string, bool)
	SetString(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// CachedStore is a read-through cache over another Store. Reads are served
// from the cache when possible; every mutation refreshes or invalidates
// the affected keys. The record list is cached as a whole and invalidated
// on any mutation.
type CachedStore struct {
	inner  Store
	cache  RecordCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore wraps inner with a cache. A non-positive ttl falls back
// to DefaultCacheTTL.
func NewCachedStore(inner Store, cache RecordCache, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func recordCacheKey(id string) string {
	return recordKeyPrefix + id
}

func (s *CachedStore) Create(ctx context.Context, fields models.Record) (models.Record, error) {
	rec, err := s.inner.Create(ctx, fields)
	if err != nil {
		return nil, err
	}
	s.storeRecord(ctx, rec)
	s.cache.Delete(ctx, listCacheKey)
	return rec, nil
}

func (s *CachedStore) GetByID(ctx context.Context, id string) (models.Record, error) {
	if raw, ok := s.cache.GetString(ctx, recordCacheKey(id)); ok {
		var rec models.Record
		if err := json.Unmarshal([]byte(raw), &rec); err == nil {
			return rec, nil
		}
		s.logger.Debug("dropping undecodable cached record", zap.String("id", id))
		s.cache.Delete(ctx, recordCacheKey(id))
	}

	rec, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.storeRecord(ctx, rec)
	return rec, nil
}

func (s *CachedStore) Update(ctx context.Context, id string, fields models.Record) (models.Record, error) {
	rec, err := s.inner.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.storeRecord(ctx, rec)
	s.cache.Delete(ctx, listCacheKey)
	return rec, nil
}

func (s *CachedStore) Delete(ctx context.Context, id string) (models.Record, error) {
	rec, err := s.inner.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, recordCacheKey(id), listCacheKey)
	return rec, nil
}

func (s *CachedStore) List(ctx context.Context) ([]models.Record, error) {
	if raw, ok := s.cache.GetString(ctx, listCacheKey); ok {
		list := make([]models.Record, 0)
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return list, nil
		}
		s.logger.Debug("dropping undecodable cached record list")
		s.cache.Delete(ctx, listCacheKey)
	}

	list, err := s.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(list); err == nil {
		s.cache.SetString(ctx, listCacheKey, string(raw), s.ttl)
	}
	return list, nil
}

// Count always hits the inner store so the health probe sees the backend.
func (s *CachedStore) Count(ctx context.Context) (int, error) {
	return s.inner.Count(ctx)
}

func (s *CachedStore) Close() error {
	return s.inner.Close()
}

func (s *CachedStore) storeRecord(ctx context.Context, rec models.Record) {
	raw, err := json.Marshal(rec)
	if err != nil {
		s.logger.Debug("skipping cache write for unencodable record", zap.String("id", rec.ID()))
		return
	}
	s.cache.SetString(ctx, recordCacheKey(rec.ID()), string(raw), s.ttl)
}
