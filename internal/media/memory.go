package media

import (
	"context"
	"sync"

	"github.com/medialib/backend/internal/models"
)

// MemoryStore keeps records in an ordered in-process slice. It is the
// default backend: nothing survives a restart. All operations are guarded
// by a read-write mutex so concurrent handlers never race, and every
// record that crosses the store boundary is cloned so callers cannot
// mutate store-owned state.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make([]models.Record, 0)}
}

func (s *MemoryStore) Create(ctx context.Context, fields models.Record) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := models.NewRecord(NewRecordID(), fields)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)

	return rec.Clone(), nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.ID() == id {
			return rec.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Update(ctx context.Context, id string, fields models.Record) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ID() == id {
			rec.Merge(fields)
			return rec.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Delete(ctx context.Context, id string) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.records {
		if rec.ID() == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

// List returns all records in insertion order. The result is never nil so
// an empty store serializes as a JSON array.
func (s *MemoryStore) List(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *MemoryStore) Close() error { return nil }
