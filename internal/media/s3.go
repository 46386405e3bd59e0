package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/medialib/backend/internal/models"
	"github.com/medialib/backend/pkg/storage"
)

const recordContentType = "application/json"

// S3Store keeps each record as a JSON object under records/{id}.json.
// Record ids are fixed-width decimals, so S3's lexical key order is
// insertion order and List needs no extra sorting. Updates are
// read-modify-write, so mutations serialize through a mutex.
type S3Store struct {
	mu      sync.Mutex
	objects *storage.S3
}

// NewS3Store creates a record store backed by an S3 bucket.
func NewS3Store(objects *storage.S3) *S3Store {
	return &S3Store{objects: objects}
}

func (s *S3Store) Create(ctx context.Context, fields models.Record) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := models.NewRecord(NewRecordID(), fields)
	if err := s.put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *S3Store) GetByID(ctx context.Context, id string) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.get(ctx, storage.RecordKey(id))
}

func (s *S3Store) Update(ctx context.Context, id string, fields models.Record) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.get(ctx, storage.RecordKey(id))
	if err != nil {
		return nil, err
	}
	rec.Merge(fields)
	if err := s.put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *S3Store) Delete(ctx context.Context, id string) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := storage.RecordKey(id)
	rec, err := s.get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.objects.DeleteObject(ctx, key); err != nil {
		return nil, err
	}
	return rec, nil
}

// List fetches every record object under the records/ prefix. Objects
// deleted between the listing and the read are skipped.
func (s *S3Store) List(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys, err := s.objects.ListKeys(ctx, storage.FolderRecords+"/")
	if err != nil {
		return nil, err
	}

	list := make([]models.Record, 0, len(keys))
	for _, key := range keys {
		rec, err := s.get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, nil
}

func (s *S3Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	keys, err := s.objects.ListKeys(ctx, storage.FolderRecords+"/")
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *S3Store) Close() error { return nil }

func (s *S3Store) get(ctx context.Context, key string) (models.Record, error) {
	raw, err := s.objects.GetObject(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec models.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decoding media record object %q: %w", key, err)
	}
	return rec, nil
}

func (s *S3Store) put(ctx context.Context, rec models.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding media record: %w", err)
	}
	return s.objects.PutObject(ctx, storage.RecordKey(rec.ID()), recordContentType, raw)
}
