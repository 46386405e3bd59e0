package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/timshannon/bolthold"
	bolt "go.etcd.io/bbolt"

	"github.com/medialib/backend/internal/models"
)

// boltRecord is the stored shape of a record: the JSON-encoded fields plus
// a numeric sequence (the id's integer value) indexed for ordered listing.
type boltRecord struct {
	ID     string `boltholdKey:"ID"`
	Seq    int64  `boltholdIndex:"Seq"`
	Fields []byte
}

// BoltStore persists records in a single-file embedded bolt database.
// Updates are read-modify-write, so mutations serialize through a mutex.
type BoltStore struct {
	mu    sync.Mutex
	store *bolthold.Store
}

// OpenBoltStore opens (creating if needed) the bolt database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	store, err := bolthold.Open(path, 0666, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bolt store: %w", err)
	}
	return &BoltStore{store: store}, nil
}

// OpenBoltStoreReadOnly opens an existing bolt database without taking the
// writer lock, so an inspection tool can read a file the server has open.
// Mutating operations will fail.
func OpenBoltStoreReadOnly(path string) (*BoltStore, error) {
	store, err := bolthold.Open(path, 0666, &bolthold.Options{
		Options: &bolt.Options{ReadOnly: true},
	})
	if err != nil {
		return nil, fmt.Errorf("opening bolt store read-only: %w", err)
	}
	return &BoltStore{store: store}, nil
}

func (s *BoltStore) Create(ctx context.Context, fields models.Record) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := models.NewRecord(NewRecordID(), fields)
	row, err := encodeBoltRecord(rec)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Insert(row.ID, row); err != nil {
		return nil, fmt.Errorf("inserting media record: %w", err)
	}
	return rec, nil
}

func (s *BoltStore) GetByID(ctx context.Context, id string) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var row boltRecord
	if err := s.store.Get(id, &row); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting media record: %w", err)
	}
	return decodeBoltRecord(&row)
}

func (s *BoltStore) Update(ctx context.Context, id string, fields models.Record) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var row boltRecord
	if err := s.store.Get(id, &row); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting media record: %w", err)
	}

	rec, err := decodeBoltRecord(&row)
	if err != nil {
		return nil, err
	}
	rec.Merge(fields)

	row.Fields, err = json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding media record: %w", err)
	}
	if err := s.store.Update(id, &row); err != nil {
		return nil, fmt.Errorf("updating media record: %w", err)
	}
	return rec, nil
}

func (s *BoltStore) Delete(ctx context.Context, id string) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var row boltRecord
	if err := s.store.Get(id, &row); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting media record: %w", err)
	}
	if err := s.store.Delete(id, &boltRecord{}); err != nil {
		return nil, fmt.Errorf("deleting media record: %w", err)
	}
	return decodeBoltRecord(&row)
}

func (s *BoltStore) List(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []boltRecord
	err := s.store.Find(&rows, bolthold.Where("Seq").Ge(int64(0)).SortBy("Seq"))
	if err != nil {
		return nil, fmt.Errorf("listing media records: %w", err)
	}

	out := make([]models.Record, 0, len(rows))
	for i := range rows {
		rec, err := decodeBoltRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *BoltStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n, err := s.store.Count(&boltRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("counting media records: %w", err)
	}
	return n, nil
}

func (s *BoltStore) Close() error {
	return s.store.Close()
}

func encodeBoltRecord(rec models.Record) (*boltRecord, error) {
	seq, err := strconv.ParseInt(rec.ID(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing record id %q: %w", rec.ID(), err)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding media record: %w", err)
	}
	return &boltRecord{ID: rec.ID(), Seq: seq, Fields: raw}, nil
}

func decodeBoltRecord(row *boltRecord) (models.Record, error) {
	var rec models.Record
	if err := json.Unmarshal(row.Fields, &rec); err != nil {
		return nil, fmt.Errorf("decoding media record %q: %w", row.ID, err)
	}
	return rec, nil
}
