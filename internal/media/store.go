package media

import (
	"context"
	"errors"

	"github.com/medialib/backend/internal/models"
)

// ErrNotFound is returned by store lookups and updates when no record has
// the requested id. Handlers map it to HTTP 404.
var ErrNotFound = errors.New("media record not found")

// Store is the persistence contract for media records. Every backend
// (memory, bolt, postgres, s3, and the cache decorator) satisfies it, so
// the HTTP layer is wired against the interface and never a concrete type.
//
// Create assigns the record id; callers cannot choose ids. Update performs
// a shallow merge of the supplied fields into the stored record. Delete
// reports ErrNotFound for unknown ids so callers can distinguish a removal
// from a no-op, even though the API treats both the same. List returns
// records in insertion order.
type Store interface {
	Create(ctx context.Context, fields models.Record) (models.Record, error)
	GetByID(ctx context.Context, id string) (models.Record, error)
	Update(ctx context.Context, id string, fields models.Record) (models.Record, error)
	Delete(ctx context.Context, id string) (models.Record, error)
	List(ctx context.Context) ([]models.Record, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
