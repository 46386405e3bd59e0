package media

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/medialib/backend/internal/models"
)

func setupBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "media_*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	tmpfile.Close()

	store, err := OpenBoltStore(tmpfile.Name())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpfile.Name())
	})

	return store
}

func TestBoltStoreCreateAndGet(t *testing.T) {
	store := setupBoltStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, models.Record{"title": "clip", "type": "video"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID() == "" {
		t.Fatal("Create() assigned no id")
	}

	got, err := store.GetByID(ctx, created.ID())
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got["title"] != "clip" || got["type"] != "video" {
		t.Errorf("GetByID() = %v, want title=clip type=video", got)
	}
	if got.ID() != created.ID() {
		t.Errorf("GetByID() id = %q, want %q", got.ID(), created.ID())
	}
}

func TestBoltStoreGetByIDNotFound(t *testing.T) {
	store := setupBoltStore(t)

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestBoltStoreUpdate(t *testing.T) {
	store := setupBoltStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, models.Record{"title": "old", "size": float64(10)})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name    string
		id      string
		fields  models.Record
		wantErr bool
	}{
		{
			name:   "existing record",
			id:     created.ID(),
			fields: models.Record{"title": "new"},
		},
		{
			name:    "missing record",
			id:      "missing",
			fields:  models.Record{"title": "new"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Update(ctx, tt.id, tt.fields)
			if (err != nil) != tt.wantErr {
				t.Errorf("Update() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Update() error = %v, want ErrNotFound", err)
				}
				return
			}
			if got["title"] != "new" {
				t.Errorf("Update() title = %v, want new", got["title"])
			}
			if got["size"] != float64(10) {
				t.Errorf("Update() dropped untouched field size: %v", got)
			}
		})
	}
}

func TestBoltStoreDelete(t *testing.T) {
	store := setupBoltStore(t)
	ctx := context.Background()

	created, _ := store.Create(ctx, models.Record{"title": "clip"})

	removed, err := store.Delete(ctx, created.ID())
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if removed.ID() != created.ID() {
		t.Errorf("Delete() returned id %q, want %q", removed.ID(), created.ID())
	}

	if _, err := store.GetByID(ctx, created.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := store.Delete(ctx, created.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestBoltStoreListOrder(t *testing.T) {
	store := setupBoltStore(t)
	ctx := context.Background()

	const n = 5
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		rec, err := store.Create(ctx, models.Record{"seq": float64(i)})
		if err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
		ids = append(ids, rec.ID())
	}

	if _, err := store.Delete(ctx, ids[2]); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	wantSeq := []float64{0, 1, 3, 4}
	if len(list) != len(wantSeq) {
		t.Fatalf("List() returned %d records, want %d", len(list), len(wantSeq))
	}
	for i, rec := range list {
		if rec["seq"] != wantSeq[i] {
			t.Errorf("List()[%d].seq = %v, want %v", i, rec["seq"], wantSeq[i])
		}
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != len(wantSeq) {
		t.Errorf("Count() = %d, want %d", count, len(wantSeq))
	}
}

func TestBoltStoreListEmpty(t *testing.T) {
	store := setupBoltStore(t)

	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("List() = %v, want empty slice", list)
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "media_*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	tmpfile.Close()
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	ctx := context.Background()

	store, err := OpenBoltStore(tmpfile.Name())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	created, err := store.Create(ctx, models.Record{"title": "clip"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenBoltStore(tmpfile.Name())
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetByID(ctx, created.ID())
	if err != nil {
		t.Fatalf("GetByID() after reopen error = %v", err)
	}
	if got["title"] != "clip" {
		t.Errorf("GetByID() after reopen = %v, want title=clip", got)
	}
}
