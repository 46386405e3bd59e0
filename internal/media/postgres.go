package media

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medialib/backend/internal/models"
)

// PostgresStore persists records as jsonb rows. The merge on update is
// done in SQL (jsonb || operator), so concurrent updates to the same
// record never lose fields.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a postgres-backed record store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, fields models.Record) (models.Record, error) {
	rec := models.NewRecord(NewRecordID(), fields)
	const q = `INSERT INTO media_records (id, fields) VALUES ($1, $2)`
	if _, err := s.pool.Exec(ctx, q, rec.ID(), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (models.Record, error) {
	const q = `SELECT fields FROM media_records WHERE id = $1`
	var rec models.Record
	err := s.pool.QueryRow(ctx, q, id).Scan(&rec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, fields models.Record) (models.Record, error) {
	merge := fields.Clone()
	delete(merge, models.FieldID)

	const q = `UPDATE media_records SET fields = fields || $2, updated_at = NOW() WHERE id = $1 RETURNING fields`
	var rec models.Record
	err := s.pool.QueryRow(ctx, q, id, merge).Scan(&rec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (models.Record, error) {
	const q = `DELETE FROM media_records WHERE id = $1 RETURNING fields`
	var rec models.Record
	err := s.pool.QueryRow(ctx, q, id).Scan(&rec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns all records in insertion order (by the seq column).
func (s *PostgresStore) List(ctx context.Context) ([]models.Record, error) {
	const q = `SELECT fields FROM media_records ORDER BY seq`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.Record, 0)
	for rows.Next() {
		var rec models.Record
		if err := rows.Scan(&rec); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM media_records`
	var n int
	if err := s.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
