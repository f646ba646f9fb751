package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresBlobStore struct {
	pool *pgxpool.Pool
}

// NewPostgresBlobStore wires a blob store backed by the record_blobs table.
func NewPostgresBlobStore(pool *pgxpool.Pool) BlobStore {
	return &postgresBlobStore{pool: pool}
}

func (s *postgresBlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.pool == nil {
		return nil, false, fmt.Errorf("blob store not initialized")
	}
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM record_blobs WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, true, nil
}

func (s *postgresBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if s.pool == nil {
		return fmt.Errorf("blob store not initialized")
	}
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO record_blobs (key, payload, updated_at)
		 VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		key,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return nil
}
