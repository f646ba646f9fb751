package repository

import (
	"context"

	"github.com/rpattn/engtrack/internal/domain"
)

// BlobStore is the opaque key/value store holding one JSON document per
// record kind. Writes always replace the whole blob.
type BlobStore interface {
	// Get returns the blob under key; found is false when nothing was stored yet.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Put(ctx context.Context, key string, data []byte) error
}

// RecordRepository loads and replaces the full collection for one kind.
// There are no per-record operations: the last full write wins.
type RecordRepository[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Replace(ctx context.Context, all []T) error
}

// IngestionLogRepository stores ingestion diagnostics for observability.
type IngestionLogRepository interface {
	Record(ctx context.Context, entry domain.IngestionLogEntry) error
	List(ctx context.Context, kind domain.RecordKind, fileName string, limit int, offset int) ([]domain.IngestionLogEntry, error)
}
