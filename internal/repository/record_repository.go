package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpattn/engtrack/internal/domain"
)

// JSONRecordRepository stores a collection as a JSON array under a fixed
// blob key.
type JSONRecordRepository[T any] struct {
	store BlobStore
	key   string
}

// NewRecordRepository binds a collection of T to the kind's fixed store key.
func NewRecordRepository[T any](store BlobStore, kind domain.RecordKind) *JSONRecordRepository[T] {
	return &JSONRecordRepository[T]{store: store, key: kind.StoreKey()}
}

// Key returns the blob name backing this repository.
func (r *JSONRecordRepository[T]) Key() string { return r.key }

// Load returns the stored collection, or an empty slice when nothing has
// been written yet.
func (r *JSONRecordRepository[T]) Load(ctx context.Context) ([]T, error) {
	data, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", r.key, err)
	}
	if !found || len(data) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.key, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Replace overwrites the stored collection with all.
func (r *JSONRecordRepository[T]) Replace(ctx context.Context, all []T) error {
	if all == nil {
		all = []T{}
	}
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.key, err)
	}
	if err := r.store.Put(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to replace %s: %w", r.key, err)
	}
	return nil
}

// Collections groups the three record repositories that share one store.
type Collections struct {
	PPM      RecordRepository[domain.PPMRecord]
	OCM      RecordRepository[domain.OCMRecord]
	Training RecordRepository[domain.TrainingRecord]
}

// NewCollections binds every record kind to store under its fixed key.
func NewCollections(store BlobStore) Collections {
	return Collections{
		PPM:      NewRecordRepository[domain.PPMRecord](store, domain.KindPPM),
		OCM:      NewRecordRepository[domain.OCMRecord](store, domain.KindOCM),
		Training: NewRecordRepository[domain.TrainingRecord](store, domain.KindTraining),
	}
}
