package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rpattn/engtrack/internal/domain"
)

// MemoryIngestionLogRepository keeps log entries in memory, newest last.
type MemoryIngestionLogRepository struct {
	mu      sync.Mutex
	entries []domain.IngestionLogEntry
	now     func() time.Time
}

// NewMemoryIngestionLogRepository returns an empty log.
func NewMemoryIngestionLogRepository() *MemoryIngestionLogRepository {
	return &MemoryIngestionLogRepository{now: time.Now}
}

func (r *MemoryIngestionLogRepository) Record(ctx context.Context, entry domain.IngestionLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	if entry.Severity == "" {
		entry.Severity = domain.SeverityError
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *MemoryIngestionLogRepository) List(ctx context.Context, kind domain.RecordKind, fileName string, limit int, offset int) ([]domain.IngestionLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []domain.IngestionLogEntry{}
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if entry.Kind != kind {
			continue
		}
		if fileName != "" && entry.FileName != fileName {
			continue
		}
		matched = append(matched, entry)
	}
	if offset >= len(matched) {
		return []domain.IngestionLogEntry{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}
