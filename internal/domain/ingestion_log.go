package domain

import (
	"time"

	"github.com/google/uuid"
)

// IngestionSeverity separates batch-fatal failures from per-cell warnings.
type IngestionSeverity string

const (
	SeverityWarning IngestionSeverity = "warning"
	SeverityError   IngestionSeverity = "error"
)

// IngestionLogEntry captures row level issues that occur during ingestion.
type IngestionLogEntry struct {
	ID           uuid.UUID         `json:"id"`
	Kind         RecordKind        `json:"kind"`
	FileName     string            `json:"file_name"`
	RowNumber    *int              `json:"row_number,omitempty"`
	Field        string            `json:"field,omitempty"`
	Severity     IngestionSeverity `json:"severity"`
	ErrorMessage string            `json:"error_message"`
	CreatedAt    time.Time         `json:"created_at"`
}
