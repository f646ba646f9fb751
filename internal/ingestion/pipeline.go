package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rpattn/engtrack/internal/domain"
	"github.com/rpattn/engtrack/internal/repository"
	"github.com/rpattn/engtrack/pkg/logger"
	"github.com/rpattn/engtrack/pkg/metrics"
)

// Definition holds everything that differs between record kinds on import.
type Definition[T domain.Record[T]] struct {
	Kind    domain.RecordKind
	Headers domain.CanonicalHeaderSet
	Map     Mapper[T]
}

var (
	PPMDefinition = Definition[domain.PPMRecord]{
		Kind:    domain.KindPPM,
		Headers: domain.PPMHeaders,
		Map:     MapPPM,
	}
	OCMDefinition = Definition[domain.OCMRecord]{
		Kind:    domain.KindOCM,
		Headers: domain.OCMHeaders,
		Map:     MapOCM,
	}
	TrainingDefinition = Definition[domain.TrainingRecord]{
		Kind:    domain.KindTraining,
		Headers: domain.TrainingHeaders,
		Map:     MapTraining,
	}
)

// Upload is one file handed to the import path.
type Upload struct {
	FileName    string
	ContentType string
	Data        io.Reader
}

// Summary reports the outcome of an import.
type Summary struct {
	Kind           domain.RecordKind               `json:"kind"`
	FileName       string                          `json:"fileName"`
	TotalRows      int                             `json:"totalRows"`
	Created        int                             `json:"created"`
	Updated        int                             `json:"updated"`
	CollectionSize int                             `json:"collectionSize"`
	Warnings       []domain.UnparseableDateWarning `json:"warnings"`
}

// Pipeline runs intake, header matching, row mapping, reconciliation and
// persistence for one record kind.
type Pipeline[T domain.Record[T]] struct {
	def     Definition[T]
	repo    repository.RecordRepository[T]
	logRepo repository.IngestionLogRepository
	policy  DuplicatePolicy
	log     logger.Logger
	metrics *metrics.Manager

	// mu serializes load, merge and replace for this kind.
	mu sync.Mutex
}

// NewPipeline wires a pipeline for def over repo. logRepo may be nil.
func NewPipeline[T domain.Record[T]](def Definition[T], repo repository.RecordRepository[T], logRepo repository.IngestionLogRepository, opts ...Option) *Pipeline[T] {
	cfg := newOptions(opts)
	return &Pipeline[T]{
		def:     def,
		repo:    repo,
		logRepo: logRepo,
		policy:  cfg.policy,
		log:     cfg.logger.With(logger.String("kind", string(def.Kind))),
		metrics: cfg.metrics,
	}
}

// Kind returns the record kind handled by the pipeline.
func (p *Pipeline[T]) Kind() domain.RecordKind { return p.def.Kind }

// Decode turns an uploaded file into mapped records without touching the
// store. Fatal problems (file type, empty sheet, missing columns) are returned
// as errors; unparseable dates only produce warnings.
func (p *Pipeline[T]) Decode(fileName, contentType string, payload []byte) ([]T, []domain.UnparseableDateWarning, error) {
	sheet, err := ReadSheet(fileName, contentType, payload)
	if err != nil {
		return nil, nil, err
	}
	return p.MapSheet(sheet)
}

// MapSheet validates the sheet headers and maps every row.
func (p *Pipeline[T]) MapSheet(sheet domain.Sheet) ([]T, []domain.UnparseableDateWarning, error) {
	match, err := MatchHeaders(sheet.Headers, p.def.Headers, p.def.Kind)
	if err != nil {
		return nil, nil, err
	}

	records := make([]T, 0, len(sheet.Rows))
	warnings := []domain.UnparseableDateWarning{}
	for _, raw := range sheet.Rows {
		record, rowWarnings := p.def.Map(NormalizeRow(raw), match)
		records = append(records, record)
		warnings = append(warnings, rowWarnings...)
	}
	return records, warnings, nil
}

// Import runs the whole import path. Nothing is written unless every row
// was mapped and, under the strict policy, no duplicate key was found.
func (p *Pipeline[T]) Import(ctx context.Context, upload Upload) (Summary, error) {
	summary := Summary{
		Kind:     p.def.Kind,
		FileName: upload.FileName,
		Warnings: []domain.UnparseableDateWarning{},
	}

	if upload.Data == nil {
		return summary, p.fail(ctx, upload, errors.New("data reader is required"))
	}
	payload, err := io.ReadAll(upload.Data)
	if err != nil {
		return summary, p.fail(ctx, upload, fmt.Errorf("failed to read upload: %w", err))
	}

	records, warnings, err := p.Decode(upload.FileName, upload.ContentType, payload)
	if err != nil {
		return summary, p.fail(ctx, upload, err)
	}
	summary.TotalRows = len(records)
	summary.Warnings = warnings

	p.mu.Lock()
	defer p.mu.Unlock()

	existing, err := p.repo.Load(ctx)
	if err != nil {
		return summary, p.fail(ctx, upload, fmt.Errorf("failed to load %s records: %w", p.def.Kind, err))
	}

	if p.policy == DuplicatePolicyStrict {
		if err := CheckDuplicates(p.def.Kind, existing, records); err != nil {
			return summary, p.fail(ctx, upload, err)
		}
	}

	merged, stats := Merge(existing, records)
	if err := p.repo.Replace(ctx, merged); err != nil {
		return summary, p.fail(ctx, upload, fmt.Errorf("failed to persist %s records: %w", p.def.Kind, err))
	}

	summary.Created = stats.Created
	summary.Updated = stats.Updated
	summary.CollectionSize = len(merged)
	p.logWarnings(ctx, upload, warnings)

	p.metrics.ImportSucceeded(string(p.def.Kind), summary.TotalRows, stats.Created, stats.Updated, len(warnings), len(merged))
	p.log.Info(ctx, "import completed",
		logger.String("file", upload.FileName),
		logger.Int("rows", summary.TotalRows),
		logger.Int("created", stats.Created),
		logger.Int("updated", stats.Updated),
		logger.Int("warnings", len(warnings)),
	)
	return summary, nil
}

// Records returns the stored collection.
func (p *Pipeline[T]) Records(ctx context.Context) ([]T, error) {
	return p.repo.Load(ctx)
}

func (p *Pipeline[T]) fail(ctx context.Context, upload Upload, err error) error {
	p.metrics.ImportFailed(string(p.def.Kind), failureReason(err))
	p.log.Error(ctx, "import failed", logger.String("file", upload.FileName), logger.Error(err))
	p.logIngestion(ctx, domain.IngestionLogEntry{
		FileName:     upload.FileName,
		Severity:     domain.SeverityError,
		ErrorMessage: err.Error(),
	})
	return err
}

func (p *Pipeline[T]) logWarnings(ctx context.Context, upload Upload, warnings []domain.UnparseableDateWarning) {
	for _, warning := range warnings {
		p.log.Warn(ctx, "unparseable date",
			logger.String("file", upload.FileName),
			logger.Int("row", warning.Row),
			logger.String("field", warning.Field),
			logger.String("value", warning.Value),
		)
		row := warning.Row
		p.logIngestion(ctx, domain.IngestionLogEntry{
			FileName:     upload.FileName,
			RowNumber:    &row,
			Field:        warning.Field,
			Severity:     domain.SeverityWarning,
			ErrorMessage: warning.Error(),
		})
	}
}

func (p *Pipeline[T]) logIngestion(ctx context.Context, entry domain.IngestionLogEntry) {
	if p.logRepo == nil {
		return
	}
	entry.Kind = p.def.Kind
	if err := p.logRepo.Record(ctx, entry); err != nil {
		p.log.Debug(ctx, "failed to record ingestion log", logger.Error(err))
	}
}

func failureReason(err error) string {
	var (
		invalidType *domain.InvalidFileTypeError
		emptyFile   *domain.EmptyFileError
		missing     *domain.MissingColumnsError
		duplicate   *domain.DuplicateKeyError
	)
	switch {
	case errors.As(err, &invalidType):
		return "invalid_file_type"
	case errors.As(err, &emptyFile):
		return "empty_file"
	case errors.As(err, &missing):
		return "missing_columns"
	case errors.As(err, &duplicate):
		return "duplicate_keys"
	default:
		return "internal"
	}
}
