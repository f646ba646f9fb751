package export

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rpattn/engtrack/internal/domain"
	"github.com/rpattn/engtrack/internal/repository"
	"github.com/rpattn/engtrack/pkg/logger"
	"github.com/rpattn/engtrack/pkg/metrics"
)

// SampleStyle selects the file name of a sample template.
type SampleStyle string

const (
	// SampleStyleTemplate names samples {Label}_template.xlsx.
	SampleStyleTemplate SampleStyle = "template"
	// SampleStyleSampleData names samples {Label}_Sample_Data.xlsx.
	SampleStyleSampleData SampleStyle = "sample_data"
)

// ParseSampleStyle maps configuration text to a style; empty means template.
func ParseSampleStyle(raw string) (SampleStyle, error) {
	switch SampleStyle(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SampleStyleTemplate:
		return SampleStyleTemplate, nil
	case SampleStyleSampleData, "sample-data", "sampledata":
		return SampleStyleSampleData, nil
	default:
		return "", fmt.Errorf("unknown sample style %q", raw)
	}
}

// Artifact labels used in metrics and logs.
const (
	ArtifactBlank  = "blank"
	ArtifactSample = "sample"
	ArtifactExport = "export"
	ArtifactRows   = "rows"
)

const dateStamp = "2006-01-02"

// Service produces templates and exports as xlsx workbooks.
type Service struct {
	collections repository.Collections
	sampleStyle SampleStyle
	now         func() time.Time
	log         logger.Logger
	metrics     *metrics.Manager
}

type Option func(*Service)

// WithSampleStyle sets the default sample template naming.
func WithSampleStyle(style SampleStyle) Option {
	return func(s *Service) {
		if style != "" {
			s.sampleStyle = style
		}
	}
}

// WithClock overrides the clock used for export date stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(collections repository.Collections, opts ...Option) *Service {
	service := &Service{
		collections: collections,
		sampleStyle: SampleStyleTemplate,
		now:         time.Now,
		log:         logger.Named("export"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// BlankTemplate returns a workbook holding only the kind's header row.
func (s *Service) BlankTemplate(kind domain.RecordKind) (Workbook, error) {
	headers := kind.Headers()
	if headers == nil {
		return Workbook{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	name := fmt.Sprintf("%s_template_blank.xlsx", kind.Label())
	return s.build(kind, ArtifactBlank, name, kind.Label(), headers.Clone(), nil)
}

// SampleTemplate returns the header row followed by the kind's illustrative
// rows. An empty style uses the service default.
func (s *Service) SampleTemplate(kind domain.RecordKind, style SampleStyle) (Workbook, error) {
	if kind.Headers() == nil {
		return Workbook{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	if style == "" {
		style = s.sampleStyle
	}
	var name string
	switch style {
	case SampleStyleSampleData:
		name = fmt.Sprintf("%s_Sample_Data.xlsx", kind.Label())
	case SampleStyleTemplate:
		name = fmt.Sprintf("%s_template.xlsx", kind.Label())
	default:
		return Workbook{}, fmt.Errorf("unknown sample style %q", style)
	}
	return s.build(kind, ArtifactSample, name, kind.Label(), kind.SampleHeaders(), kind.SampleRows())
}

// ExportRecords loads the stored collection for kind and flattens it into
// {baseName}_{YYYY-MM-DD}.xlsx. An empty collection yields EmptyExportError.
func (s *Service) ExportRecords(ctx context.Context, kind domain.RecordKind, baseName string) (Workbook, error) {
	var (
		headers []string
		rows    [][]any
		err     error
	)
	switch kind {
	case domain.KindPPM:
		headers, rows, err = flattenCollection(ctx, s.collections.PPM, domain.PPMHeaders.Clone())
	case domain.KindOCM:
		headers, rows, err = flattenCollection(ctx, s.collections.OCM, domain.OCMHeaders.Clone())
	case domain.KindTraining:
		headers, rows, err = flattenTraining(ctx, s.collections.Training)
	default:
		return Workbook{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	if err != nil {
		return Workbook{}, fmt.Errorf("load %s records: %w", kind, err)
	}

	base := sanitizeFileComponent(baseName)
	if base == "" {
		base = kind.Label() + "_Records"
	}
	return s.build(kind, ArtifactExport, s.datedName(base), kind.Label(), headers, rows)
}

// ExportRows serializes caller prepared rows. When headers is empty the
// columns are the union of row keys, in order of first appearance with each
// row's keys sorted.
func (s *Service) ExportRows(baseName string, headers []string, rows []map[string]any) (Workbook, error) {
	base := sanitizeFileComponent(baseName)
	if base == "" {
		base = "Export"
	}
	if len(headers) == 0 {
		headers = unionKeys(rows)
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		line := make([]any, len(headers))
		for col, header := range headers {
			line[col] = row[header]
		}
		values[i] = line
	}
	return s.build("", ArtifactRows, s.datedName(base), base, headers, values)
}

func (s *Service) datedName(base string) string {
	return fmt.Sprintf("%s_%s.xlsx", base, s.now().Format(dateStamp))
}

func (s *Service) build(kind domain.RecordKind, artifact, fileName, sheetName string, headers []string, rows [][]any) (Workbook, error) {
	if artifact == ArtifactExport || artifact == ArtifactRows {
		if len(rows) == 0 {
			s.metrics.ExportFailed(string(kind), artifact)
			s.log.Warn(context.Background(), "nothing to export", logger.String("file", fileName))
			return Workbook{}, &domain.EmptyExportError{Name: fileName}
		}
	}

	data, err := writeWorkbook(sheetName, headers, rows)
	if err != nil {
		s.metrics.ExportFailed(string(kind), artifact)
		return Workbook{}, err
	}

	s.metrics.ExportProduced(string(kind), artifact)
	s.log.Info(context.Background(), "workbook generated",
		logger.String("file", fileName),
		logger.String("artifact", artifact),
		logger.Int("rows", len(rows)),
	)
	return Workbook{FileName: fileName, Rows: len(rows), Data: data}, nil
}

func flattenCollection[T domain.Record[T]](ctx context.Context, repo repository.RecordRepository[T], headers []string) ([]string, [][]any, error) {
	records, err := repo.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return headers, flattenRows(records, headers, ""), nil
}

// flattenTraining widens the fixed employee columns with every machine seen
// in the collection; a record without a machine column reads "No".
func flattenTraining(ctx context.Context, repo repository.RecordRepository[domain.TrainingRecord]) ([]string, [][]any, error) {
	records, err := repo.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	headers := append(domain.TrainingHeaders.Clone(), domain.MachineColumns(records)...)
	return headers, flattenRows(records, headers, "No"), nil
}

func flattenRows[T domain.Record[T]](records []T, headers []string, missing any) [][]any {
	rows := make([][]any, len(records))
	for i, record := range records {
		flat := record.Flatten()
		row := make([]any, len(headers))
		for col, header := range headers {
			value, ok := flat[header]
			if !ok {
				value = missing
			}
			row[col] = value
		}
		rows[i] = row
	}
	return rows
}

func unionKeys(rows []map[string]any) []string {
	seen := make(map[string]struct{})
	var headers []string
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for key := range row {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			headers = append(headers, key)
		}
	}
	return headers
}
