package ingestion

import (
	"context"
	"fmt"

	"github.com/rpattn/engtrack/internal/domain"
	"github.com/rpattn/engtrack/internal/repository"
	"github.com/rpattn/engtrack/pkg/logger"
	"github.com/rpattn/engtrack/pkg/metrics"
)

type options struct {
	policy  DuplicatePolicy
	logger  logger.Logger
	metrics *metrics.Manager
}

// Option configures the import service.
type Option func(*options)

// WithDuplicatePolicy selects merge (default) or strict duplicate handling.
func WithDuplicatePolicy(policy DuplicatePolicy) Option {
	return func(o *options) {
		if policy != "" {
			o.policy = policy
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records import counters on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts []Option) options {
	cfg := options{
		policy: DuplicatePolicyMerge,
		logger: logger.Named("ingestion"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Service dispatches imports to the pipeline of the requested kind.
type Service struct {
	ppm      *Pipeline[domain.PPMRecord]
	ocm      *Pipeline[domain.OCMRecord]
	training *Pipeline[domain.TrainingRecord]
	logRepo  repository.IngestionLogRepository
}

// NewService creates a new ingestion service over the given collections.
func NewService(collections repository.Collections, logRepo repository.IngestionLogRepository, opts ...Option) *Service {
	return &Service{
		ppm:      NewPipeline(PPMDefinition, collections.PPM, logRepo, opts...),
		ocm:      NewPipeline(OCMDefinition, collections.OCM, logRepo, opts...),
		training: NewPipeline(TrainingDefinition, collections.Training, logRepo, opts...),
		logRepo:  logRepo,
	}
}

// PPM returns the PPM pipeline.
func (s *Service) PPM() *Pipeline[domain.PPMRecord] { return s.ppm }

// OCM returns the OCM pipeline.
func (s *Service) OCM() *Pipeline[domain.OCMRecord] { return s.ocm }

// Training returns the training pipeline.
func (s *Service) Training() *Pipeline[domain.TrainingRecord] { return s.training }

// Import runs the upload through the pipeline for kind.
func (s *Service) Import(ctx context.Context, kind domain.RecordKind, upload Upload) (Summary, error) {
	switch kind {
	case domain.KindPPM:
		return s.ppm.Import(ctx, upload)
	case domain.KindOCM:
		return s.ocm.Import(ctx, upload)
	case domain.KindTraining:
		return s.training.Import(ctx, upload)
	default:
		return Summary{Kind: kind, FileName: upload.FileName}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
}

// Records returns the stored collection for kind as a JSON-encodable slice.
func (s *Service) Records(ctx context.Context, kind domain.RecordKind) (any, error) {
	switch kind {
	case domain.KindPPM:
		return s.ppm.Records(ctx)
	case domain.KindOCM:
		return s.ocm.Records(ctx)
	case domain.KindTraining:
		return s.training.Records(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
}

// Logs lists recorded ingestion diagnostics for kind, newest first.
func (s *Service) Logs(ctx context.Context, kind domain.RecordKind, fileName string, limit, offset int) ([]domain.IngestionLogEntry, error) {
	if s.logRepo == nil {
		return []domain.IngestionLogEntry{}, nil
	}
	return s.logRepo.List(ctx, kind, fileName, limit, offset)
}
