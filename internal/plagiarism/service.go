package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/winnow/internal/metrics"
	"github.com/RishiKendai/winnow/internal/models"
	"github.com/RishiKendai/winnow/internal/preprocess"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrTooManyDocuments is returned when a request compares against more
// documents than the service allows, or against none.
var ErrTooManyDocuments = errors.New("invalid number of documents")

// IsValidationError reports whether err was caused by the request itself,
// so retrying it cannot succeed.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrMalformedFingerprint) ||
		errors.Is(err, ErrTooManyDocuments) ||
		errors.Is(err, preprocess.ErrUnsupportedLanguage) ||
		errors.Is(err, preprocess.ErrDocumentTooLarge)
}

type ReportStore interface {
	SaveReport(ctx context.Context, report *models.ComparisonReport) error
}

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, jobID string, step models.Step) error
}

// Service runs comparison requests end to end: preprocessing, fingerprinting,
// scoring and optional highlighting.
type Service struct {
	engine       *Engine
	preprocessor *preprocess.Service
	reports      ReportStore
	status       StatusUpdater
	defaults     Params
	maxDocuments int
}

// NewService wires a comparison service. reports and status may be nil
// when no storage is configured.
func NewService(
	engine *Engine,
	preprocessor *preprocess.Service,
	reports ReportStore,
	status StatusUpdater,
	defaults Params,
	maxDocuments int,
) *Service {
	return &Service{
		engine:       engine,
		preprocessor: preprocessor,
		reports:      reports,
		status:       status,
		defaults:     defaults,
		maxDocuments: maxDocuments,
	}
}

// ResolveParams fills unset thresholds of req from the service defaults.
func (s *Service) ResolveParams(req *models.CompareRequest) (Params, error) {
	params := s.defaults
	if req.K != 0 {
		params.K = req.K
	}
	if req.T != 0 {
		params.T = req.T
	}
	if err := params.Validate(); err != nil {
		return Params{}, err
	}
	return params, nil
}

// Run compares the main document of req against each other document.
func (s *Service) Run(ctx context.Context, req *models.CompareRequest) (*models.ComparisonReport, error) {
	start := time.Now()
	report, err := s.run(ctx, req)
	metrics.ComparisonDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ComparisonCount.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.ComparisonCount.WithLabelValues("completed").Inc()
	return report, nil
}

func (s *Service) run(ctx context.Context, req *models.CompareRequest) (*models.ComparisonReport, error) {
	params, err := s.ResolveParams(req)
	if err != nil {
		return nil, err
	}

	if len(req.Others) == 0 {
		return nil, fmt.Errorf("%w: at least one document to compare against is required", ErrTooManyDocuments)
	}
	if s.maxDocuments > 0 && len(req.Others) > s.maxDocuments {
		return nil, fmt.Errorf("%w: %d documents, limit is %d", ErrTooManyDocuments, len(req.Others), s.maxDocuments)
	}

	main, err := s.preprocessor.Prepare(req.Main)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess %s: %w", req.Main.Name, err)
	}
	others := make([]models.Document, len(req.Others))
	for i, in := range req.Others {
		if others[i], err = s.preprocessor.Prepare(in); err != nil {
			return nil, fmt.Errorf("failed to preprocess %s: %w", in.Name, err)
		}
	}

	results, err := s.engine.CompareMany(ctx, main, others, params)
	if err != nil {
		return nil, err
	}

	if req.Highlight {
		for i := range results {
			results[i].MainHighlighted = Highlight(main.Content, results[i].MainMatches, params.K)
			results[i].OtherHighlighted = Highlight(others[i].Content, results[i].OtherMatches, params.K)
		}
	}

	log.Debug().
		Str("main", main.Name).
		Int("others", len(others)).
		Int("k", params.K).
		Int("t", params.T).
		Msg("Comparison completed")

	return &models.ComparisonReport{
		ID:        uuid.New().String(),
		K:         params.K,
		T:         params.T,
		HashSize:  params.HashSize,
		MainName:  main.Name,
		Results:   results,
		CreatedAt: time.Now(),
	}, nil
}

// Save stores report when a report store is configured.
func (s *Service) Save(ctx context.Context, report *models.ComparisonReport) error {
	if s.reports == nil {
		return nil
	}
	if err := s.reports.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// ProcessJob runs a queued comparison, stores its report under the job ID
// and tracks its progress.
func (s *Service) ProcessJob(ctx context.Context, job *models.ComparisonJob) error {
	s.updateStatus(ctx, job.ID, models.StepProcessing)

	report, err := s.Run(ctx, &job.Request)
	if err == nil {
		report.ID = job.ID
		report.JobID = job.ID
		err = s.Save(ctx, report)
	}
	if err != nil {
		metrics.JobCount.WithLabelValues("failed").Inc()
		s.updateStatus(ctx, job.ID, models.StepFailed)
		return err
	}

	metrics.JobCount.WithLabelValues("completed").Inc()
	s.updateStatus(ctx, job.ID, models.StepCompleted)
	return nil
}

func (s *Service) updateStatus(ctx context.Context, jobID string, step models.Step) {
	if s.status == nil {
		return
	}
	if err := s.status.UpdateStatus(ctx, jobID, step); err != nil {
		log.Warn().Err(err).Str("jobId", jobID).Str("step", string(step)).Msg("Failed to update job status")
	}
}
