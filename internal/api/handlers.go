package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/RishiKendai/winnow/internal/models"
	"github.com/RishiKendai/winnow/internal/plagiarism"
	"github.com/RishiKendai/winnow/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Comparer runs and stores comparison requests.
type Comparer interface {
	ResolveParams(req *models.CompareRequest) (plagiarism.Params, error)
	Run(ctx context.Context, req *models.CompareRequest) (*models.ComparisonReport, error)
	Save(ctx context.Context, report *models.ComparisonReport) error
}

type ReportReader interface {
	GetReportByID(ctx context.Context, id string) (*models.ComparisonReport, error)
	ListReportsByMainName(ctx context.Context, mainName string, limit int64) ([]*models.ComparisonReport, error)
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type JobQueue interface {
	Enqueue(ctx context.Context, job *models.ComparisonJob) (string, error)
}

type StatusStore interface {
	UpdateStatus(ctx context.Context, jobID string, step models.Step) error
	GetStatus(ctx context.Context, jobID string) (models.Step, error)
}

// Dependencies are the collaborators of the HTTP handlers. Reports, Queue
// and Status may be nil; the endpoints needing them then answer 503.
type Dependencies struct {
	Comparer Comparer
	Reports  ReportReader
	Queue    JobQueue
	Status   StatusStore
}

// Handler holds dependencies for handlers
type Handler struct {
	deps           Dependencies
	computeSem     chan struct{} // Semaphore for bounded concurrency
	computeTimeout time.Duration
}

// NewHandler creates a new handler allowing maxConcurrent synchronous
// comparisons at a time.
func NewHandler(deps Dependencies, maxConcurrent int, computeTimeout time.Duration) *Handler {
	return &Handler{
		deps:           deps,
		computeSem:     make(chan struct{}, maxConcurrent),
		computeTimeout: computeTimeout,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// Compare runs a comparison synchronously and returns its report.
func (h *Handler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	ctx := c.Request.Context()

	// Acquire semaphore (bounded concurrency)
	select {
	case h.computeSem <- struct{}{}:
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}
	defer func() { <-h.computeSem }()

	computeCtx, cancel := context.WithTimeout(ctx, h.computeTimeout)
	defer cancel()

	report, err := h.deps.Comparer.Run(computeCtx, &req)
	if err != nil {
		respondComparisonError(c, err)
		return
	}

	if err := h.deps.Comparer.Save(computeCtx, report); err != nil {
		log.Warn().Err(err).Str("reportId", report.ID).Msg("Failed to store comparison report")
	}

	c.JSON(http.StatusOK, report)
}

// SubmitJob validates a comparison request and queues it for the stream
// consumer.
func (h *Handler) SubmitJob(c *gin.Context) {
	if h.deps.Queue == nil {
		respondUnavailable(c, "Job queue is not configured")
		return
	}

	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	// Reject bad thresholds now rather than in the consumer.
	if _, err := h.deps.Comparer.ResolveParams(&req); err != nil {
		respondComparisonError(c, err)
		return
	}
	if len(req.Others) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "at least one document to compare against is required",
			Code:  "INVALID_DOCUMENTS",
		})
		return
	}

	ctx := c.Request.Context()
	job := &models.ComparisonJob{
		ID:      uuid.New().String(),
		Request: req,
	}

	if h.deps.Status != nil {
		if err := h.deps.Status.UpdateStatus(ctx, job.ID, models.StepQueued); err != nil {
			log.Warn().Err(err).Str("jobId", job.ID).Msg("Failed to update queued status")
		}
	}

	if _, err := h.deps.Queue.Enqueue(ctx, job); err != nil {
		log.Error().Err(err).Str("jobId", job.ID).Msg("Failed to enqueue comparison job")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to queue comparison",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusAccepted, models.JobResponse{
		JobID: job.ID,
		Step:  models.StepQueued,
	})
}

func (h *Handler) JobStatus(c *gin.Context) {
	if h.deps.Status == nil {
		respondUnavailable(c, "Job status is not configured")
		return
	}

	jobID := c.Param("id")
	step, err := h.deps.Status.GetStatus(c.Request.Context(), jobID)
	if errors.Is(err, plagiarism.ErrStatusNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No job with this id",
			Code:  "JOB_NOT_FOUND",
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("jobId", jobID).Msg("Failed to read job status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to read job status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, models.JobResponse{
		JobID: jobID,
		Step:  step,
	})
}

func (h *Handler) GetReport(c *gin.Context) {
	if h.deps.Reports == nil {
		respondUnavailable(c, "Report storage is not configured")
		return
	}

	id := c.Param("id")
	report, err := h.deps.Reports.GetReportByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No report with this id",
			Code:  "REPORT_NOT_FOUND",
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("reportId", id).Msg("Failed to load report")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load report",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListReports returns the newest reports for the main document named by
// the main query parameter.
func (h *Handler) ListReports(c *gin.Context) {
	if h.deps.Reports == nil {
		respondUnavailable(c, "Report storage is not configured")
		return
	}

	mainName := c.Query("main")
	if mainName == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "main query parameter is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	limit := int64(defaultListLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "limit must be a positive integer",
				Code:  "INVALID_REQUEST",
			})
			return
		}
		limit = min(n, maxListLimit)
	}

	reports, err := h.deps.Reports.ListReportsByMainName(c.Request.Context(), mainName, limit)
	if err != nil {
		log.Error().Err(err).Str("main", mainName).Msg("Failed to list reports")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to list reports",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	if reports == nil {
		reports = []*models.ComparisonReport{}
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
	})
}

func respondComparisonError(c *gin.Context, err error) {
	switch {
	case plagiarism.IsValidationError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_PARAMETERS",
		})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{
			Error: "Comparison timed out",
			Code:  "COMPUTATION_TIMEOUT",
		})
	default:
		log.Error().Err(err).Msg("Comparison failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Comparison failed",
			Code:  "INTERNAL_ERROR",
		})
	}
}

func respondUnavailable(c *gin.Context, msg string) {
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error: msg,
		Code:  "SERVICE_UNAVAILABLE",
	})
}
