package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RishiKendai/verbatim/internal/config"
	"github.com/RishiKendai/verbatim/internal/metrics"
	"github.com/RishiKendai/verbatim/internal/models"
	"github.com/RishiKendai/verbatim/internal/plagiarism"
	"github.com/RishiKendai/verbatim/internal/preprocess"
	"github.com/RishiKendai/verbatim/internal/suffixarray"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DocumentCounter counts the stored documents of a collection
type DocumentCounter interface {
	CountDocumentsByCollectionID(ctx context.Context, collectionID string) (int64, error)
}

// ReportReader reads finished collection runs
type ReportReader interface {
	GetLatestReportByCollectionID(ctx context.Context, collectionID string) (*models.CollectionReport, error)
	GetPairResultsByRunID(ctx context.Context, runID string) ([]*models.PairResult, error)
}

// StatusStore publishes and reads run progress
type StatusStore interface {
	SetStep(ctx context.Context, collectionID string, step models.Step) error
	GetStep(ctx context.Context, collectionID string) (models.Step, error)
}

// CollectionComparer runs a comparison over a whole collection
type CollectionComparer interface {
	CompareCollection(ctx context.Context, collectionID, runID string, minMatchLength int) (*models.CollectionReport, error)
}

// Handler holds dependencies for handlers
type Handler struct {
	cfg            *config.Config
	documents      DocumentCounter
	reports        ReportReader
	status         StatusStore
	comparer       CollectionComparer
	computeSem     chan struct{} // Semaphore for bounded concurrency
	computeTimeout time.Duration
}

// NewHandler creates a new handler
func NewHandler(
	cfg *config.Config,
	documents DocumentCounter,
	reports ReportReader,
	status StatusStore,
	comparer CollectionComparer,
) *Handler {
	return &Handler{
		cfg:            cfg,
		documents:      documents,
		reports:        reports,
		status:         status,
		comparer:       comparer,
		computeSem:     make(chan struct{}, cfg.MaxConcurrentCompute),
		computeTimeout: cfg.ComputationTimeout,
	}
}

// bodyOverhead covers JSON keys, options and punctuation around the texts
const bodyOverhead = 4 << 10

// jsonEscapeFactor is the worst-case growth of a byte under JSON escaping (\u00XX)
const jsonEscapeFactor = 6

// bindBounded decodes the JSON body into req, reading at most what texts
// documents of MaxDocumentBytes could need. It writes the error response
// and returns false on failure.
func (h *Handler) bindBounded(c *gin.Context, req interface{}, texts int) bool {
	limit := int64(texts)*int64(h.cfg.MaxDocumentBytes)*jsonEscapeFactor + bodyOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: fmt.Sprintf("Documents are limited to %d bytes", h.cfg.MaxDocumentBytes),
			Code:  "DOCUMENT_TOO_LARGE",
		})
		return false
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "Invalid request body",
		Code:  "INVALID_REQUEST",
	})
	return false
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// Analyze compares two texts synchronously and returns the full report
func (h *Handler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if !h.bindBounded(c, &req, 2) {
		return
	}

	if len(req.TextA) > h.cfg.MaxDocumentBytes || len(req.TextB) > h.cfg.MaxDocumentBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: fmt.Sprintf("Documents are limited to %d bytes", h.cfg.MaxDocumentBytes),
			Code:  "DOCUMENT_TOO_LARGE",
		})
		return
	}

	minMatchLength := h.cfg.MinMatchLength
	if req.MinMatchLength != nil {
		minMatchLength = *req.MinMatchLength
	}

	textA, textB := req.TextA, req.TextB
	normalize := h.cfg.NormalizeText
	if req.Normalize != nil {
		normalize = *req.Normalize
	}
	if normalize {
		textA, textB = preprocess.Normalize(textA), preprocess.Normalize(textB)
	}

	start := time.Now()
	report := plagiarism.AnalyzeStrings(textA, textB, minMatchLength)
	elapsed := time.Since(start)
	metrics.ObserveAnalysis(metrics.SourceAPI, elapsed)

	log.Debug().
		Int("lenA", len(textA)).
		Int("lenB", len(textB)).
		Int("matches", len(report.Matches)).
		Float64("similarity", report.SimilarityPercentage).
		Dur("elapsed", elapsed).
		Msg("Analysis completed")

	c.JSON(http.StatusOK, models.AnalyzeResponse{
		Report: *report,
		Risk:   plagiarism.RiskLevel(report.SimilarityPercentage),
	})
}

// Search reports whether a pattern occurs in a text
func (h *Handler) Search(c *gin.Context) {
	var req models.SearchRequest
	if !h.bindBounded(c, &req, 2) {
		return
	}

	if len(req.Text) > h.cfg.MaxDocumentBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: fmt.Sprintf("Documents are limited to %d bytes", h.cfg.MaxDocumentBytes),
			Code:  "DOCUMENT_TOO_LARGE",
		})
		return
	}

	sa := suffixarray.Construct([]byte(req.Text))
	pattern := []byte(req.Pattern)
	found := sa.Search(pattern)
	offsets := []int{}
	if found {
		offsets = sa.Lookup(pattern)
	}

	c.JSON(http.StatusOK, models.SearchResponse{
		Found:   found,
		Offsets: offsets,
	})
}

func (h *Handler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if !h.bindBounded(c, &req, 0) {
		return
	}

	// Input validation
	if err := validateComparePayload(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_COLLECTION_ID",
		})
		return
	}

	ctx := c.Request.Context()
	count, err := h.documents.CountDocumentsByCollectionID(ctx, req.CollectionID)
	if err != nil {
		log.Error().Err(err).Str("collectionId", req.CollectionID).Msg("Failed to count documents")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to check documents",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	if count == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "No documents found for collectionId",
			Code:  "COLLECTION_NOT_FOUND",
		})
		return
	}

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

	if err := h.status.SetStep(ctx, req.CollectionID, models.StepInitiated); err != nil {
		log.Warn().Err(err).Str("collectionId", req.CollectionID).Msg("Failed to update initiated status")
	}

	minMatchLength := h.cfg.MinMatchLength
	if req.MinMatchLength != nil {
		minMatchLength = *req.MinMatchLength
	}
	runID := uuid.New().String()

	c.JSON(http.StatusAccepted, models.CompareResponse{
		Step:         models.StepInitiated,
		CollectionID: req.CollectionID,
		RunID:        runID,
	})

	go h.processComparison(req.CollectionID, runID, minMatchLength)
}

// processComparison runs a collection comparison in the background
func (h *Handler) processComparison(collectionID, runID string, minMatchLength int) {
	defer func() { <-h.computeSem }() // Release semaphore

	ctx, cancel := context.WithTimeout(context.Background(), h.computeTimeout)
	defer cancel()

	_, err := h.comparer.CompareCollection(ctx, collectionID, runID, minMatchLength)
	if err != nil {
		metrics.ComparisonCount.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("collectionId", collectionID).Str("runId", runID).Msg("Comparison failed")
		return
	}

	metrics.ComparisonCount.WithLabelValues("completed").Inc()
	log.Debug().Str("collectionId", collectionID).Str("runId", runID).Msg("Comparison completed successfully")
}

func (h *Handler) Status(c *gin.Context) {
	collectionID := c.Param("collectionId")

	step, err := h.status.GetStep(c.Request.Context(), collectionID)
	if err != nil {
		log.Error().Err(err).Str("collectionId", collectionID).Msg("Failed to read status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to read status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		CollectionID: collectionID,
		Step:         step,
	})
}

func (h *Handler) Report(c *gin.Context) {
	collectionID := c.Param("collectionId")
	ctx := c.Request.Context()

	report, err := h.reports.GetLatestReportByCollectionID(ctx, collectionID)
	if err != nil {
		log.Error().Err(err).Str("collectionId", collectionID).Msg("Failed to get latest report")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load report",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No report found for collectionId",
			Code:  "NOT_FOUND",
		})
		return
	}

	pairs, err := h.reports.GetPairResultsByRunID(ctx, report.RunID)
	if err != nil {
		log.Error().Err(err).Str("runId", report.RunID).Msg("Failed to get pair results")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load pair results",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, models.CollectionReportResponse{
		Report: report,
		Pairs:  pairs,
	})
}

var errCollectionIDRequired = errors.New("collectionId is required")

func validateComparePayload(req models.CompareRequest) error {
	if strings.TrimSpace(req.CollectionID) == "" {
		return errCollectionIDRequired
	}
	return nil
}
