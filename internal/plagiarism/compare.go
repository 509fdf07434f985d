package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/verbatim/internal/metrics"
	"github.com/RishiKendai/verbatim/internal/models"
	"github.com/rs/zerolog/log"
)

var ErrNoDocuments = errors.New("no documents found for collection")

// DocumentSource loads the documents of a collection
type DocumentSource interface {
	GetDocumentsByCollectionID(ctx context.Context, collectionID string) ([]*models.Document, error)
}

// ResultSink stores the outcome of a collection run
type ResultSink interface {
	InsertPairResults(ctx context.Context, results []*models.PairResult) error
	InsertCollectionReport(ctx context.Context, report *models.CollectionReport) error
}

// StepPublisher publishes run progress
type StepPublisher interface {
	SetStep(ctx context.Context, collectionID string, step models.Step) error
}

// PairSimilarity is the report of one analyzed pair
type PairSimilarity struct {
	Index  int
	Pair   Pair
	Report *models.Report
	Err    error
}

// ComparisonJob runs Analyze on one pair for the worker pool
type ComparisonJob struct {
	Index          int
	Pair           Pair
	MinMatchLength int
	ResultChan     chan<- PairSimilarity
}

// Execute analyzes the pair and sends exactly one result. ResultChan must have
// room for it.
func (j *ComparisonJob) Execute(ctx context.Context) error {
	result := PairSimilarity{Index: j.Index, Pair: j.Pair}
	if err := ctx.Err(); err != nil {
		result.Err = err
		j.ResultChan <- result
		return err
	}

	start := time.Now()
	result.Report = Analyze(
		[]byte(j.Pair.DocumentA.Content),
		[]byte(j.Pair.DocumentB.Content),
		j.MinMatchLength,
	)
	metrics.ObserveAnalysis(metrics.SourceBatch, time.Since(start))

	j.ResultChan <- result
	return nil
}

// Comparer compares every document of a collection with every other one
type Comparer struct {
	documents   DocumentSource
	results     ResultSink
	status      StepPublisher
	workerPool  *WorkerPool
	significant float64
}

// NewComparer creates a comparer. Pairs at or above significant percent
// similarity are stored and flagged.
func NewComparer(
	documents DocumentSource,
	results ResultSink,
	status StepPublisher,
	workerPool *WorkerPool,
	significant float64,
) *Comparer {
	return &Comparer{
		documents:   documents,
		results:     results,
		status:      status,
		workerPool:  workerPool,
		significant: significant,
	}
}

func (c *Comparer) publish(ctx context.Context, collectionID string, step models.Step) {
	if err := c.status.SetStep(ctx, collectionID, step); err != nil {
		log.Warn().Err(err).Str("collectionId", collectionID).Str("step", string(step)).Msg("Failed to publish step")
	}
}

// CompareCollection runs a full comparison of the collection and stores a
// CollectionReport. A failed run still stores a report with status "failed".
func (c *Comparer) CompareCollection(
	ctx context.Context,
	collectionID string,
	runID string,
	minMatchLength int,
) (*models.CollectionReport, error) {
	if minMatchLength < 1 {
		minMatchLength = 1
	}
	report := &models.CollectionReport{
		RunID:        runID,
		CollectionID: collectionID,
		Status:       "pending",
		Risk:         RiskClean,
	}

	c.publish(ctx, collectionID, models.StepStarted)

	documents, err := c.documents.GetDocumentsByCollectionID(ctx, collectionID)
	if err != nil {
		log.Error().Err(err).Str("collectionId", collectionID).Msg("Failed to load documents")
		return c.fail(ctx, report, fmt.Errorf("failed to load documents: %w", err))
	}
	if len(documents) == 0 {
		return c.fail(ctx, report, fmt.Errorf("%w: %s", ErrNoDocuments, collectionID))
	}
	report.Documents = len(documents)

	c.publish(ctx, collectionID, models.StepFiltering)
	fingerprints := DocumentFingerprints(documents, minMatchLength)
	pairs := GetWorthyPairs(BuildGII(fingerprints), documents, fingerprints)
	report.CandidatePairs = len(pairs)

	log.Info().
		Str("collectionId", collectionID).
		Int("documents", len(documents)).
		Int("candidatePairs", len(pairs)).
		Msg("Candidate pairs selected")

	c.publish(ctx, collectionID, models.StepDeepAnalysis)
	similarities, err := c.analyzePairs(ctx, pairs, minMatchLength)
	if err != nil {
		return c.fail(ctx, report, err)
	}
	report.PairsAnalyzed = len(similarities)

	flagged := make([]*models.PairResult, 0)
	flaggedScores := make([]float64, 0)
	for _, ps := range similarities {
		sim := ps.Report.SimilarityPercentage
		report.MaxSimilarity = max(report.MaxSimilarity, sim)
		if sim < c.significant {
			continue
		}
		flagged = append(flagged, &models.PairResult{
			RunID:                 runID,
			CollectionID:          collectionID,
			DocumentA:             ps.Pair.DocumentA.DocumentID,
			DocumentB:             ps.Pair.DocumentB.DocumentID,
			MinMatchLength:        minMatchLength,
			FingerprintSimilarity: ps.Pair.Fingerprint,
			Risk:                  RiskLevel(sim),
			Report:                *ps.Report,
		})
		flaggedScores = append(flaggedScores, sim)
	}
	report.FlaggedPairs = len(flagged)
	report.Risk = RiskLevel(CollectionScore(flaggedScores))

	if len(flagged) > 0 {
		if err := c.results.InsertPairResults(ctx, flagged); err != nil {
			return c.fail(ctx, report, fmt.Errorf("failed to insert pair results: %w", err))
		}
	}

	report.Status = "completed"
	if err := c.results.InsertCollectionReport(ctx, report); err != nil {
		return c.fail(ctx, report, fmt.Errorf("failed to insert collection report: %w", err))
	}
	c.publish(ctx, collectionID, models.StepCompleted)

	log.Info().
		Str("collectionId", collectionID).
		Str("runId", runID).
		Int("analyzed", report.PairsAnalyzed).
		Int("flagged", report.FlaggedPairs).
		Str("risk", report.Risk).
		Msg("Comparison completed successfully")

	return report, nil
}

// analyzePairs fans the pairs out to the worker pool and returns their
// results in pair order.
func (c *Comparer) analyzePairs(ctx context.Context, pairs []Pair, minMatchLength int) ([]PairSimilarity, error) {
	resultChan := make(chan PairSimilarity, len(pairs))

	submitted := 0
	for i, pair := range pairs {
		job := &ComparisonJob{
			Index:          i,
			Pair:           pair,
			MinMatchLength: minMatchLength,
			ResultChan:     resultChan,
		}
		if err := c.workerPool.Submit(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to submit job: %w", err)
		}
		submitted++
	}

	results := make([]PairSimilarity, len(pairs))
	for received := 0; received < submitted; received++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.workerPool.Done():
			return nil, fmt.Errorf("worker pool stopped: %w", context.Canceled)
		case result := <-resultChan:
			if result.Err != nil {
				return nil, fmt.Errorf("failed to analyze pair %s/%s: %w",
					result.Pair.DocumentA.DocumentID, result.Pair.DocumentB.DocumentID, result.Err)
			}
			results[result.Index] = result
		}
	}
	return results, nil
}

// fail stores the report as failed. The write outlives ctx so that timed-out
// runs are still recorded.
func (c *Comparer) fail(ctx context.Context, report *models.CollectionReport, cause error) (*models.CollectionReport, error) {
	ctx = context.WithoutCancel(ctx)
	report.Status = "failed"
	report.Error = cause.Error()
	if err := c.results.InsertCollectionReport(ctx, report); err != nil {
		log.Error().Err(err).Str("collectionId", report.CollectionID).Msg("Failed to store failed report")
	}
	c.publish(ctx, report.CollectionID, models.StepFailed)
	return report, cause
}
