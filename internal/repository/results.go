package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/verbatim/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	pairResultsCollection = "pair_results"
	reportsCollection     = "collection_reports"
)

type ResultsRepository struct {
	mongoRepo *MongoRepository
}

func NewResultsRepository(mongoRepo *MongoRepository) *ResultsRepository {
	return &ResultsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *ResultsRepository) InsertPairResults(ctx context.Context, results []*models.PairResult) error {
	if len(results) == 0 {
		return nil
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(results))
	for _, result := range results {
		result.CreatedAt = now
		docs = append(docs, result)
	}

	if err := r.mongoRepo.InsertMany(ctx, pairResultsCollection, docs); err != nil {
		return fmt.Errorf("failed to insert pair results: %w", err)
	}

	return nil
}

func (r *ResultsRepository) InsertCollectionReport(ctx context.Context, report *models.CollectionReport) error {
	report.CreatedAt = time.Now()

	err := r.mongoRepo.InsertOne(ctx, reportsCollection, report)
	if err != nil {
		return fmt.Errorf("failed to insert collection report: %w", err)
	}

	return nil
}

// GetLatestReportByCollectionID returns the newest report, or nil when there is none
func (r *ResultsRepository) GetLatestReportByCollectionID(ctx context.Context, collectionID string) (*models.CollectionReport, error) {
	filter := bson.M{"collectionId": collectionID}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var report models.CollectionReport
	err := r.mongoRepo.FindOne(ctx, reportsCollection, filter, opts).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	return &report, nil
}

// GetPairResultsByRunID returns the flagged pairs of a run, most similar first
func (r *ResultsRepository) GetPairResultsByRunID(ctx context.Context, runID string) ([]*models.PairResult, error) {
	filter := bson.M{"runId": runID}
	opts := options.Find().SetSort(bson.D{{Key: "report.similarityPercentage", Value: -1}})

	cursor, err := r.mongoRepo.FindMany(ctx, pairResultsCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pair results: %w", err)
	}
	defer cursor.Close(ctx)

	results := make([]*models.PairResult, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode pair results: %w", err)
	}

	return results, nil
}
