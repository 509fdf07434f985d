package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/RishiKendai/verbatim/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const documentsCollection = "documents"

type DocumentsRepository struct {
	mongoRepo *MongoRepository
}

func NewDocumentsRepository(mongoRepo *MongoRepository) *DocumentsRepository {
	return &DocumentsRepository{
		mongoRepo: mongoRepo,
	}
}

// EnsureIndexes makes (collectionId, documentId) unique
func (r *DocumentsRepository) EnsureIndexes(ctx context.Context) error {
	err := r.mongoRepo.CreateIndexes(ctx, documentsCollection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "collectionId", Value: 1}, {Key: "documentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create document indexes: %w", err)
	}
	return nil
}

// UpsertDocument stores a document, replacing an earlier version with the same IDs.
// Replays of the same stream message are therefore harmless.
func (r *DocumentsRepository) UpsertDocument(ctx context.Context, document *models.Document) error {
	document.CreatedAt = time.Now()
	filter := bson.M{"collectionId": document.CollectionID, "documentId": document.DocumentID}

	err := r.mongoRepo.ReplaceOne(ctx, documentsCollection, filter, document, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// GetDocumentsByCollectionID returns the documents of a collection ordered by documentId
func (r *DocumentsRepository) GetDocumentsByCollectionID(ctx context.Context, collectionID string) ([]*models.Document, error) {
	filter := bson.M{"collectionId": collectionID}
	opts := options.Find().SetSort(bson.D{{Key: "documentId", Value: 1}})

	cursor, err := r.mongoRepo.FindMany(ctx, documentsCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var documents []*models.Document
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	return documents, nil
}

func (r *DocumentsRepository) CountDocumentsByCollectionID(ctx context.Context, collectionID string) (int64, error) {
	filter := bson.M{"collectionId": collectionID}

	count, err := r.mongoRepo.CountDocuments(ctx, documentsCollection, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}
