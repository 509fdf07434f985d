package models

import (
	"time"
)

// Submission represents a document submission read from the Redis stream
type Submission struct {
	DocumentID   string `json:"documentId"`
	CollectionID string `json:"collectionId"`
	Title        string `json:"title"`
	Content      string `json:"content"`
}

// Document is a stored document, ready to be compared with the rest of its collection
type Document struct {
	DocumentID   string    `bson:"documentId" json:"documentId"`
	CollectionID string    `bson:"collectionId" json:"collectionId"`
	Title        string    `bson:"title" json:"title"`
	Content      string    `bson:"content" json:"content"`
	Normalized   bool      `bson:"normalized" json:"normalized"`
	Length       int       `bson:"length" json:"length"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
