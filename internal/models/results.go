package models

import (
	"time"
)

type Step string

const (
	StepIdle         Step = "idle"
	StepInitiated    Step = "initiated"
	StepStarted      Step = "started"
	StepFiltering    Step = "filtering"
	StepDeepAnalysis Step = "deep_analysis"
	StepCompleted    Step = "completed"
	StepFailed       Step = "failed"
)

// Match is one shared substring: Length bytes starting at PosA in the first
// document and at PosB in the second.
type Match struct {
	PosA   int    `bson:"posA" json:"pos_a"`
	PosB   int    `bson:"posB" json:"pos_b"`
	Length int    `bson:"length" json:"length"`
	Text   string `bson:"text" json:"text"`
}

// Report is the outcome of comparing two documents
type Report struct {
	SimilarityPercentage float64 `bson:"similarityPercentage" json:"similarity_percentage"`
	Matches              []Match `bson:"matches" json:"matches"`
	TotalMatchedChars    int     `bson:"totalMatchedChars" json:"total_matched_chars"`
	LongestMatch         int     `bson:"longestMatch" json:"longest_match"`
}

// PairResult stores the report of one compared pair inside a collection run
type PairResult struct {
	RunID                 string    `bson:"runId" json:"runId"`
	CollectionID          string    `bson:"collectionId" json:"collectionId"`
	DocumentA             string    `bson:"documentA" json:"documentA"`
	DocumentB             string    `bson:"documentB" json:"documentB"`
	MinMatchLength        int       `bson:"minMatchLength" json:"minMatchLength"`
	FingerprintSimilarity float64   `bson:"fingerprintSimilarity" json:"fingerprintSimilarity"`
	Risk                  string    `bson:"risk" json:"risk"` // clean, suspicious, highly suspicious, near copy
	Report                Report    `bson:"report" json:"report"`
	CreatedAt             time.Time `bson:"createdAt" json:"createdAt"`
}

// CollectionReport summarises a comparison run over a whole collection
type CollectionReport struct {
	RunID          string    `bson:"runId" json:"runId"`
	CollectionID   string    `bson:"collectionId" json:"collectionId"`
	Status         string    `bson:"status" json:"status"` // pending, completed, failed
	Error          string    `bson:"error,omitempty" json:"error,omitempty"`
	Documents      int       `bson:"documents" json:"documents"`
	CandidatePairs int       `bson:"candidatePairs" json:"candidatePairs"`
	PairsAnalyzed  int       `bson:"pairsAnalyzed" json:"pairsAnalyzed"`
	FlaggedPairs   int       `bson:"flaggedPairs" json:"flaggedPairs"`
	MaxSimilarity  float64   `bson:"maxSimilarity" json:"maxSimilarity"`
	Risk           string    `bson:"risk" json:"risk"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// AnalyzeRequest represents a request to compare two texts directly
type AnalyzeRequest struct {
	TextA          string `json:"textA"`
	TextB          string `json:"textB"`
	MinMatchLength *int   `json:"minMatchLength"`
	Normalize      *bool  `json:"normalize"`
}

// AnalyzeResponse represents the response from the analyze endpoint
type AnalyzeResponse struct {
	Report
	Risk string `json:"risk"`
}

// SearchRequest represents a request to look a pattern up in a text
type SearchRequest struct {
	Text    string `json:"text"`
	Pattern string `json:"pattern" binding:"required"`
}

// SearchResponse represents the response from the search endpoint
type SearchResponse struct {
	Found   bool  `json:"found"`
	Offsets []int `json:"offsets"`
}

// CompareRequest represents a request to compare every document of a collection
type CompareRequest struct {
	CollectionID   string `json:"collectionId" binding:"required"`
	MinMatchLength *int   `json:"minMatchLength"`
}

// CompareResponse represents the response from the compare endpoint
type CompareResponse struct {
	Step         Step   `json:"step"`
	CollectionID string `json:"collectionId"`
	RunID        string `json:"runId"`
}

// StatusResponse represents the response from the status endpoint
type StatusResponse struct {
	CollectionID string `json:"collectionId"`
	Step         Step   `json:"step"`
}

// CollectionReportResponse bundles a run summary with its flagged pairs
type CollectionReportResponse struct {
	Report *CollectionReport `json:"report"`
	Pairs  []*PairResult     `json:"pairs"`
}
