// Package hybrid merges the keyword channel (fulltext BM25+) with an
// externally supplied semantic channel into one ranked result list.
package hybrid

import "context"

// Document is the caller-facing unit of content for the hybrid service.
// Embedding is optional; documents without one simply never appear in the
// semantic channel. Metadata is opaque and round-tripped untouched.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Embedding []float32
}

// Result is a single fused search result. Ephemeral: produced per query,
// never persisted.
type Result struct {
	ID            string
	Content       string
	Score         float64
	KeywordScore  float64
	SemanticScore float64
	RerankScore   *float64
	Metadata      map[string]any
}

// Options configures one hybrid search call.
type Options struct {
	// KeywordWeight scales the normalized keyword score (default: 0.3).
	KeywordWeight float64

	// SemanticWeight scales the semantic similarity score (default: 0.7).
	SemanticWeight float64

	// InitialTopK is the per-channel candidate count (default: 100).
	InitialTopK int

	// FinalTopK is the returned result count (default: 10).
	FinalTopK int

	// Threshold drops fused results scoring below it (default: 0).
	Threshold float64

	// Rerank enables the rerank pass on the fused list (default: false).
	Rerank bool

	// RerankFunc overrides the default keyword-boost reranker when set.
	RerankFunc RerankFunc
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		KeywordWeight:  0.3,
		SemanticWeight: 0.7,
		InitialTopK:    100,
		FinalTopK:      10,
		Threshold:      0,
	}
}

// RerankFunc rescores a fused result list for a query.
// Implementations return the list to use in place of the input.
type RerankFunc func(ctx context.Context, query string, results []*Result) []*Result

// SemanticProvider is the capability contract for the external
// vector-similarity collaborator. The engine never computes embeddings; it
// only asks the provider to score a query embedding against stored document
// embeddings in one batch.
type SemanticProvider interface {
	// BatchCosineSimilarity returns one similarity per embedding, aligned by
	// index. Scores are expected in [-1, 1].
	BatchCosineSimilarity(ctx context.Context, query []float32, embeddings [][]float32) ([]float64, error)
}
