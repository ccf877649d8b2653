package tournament

import (
	"context"
	"math"
	"strings"

	"github.com/notevault/retrieval/internal/fulltext"
)

// KeywordDensityStrategy is the default comparison: for each query term it
// scores (1 - firstOccurrence/contentLength) + min(occurrences/3, 1),
// averages over the query terms, and returns the difference between the two
// documents' densities.
type KeywordDensityStrategy struct{}

// Name implements Strategy.
func (KeywordDensityStrategy) Name() string { return "keyword-density" }

// Compare implements Strategy.
func (KeywordDensityStrategy) Compare(_ context.Context, query string, a, b *Document) (float64, error) {
	return keywordDensity(query, a) - keywordDensity(query, b), nil
}

func keywordDensity(query string, doc *Document) float64 {
	terms := fulltext.Tokenize(query)
	if len(terms) == 0 || doc.Content == "" {
		return 0
	}

	content := strings.ToLower(doc.Content)
	length := float64(len(content))

	total := 0.0
	for _, term := range terms {
		first := strings.Index(content, term)
		if first < 0 {
			continue
		}
		positionScore := 1 - float64(first)/length
		frequencyScore := math.Min(float64(strings.Count(content, term))/3, 1)
		total += positionScore + frequencyScore
	}
	return total / float64(len(terms))
}

// VectorSimilarityStrategy compares documents by cosine similarity between
// each document's stored embedding and the query embedding, both carried in
// document metadata ("embedding" and "query_embedding"). Documents without
// usable embeddings fall back to the original-score comparison.
type VectorSimilarityStrategy struct{}

// Name implements Strategy.
func (VectorSimilarityStrategy) Name() string { return "vector-similarity" }

// Compare implements Strategy.
func (VectorSimilarityStrategy) Compare(_ context.Context, _ string, a, b *Document) (float64, error) {
	queryEmb := embeddingFromMetadata(a.Metadata, "query_embedding")
	if queryEmb == nil {
		queryEmb = embeddingFromMetadata(b.Metadata, "query_embedding")
	}
	embA := embeddingFromMetadata(a.Metadata, "embedding")
	embB := embeddingFromMetadata(b.Metadata, "embedding")

	if queryEmb == nil || embA == nil || embB == nil {
		return a.Score - b.Score, nil
	}
	return cosine(queryEmb, embA) - cosine(queryEmb, embB), nil
}

// embeddingFromMetadata pulls a float vector out of the opaque metadata bag.
// JSON round-trips turn vectors into []any of float64, so both in-memory and
// deserialized shapes are accepted.
func embeddingFromMetadata(metadata map[string]any, key string) []float64 {
	if metadata == nil {
		return nil
	}
	switch v := metadata[key].(type) {
	case []float64:
		return v
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out
	case []any:
		out := make([]float64, 0, len(v))
		for _, e := range v {
			f, ok := e.(float64)
			if !ok {
				return nil
			}
			out = append(out, f)
		}
		return out
	default:
		return nil
	}
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Verify interface implementations at compile time.
var (
	_ Strategy = KeywordDensityStrategy{}
	_ Strategy = VectorSimilarityStrategy{}
	_ Strategy = StrategyFunc(nil)
)
