package hybrid

import (
	"context"
	"math"
)

// BruteForceProvider is an in-process SemanticProvider computing exact cosine
// similarity over the full batch. It exists for the CLI and for hosts without
// an external similarity service; production embedders are expected to inject
// their own provider.
type BruteForceProvider struct{}

// BatchCosineSimilarity implements SemanticProvider.
// Dimension mismatches and zero vectors score 0 rather than erroring.
func (BruteForceProvider) BatchCosineSimilarity(_ context.Context, query []float32, embeddings [][]float32) ([]float64, error) {
	scores := make([]float64, len(embeddings))
	for i, emb := range embeddings {
		scores[i] = cosine(query, emb)
	}
	return scores, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Verify interface implementation at compile time.
var _ SemanticProvider = BruteForceProvider{}
