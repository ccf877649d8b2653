package hybrid

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notevault/retrieval/internal/fulltext"
)

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	cfg := fulltext.DefaultConfig("hybrid-test")
	cfg.AutoSave = false
	return NewService(fulltext.NewIndex(cfg), opts...)
}

// failingProvider simulates an unavailable similarity backend.
type failingProvider struct{}

func (failingProvider) BatchCosineSimilarity(context.Context, []float32, [][]float32) ([]float64, error) {
	return nil, errors.New("backend unavailable")
}

func TestSearch_KeywordOnly(t *testing.T) {
	s := newTestService(t)
	s.AddDocument(Document{ID: "doc1", Content: "garbage collector tuning"})
	s.AddDocument(Document{ID: "doc2", Content: "unrelated topic entirely"})

	results := s.Search(context.Background(), "garbage collector", nil, Options{})

	require.Len(t, results, 1)
	assert.Equal(t, "doc1", results[0].ID)
	// Top keyword hit normalizes to 1.0, weighted by the default 0.3.
	assert.InDelta(t, 0.3, results[0].Score, 1e-9)
	assert.InDelta(t, 1.0, results[0].KeywordScore, 1e-9)
	assert.Zero(t, results[0].SemanticScore)
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := newTestService(t)
	s.AddDocument(Document{ID: "doc1", Content: "content"})

	assert.Empty(t, s.Search(context.Background(), "", nil, Options{}))
	assert.Empty(t, s.Search(context.Background(), "   ", nil, Options{}))
}

func TestSearch_FusesBothChannels(t *testing.T) {
	s := newTestService(t, WithSemanticProvider(BruteForceProvider{}))

	// One document matches only the keyword channel, the other only the
	// semantic channel.
	s.AddDocument(Document{ID: "kw", Content: "alpha keyword match"})
	s.AddDocument(Document{ID: "sem", Content: "unrelated topic", Embedding: []float32{1, 0}})

	results := s.Search(context.Background(), "alpha", []float32{1, 0}, Options{})

	require.Len(t, results, 2)
	// Semantic similarity 1.0 * 0.7 beats keyword 1.0 * 0.3.
	assert.Equal(t, "sem", results[0].ID)
	assert.InDelta(t, 0.7, results[0].Score, 1e-9)
	assert.Equal(t, "kw", results[1].ID)
	assert.InDelta(t, 0.3, results[1].Score, 1e-9)
}

func TestSearch_CustomWeights(t *testing.T) {
	s := newTestService(t, WithSemanticProvider(BruteForceProvider{}))
	s.AddDocument(Document{ID: "kw", Content: "alpha keyword match"})
	s.AddDocument(Document{ID: "sem", Content: "unrelated topic", Embedding: []float32{1, 0}})

	results := s.Search(context.Background(), "alpha", []float32{1, 0}, Options{
		KeywordWeight:  0.8,
		SemanticWeight: 0.2,
	})

	require.Len(t, results, 2)
	assert.Equal(t, "kw", results[0].ID)
	assert.InDelta(t, 0.8, results[0].Score, 1e-9)
}

func TestSearch_ThresholdFilters(t *testing.T) {
	s := newTestService(t, WithSemanticProvider(BruteForceProvider{}))
	s.AddDocument(Document{ID: "kw", Content: "alpha keyword match"})
	s.AddDocument(Document{ID: "sem", Content: "unrelated topic", Embedding: []float32{1, 0}})

	results := s.Search(context.Background(), "alpha", []float32{1, 0}, Options{Threshold: 0.5})

	require.Len(t, results, 1)
	assert.Equal(t, "sem", results[0].ID)
}

func TestSearch_NegativeSimilarityExcluded(t *testing.T) {
	s := newTestService(t, WithSemanticProvider(BruteForceProvider{}))
	s.AddDocument(Document{ID: "opposite", Content: "unrelated topic", Embedding: []float32{-1, 0}})

	results := s.Search(context.Background(), "anything", []float32{1, 0}, Options{})
	assert.Empty(t, results)
}

func TestSearch_ProviderFailureDegrades(t *testing.T) {
	s := newTestService(t, WithSemanticProvider(failingProvider{}))
	s.AddDocument(Document{ID: "doc1", Content: "alpha content", Embedding: []float32{1, 0}})

	// The keyword channel still answers when the provider fails.
	results := s.Search(context.Background(), "alpha", []float32{1, 0}, Options{})

	require.Len(t, results, 1)
	assert.Equal(t, "doc1", results[0].ID)
	assert.Zero(t, results[0].SemanticScore)
}

func TestSearch_FinalTopK(t *testing.T) {
	s := newTestService(t)
	for i := 0; i < 10; i++ {
		s.AddDocument(Document{ID: fmt.Sprintf("doc%d", i), Content: "shared term content"})
	}

	results := s.Search(context.Background(), "shared", nil, Options{FinalTopK: 3})
	assert.Len(t, results, 3)
}

func TestSearch_RerankDefaultBoost(t *testing.T) {
	s := newTestService(t)
	s.AddDocument(Document{ID: "doc1", Content: "the exact phrase appears here"})

	results := s.Search(context.Background(), "exact phrase", nil, Options{Rerank: true})

	require.Len(t, results, 1)
	require.NotNil(t, results[0].RerankScore)
	// Exact substring match plus full coverage boosts above the fused score.
	assert.Greater(t, *results[0].RerankScore, results[0].Score)
}

func TestSearch_RerankFuncOverridesOrder(t *testing.T) {
	s := newTestService(t)
	s.AddDocument(Document{ID: "strong", Content: "target target target filler"})
	s.AddDocument(Document{ID: "weak", Content: "target filler filler filler"})

	invert := func(_ context.Context, _ string, results []*Result) []*Result {
		for _, r := range results {
			score := -r.Score
			r.RerankScore = &score
		}
		return results
	}

	results := s.Search(context.Background(), "target", nil, Options{Rerank: true, RerankFunc: invert})

	require.Len(t, results, 2)
	assert.Equal(t, "weak", results[0].ID)
	assert.Equal(t, "strong", results[1].ID)
}

func TestSearch_CacheInvalidatedByMutation(t *testing.T) {
	s := newTestService(t)
	s.AddDocument(Document{ID: "doc1", Content: "cached term"})

	first := s.Search(context.Background(), "cached", nil, Options{})
	require.Len(t, first, 1)

	// A mutation must invalidate the cached result list.
	s.AddDocument(Document{ID: "doc2", Content: "cached term again"})
	second := s.Search(context.Background(), "cached", nil, Options{})
	assert.Len(t, second, 2)

	s.DeleteDocument("doc1")
	third := s.Search(context.Background(), "cached", nil, Options{})
	require.Len(t, third, 1)
	assert.Equal(t, "doc2", third[0].ID)
}

func TestService_Clear(t *testing.T) {
	s := newTestService(t, WithSemanticProvider(BruteForceProvider{}))
	s.AddDocument(Document{ID: "doc1", Content: "content", Embedding: []float32{1, 0}})

	s.Clear()

	assert.Empty(t, s.Search(context.Background(), "content", []float32{1, 0}, Options{}))
}

func TestService_ReAddWithoutEmbeddingDropsVector(t *testing.T) {
	s := newTestService(t, WithSemanticProvider(BruteForceProvider{}))
	s.AddDocument(Document{ID: "doc1", Content: "semantic content", Embedding: []float32{1, 0}})
	s.AddDocument(Document{ID: "doc1", Content: "keyword only now"})

	results := s.Search(context.Background(), "nomatch", []float32{1, 0}, Options{})
	assert.Empty(t, results)
}
