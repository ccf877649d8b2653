package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notevault/retrieval/internal/hybrid"
)

func TestEngine_IndexAndSearch(t *testing.T) {
	e := New("notes")
	defer e.Close()

	e.AddDocuments([]Document{
		{ID: "go", Content: "goroutine scheduling and channels"},
		{ID: "db", Content: "database indexing strategies"},
		{ID: "zh", Content: "全文搜索引擎设计"},
	})

	hits := e.KeywordSearch("goroutine", 10)
	require.Len(t, hits, 1)
	assert.Equal(t, "go", hits[0].ID)

	hits = e.KeywordSearch("搜索", 10)
	require.Len(t, hits, 1)
	assert.Equal(t, "zh", hits[0].ID)

	results := e.Search(context.Background(), "database indexing", nil, DefaultSearchOptions())
	require.NotEmpty(t, results)
	assert.Equal(t, "db", results[0].ID)
}

func TestEngine_PersistsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()

	e := New("notes", WithDataDir(dir), WithoutAutosave())
	e.AddDocument(Document{ID: "doc1", Content: "durable content"})
	require.NoError(t, e.Close())

	restarted := New("notes", WithDataDir(dir), WithoutAutosave())
	defer restarted.Close()

	assert.Equal(t, 1, restarted.Stats().DocumentCount)
	hits := restarted.KeywordSearch("durable", 10)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc1", hits[0].ID)
}

func TestEngine_SemanticSearch(t *testing.T) {
	e := New("notes", WithSemanticProvider(hybrid.BruteForceProvider{}))
	defer e.Close()

	e.AddDocument(Document{ID: "vec", Content: "unrelated words", Embedding: []float32{0, 1}})
	e.AddDocument(Document{ID: "kw", Content: "matching keyword content"})

	results := e.Search(context.Background(), "keyword", []float32{0, 1}, DefaultSearchOptions())

	require.Len(t, results, 2)
	// Semantic weight 0.7 beats keyword weight 0.3.
	assert.Equal(t, "vec", results[0].ID)
	assert.Equal(t, "kw", results[1].ID)
}

func TestEngine_Rerank(t *testing.T) {
	e := New("notes")
	defer e.Close()

	res := e.Rerank(context.Background(), "needle", []*RerankDocument{
		{ID: "miss", Content: "no relevant words here", Score: 0.6},
		{ID: "hit", Content: "needle appears immediately", Score: 0.4},
	})

	require.Len(t, res.Documents, 2)
	assert.Equal(t, "hit", res.Documents[0].ID)
	assert.Equal(t, 1, res.Rounds)
}

func TestEngine_CustomStrategy(t *testing.T) {
	preferB := StrategyFunc(func(_ context.Context, _ string, a, b *RerankDocument) (float64, error) {
		if a.ID == "b" {
			return 1, nil
		}
		return -1, nil
	})

	e := New("notes", WithComparisonStrategy(preferB))
	defer e.Close()

	res := e.Rerank(context.Background(), "query", []*RerankDocument{
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.1},
	})

	assert.Equal(t, "b", res.Documents[0].ID)
}

func TestEngine_DeleteAndClear(t *testing.T) {
	e := New("notes")
	defer e.Close()

	e.AddDocument(Document{ID: "doc1", Content: "first entry"})
	e.AddDocument(Document{ID: "doc2", Content: "second entry"})

	e.DeleteDocument("doc1")
	assert.Equal(t, 1, e.Stats().DocumentCount)

	e.Clear()
	assert.Equal(t, 0, e.Stats().DocumentCount)
	assert.Empty(t, e.KeywordSearch("entry", 10))
}

func TestEngine_TournamentConfigUpdate(t *testing.T) {
	cfg := DefaultTournamentConfig()
	cfg.Rounds = 1

	e := New("notes", WithTournamentConfig(cfg))
	defer e.Close()

	res := e.Rerank(context.Background(), "query", []*RerankDocument{
		{ID: "a", Score: 0.9}, {ID: "b", Score: 0.5}, {ID: "c", Score: 0.1},
	})
	assert.Equal(t, 1, res.Rounds)

	cfg.Rounds = 2
	e.UpdateTournamentConfig(cfg)
	res = e.Rerank(context.Background(), "query", []*RerankDocument{
		{ID: "a", Score: 0.9}, {ID: "b", Score: 0.5}, {ID: "c", Score: 0.1},
	})
	assert.Equal(t, 2, res.Rounds)
}
