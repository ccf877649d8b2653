package hybrid

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/notevault/retrieval/internal/fulltext"
)

// queryCacheSize bounds the keyword-only result cache.
const queryCacheSize = 256

// Service fuses keyword and semantic relevance into one ranked list.
//
// The keyword channel is the fulltext index; the semantic channel is the
// injected SemanticProvider, consulted only when the caller supplies a query
// embedding. Either channel may be missing for a document, contributing 0.
type Service struct {
	mu       sync.RWMutex
	index    *fulltext.Index
	provider SemanticProvider

	// embeddings holds the stored vectors for documents that carry one,
	// keyed by document id. Insertion order is tracked for stable batching.
	embeddings map[string][]float32
	embedOrder []string

	// cache holds fused results for keyword-only queries; purged on any
	// mutation so stale hits are impossible.
	cache *lru.Cache[string, []*Result]
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSemanticProvider sets the external similarity provider.
func WithSemanticProvider(p SemanticProvider) ServiceOption {
	return func(s *Service) {
		s.provider = p
	}
}

// NewService creates a hybrid service over the given fulltext index.
func NewService(index *fulltext.Index, opts ...ServiceOption) *Service {
	cache, _ := lru.New[string, []*Result](queryCacheSize)
	s := &Service{
		index:      index,
		embeddings: make(map[string][]float32),
		cache:      cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddDocument indexes a document in the keyword channel and, when the
// document carries an embedding, registers it for the semantic channel.
func (s *Service) AddDocument(doc Document) {
	s.mu.Lock()
	if len(doc.Embedding) > 0 {
		if _, exists := s.embeddings[doc.ID]; !exists {
			s.embedOrder = append(s.embedOrder, doc.ID)
		}
		s.embeddings[doc.ID] = doc.Embedding
	} else if _, exists := s.embeddings[doc.ID]; exists {
		s.removeEmbeddingLocked(doc.ID)
	}
	s.cache.Purge()
	s.mu.Unlock()

	s.index.AddDocument(doc.ID, doc.Content, doc.Metadata)
}

// DeleteDocument removes a document from both channels. No-op if absent.
func (s *Service) DeleteDocument(id string) {
	s.mu.Lock()
	s.removeEmbeddingLocked(id)
	s.cache.Purge()
	s.mu.Unlock()

	s.index.DeleteDocument(id)
}

// Clear drops every document from both channels.
func (s *Service) Clear() {
	s.mu.Lock()
	s.embeddings = make(map[string][]float32)
	s.embedOrder = nil
	s.cache.Purge()
	s.mu.Unlock()

	s.index.Clear()
}

func (s *Service) removeEmbeddingLocked(id string) {
	if _, exists := s.embeddings[id]; !exists {
		return
	}
	delete(s.embeddings, id)
	for i, eid := range s.embedOrder {
		if eid == id {
			s.embedOrder = append(s.embedOrder[:i], s.embedOrder[i+1:]...)
			break
		}
	}
}

// Search runs the keyword channel and, when queryEmbedding is supplied and a
// provider is configured, the semantic channel in parallel, then fuses the
// union with the configured weights. A missing or whitespace query returns
// an empty list, never an error: this is a best-effort retrieval layer.
func (s *Service) Search(ctx context.Context, query string, queryEmbedding []float32, opts Options) []*Result {
	if strings.TrimSpace(query) == "" {
		return []*Result{}
	}
	opts = withDefaults(opts)

	semantic := len(queryEmbedding) > 0 && s.provider != nil

	if !semantic && !opts.Rerank {
		if cached, ok := s.cache.Get(cacheKey(query, opts)); ok {
			return cached
		}
	}

	var (
		keywordScores  map[string]float64
		semanticScores map[string]float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keywordScores = s.keywordChannel(query, opts.InitialTopK)
		return nil
	})
	if semantic {
		g.Go(func() error {
			semanticScores = s.semanticChannel(gctx, queryEmbedding, opts.InitialTopK)
			return nil
		})
	}
	// Channels degrade to empty maps rather than failing the group.
	_ = g.Wait()

	results := s.fuse(keywordScores, semanticScores, opts)

	if opts.Rerank {
		rerank := opts.RerankFunc
		if rerank == nil {
			rerank = KeywordBoostRerank
		}
		results = rerank(ctx, query, results)
		sortResults(results)
	}

	if len(results) > opts.FinalTopK {
		results = results[:opts.FinalTopK]
	}

	if !semantic && !opts.Rerank {
		s.cache.Add(cacheKey(query, opts), results)
	}
	return results
}

// keywordChannel returns max-normalized BM25+ scores for the top candidates.
func (s *Service) keywordChannel(query string, topK int) map[string]float64 {
	hits := s.index.Search(query, topK)
	if len(hits) == 0 {
		return map[string]float64{}
	}

	maxScore := hits[0].Score
	if maxScore <= 0 {
		maxScore = 1.0
	}
	scores := make(map[string]float64, len(hits))
	for _, h := range hits {
		scores[h.ID] = h.Score / maxScore
	}
	return scores
}

// semanticChannel asks the provider to score the query embedding against all
// stored document embeddings, keeps strictly positive similarities, and
// truncates to the topK best. Provider failure degrades to an empty channel.
func (s *Service) semanticChannel(ctx context.Context, queryEmbedding []float32, topK int) map[string]float64 {
	s.mu.RLock()
	ids := make([]string, len(s.embedOrder))
	copy(ids, s.embedOrder)
	vectors := make([][]float32, len(ids))
	for i, id := range ids {
		vectors[i] = s.embeddings[id]
	}
	s.mu.RUnlock()

	if len(ids) == 0 {
		return map[string]float64{}
	}

	sims, err := s.provider.BatchCosineSimilarity(ctx, queryEmbedding, vectors)
	if err != nil || len(sims) != len(ids) {
		slog.Warn("semantic channel degraded",
			slog.Int("documents", len(ids)),
			slog.Any("error", err))
		return map[string]float64{}
	}

	type scored struct {
		id  string
		sim float64
	}
	positive := make([]scored, 0, len(ids))
	for i, sim := range sims {
		if sim > 0 {
			positive = append(positive, scored{id: ids[i], sim: sim})
		}
	}
	sort.Slice(positive, func(i, j int) bool {
		if positive[i].sim != positive[j].sim {
			return positive[i].sim > positive[j].sim
		}
		return positive[i].id < positive[j].id
	})
	if len(positive) > topK {
		positive = positive[:topK]
	}

	scores := make(map[string]float64, len(positive))
	for _, p := range positive {
		scores[p.id] = p.sim
	}
	return scores
}

// fuse scores the union of both channels, applies the threshold, and sorts.
func (s *Service) fuse(keyword, semantic map[string]float64, opts Options) []*Result {
	union := make(map[string]struct{}, len(keyword)+len(semantic))
	for id := range keyword {
		union[id] = struct{}{}
	}
	for id := range semantic {
		union[id] = struct{}{}
	}

	results := make([]*Result, 0, len(union))
	for id := range union {
		kw := keyword[id]
		sem := semantic[id]
		score := opts.KeywordWeight*kw + opts.SemanticWeight*sem
		if score < opts.Threshold {
			continue
		}
		r := &Result{
			ID:            id,
			Score:         score,
			KeywordScore:  kw,
			SemanticScore: sem,
		}
		if doc := s.index.Document(id); doc != nil {
			r.Content = doc.Content
			r.Metadata = doc.Metadata
		}
		results = append(results, r)
	}

	sortResults(results)
	return results
}

// sortResults orders by score descending, then id ascending for stability.
func sortResults(results []*Result) {
	sort.Slice(results, func(i, j int) bool {
		si, sj := results[i].Score, results[j].Score
		if results[i].RerankScore != nil {
			si = *results[i].RerankScore
		}
		if results[j].RerankScore != nil {
			sj = *results[j].RerankScore
		}
		if si != sj {
			return si > sj
		}
		return results[i].ID < results[j].ID
	})
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.KeywordWeight == 0 && opts.SemanticWeight == 0 {
		opts.KeywordWeight = def.KeywordWeight
		opts.SemanticWeight = def.SemanticWeight
	}
	if opts.InitialTopK <= 0 {
		opts.InitialTopK = def.InitialTopK
	}
	if opts.FinalTopK <= 0 {
		opts.FinalTopK = def.FinalTopK
	}
	return opts
}

func cacheKey(query string, opts Options) string {
	return fmt.Sprintf("%s|%d|%d|%.3f|%.3f|%.3f",
		query, opts.InitialTopK, opts.FinalTopK,
		opts.KeywordWeight, opts.SemanticWeight, opts.Threshold)
}
