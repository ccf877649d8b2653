package fulltext

import (
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"
)

// Index is an inverted index over documents with BM25+ scoring.
//
// All mutating operations are expected to come from a single logical caller
// sequence; the internal mutex keeps individual operations consistent but the
// host application is responsible for serializing higher-level workflows.
type Index struct {
	mu sync.RWMutex

	config   Config
	docs     map[string]*Document
	postings map[string][]*Posting

	docCount     int
	avgDocLength float64
	statsStale   bool
	dirty        bool

	saver *autosaver
}

// NewIndex creates an empty index with the given configuration.
// Zero-valued config fields fall back to defaults.
func NewIndex(config Config) *Index {
	defaults := DefaultConfig(config.Name)
	if config.K1 == 0 {
		config.K1 = defaults.K1
	}
	if config.B == 0 {
		config.B = defaults.B
	}
	if config.Delta == 0 {
		config.Delta = defaults.Delta
	}
	if config.AdjacencyBoost == 0 {
		config.AdjacencyBoost = defaults.AdjacencyBoost
	}
	if config.ProximityBoost == 0 {
		config.ProximityBoost = defaults.ProximityBoost
	}
	if config.ProximityWindow == 0 {
		config.ProximityWindow = defaults.ProximityWindow
	}
	if config.AutoSaveDelay == 0 {
		config.AutoSaveDelay = defaults.AutoSaveDelay
	}

	idx := &Index{
		config:   config,
		docs:     make(map[string]*Document),
		postings: make(map[string][]*Posting),
	}

	if config.AutoSave && config.DataDir != "" {
		idx.saver = newAutosaver(config.AutoSaveDelay, func() {
			if err := idx.SaveToDisk(); err != nil {
				slog.Warn("fulltext autosave failed",
					slog.String("index", config.Name),
					slog.String("error", err.Error()))
			}
		})
	}

	return idx
}

// AddDocument tokenizes content and indexes it under id.
// Re-adding an existing id fully removes the prior document first.
// Metadata is carried opaquely and round-tripped through snapshots.
func (idx *Index) AddDocument(id, content string, metadata map[string]any) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.docs[id]; exists {
		idx.removeLocked(id)
	}

	tokens := Tokenize(content)
	doc := &Document{
		ID:            id,
		Content:       content,
		Metadata:      metadata,
		TermFreqs:     make(map[string]int),
		TermPositions: make(map[string][]int),
		Length:        len(tokens),
		IndexedAt:     time.Now(),
	}
	for pos, term := range tokens {
		doc.TermFreqs[term]++
		doc.TermPositions[term] = append(doc.TermPositions[term], pos)
	}
	idx.docs[id] = doc

	for term, freq := range doc.TermFreqs {
		idx.postings[term] = append(idx.postings[term], &Posting{
			DocID:     id,
			Frequency: freq,
			Positions: doc.TermPositions[term],
		})
	}

	idx.markDirtyLocked()
}

// AddDocuments indexes a batch of documents and returns the count added.
func (idx *Index) AddDocuments(docs []DocumentInput) int {
	for _, d := range docs {
		idx.AddDocument(d.ID, d.Content, d.Metadata)
	}
	return len(docs)
}

// DeleteDocument removes a document and strips its postings.
// Absent ids are a silent no-op.
func (idx *Index) DeleteDocument(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.docs[id]; !exists {
		return
	}
	idx.removeLocked(id)
	idx.markDirtyLocked()
}

// removeLocked strips a document from the store and every posting list,
// pruning terms left with zero postings. Caller holds the write lock.
func (idx *Index) removeLocked(id string) {
	doc := idx.docs[id]
	for term := range doc.TermFreqs {
		list := idx.postings[term]
		for i, p := range list {
			if p.DocID == id {
				list[i] = list[len(list)-1]
				list = list[:len(list)-1]
				break
			}
		}
		if len(list) == 0 {
			delete(idx.postings, term)
		} else {
			idx.postings[term] = list
		}
	}
	delete(idx.docs, id)
}

// markDirtyLocked flags unsaved changes and schedules a debounced autosave.
func (idx *Index) markDirtyLocked() {
	idx.dirty = true
	idx.statsStale = true
	if idx.saver != nil {
		idx.saver.Schedule()
	}
}

// Commit recomputes docCount and avgDocLength from the live document set.
// Search calls this implicitly when statistics are stale.
func (idx *Index) Commit() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.commitLocked()
}

func (idx *Index) commitLocked() {
	idx.docCount = len(idx.docs)
	if idx.docCount == 0 {
		idx.avgDocLength = 0
	} else {
		total := 0
		for _, doc := range idx.docs {
			total += doc.Length
		}
		idx.avgDocLength = float64(total) / float64(idx.docCount)
	}
	idx.statsStale = false
}

// Clear removes every document and term from the index.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.docs = make(map[string]*Document)
	idx.postings = make(map[string][]*Posting)
	idx.docCount = 0
	idx.avgDocLength = 0
	idx.markDirtyLocked()
}

// Document returns the stored document for id, or nil.
func (idx *Index) Document(id string) *Document {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.docs[id]
}

// Stats returns a snapshot of index statistics.
func (idx *Index) Stats() Stats {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.statsStale {
		idx.commitLocked()
	}
	return Stats{
		DocumentCount: idx.docCount,
		TermCount:     len(idx.postings),
		AvgDocLength:  idx.avgDocLength,
	}
}

// Search tokenizes the query, scores matching documents with BM25+ and
// phrase-proximity boosts, and returns up to limit hits sorted by score
// descending. Equal scores order by document id ascending so results are
// stable across runs. An empty query or empty corpus returns an empty slice.
func (idx *Index) Search(query string, limit int) []Hit {
	idx.mu.Lock()
	if idx.statsStale {
		idx.commitLocked()
	}
	idx.mu.Unlock()

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.docCount == 0 || limit <= 0 {
		return []Hit{}
	}

	terms := Tokenize(query)
	if len(terms) == 0 {
		return []Hit{}
	}

	scores := idx.scoreTerms(terms)
	if len(scores) == 0 {
		return []Hit{}
	}

	if len(terms) > 1 {
		idx.applyPhraseBoosts(terms, scores)
	}

	hits := make([]Hit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, Hit{ID: id, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// scoreTerms accumulates idf * tf_component per document over distinct query terms.
func (idx *Index) scoreTerms(terms []string) map[string]float64 {
	scores := make(map[string]float64)
	seen := make(map[string]struct{}, len(terms))

	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		list := idx.postings[term]
		if len(list) == 0 {
			continue
		}

		df := float64(len(list))
		n := float64(idx.docCount)
		idf := math.Log((n-df+0.5)/(df+0.5)+1) + idx.config.Delta

		for _, p := range list {
			doc := idx.docs[p.DocID]
			if doc == nil {
				continue
			}
			freq := float64(p.Frequency)
			norm := 1 - idx.config.B + idx.config.B*(float64(doc.Length)/idx.avgDocLength)
			tf := (freq * (idx.config.K1 + 1)) / (freq + idx.config.K1*norm)
			scores[p.DocID] += idf * tf
		}
	}
	return scores
}

// applyPhraseBoosts rewards documents where adjacent query terms appear close
// together. Each adjacent term pair contributes at most one adjacency hit
// (+AdjacencyBoost) and one proximity hit (+ProximityBoost); the summed boost
// multiplies the accumulated score.
func (idx *Index) applyPhraseBoosts(terms []string, scores map[string]float64) {
	for id := range scores {
		doc := idx.docs[id]
		if doc == nil {
			continue
		}

		boost := 0.0
		for i := 0; i+1 < len(terms); i++ {
			a := doc.TermPositions[terms[i]]
			b := doc.TermPositions[terms[i+1]]
			if len(a) == 0 || len(b) == 0 {
				continue
			}
			if hasAdjacent(a, b) {
				boost += idx.config.AdjacencyBoost
			}
			if withinWindow(a, b, idx.config.ProximityWindow) {
				boost += idx.config.ProximityBoost
			}
		}
		if boost > 0 {
			scores[id] *= 1 + boost
		}
	}
}

// hasAdjacent reports whether any position in a is immediately followed by a
// position in b. Short-circuits on the first match.
func hasAdjacent(a, b []int) bool {
	set := make(map[int]struct{}, len(b))
	for _, p := range b {
		set[p] = struct{}{}
	}
	for _, p := range a {
		if _, ok := set[p+1]; ok {
			return true
		}
	}
	return false
}

// withinWindow reports whether any pair of positions from a and b lies within
// window tokens of each other. Short-circuits on the first match.
func withinWindow(a, b []int, window int) bool {
	for _, pa := range a {
		for _, pb := range b {
			if d := pa - pb; d <= window && d >= -window {
				return true
			}
		}
	}
	return false
}

// Close cancels any pending autosave and performs one final synchronous save
// so no dirty state is lost. Safe to call on an index without persistence.
func (idx *Index) Close() error {
	if idx.saver != nil {
		idx.saver.Stop()
	}
	if idx.config.DataDir == "" {
		return nil
	}
	return idx.saveToDisk(true)
}
