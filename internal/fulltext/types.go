// Package fulltext provides an in-memory inverted index with BM25+ scoring,
// CJK-aware tokenization, phrase-proximity boosting, and JSON snapshot
// persistence. This is the keyword channel of the NoteVault retrieval engine.
package fulltext

import "time"

// Document is an indexed document with its per-term statistics.
// Owned exclusively by the Index: created on AddDocument, replaced wholesale
// on re-add of an existing ID, removed on DeleteDocument.
type Document struct {
	ID            string
	Content       string
	Metadata      map[string]any
	TermFreqs     map[string]int
	TermPositions map[string][]int
	Length        int
	IndexedAt     time.Time
}

// DocumentInput is the caller-facing shape for adding documents in bulk.
type DocumentInput struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// Posting records one (term, document) occurrence.
type Posting struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"frequency"`
	Positions []int  `json:"positions"`
}

// Hit is a single keyword search result.
type Hit struct {
	ID    string
	Score float64
}

// Stats provides index statistics.
type Stats struct {
	DocumentCount int
	TermCount     int
	AvgDocLength  float64
}

// Config configures the index and its persistence.
type Config struct {
	// Name identifies the index; the snapshot file name derives from it.
	Name string

	// DataDir is the directory for snapshot files. Empty disables persistence.
	DataDir string

	// K1 is the term frequency saturation parameter (default: 1.2).
	K1 float64

	// B is the document length normalization parameter (default: 0.75).
	B float64

	// Delta is the additive IDF floor, the "+" in BM25+ (default: 0.5).
	// It keeps very common terms from scoring to zero.
	Delta float64

	// AdjacencyBoost is added per adjacent query-term pair found back to back
	// in a document (default: 0.2).
	AdjacencyBoost float64

	// ProximityBoost is added per adjacent query-term pair found within
	// ProximityWindow tokens (default: 0.05).
	ProximityBoost float64

	// ProximityWindow is the token distance for the proximity tier (default: 3).
	ProximityWindow int

	// AutoSave enables the debounced snapshot timer (default: true).
	AutoSave bool

	// AutoSaveDelay is the debounce window for autosave (default: 5s).
	AutoSaveDelay time.Duration
}

// DefaultConfig returns the default index configuration for name.
func DefaultConfig(name string) Config {
	return Config{
		Name:            name,
		K1:              1.2,
		B:               0.75,
		Delta:           0.5,
		AdjacencyBoost:  0.2,
		ProximityBoost:  0.05,
		ProximityWindow: 3,
		AutoSave:        true,
		AutoSaveDelay:   5 * time.Second,
	}
}
