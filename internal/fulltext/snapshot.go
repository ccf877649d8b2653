package fulltext

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	reterrors "github.com/notevault/retrieval/internal/errors"
)

// SnapshotVersion gates snapshot restoration. Compared for exact equality on
// load; a mismatch discards the snapshot and the index starts empty rather
// than risk loading incompatible structures.
const SnapshotVersion = "1"

// snapshot is the on-disk format for a persisted index.
// Term statistics are encoded as ordered [key, value] pairs rather than
// native maps so the file is portable across implementations regardless of
// map iteration order.
type snapshot struct {
	Version       string         `json:"version"`
	Documents     []snapshotDoc  `json:"documents"`
	InvertedIndex []termPostings `json:"inverted_index"`
	AvgDocLength  float64        `json:"avg_doc_length"`
	DocCount      int            `json:"doc_count"`
	SavedAt       time.Time      `json:"saved_at"`
}

type snapshotDoc struct {
	ID            string         `json:"id"`
	Content       string         `json:"content"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	TermFreqs     []freqEntry    `json:"term_frequencies"`
	TermPositions []posEntry     `json:"term_positions"`
	Length        int            `json:"length"`
	IndexedAt     time.Time      `json:"indexed_at"`
}

// freqEntry serializes as ["term", count].
type freqEntry struct {
	Term  string
	Count int
}

func (e freqEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Term, e.Count})
}

func (e *freqEntry) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &e.Term); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.Count)
}

// posEntry serializes as ["term", [pos...]].
type posEntry struct {
	Term      string
	Positions []int
}

func (e posEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Term, e.Positions})
}

func (e *posEntry) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &e.Term); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.Positions)
}

// termPostings serializes as ["term", [posting...]].
type termPostings struct {
	Term     string
	Postings []*Posting
}

func (e termPostings) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Term, e.Postings})
}

func (e *termPostings) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &e.Term); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.Postings)
}

// SnapshotPath returns the snapshot file path for this index.
func (idx *Index) SnapshotPath() string {
	return filepath.Join(idx.config.DataDir, idx.config.Name+".json")
}

// SaveToDisk serializes the index to its snapshot file.
// A no-op unless the dirty flag is set. This is the one operation allowed to
// surface a hard failure to the caller; on failure the in-memory state stays
// authoritative and the dirty flag stays set.
func (idx *Index) SaveToDisk() error {
	return idx.saveToDisk(false)
}

func (idx *Index) saveToDisk(force bool) error {
	idx.mu.Lock()
	if !idx.dirty && !force {
		idx.mu.Unlock()
		return nil
	}
	if idx.statsStale {
		idx.commitLocked()
	}
	snap := idx.buildSnapshotLocked()
	idx.mu.Unlock()

	path := idx.SnapshotPath()
	if err := os.MkdirAll(idx.config.DataDir, 0o755); err != nil {
		return reterrors.New(reterrors.ErrCodeSnapshotWrite, "create data dir", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return reterrors.New(reterrors.ErrCodeSnapshotWrite, "acquire snapshot lock", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := json.Marshal(snap)
	if err != nil {
		return reterrors.New(reterrors.ErrCodeSnapshotWrite, "encode snapshot", err)
	}

	// Write-then-rename so a crash mid-write never clobbers the last good snapshot.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return reterrors.New(reterrors.ErrCodeSnapshotWrite, "write snapshot", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return reterrors.New(reterrors.ErrCodeSnapshotWrite, "replace snapshot", err)
	}

	idx.mu.Lock()
	idx.dirty = false
	idx.mu.Unlock()

	slog.Debug("fulltext snapshot saved",
		slog.String("index", idx.config.Name),
		slog.Int("documents", snap.DocCount))
	return nil
}

// buildSnapshotLocked assembles the serializable snapshot.
// Keys are sorted for deterministic output. Caller holds the lock.
func (idx *Index) buildSnapshotLocked() *snapshot {
	snap := &snapshot{
		Version:      SnapshotVersion,
		Documents:    make([]snapshotDoc, 0, len(idx.docs)),
		AvgDocLength: idx.avgDocLength,
		DocCount:     idx.docCount,
		SavedAt:      time.Now().UTC(),
	}

	docIDs := make([]string, 0, len(idx.docs))
	for id := range idx.docs {
		docIDs = append(docIDs, id)
	}
	sort.Strings(docIDs)

	for _, id := range docIDs {
		doc := idx.docs[id]
		sd := snapshotDoc{
			ID:        doc.ID,
			Content:   doc.Content,
			Metadata:  doc.Metadata,
			Length:    doc.Length,
			IndexedAt: doc.IndexedAt,
		}
		for _, term := range sortedKeys(doc.TermFreqs) {
			sd.TermFreqs = append(sd.TermFreqs, freqEntry{Term: term, Count: doc.TermFreqs[term]})
			sd.TermPositions = append(sd.TermPositions, posEntry{Term: term, Positions: doc.TermPositions[term]})
		}
		snap.Documents = append(snap.Documents, sd)
	}

	terms := make([]string, 0, len(idx.postings))
	for term := range idx.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for _, term := range terms {
		snap.InvertedIndex = append(snap.InvertedIndex, termPostings{
			Term:     term,
			Postings: idx.postings[term],
		})
	}

	return snap
}

// LoadFromDisk restores the index from its snapshot file.
// Reports whether a snapshot was loaded. Missing files, version mismatches,
// and parse failures all degrade to "not loaded": the caller proceeds with an
// empty index and in-memory state stays authoritative.
func (idx *Index) LoadFromDisk() bool {
	if idx.config.DataDir == "" {
		return false
	}
	path := idx.SnapshotPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("fulltext snapshot unreadable",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return false
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("fulltext snapshot corrupt, starting fresh",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return false
	}
	if snap.Version != SnapshotVersion {
		slog.Warn("fulltext snapshot version mismatch, starting fresh",
			slog.String("path", path),
			slog.String("want", SnapshotVersion),
			slog.String("got", snap.Version))
		return false
	}

	docs := make(map[string]*Document, len(snap.Documents))
	for _, sd := range snap.Documents {
		doc := &Document{
			ID:            sd.ID,
			Content:       sd.Content,
			Metadata:      sd.Metadata,
			TermFreqs:     make(map[string]int, len(sd.TermFreqs)),
			TermPositions: make(map[string][]int, len(sd.TermPositions)),
			Length:        sd.Length,
			IndexedAt:     sd.IndexedAt,
		}
		for _, e := range sd.TermFreqs {
			doc.TermFreqs[e.Term] = e.Count
		}
		for _, e := range sd.TermPositions {
			doc.TermPositions[e.Term] = e.Positions
		}
		docs[sd.ID] = doc
	}

	postings := make(map[string][]*Posting, len(snap.InvertedIndex))
	for _, e := range snap.InvertedIndex {
		postings[e.Term] = e.Postings
	}

	idx.mu.Lock()
	idx.docs = docs
	idx.postings = postings
	idx.docCount = snap.DocCount
	idx.avgDocLength = snap.AvgDocLength
	idx.dirty = false
	idx.statsStale = false
	idx.mu.Unlock()

	slog.Info("fulltext snapshot loaded",
		slog.String("index", idx.config.Name),
		slog.Int("documents", snap.DocCount))
	return true
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String implements fmt.Stringer for debugging.
func (s *snapshot) String() string {
	return fmt.Sprintf("snapshot{v%s docs=%d terms=%d}", s.Version, s.DocCount, len(s.InvertedIndex))
}
