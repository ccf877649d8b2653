// Package tournament reranks a short candidate list by running a
// Swiss-system tournament of pairwise document comparisons. It depends only
// on a comparison-strategy contract, never on the index.
package tournament

import "context"

// Document is a tournament entrant. Score is the pre-tournament (fused or
// retrieval) score supplied by the caller; Metadata is opaque.
type Document struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// Strategy is the pairwise comparison contract. Compare returns a signed
// value: positive means a is more relevant, negative means b, and a
// magnitude under the configured draw threshold is a draw. A returned error
// degrades the match to a draw; it never aborts the tournament.
type Strategy interface {
	Name() string
	Compare(ctx context.Context, query string, a, b *Document) (float64, error)
}

// StrategyFunc adapts a bare comparison function (e.g. an LLM-backed
// comparator supplied by the host) into a Strategy.
type StrategyFunc func(ctx context.Context, query string, a, b *Document) (float64, error)

// Name implements Strategy.
func (StrategyFunc) Name() string { return "func" }

// Compare implements Strategy.
func (f StrategyFunc) Compare(ctx context.Context, query string, a, b *Document) (float64, error) {
	return f(ctx, query, a, b)
}

// Config controls tournament shape and scoring.
type Config struct {
	// Rounds is the configured round count; the tournament never runs more
	// than participantCount-1 rounds (default: 3).
	Rounds int

	// WinPoints, DrawPoints, LossPoints are awarded per match
	// (defaults: 3, 1, 0).
	WinPoints  int
	DrawPoints int
	LossPoints int

	// DrawThreshold is the comparison magnitude below which a match is a
	// draw (default: 0.1).
	DrawThreshold float64

	// UseBuchholz enables the strength-of-schedule tiebreak (default: true).
	UseBuchholz bool
}

// DefaultConfig returns the default tournament configuration.
func DefaultConfig() Config {
	return Config{
		Rounds:        3,
		WinPoints:     3,
		DrawPoints:    1,
		LossPoints:    0,
		DrawThreshold: 0.1,
		UseBuchholz:   true,
	}
}

// Standing reports one participant's final tournament record.
type Standing struct {
	ID         string
	Rank       int
	Wins       int
	Losses     int
	Draws      int
	Points     int
	Buchholz   int
	FinalScore float64
}

// Result is the outcome of one Rerank call.
type Result struct {
	// Documents is the input list reordered by final standing.
	Documents []*Document

	// Rankings holds per-document standings aligned with Documents.
	Rankings []Standing

	// Rounds is the number of rounds actually run.
	Rounds int

	// TotalComparisons counts strategy invocations across all rounds.
	TotalComparisons int
}

// participant is call-scoped tournament state; created at the start of a
// Rerank call and discarded after the final ranking is extracted.
type participant struct {
	doc       *Document
	wins      int
	losses    int
	draws     int
	points    int
	buchholz  int
	opponents map[string]*participant
}
