package tournament

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
)

// Blend weights for the final score: tournament performance vs original score.
const (
	performanceWeight = 0.7
	originalWeight    = 0.3
)

// Reranker runs Swiss-system tournaments over candidate lists.
//
// All per-call state is isolated, so concurrent Rerank calls are safe as long
// as the configured strategy is side-effect free per call (the built-in
// strategies are).
type Reranker struct {
	mu       sync.RWMutex
	config   Config
	strategy Strategy
}

// Option configures a Reranker.
type Option func(*Reranker)

// WithConfig sets the tournament configuration.
func WithConfig(config Config) Option {
	return func(r *Reranker) {
		r.config = config
	}
}

// WithStrategy sets the comparison strategy.
func WithStrategy(s Strategy) Option {
	return func(r *Reranker) {
		r.strategy = s
	}
}

// NewReranker creates a tournament reranker. Without options it uses
// DefaultConfig and the keyword-density strategy.
func NewReranker(opts ...Option) *Reranker {
	r := &Reranker{
		config:   DefaultConfig(),
		strategy: KeywordDensityStrategy{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UpdateConfig replaces the tournament configuration.
func (r *Reranker) UpdateConfig(config Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = config
}

// SetComparisonStrategy replaces the comparison strategy.
func (r *Reranker) SetComparisonStrategy(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategy = s
}

// Rerank runs min(config.Rounds, len(docs)-1) rounds of pairwise comparisons
// and returns the documents reordered by final standing. Lists of one or
// zero documents come back unchanged with zero rounds run.
func (r *Reranker) Rerank(ctx context.Context, query string, docs []*Document) *Result {
	r.mu.RLock()
	config := r.config
	strategy := r.strategy
	r.mu.RUnlock()

	parts := make([]*participant, len(docs))
	for i, doc := range docs {
		parts[i] = &participant{
			doc:       doc,
			opponents: make(map[string]*participant),
		}
	}

	rounds := config.Rounds
	if max := len(docs) - 1; rounds > max {
		rounds = max
	}
	if rounds < 0 {
		rounds = 0
	}

	comparisons := 0
	for round := 1; round <= rounds; round++ {
		pairs, byes := pairRound(parts, round, config.UseBuchholz)

		for _, m := range pairs {
			r.playMatch(ctx, strategy, config, query, m)
			comparisons++
		}
		// A bye is worth a draw; no opponent relationship is recorded.
		for _, p := range byes {
			p.points += config.DrawPoints
			p.draws++
		}

		if config.UseBuchholz {
			updateBuchholz(parts)
		}
	}

	return buildResult(parts, config, rounds, comparisons)
}

// playMatch executes one comparison and applies points symmetrically.
// A strategy failure is a draw, never an aborted tournament.
func (r *Reranker) playMatch(ctx context.Context, strategy Strategy, config Config, query string, m pair) {
	value, err := strategy.Compare(ctx, query, m.a.doc, m.b.doc)
	if err != nil {
		slog.Debug("comparison failed, scoring draw",
			slog.String("strategy", strategy.Name()),
			slog.String("a", m.a.doc.ID),
			slog.String("b", m.b.doc.ID),
			slog.String("error", err.Error()))
		value = 0
	}

	switch {
	case math.Abs(value) < config.DrawThreshold:
		m.a.draws++
		m.b.draws++
		m.a.points += config.DrawPoints
		m.b.points += config.DrawPoints
	case value > 0:
		m.a.wins++
		m.b.losses++
		m.a.points += config.WinPoints
		m.b.points += config.LossPoints
	default:
		m.b.wins++
		m.a.losses++
		m.b.points += config.WinPoints
		m.a.points += config.LossPoints
	}

	m.a.opponents[m.b.doc.ID] = m.b
	m.b.opponents[m.a.doc.ID] = m.a
}

// updateBuchholz recomputes every participant's tiebreak as the sum of
// current points across all recorded opponents.
func updateBuchholz(parts []*participant) {
	for _, p := range parts {
		total := 0
		for _, opp := range p.opponents {
			total += opp.points
		}
		p.buchholz = total
	}
}

// buildResult extracts the final ranking: points desc, Buchholz desc (when
// enabled), wins desc, original score desc, then id for full determinism.
// The final score blends tournament performance with the original score.
func buildResult(parts []*participant, config Config, rounds, comparisons int) *Result {
	sorted := make([]*participant, len(parts))
	copy(sorted, parts)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.points != b.points {
			return a.points > b.points
		}
		if config.UseBuchholz && a.buchholz != b.buchholz {
			return a.buchholz > b.buchholz
		}
		if a.wins != b.wins {
			return a.wins > b.wins
		}
		if a.doc.Score != b.doc.Score {
			return a.doc.Score > b.doc.Score
		}
		return a.doc.ID < b.doc.ID
	})

	maxPoints := float64(rounds * config.WinPoints)
	result := &Result{
		Documents:        make([]*Document, len(sorted)),
		Rankings:         make([]Standing, len(sorted)),
		Rounds:           rounds,
		TotalComparisons: comparisons,
	}
	for i, p := range sorted {
		performance := 0.0
		if maxPoints > 0 {
			performance = float64(p.points) / maxPoints
		}
		final := performanceWeight*performance + originalWeight*math.Min(p.doc.Score, 1)

		result.Documents[i] = p.doc
		result.Rankings[i] = Standing{
			ID:         p.doc.ID,
			Rank:       i + 1,
			Wins:       p.wins,
			Losses:     p.losses,
			Draws:      p.draws,
			Points:     p.points,
			Buchholz:   p.buchholz,
			FinalScore: final,
		}
	}
	return result
}
