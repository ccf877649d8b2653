// Package retrieval is the host-facing surface of the NoteVault retrieval
// engine. It ties the fulltext index, the hybrid fusion service, and the
// tournament reranker into one explicitly-constructed Engine with a clear
// lifecycle: New, use, Close. There is no package-level state; hosts that
// need process-wide instances use a Registry.
package retrieval

import (
	"context"
	"time"

	"github.com/notevault/retrieval/internal/fulltext"
	"github.com/notevault/retrieval/internal/hybrid"
	"github.com/notevault/retrieval/internal/tournament"
)

// Re-exported contract types so hosts only import this package.
type (
	// Document is a unit of content with optional embedding.
	Document = hybrid.Document

	// Result is a fused search result.
	Result = hybrid.Result

	// SearchOptions configures one hybrid search.
	SearchOptions = hybrid.Options

	// SemanticProvider is the external similarity collaborator contract.
	SemanticProvider = hybrid.SemanticProvider

	// Hit is a keyword-only search result.
	Hit = fulltext.Hit

	// Stats reports index statistics.
	Stats = fulltext.Stats

	// RerankDocument is a tournament entrant.
	RerankDocument = tournament.Document

	// RerankResult is the outcome of a tournament rerank.
	RerankResult = tournament.Result

	// Strategy is the pairwise comparison contract.
	Strategy = tournament.Strategy

	// StrategyFunc adapts a bare comparison function into a Strategy.
	StrategyFunc = tournament.StrategyFunc

	// TournamentConfig controls tournament shape and scoring.
	TournamentConfig = tournament.Config
)

// DefaultSearchOptions returns the default hybrid search options.
func DefaultSearchOptions() SearchOptions { return hybrid.DefaultOptions() }

// DefaultTournamentConfig returns the default tournament configuration.
func DefaultTournamentConfig() TournamentConfig { return tournament.DefaultConfig() }

// Engine is one named retrieval instance: an index with persistence, the
// fusion service over it, and a tournament reranker.
type Engine struct {
	name     string
	index    *fulltext.Index
	hybrid   *hybrid.Service
	reranker *tournament.Reranker
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	dataDir       string
	autoSave      bool
	autoSaveDelay time.Duration
	provider      hybrid.SemanticProvider
	tournament    tournament.Config
	strategy      tournament.Strategy
	indexConfig   *fulltext.Config
}

// WithDataDir enables snapshot persistence under dir.
func WithDataDir(dir string) Option {
	return func(c *engineConfig) {
		c.dataDir = dir
	}
}

// WithoutAutosave disables the debounced autosave timer; the host saves
// explicitly via Save.
func WithoutAutosave() Option {
	return func(c *engineConfig) {
		c.autoSave = false
	}
}

// WithAutosaveDelay overrides the autosave debounce window.
func WithAutosaveDelay(d time.Duration) Option {
	return func(c *engineConfig) {
		c.autoSaveDelay = d
	}
}

// WithSemanticProvider sets the external similarity provider for the
// semantic channel.
func WithSemanticProvider(p SemanticProvider) Option {
	return func(c *engineConfig) {
		c.provider = p
	}
}

// WithTournamentConfig sets the tournament configuration.
func WithTournamentConfig(config TournamentConfig) Option {
	return func(c *engineConfig) {
		c.tournament = config
	}
}

// WithComparisonStrategy sets the tournament comparison strategy.
func WithComparisonStrategy(s Strategy) Option {
	return func(c *engineConfig) {
		c.strategy = s
	}
}

// WithIndexConfig overrides the fulltext index configuration wholesale.
// Name and DataDir from the engine still apply.
func WithIndexConfig(config fulltext.Config) Option {
	return func(c *engineConfig) {
		c.indexConfig = &config
	}
}

// New creates an engine named name and restores its snapshot when one exists
// and is compatible; otherwise the engine starts empty.
func New(name string, opts ...Option) *Engine {
	cfg := engineConfig{
		autoSave:   true,
		tournament: tournament.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	idxCfg := fulltext.DefaultConfig(name)
	if cfg.indexConfig != nil {
		idxCfg = *cfg.indexConfig
		idxCfg.Name = name
	}
	idxCfg.DataDir = cfg.dataDir
	idxCfg.AutoSave = cfg.autoSave
	if cfg.autoSaveDelay > 0 {
		idxCfg.AutoSaveDelay = cfg.autoSaveDelay
	}

	index := fulltext.NewIndex(idxCfg)
	index.LoadFromDisk()

	var hybridOpts []hybrid.ServiceOption
	if cfg.provider != nil {
		hybridOpts = append(hybridOpts, hybrid.WithSemanticProvider(cfg.provider))
	}

	rerankOpts := []tournament.Option{tournament.WithConfig(cfg.tournament)}
	if cfg.strategy != nil {
		rerankOpts = append(rerankOpts, tournament.WithStrategy(cfg.strategy))
	}

	return &Engine{
		name:     name,
		index:    index,
		hybrid:   hybrid.NewService(index, hybridOpts...),
		reranker: tournament.NewReranker(rerankOpts...),
	}
}

// Name returns the engine's name.
func (e *Engine) Name() string { return e.name }

// AddDocument indexes one document.
func (e *Engine) AddDocument(doc Document) {
	e.hybrid.AddDocument(doc)
}

// AddDocuments indexes a batch of documents and returns the count added.
func (e *Engine) AddDocuments(docs []Document) int {
	for _, doc := range docs {
		e.hybrid.AddDocument(doc)
	}
	return len(docs)
}

// DeleteDocument removes a document. No-op if absent.
func (e *Engine) DeleteDocument(id string) {
	e.hybrid.DeleteDocument(id)
}

// Clear removes every document.
func (e *Engine) Clear() {
	e.hybrid.Clear()
}

// Commit recomputes corpus statistics. Search does this implicitly, so an
// explicit Commit is only needed when the host wants stats to be current
// before the next query.
func (e *Engine) Commit() {
	e.index.Commit()
}

// KeywordSearch runs the BM25+ keyword channel alone.
func (e *Engine) KeywordSearch(query string, limit int) []Hit {
	return e.index.Search(query, limit)
}

// Search runs the hybrid fusion pipeline.
func (e *Engine) Search(ctx context.Context, query string, queryEmbedding []float32, opts SearchOptions) []*Result {
	return e.hybrid.Search(ctx, query, queryEmbedding, opts)
}

// Rerank runs a Swiss tournament over the given candidates.
func (e *Engine) Rerank(ctx context.Context, query string, docs []*RerankDocument) *RerankResult {
	return e.reranker.Rerank(ctx, query, docs)
}

// UpdateTournamentConfig replaces the tournament configuration.
func (e *Engine) UpdateTournamentConfig(config TournamentConfig) {
	e.reranker.UpdateConfig(config)
}

// SetComparisonStrategy replaces the tournament comparison strategy.
func (e *Engine) SetComparisonStrategy(s Strategy) {
	e.reranker.SetComparisonStrategy(s)
}

// Stats returns current index statistics.
func (e *Engine) Stats() Stats {
	return e.index.Stats()
}

// Save persists the index snapshot now, bypassing the debounce.
// This is the one call that surfaces a hard persistence failure.
func (e *Engine) Save() error {
	return e.index.SaveToDisk()
}

// Close cancels pending autosaves and performs one final save.
func (e *Engine) Close() error {
	return e.index.Close()
}
