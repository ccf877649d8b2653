package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notevault/retrieval/internal/ui"
	"github.com/notevault/retrieval/pkg/retrieval"
)

// searchOptions holds flags for the search command.
type searchOptions struct {
	limit      int
	format     string
	rerank     bool
	tournament bool
}

const snippetLength = 100

func newSearchCmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search an index",
		Long: `Search runs the hybrid pipeline over the named index. Without an
embedding for the query the semantic channel stays empty and ranking is
keyword-only; --rerank applies the keyword-boost pass and --tournament
reranks the results with a Swiss tournament.`,
		Example: `  # Basic search
  nvsearch search "garbage collector tuning"

  # CJK queries work the same way
  nvsearch search "中文搜索" --limit 5

  # Tournament rerank, JSON output
  nvsearch search "goroutine leak" --tournament --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum results")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.rerank, "rerank", false, "Apply the keyword-boost rerank pass")
	cmd.Flags().BoolVar(&opts.tournament, "tournament", false, "Rerank results with a Swiss tournament")

	return cmd
}

func runSearch(ctx context.Context, query string, opts *searchOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", opts.format)
	}

	cfg := loadConfig()
	engine := retrieval.New(flagIndexName,
		retrieval.WithDataDir(cfg.DataDir),
		retrieval.WithoutAutosave(),
		retrieval.WithTournamentConfig(retrieval.TournamentConfig{
			Rounds:        cfg.Tournament.Rounds,
			WinPoints:     cfg.Tournament.WinPoints,
			DrawPoints:    cfg.Tournament.DrawPoints,
			LossPoints:    cfg.Tournament.LossPoints,
			DrawThreshold: cfg.Tournament.DrawThreshold,
			UseBuchholz:   cfg.Tournament.UseBuchholz,
		}),
	)
	defer engine.Close()

	searchOpts := retrieval.DefaultSearchOptions()
	// The CLI has no embedding for the query, so the keyword channel is the
	// only signal; weight it fully.
	searchOpts.KeywordWeight = 1.0
	searchOpts.SemanticWeight = 0
	searchOpts.InitialTopK = cfg.Search.InitialTopK
	searchOpts.FinalTopK = opts.limit
	searchOpts.Threshold = cfg.Search.Threshold
	searchOpts.Rerank = opts.rerank

	results := engine.Search(ctx, query, nil, searchOpts)

	if opts.tournament && len(results) > 1 {
		results = tournamentRerank(ctx, engine, query, results)
	}

	if opts.format == "json" {
		return printJSON(results)
	}
	printText(query, results)
	return nil
}

// tournamentRerank reorders results by tournament standing, keeping the
// fused scores visible and storing the final tournament score per result.
func tournamentRerank(ctx context.Context, engine *retrieval.Engine, query string, results []*retrieval.Result) []*retrieval.Result {
	entrants := make([]*retrieval.RerankDocument, len(results))
	byID := make(map[string]*retrieval.Result, len(results))
	for i, r := range results {
		entrants[i] = &retrieval.RerankDocument{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Score,
			Metadata: r.Metadata,
		}
		byID[r.ID] = r
	}

	outcome := engine.Rerank(ctx, query, entrants)
	reordered := make([]*retrieval.Result, 0, len(outcome.Documents))
	for _, doc := range outcome.Documents {
		r := byID[doc.ID]
		score := doc.Score
		r.RerankScore = &score
		reordered = append(reordered, r)
	}
	return reordered
}

func printJSON(results []*retrieval.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func printText(query string, results []*retrieval.Result) {
	styles := ui.DefaultStyles()

	if len(results) == 0 {
		fmt.Println(styles.Dim.Render("No results for ") + styles.Title.Render(query))
		return
	}

	for i, r := range results {
		fmt.Printf("%s %s  %s\n",
			styles.Dim.Render(fmt.Sprintf("%2d.", i+1)),
			styles.Title.Render(r.ID),
			styles.Score.Render(fmt.Sprintf("%.4f", r.Score)))
		if snippet := makeSnippet(r.Content); snippet != "" {
			fmt.Printf("    %s\n", styles.Snippet.Render(snippet))
		}
	}
	fmt.Println(styles.Dim.Render(fmt.Sprintf("%d results", len(results))))
}

// makeSnippet collapses whitespace and truncates to a preview length.
func makeSnippet(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	runes := []rune(s)
	if len(runes) > snippetLength {
		return string(runes[:snippetLength]) + "…"
	}
	return s
}
