package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notevault/retrieval/internal/ui"
	"github.com/notevault/retrieval/pkg/retrieval"
)

func newStatsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}

func runStats(format string) error {
	cfg := loadConfig()
	engine := retrieval.New(flagIndexName,
		retrieval.WithDataDir(cfg.DataDir),
		retrieval.WithoutAutosave(),
	)
	defer engine.Close()

	stats := engine.Stats()

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"index":          flagIndexName,
			"document_count": stats.DocumentCount,
			"term_count":     stats.TermCount,
			"avg_doc_length": stats.AvgDocLength,
		})
	}

	styles := ui.DefaultStyles()
	fmt.Println(styles.Title.Render("Index: " + flagIndexName))
	fmt.Printf("  Documents:       %s\n", styles.Score.Render(fmt.Sprintf("%d", stats.DocumentCount)))
	fmt.Printf("  Distinct terms:  %s\n", styles.Score.Render(fmt.Sprintf("%d", stats.TermCount)))
	fmt.Printf("  Avg doc length:  %s\n", styles.Score.Render(fmt.Sprintf("%.1f", stats.AvgDocLength)))
	return nil
}
