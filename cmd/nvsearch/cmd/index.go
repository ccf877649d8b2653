package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/notevault/retrieval/pkg/retrieval"
)

// indexOptions holds flags for the index command.
type indexOptions struct {
	file  string
	clear bool
}

// indexedDoc is the JSON shape accepted on input: one object per document,
// either as a top-level array or as JSON lines.
type indexedDoc struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
}

func newIndexCmd() *cobra.Command {
	opts := &indexOptions{}

	cmd := &cobra.Command{
		Use:   "index [flags]",
		Short: "Add documents to an index",
		Long: `Index reads documents as JSON (an array, or one object per line) from a
file or stdin and adds them to the named index. Re-adding an existing ID
replaces the document. The snapshot is saved before exiting.`,
		Example: `  # Index documents from a file
  nvsearch index --file notes.json

  # Pipe JSON lines from another tool
  cat notes.jsonl | nvsearch index --index notes

  # Rebuild from scratch
  nvsearch index --clear --file notes.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "JSON file to read (default: stdin)")
	cmd.Flags().BoolVar(&opts.clear, "clear", false, "Clear the index before adding")

	return cmd
}

func runIndex(opts *indexOptions) error {
	var in io.Reader = os.Stdin
	if opts.file != "" {
		f, err := os.Open(opts.file)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	docs, err := decodeDocuments(in)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	engine := retrieval.New(flagIndexName,
		retrieval.WithDataDir(cfg.DataDir),
		retrieval.WithoutAutosave(),
	)
	defer engine.Close()

	if opts.clear {
		engine.Clear()
	}
	added := engine.AddDocuments(docs)
	engine.Commit()
	if err := engine.Save(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	stats := engine.Stats()
	fmt.Printf("Indexed %d documents (%d total, %d terms)\n",
		added, stats.DocumentCount, stats.TermCount)
	return nil
}

// decodeDocuments accepts either a JSON array or a stream of JSON objects
// (one per line).
func decodeDocuments(in io.Reader) ([]retrieval.Document, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var raw []indexedDoc
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = raw[:0]
		dec := json.NewDecoder(bytes.NewReader(data))
		for dec.More() {
			var d indexedDoc
			if err := dec.Decode(&d); err != nil {
				return nil, fmt.Errorf("decode documents: %w", err)
			}
			raw = append(raw, d)
		}
	}

	docs := make([]retrieval.Document, 0, len(raw))
	for i, d := range raw {
		if d.ID == "" {
			return nil, fmt.Errorf("document %d: missing id", i)
		}
		docs = append(docs, retrieval.Document{
			ID:        d.ID,
			Content:   d.Content,
			Metadata:  d.Metadata,
			Embedding: d.Embedding,
		})
	}
	return docs, nil
}
