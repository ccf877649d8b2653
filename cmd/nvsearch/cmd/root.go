// Package cmd provides the CLI commands for nvsearch, the companion tool of
// the NoteVault retrieval engine. It indexes documents into named snapshot
// files and queries them with the same pipeline the desktop app embeds.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notevault/retrieval/internal/config"
	"github.com/notevault/retrieval/internal/logging"
	"github.com/notevault/retrieval/pkg/version"
)

// Persistent flags shared by every command.
var (
	flagDataDir   string
	flagIndexName string
	flagLogLevel  string

	loggingCleanup func()
)

// NewRootCmd creates the root command for the nvsearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nvsearch",
		Short: "Keyword + semantic search over NoteVault document snapshots",
		Long: `nvsearch indexes documents into the NoteVault retrieval engine and
queries them with BM25+ keyword scoring, optional semantic fusion, and an
optional Swiss-tournament rerank pass.

Index state persists as one JSON snapshot per named index under the data
directory.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("nvsearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", config.DefaultDataDir(), "Directory for index snapshots")
	cmd.PersistentFlags().StringVar(&flagIndexName, "index", "default", "Index name")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cleanup, err := logging.SetupDefault(flagLogLevel)
		if err != nil {
			return fmt.Errorf("logging setup: %w", err)
		}
		loggingCleanup = cleanup
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig resolves the effective configuration for the current flags.
func loadConfig() config.Config {
	cfg, err := config.Load(flagDataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning: ", err, "- using defaults")
		cfg = config.Default(flagDataDir)
	}
	return cfg
}
