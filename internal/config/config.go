// Package config loads and validates retrieval engine configuration from a
// YAML file, with defaults suitable for embedding in the desktop app.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	reterrors "github.com/notevault/retrieval/internal/errors"
)

// DefaultFileName is the config file looked up inside the data directory.
const DefaultFileName = "retrieval.yaml"

// Config is the full configuration surface.
type Config struct {
	// DataDir is where snapshots and logs live.
	DataDir string `yaml:"data_dir"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	Search     SearchConfig     `yaml:"search"`
	Tournament TournamentConfig `yaml:"tournament"`
	Autosave   AutosaveConfig   `yaml:"autosave"`
}

// SearchConfig configures hybrid fusion.
type SearchConfig struct {
	KeywordWeight  float64 `yaml:"keyword_weight"`
	SemanticWeight float64 `yaml:"semantic_weight"`
	InitialTopK    int     `yaml:"initial_top_k"`
	FinalTopK      int     `yaml:"final_top_k"`
	Threshold      float64 `yaml:"threshold"`
	Rerank         bool    `yaml:"rerank"`
}

// TournamentConfig configures the Swiss reranker.
type TournamentConfig struct {
	Rounds        int     `yaml:"rounds"`
	WinPoints     int     `yaml:"win_points"`
	DrawPoints    int     `yaml:"draw_points"`
	LossPoints    int     `yaml:"loss_points"`
	DrawThreshold float64 `yaml:"draw_threshold"`
	UseBuchholz   bool    `yaml:"use_buchholz"`
}

// AutosaveConfig configures the debounced snapshot timer.
type AutosaveConfig struct {
	Enabled bool          `yaml:"enabled"`
	Delay   time.Duration `yaml:"delay"`
}

// Default returns the default configuration rooted at dataDir.
func Default(dataDir string) Config {
	return Config{
		DataDir:  dataDir,
		LogLevel: "info",
		Search: SearchConfig{
			KeywordWeight:  0.3,
			SemanticWeight: 0.7,
			InitialTopK:    100,
			FinalTopK:      10,
			Threshold:      0,
			Rerank:         false,
		},
		Tournament: TournamentConfig{
			Rounds:        3,
			WinPoints:     3,
			DrawPoints:    1,
			LossPoints:    0,
			DrawThreshold: 0.1,
			UseBuchholz:   true,
		},
		Autosave: AutosaveConfig{
			Enabled: true,
			Delay:   5 * time.Second,
		},
	}
}

// Load reads the config file under dataDir, layering it over defaults.
// A missing file returns defaults without error; a malformed file returns a
// config error.
func Load(dataDir string) (Config, error) {
	cfg := Default(dataDir)
	path := filepath.Join(dataDir, DefaultFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, reterrors.New(reterrors.ErrCodeConfigNotFound, "read config", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(dataDir), reterrors.New(reterrors.ErrCodeConfigInvalid, "parse config", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return Default(dataDir), err
	}
	return cfg, nil
}

// Validate checks configured values for consistency.
func (c Config) Validate() error {
	if c.Search.KeywordWeight < 0 || c.Search.SemanticWeight < 0 {
		return reterrors.New(reterrors.ErrCodeConfigInvalid,
			fmt.Sprintf("negative search weights: keyword=%v semantic=%v",
				c.Search.KeywordWeight, c.Search.SemanticWeight), nil)
	}
	if c.Search.InitialTopK < 0 || c.Search.FinalTopK < 0 {
		return reterrors.New(reterrors.ErrCodeConfigInvalid, "negative top-k", nil)
	}
	if c.Tournament.Rounds < 0 {
		return reterrors.New(reterrors.ErrCodeConfigInvalid, "negative tournament rounds", nil)
	}
	if c.Tournament.DrawThreshold < 0 {
		return reterrors.New(reterrors.ErrCodeConfigInvalid, "negative draw threshold", nil)
	}
	if c.Autosave.Delay < 0 {
		return reterrors.New(reterrors.ErrCodeConfigInvalid, "negative autosave delay", nil)
	}
	return nil
}

// Save writes the configuration to its file under DataDir.
func (c Config) Save() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return reterrors.New(reterrors.ErrCodeDataDirUnusable, "create data dir", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return reterrors.New(reterrors.ErrCodeInternal, "encode config", err)
	}
	path := filepath.Join(c.DataDir, DefaultFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return reterrors.New(reterrors.ErrCodeDataDirUnusable, "write config", err)
	}
	return nil
}

// DefaultDataDir returns the per-user data directory for the retrieval
// engine, creating nothing.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".notevault"
	}
	return filepath.Join(home, ".notevault", "retrieval")
}
