package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reterrors "github.com/notevault/retrieval/internal/errors"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, Default(dir), cfg)
}

func TestLoad_OverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
log_level: debug
search:
  keyword_weight: 0.5
  semantic_weight: 0.5
  initial_top_k: 50
  final_top_k: 5
tournament:
  rounds: 5
  win_points: 3
  draw_points: 1
  draw_threshold: 0.2
  use_buchholz: false
autosave:
  enabled: true
  delay: 2s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), content, 0o644))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.5, cfg.Search.KeywordWeight)
	assert.Equal(t, 5, cfg.Search.FinalTopK)
	assert.Equal(t, 5, cfg.Tournament.Rounds)
	assert.False(t, cfg.Tournament.UseBuchholz)
	assert.Equal(t, 2*time.Second, cfg.Autosave.Delay)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte("{not yaml"), 0o644))

	cfg, err := Load(dir)

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, reterrors.New(reterrors.ErrCodeConfigInvalid, "", nil)))
	// Defaults still come back so the caller can proceed.
	assert.Equal(t, Default(dir), cfg)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	content := []byte("search:\n  keyword_weight: -1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), content, 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, reterrors.ErrCodeConfigInvalid, reterrors.GetCode(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults are valid", func(*Config) {}, true},
		{"negative keyword weight", func(c *Config) { c.Search.KeywordWeight = -0.1 }, false},
		{"negative top-k", func(c *Config) { c.Search.FinalTopK = -1 }, false},
		{"negative rounds", func(c *Config) { c.Tournament.Rounds = -1 }, false},
		{"negative draw threshold", func(c *Config) { c.Tournament.DrawThreshold = -0.5 }, false},
		{"negative autosave delay", func(c *Config) { c.Autosave.Delay = -time.Second }, false},
		{"zero weights allowed", func(c *Config) { c.Search.KeywordWeight = 0; c.Search.SemanticWeight = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()

	cfg := Default(dir)
	cfg.LogLevel = "error"
	cfg.Search.FinalTopK = 25
	require.NoError(t, cfg.Save())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
