package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_OpenIsIdempotent(t *testing.T) {
	r := NewRegistry()
	defer r.CloseAll()

	first := r.Open("notes")
	second := r.Open("notes")

	assert.Same(t, first, second)
}

func TestRegistry_DefaultsApplyToEveryEngine(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(WithDataDir(dir), WithoutAutosave())

	e := r.Open("notes")
	e.AddDocument(Document{ID: "doc1", Content: "persisted through defaults"})
	require.NoError(t, r.CloseAll())

	// A fresh registry with the same defaults restores the snapshot.
	r2 := NewRegistry(WithDataDir(dir), WithoutAutosave())
	defer r2.CloseAll()
	assert.Equal(t, 1, r2.Open("notes").Stats().DocumentCount)
}

func TestRegistry_GetAndNames(t *testing.T) {
	r := NewRegistry()
	defer r.CloseAll()

	_, ok := r.Get("notes")
	assert.False(t, ok)

	r.Open("zeta")
	r.Open("alpha")

	got, ok := r.Get("zeta")
	assert.True(t, ok)
	assert.Equal(t, "zeta", got.Name())
	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry()

	r.Open("notes")
	require.NoError(t, r.Close("notes"))
	_, ok := r.Get("notes")
	assert.False(t, ok)

	// Closing an unknown engine is a no-op.
	assert.NoError(t, r.Close("ghost"))
}
