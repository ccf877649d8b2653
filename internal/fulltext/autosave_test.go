package fulltext

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTimer records the scheduled callback so tests fire it manually.
type fakeTimer struct {
	fn      func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

// fakeClock hands out fakeTimers and remembers the most recent one.
type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) factory(d time.Duration, fn func()) Timer {
	t := &fakeTimer{fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) fireLast() {
	last := c.timers[len(c.timers)-1]
	if !last.stopped {
		last.fn()
	}
}

func TestAutosaver_DebouncesBursts(t *testing.T) {
	clock := &fakeClock{}
	saves := 0

	a := newAutosaver(time.Second, func() { saves++ })
	a.setTimerFactory(clock.factory)

	// A burst of schedules arms one timer at a time.
	a.Schedule()
	a.Schedule()
	a.Schedule()

	require.Len(t, clock.timers, 3)
	assert.True(t, clock.timers[0].stopped)
	assert.True(t, clock.timers[1].stopped)
	assert.False(t, clock.timers[2].stopped)

	clock.fireLast()
	assert.Equal(t, 1, saves)
}

func TestAutosaver_StopCancelsPending(t *testing.T) {
	clock := &fakeClock{}
	saves := 0

	a := newAutosaver(time.Second, func() { saves++ })
	a.setTimerFactory(clock.factory)

	a.Schedule()
	a.Stop()

	clock.fireLast()
	assert.Equal(t, 0, saves)

	// Schedule after Stop is a no-op.
	a.Schedule()
	assert.Len(t, clock.timers, 1)
}

func TestAutosaver_StopIsIdempotent(t *testing.T) {
	a := newAutosaver(time.Second, func() {})
	a.Stop()
	a.Stop()
}

func TestIndex_AutosaveWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{}

	cfg := DefaultConfig("auto")
	cfg.DataDir = dir
	cfg.AutoSave = true
	idx := NewIndex(cfg)
	require.NotNil(t, idx.saver)
	idx.saver.setTimerFactory(clock.factory)

	// Each mutation re-arms the debounce; only the last timer is live.
	idx.AddDocument("doc1", "first document", nil)
	idx.AddDocument("doc2", "second document", nil)

	_, err := os.Stat(idx.SnapshotPath())
	require.True(t, os.IsNotExist(err), "snapshot must not exist before the timer fires")

	clock.fireLast()

	_, err = os.Stat(idx.SnapshotPath())
	assert.NoError(t, err)

	restored := NewIndex(cfg)
	require.True(t, restored.LoadFromDisk())
	assert.Equal(t, 2, restored.Stats().DocumentCount)
}

func TestIndex_NoAutosaverWithoutDataDir(t *testing.T) {
	cfg := DefaultConfig("memonly")
	cfg.AutoSave = true
	idx := NewIndex(cfg)
	assert.Nil(t, idx.saver)
}
