package fulltext

import (
	"sync"
	"time"
)

// Timer is a cancellable delayed task.
type Timer interface {
	// Stop cancels the timer. Reports whether it was still pending.
	Stop() bool
}

// TimerFactory creates a Timer that fires fn once after d.
// Tests inject a fake factory to drive the debounce deterministically.
type TimerFactory func(d time.Duration, fn func()) Timer

type realTimer struct{ t *time.Timer }

func (r realTimer) Stop() bool { return r.t.Stop() }

func defaultTimerFactory(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, fn)}
}

// autosaver debounces save requests: any Schedule call within the window
// cancels and restarts the pending timer, so at most one save is pending and
// only the last call in a burst persists.
type autosaver struct {
	mu       sync.Mutex
	delay    time.Duration
	newTimer TimerFactory
	timer    Timer
	save     func()
	stopped  bool
}

func newAutosaver(delay time.Duration, save func()) *autosaver {
	return &autosaver{
		delay:    delay,
		newTimer: defaultTimerFactory,
		save:     save,
	}
}

// Schedule arms (or re-arms) the debounce timer.
func (a *autosaver) Schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = a.newTimer(a.delay, a.fire)
}

func (a *autosaver) fire() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()

	a.save()
}

// Stop cancels any pending timer. Further Schedule calls are no-ops.
// Safe to call multiple times.
func (a *autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// setTimerFactory swaps the timer factory; used by tests.
func (a *autosaver) setTimerFactory(f TimerFactory) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.newTimer = f
}
