// Package combo turns a stream of edit timestamps into an activation decision.
package combo

import (
	"sync"
	"time"

	"github.com/lixenwraith/powermode/config"
)

// Tracker counts closely spaced edits
// Threshold and timeout are read from the config store on every call
type Tracker struct {
	cfg *config.Store

	mu        sync.Mutex
	streak    int
	lastPress time.Time
}

func NewTracker(cfg *config.Store) *Tracker {
	return &Tracker{cfg: cfg}
}

// RegisterEdit records an edit at now and reports whether effects should fire
func (t *Tracker) RegisterEdit(now time.Time) bool {
	snap := t.cfg.Load()

	t.mu.Lock()
	defer t.mu.Unlock()

	if snap.ComboActivationThreshold == 0 {
		t.lastPress = now
		return true
	}

	t.streak++
	// A stale edit opens a new combo and counts as its first hit
	if !t.lastPress.IsZero() && now.Sub(t.lastPress) > snap.ComboTimeout {
		t.streak = 1
	}
	t.lastPress = now

	return t.streak >= snap.ComboActivationThreshold
}

// Streak returns the current combo length
func (t *Tracker) Streak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streak
}

// LastPress returns the time of the most recent registered edit
func (t *Tracker) LastPress() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastPress
}

// Reset drops the streak and the last press time
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.streak = 0
	t.lastPress = time.Time{}
}
