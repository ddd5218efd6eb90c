// Package stats aggregates verdicts across rooms for the /api/stats
// endpoint. In-memory only, like the rest of the engine.
package stats

import (
	"sync"

	"github.com/voice-ci/engine/internal/session"
)

// Stats is the aggregate view served to clients.
type Stats struct {
	RoomsCreated   int            `json:"roomsCreated"`
	Passes         int            `json:"passes"`
	Fails          int            `json:"fails"`
	PassRate       float64        `json:"passRate"`
	FailureReasons map[string]int `json:"failureReasons"`
}

// Tracker accumulates verdict outcomes. Each room counts once toward
// creation and once toward its verdict, no matter how often snapshots of
// a terminal room come through.
type Tracker struct {
	mu      sync.Mutex
	stats   Stats
	counted map[string]bool // room IDs whose verdict is already tallied
}

func NewTracker() *Tracker {
	return &Tracker{
		stats:   Stats{FailureReasons: make(map[string]int)},
		counted: make(map[string]bool),
	}
}

// RoomCreated records a newly created room. Callers must only report
// genuinely new rooms (the registry's idempotent create already filters
// repeats).
func (t *Tracker) RoomCreated() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.RoomsCreated++
}

// RecordVerdict tallies a terminal snapshot. Non-terminal snapshots and
// repeat deliveries for the same room are ignored.
func (t *Tracker) RecordVerdict(st *session.SessionState) {
	if st == nil || !st.IsTerminal() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.counted[st.RoomID] {
		return
	}
	t.counted[st.RoomID] = true

	switch st.Status {
	case session.Pass:
		t.stats.Passes++
	case session.Fail:
		t.stats.Fails++
		if st.FailureReason != nil {
			t.stats.FailureReasons[*st.FailureReason]++
		}
	}
}

// RoomRemoved forgets the verdict bookkeeping for a removed room so a
// re-created room with the same id can be tallied again. Totals already
// counted stay counted.
func (t *Tracker) RoomRemoved(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.counted, roomID)
}

// Snapshot returns a deep copy of the current aggregates.
func (t *Tracker) Snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.stats
	out.FailureReasons = make(map[string]int, len(t.stats.FailureReasons))
	for reason, n := range t.stats.FailureReasons {
		out.FailureReasons[reason] = n
	}
	if total := out.Passes + out.Fails; total > 0 {
		out.PassRate = float64(out.Passes) / float64(total)
	}
	return out
}
