// Package journal provides the append-only record of applied actions.
// Together with the initial state and the RNG seed it is a full replay of a
// playthrough: state = f(initial, actions).
package journal

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avidal-games/complot/internal/engine"
)

// Entry is one applied action. Rejected actions are never journaled: they do
// not change state, so a replay without them reconstructs the same states.
type Entry struct {
	ID        string        `json:"id"`
	Seq       int           `json:"seq"`
	Timestamp time.Time     `json:"timestamp"`
	Action    engine.Action `json:"action"`
	Unlocked  []string      `json:"unlocked,omitempty"`
}

// Persister defines how an entry is durably stored.
type Persister interface {
	Append(entry Entry) error
}

// Journal is the in-memory append-only log with optional write-through
// persistence. Writes to the persister are fire-and-forget: a failed write
// never blocks or fails action dispatch.
type Journal struct {
	mu        sync.RWMutex
	entries   []Entry
	persister Persister
}

// New creates a journal with an optional persister.
func New(persister Persister) *Journal {
	return &Journal{persister: persister}
}

// Preload seeds the journal with previously persisted entries, so history
// survives a restart. Call before any Record; the entries are already durable
// and are not written back through the persister. Recording continues the
// loaded sequence.
func (j *Journal) Preload(entries []Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries[:0], entries...)
}

// Record appends an applied action and returns the entry.
func (j *Journal) Record(act engine.Action, unlocked []string, at time.Time) Entry {
	j.mu.Lock()
	entry := Entry{
		ID:        uuid.NewString(),
		Seq:       len(j.entries) + 1,
		Timestamp: at,
		Action:    act,
		Unlocked:  unlocked,
	}
	j.entries = append(j.entries, entry)
	j.mu.Unlock()

	if j.persister != nil {
		go func(e Entry) {
			_ = j.persister.Append(e)
		}(entry)
	}
	return entry
}

// Len returns the number of recorded entries.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Replay returns a copy of the full entry history.
func (j *Journal) Replay() []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Tail returns up to n most recent entries, oldest first.
func (j *Journal) Tail(n int) []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if n <= 0 || n > len(j.entries) {
		n = len(j.entries)
	}
	out := make([]Entry, n)
	copy(out, j.entries[len(j.entries)-n:])
	return out
}
