// Package eventlog records what a demo actually did: which component
// rendered, which producer ran, which cache was reused. It is the observable
// signal the lab shows in place of console output, and the oracle its tests
// assert against.
package eventlog

import (
	"fmt"
	"sync"
	"time"
)

// Kind classifies an entry.
type Kind string

const (
	KindRender  Kind = "render"
	KindCompute Kind = "compute"
	KindHit     Kind = "hit"
	KindState   Kind = "state"
	KindError   Kind = "error"
)

// Entry is one recorded event.
type Entry struct {
	Seq     uint64    `json:"seq"`
	Kind    Kind      `json:"kind"`
	Source  string    `json:"source"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// String formats the entry the way a console line would read.
func (e Entry) String() string {
	return fmt.Sprintf("#%d [%s] %s: %s", e.Seq, e.Kind, e.Source, e.Message)
}

// DefaultCapacity bounds a Log created with a non-positive capacity.
const DefaultCapacity = 1000

// Log is an append-only, bounded event record. When full, the oldest half
// is dropped; sequence numbers keep increasing.
type Log struct {
	mu       sync.RWMutex
	entries  []Entry
	seq      uint64
	capacity int
	now      func() time.Time
}

// New creates a Log holding at most capacity entries.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		entries:  make([]Entry, 0, min(capacity, 64)),
		capacity: capacity,
		now:      time.Now,
	}
}

// Record appends an entry and returns it.
func (l *Log) Record(kind Kind, source, message string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Keep only recent entries
	if len(l.entries) >= l.capacity {
		drop := max(l.capacity/2, 1)
		l.entries = append(l.entries[:0], l.entries[drop:]...)
	}

	l.seq++
	e := Entry{
		Seq:     l.seq,
		Kind:    kind,
		Source:  source,
		Message: message,
		At:      l.now(),
	}
	l.entries = append(l.entries, e)
	return e
}

// Recordf appends an entry with a formatted message.
func (l *Log) Recordf(kind Kind, source, format string, args ...any) Entry {
	return l.Record(kind, source, fmt.Sprintf(format, args...))
}

// Entries returns a copy of all retained entries, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.entries...)
}

// Since returns the retained entries with Seq greater than seq.
func (l *Log) Since(seq uint64) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for _, e := range l.entries {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many retained entries match kind and source. An empty
// kind or source matches anything.
func (l *Log) Count(kind Kind, source string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, e := range l.entries {
		if (kind == "" || e.Kind == kind) && (source == "" || e.Source == source) {
			n++
		}
	}
	return n
}

// Last returns the most recent entry.
func (l *Log) Last() (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Seq returns the sequence number of the latest entry.
func (l *Log) Seq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

// Reset drops every entry. Sequence numbers are not reused.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// OnHit implements memo.Observer.
func (l *Log) OnHit(name string) {
	l.Record(KindHit, name, "reused cached result")
}

// OnMiss implements memo.Observer.
func (l *Log) OnMiss(name string, took time.Duration) {
	l.Recordf(KindCompute, name, "recomputed in %s", took.Round(time.Microsecond))
}
