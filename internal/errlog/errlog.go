// Package errlog holds the bounded, shared error log displayed by the
// dashboard. Probe workers and sinks append to it concurrently; the renderer
// reads copies.
package errlog

import (
	"fmt"
	"sync"
)

const defaultCapacity = 50

// Log is a mutex-guarded, bounded list of error messages. When full, the
// oldest entry is dropped.
type Log struct {
	mu       sync.Mutex
	capacity int
	entries  []string
}

// New returns a log bounded to capacity entries; capacity <= 0 selects the
// default bound.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Log{capacity: capacity}
}

// Append records a formatted error message.
func (l *Log) Append(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, fmt.Sprintf(format, args...))
	if len(l.entries) > l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:l.capacity]
	}
}

// Snapshot returns a copy of the current entries, oldest first.
func (l *Log) Snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.entries...)
}

// Len returns the current number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}
