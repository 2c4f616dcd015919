package otel

import (
	"strings"
	"sync"
)

// DefaultRingSize is the default ring buffer capacity.
const DefaultRingSize = 1024

// RingBuffer keeps the most recent Events, overwriting the oldest when full.
// Goroutine-safe.
type RingBuffer struct {
	mu   sync.Mutex
	buf  []Event
	next int  // write position
	full bool // buf has wrapped at least once
}

// NewRingBuffer creates a ring buffer holding size events.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{buf: make([]Event, size)}
}

// Push stores e. The Extra map is copied so callers may reuse theirs.
func (r *RingBuffer) Push(e Event) {
	if e.Extra != nil {
		extra := make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			extra[k] = v
		}
		e.Extra = extra
	}
	r.mu.Lock()
	r.buf[r.next] = e
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
	r.mu.Unlock()
}

// lenLocked is the number of stored events. Caller holds r.mu.
func (r *RingBuffer) lenLocked() int {
	if r.full {
		return len(r.buf)
	}
	return r.next
}

// at returns the i-th oldest stored event. Caller holds r.mu.
func (r *RingBuffer) at(i int) Event {
	if !r.full {
		return r.buf[i]
	}
	return r.buf[(r.next+i)%len(r.buf)]
}

// Snapshot returns all stored events, oldest first.
func (r *RingBuffer) Snapshot() []Event {
	return r.Last(len(r.buf))
}

// Last returns up to n of the newest events, oldest first.
func (r *RingBuffer) Last(n int) []Event {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.lenLocked()
	if count == 0 {
		return nil
	}
	if n > count {
		n = count
	}
	out := make([]Event, 0, n)
	for i := count - n; i < count; i++ {
		out = append(out, r.at(i))
	}
	return out
}

// LastMatching returns up to n of the newest events whose kind starts with
// prefix, oldest first.
func (r *RingBuffer) LastMatching(prefix string, n int) []Event {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var rev []Event
	for i := r.lenLocked() - 1; i >= 0 && len(rev) < n; i-- {
		if e := r.at(i); strings.HasPrefix(string(e.Kind), prefix) {
			rev = append(rev, e)
		}
	}
	out := make([]Event, len(rev))
	for i, e := range rev {
		out[len(rev)-1-i] = e
	}
	return out
}

// Len returns the number of stored events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lenLocked()
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return len(r.buf)
}

// Stats counts stored events by kind.
func (r *RingBuffer) Stats() map[EventKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[EventKind]int)
	for i := 0; i < r.lenLocked(); i++ {
		counts[r.at(i).Kind]++
	}
	return counts
}
