package otel

import "sync"

// DefaultRingSize is the capacity used when NewRingBuffer gets size <= 0.
const DefaultRingSize = 512

// RingBuffer keeps the most recent events, overwriting the oldest.
// Safe for concurrent Push and reads.
type RingBuffer struct {
	mu     sync.Mutex
	events []Event
	next   int // index of the next write
	n      int // valid entries, 0..len(events)
}

// NewRingBuffer creates a ring buffer holding up to size events.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{events: make([]Event, size)}
}

// Push stores e, evicting the oldest event when full. Slice and map fields
// are copied so later mutation by the emitter cannot leak in.
func (r *RingBuffer) Push(e Event) {
	if e.Extra != nil {
		cp := make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			cp[k] = v
		}
		e.Extra = cp
	}
	if e.Derived != nil {
		e.Derived = append([]string(nil), e.Derived...)
	}

	r.mu.Lock()
	r.events[r.next] = e
	r.next = (r.next + 1) % len(r.events)
	if r.n < len(r.events) {
		r.n++
	}
	r.mu.Unlock()
}

// oldest returns the index of the oldest valid entry. Caller holds r.mu.
func (r *RingBuffer) oldest() int {
	if r.n < len(r.events) {
		return 0
	}
	return r.next
}

// at returns the i-th valid entry counting from the oldest. Caller holds r.mu.
func (r *RingBuffer) at(i int) Event {
	return r.events[(r.oldest()+i)%len(r.events)]
}

// Snapshot returns all events, oldest first.
func (r *RingBuffer) Snapshot() []Event {
	return r.Last(r.Cap())
}

// Last returns the n most recent events in chronological order.
// n larger than Len returns everything; n <= 0 returns nil.
func (r *RingBuffer) Last(n int) []Event {
	if n <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.n == 0 {
		return nil
	}
	if n > r.n {
		n = r.n
	}
	out := make([]Event, n)
	skip := r.n - n
	for i := range out {
		out[i] = r.at(skip + i)
	}
	return out
}

// Run returns the buffered events of one inference run, oldest first.
func (r *RingBuffer) Run(runID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for i := 0; i < r.n; i++ {
		if e := r.at(i); e.RunID == runID {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of buffered events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return len(r.events)
}

// Stats counts buffered events by kind.
func (r *RingBuffer) Stats() map[EventKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[EventKind]int)
	for i := 0; i < r.n; i++ {
		counts[r.at(i).Kind]++
	}
	return counts
}
