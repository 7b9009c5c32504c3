// Package tracker folds the lifecycle of many concurrent requests into the
// single busy flag that drives the global progress indicator.
package tracker

import "sync"

// Phase is a request lifecycle event.
type Phase int

const (
	Started Phase = iota
	Settled
)

func (p Phase) String() string {
	if p == Started {
		return "started"
	}
	return "settled"
}

// Tracker is busy while at least one observed request has started and not
// yet settled. Success and failure both count as settled.
type Tracker struct {
	mu     sync.Mutex
	active map[string]struct{}
	nextID int
	subs   map[int]func(bool)

	// deliver orders callbacks; shown is the last state handed to them.
	deliver sync.Mutex
	shown   bool
}

func New() *Tracker {
	return &Tracker{
		active: make(map[string]struct{}),
		subs:   make(map[int]func(bool)),
	}
}

// Observe records a lifecycle event for requestID. Starting an id twice
// and settling an unknown id are both ignored, so the flag never goes
// false while another request is outstanding.
func (t *Tracker) Observe(requestID string, phase Phase) {
	t.mu.Lock()
	before := len(t.active) > 0
	switch phase {
	case Started:
		t.active[requestID] = struct{}{}
	case Settled:
		delete(t.active, requestID)
	}
	after := len(t.active) > 0
	t.mu.Unlock()

	if before != after {
		t.flush()
	}
}

// flush hands the state as it is now, not as it was when the transition
// happened, so the last callback always agrees with IsBusy.
func (t *Tracker) flush() {
	t.deliver.Lock()
	defer t.deliver.Unlock()

	t.mu.Lock()
	busy := len(t.active) > 0
	subs := make([]func(bool), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	if busy == t.shown {
		return
	}
	t.shown = busy
	for _, fn := range subs {
		fn(busy)
	}
}

// IsBusy reports whether any observed request is still in flight.
func (t *Tracker) IsBusy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active) > 0
}

// Pending returns the number of requests in flight.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// Subscribe registers fn to run on every busy transition (false->true and
// true->false). It is not called for starts or settles that leave the
// flag unchanged. Callbacks are serialized and must not call Observe.
func (t *Tracker) Subscribe(fn func(busy bool)) (cancel func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// Follow is Subscribe plus an immediate call with the current state.
func (t *Tracker) Follow(fn func(busy bool)) (cancel func()) {
	t.deliver.Lock()
	defer t.deliver.Unlock()

	cancel = t.Subscribe(fn)
	fn(t.IsBusy())
	return cancel
}
