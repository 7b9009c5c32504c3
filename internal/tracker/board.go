package tracker

import (
	"sort"
	"sync"

	"github.com/iliyamo/ludoteca-console/internal/model"
)

// Board keeps one Tracker per page and routes request events to every page
// that watches the request's entity kind. It satisfies the cache's
// Observer interface.
type Board struct {
	mu      sync.RWMutex
	pages   map[string]*Tracker
	watches map[model.Kind][]string
}

func NewBoard() *Board {
	return &Board{
		pages:   make(map[string]*Tracker),
		watches: make(map[model.Kind][]string),
	}
}

// Watch makes page track requests on the given kinds and returns its
// tracker. Calling Watch again for the same page adds kinds.
func (b *Board) Watch(page string, kinds ...model.Kind) *Tracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.pages[page]
	if !ok {
		t = New()
		b.pages[page] = t
	}
	for _, k := range kinds {
		if !contains(b.watches[k], page) {
			b.watches[k] = append(b.watches[k], page)
		}
	}
	return t
}

// Page returns the tracker for page, or nil when the page is not watched.
func (b *Board) Page(page string) *Tracker {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pages[page]
}

// Pages lists the watched pages in alphabetical order.
func (b *Board) Pages() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.pages))
	for p := range b.pages {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Started forwards a started event to every page watching kind.
func (b *Board) Started(requestID string, kind model.Kind) {
	for _, t := range b.trackersFor(kind) {
		t.Observe(requestID, Started)
	}
}

// Settled forwards a settled event to every page watching kind.
func (b *Board) Settled(requestID string, kind model.Kind) {
	for _, t := range b.trackersFor(kind) {
		t.Observe(requestID, Settled)
	}
}

// IsBusy reports whether any page is busy.
func (b *Board) IsBusy() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, t := range b.pages {
		if t.IsBusy() {
			return true
		}
	}
	return false
}

func (b *Board) trackersFor(kind model.Kind) []*Tracker {
	b.mu.RLock()
	defer b.mu.RUnlock()
	pages := b.watches[kind]
	out := make([]*Tracker, 0, len(pages))
	for _, p := range pages {
		out = append(out, b.pages[p])
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
