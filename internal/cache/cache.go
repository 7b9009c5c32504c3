// Package cache holds the last known server state of every entity
// collection the console has read, keyed by entity kind and query.
//
// Reads never block on a stale entry: the previous snapshot is returned
// while a refetch runs in the background (stale-while-revalidate).
// Identical concurrent reads share one backend call. Mutations go through
// Mutate, which invalidates dependent kinds on success and reports the
// outcome to the notifier. The cache is only ever written by completed
// loads.
package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/ludoteca-console/internal/model"
	"github.com/iliyamo/ludoteca-console/internal/notify"
)

// ErrClosed is returned by reads issued after Close.
var ErrClosed = errors.New("cache closed")

const defaultRefreshTimeout = 15 * time.Second

// Options wires a Cache to its collaborators. Only Loader is required.
type Options struct {
	Loader Loader

	// Graph returns the kinds made stale by a successful mutation. When
	// nil, a mutation only invalidates its own kind.
	Graph func(kind model.Kind, op model.Operation) []model.Kind

	Metrics  Metrics
	Observer Observer
	Notifier Notifier
	Logger   Logger

	// RefreshTimeout bounds background fetches, which outlive the read
	// that triggered them.
	RefreshTimeout time.Duration
}

// Mutation describes one write against the backend.
type Mutation struct {
	Kind model.Kind
	Op   model.Operation

	// Success is published as an ok message when Do succeeds. Empty
	// means nothing is published on success.
	Success string

	Do func(ctx context.Context) (any, error)
}

// Cache is safe for concurrent use.
type Cache struct {
	loader         Loader
	graph          func(model.Kind, model.Operation) []model.Kind
	metrics        Metrics
	observer       Observer
	notifier       Notifier
	logger         Logger
	refreshTimeout time.Duration
	now            func() time.Time

	sf singleflight.Group
	wg sync.WaitGroup

	mu      sync.Mutex
	entries map[string]*entry
	subs    map[string]map[int]func(View)
	nextSub int
	closed  bool

	// deliver orders subscriber callbacks across all keys.
	deliver sync.Mutex
}

// entry is the per-key state. gen is bumped by every invalidation; a load
// started under an older generation can still fill an empty entry but
// never clears the stale flag, and never overwrites data from a newer
// generation.
type entry struct {
	key      Key
	snap     Snapshot
	has      bool
	stale    bool
	fetching bool
	err      error
	gen      uint64
	applied  uint64

	// rev counts changes worth telling subscribers about; shown is the
	// rev they last saw.
	rev   uint64
	shown uint64
}

func (e *entry) view() View {
	v := View{Key: e.key, Snapshot: e.snap}
	switch {
	case e.err != nil && !e.stale && !e.fetching:
		v.Status, v.Err = StatusError, e.err
	case !e.has:
		v.Status = StatusPending
	case e.stale:
		v.Status = StatusStale
	default:
		v.Status = StatusFresh
	}
	return v
}

// New returns an empty cache. It panics when opts.Loader is nil.
func New(opts Options) *Cache {
	if opts.Loader == nil {
		panic("nil loader passed to cache.New")
	}
	c := &Cache{
		loader:         opts.Loader,
		graph:          opts.Graph,
		metrics:        opts.Metrics,
		observer:       opts.Observer,
		notifier:       opts.Notifier,
		logger:         opts.Logger,
		refreshTimeout: opts.RefreshTimeout,
		now:            time.Now,
		entries:        make(map[string]*entry),
		subs:           make(map[string]map[int]func(View)),
	}
	if c.graph == nil {
		c.graph = func(kind model.Kind, _ model.Operation) []model.Kind { return []model.Kind{kind} }
	}
	if c.metrics == nil {
		c.metrics = NoopMetrics{}
	}
	if c.observer == nil {
		c.observer = noopObserver{}
	}
	if c.notifier == nil {
		c.notifier = noopNotifier{}
	}
	if c.logger == nil {
		c.logger = discardLogger()
	}
	if c.refreshTimeout <= 0 {
		c.refreshTimeout = defaultRefreshTimeout
	}
	return c
}

// Read returns what the cache currently holds for key without blocking.
// A missing or stale entry triggers a background fetch; the returned view
// is Pending (nothing to show yet) or Stale (previous snapshot) until that
// fetch lands. An errored entry stays errored until Refetch or an
// invalidation.
func (c *Cache) Read(ctx context.Context, key Key) View {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return View{Key: key, Status: StatusError, Err: ErrClosed}
	}
	e := c.entryLocked(key)
	v := e.view()

	start := false
	switch {
	case e.fetching:
	case e.has && !e.stale:
	case e.err != nil && !e.stale:
	default:
		start = true
		e.fetching = true
		c.wg.Add(1)
	}
	gen := e.gen
	c.mu.Unlock()

	switch v.Status {
	case StatusFresh:
		c.metrics.Hit(key.Kind)
	case StatusStale:
		c.metrics.StaleHit(key.Kind)
	case StatusPending:
		c.metrics.Miss(key.Kind)
	}

	if start {
		// Reported before returning so a pending view is never paired
		// with an idle indicator.
		id := uuid.NewString()
		c.observer.Started(id, key.Kind)
		go c.refresh(ctx, key, gen, id)
	}
	return v
}

// Get returns a fresh snapshot for key, fetching it if the entry is
// missing, stale or errored. Concurrent callers share one fetch.
func (c *Cache) Get(ctx context.Context, key Key) (Snapshot, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	e := c.entryLocked(key)
	if e.has && !e.stale && e.err == nil {
		snap := e.snap
		c.mu.Unlock()
		c.metrics.Hit(key.Kind)
		return snap, nil
	}
	e.fetching = true
	gen := e.gen
	c.mu.Unlock()

	c.metrics.Miss(key.Kind)
	return c.load(ctx, key, gen)
}

// Refetch marks key stale and reads it again. It is the retry path for an
// errored entry.
func (c *Cache) Refetch(ctx context.Context, key Key) View {
	c.mu.Lock()
	if e, ok := c.entries[key.String()]; ok {
		e.gen++
		e.stale = true
		e.fetching = false
	}
	c.mu.Unlock()
	return c.Read(ctx, key)
}

// Invalidate marks every cached collection of kind stale and returns how
// many entries were affected. Entries are not dropped; the next read
// refetches them and shows the old snapshot meanwhile. Invalidating a
// kind with nothing cached does nothing.
func (c *Cache) Invalidate(kind model.Kind) int {
	c.mu.Lock()
	var touched []*entry
	for _, e := range c.entries {
		if e.key.Kind != kind {
			continue
		}
		e.gen++
		e.stale = true
		e.fetching = false
		touched = append(touched, e)
	}
	keys := make([]string, 0, len(touched))
	for _, e := range touched {
		e.rev++
		keys = append(keys, e.key.String())
	}
	c.mu.Unlock()

	if len(touched) > 0 {
		c.metrics.Invalidate(kind)
		c.logger.Debug("cache invalidated", "kind", kind, "entries", len(touched))
	}
	for _, k := range keys {
		c.publish(k)
	}
	return len(touched)
}

// Mutate runs m.Do. On success it invalidates every kind the graph names
// for (m.Kind, m.Op) and publishes m.Success. On failure the cache is left
// untouched and the error text is published; the error is also returned.
func (c *Cache) Mutate(ctx context.Context, m Mutation) (any, error) {
	id := uuid.NewString()
	c.observer.Started(id, m.Kind)
	defer c.observer.Settled(id, m.Kind)

	v, err := m.Do(ctx)
	if err != nil {
		c.logger.Warn("mutation failed", "kind", m.Kind, "op", m.Op, "error", err)
		c.notifier.Publish(notify.ErrorText(err), notify.Error)
		return nil, err
	}

	for _, k := range c.graph(m.Kind, m.Op) {
		c.Invalidate(k)
	}
	if m.Success != "" {
		c.notifier.Publish(m.Success, notify.Ok)
	}
	return v, nil
}

// Subscribe calls fn whenever the entry for key changes: a load lands, a
// load fails, or the entry is invalidated. Callbacks run on the goroutine
// that caused the change, one at a time, and must not block. A callback
// may Read but must not Invalidate or Mutate.
func (c *Cache) Subscribe(key Key, fn func(View)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	k := key.String()
	if c.subs[k] == nil {
		c.subs[k] = make(map[int]func(View))
	}
	c.subs[k][id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs[k], id)
		if len(c.subs[k]) == 0 {
			delete(c.subs, k)
		}
		c.mu.Unlock()
	}
}

// Wait blocks until every background fetch started so far has finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Close stops accepting reads, waits for background fetches and drops all
// entries and subscriptions.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.subs = make(map[string]map[int]func(View))
	c.mu.Unlock()
}

func (c *Cache) entryLocked(key Key) *entry {
	k := key.String()
	e, ok := c.entries[k]
	if !ok {
		e = &entry{key: key}
		c.entries[k] = e
	}
	return e
}

func (c *Cache) refresh(ctx context.Context, key Key, gen uint64, requestID string) {
	defer c.wg.Done()
	defer c.observer.Settled(requestID, key.Kind)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()
	_, _ = c.load(ctx, key, gen)
}

// load performs at most one backend call per (key, generation) at a time.
func (c *Cache) load(ctx context.Context, key Key, gen uint64) (Snapshot, error) {
	flight := key.String() + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := c.sf.Do(flight, func() (any, error) {
		// A flight for this generation may have landed between the
		// caller's check and this call.
		if snap, ok := c.freshFor(key, gen); ok {
			return snap, nil
		}

		id := uuid.NewString()
		c.observer.Started(id, key.Kind)
		defer c.observer.Settled(id, key.Kind)

		snap, err := c.loader.Load(ctx, key)
		if err == nil {
			snap.Key = key
			if snap.FetchedAt.IsZero() {
				snap.FetchedAt = c.now()
			}
		}
		c.apply(key, gen, snap, err)
		return snap, err
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

func (c *Cache) freshFor(key Key, gen uint64) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok || !e.has || e.stale || e.err != nil || e.applied < gen {
		return Snapshot{}, false
	}
	return e.snap, true
}

func (c *Cache) apply(key Key, gen uint64, snap Snapshot, err error) {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if !ok || c.closed {
		c.mu.Unlock()
		return
	}
	current := gen == e.gen
	if current {
		e.fetching = false
	}

	if err != nil {
		if current {
			if errors.Is(err, context.Canceled) {
				// The caller went away; let the next read try again.
				e.stale = true
			} else {
				e.err = err
				e.stale = false
			}
		}
		e.rev++
		c.mu.Unlock()

		c.metrics.LoadError(key.Kind)
		c.logger.Warn("cache load failed", "key", key.String(), "error", err)
		c.publish(key.String())
		return
	}

	if gen < e.applied {
		c.mu.Unlock()
		c.logger.Debug("dropping superseded load", "key", key.String(), "gen", gen)
		return
	}
	e.snap = snap
	e.has = true
	e.applied = gen
	if current {
		e.stale = false
		e.err = nil
	}
	e.rev++
	c.mu.Unlock()

	c.publish(key.String())
}

// publish hands subscribers of k the entry's view as it is now. Changes
// that land while an older delivery is running collapse into one callback,
// so the last view a subscriber sees is always the current one.
func (c *Cache) publish(k string) {
	c.deliver.Lock()
	defer c.deliver.Unlock()

	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok || e.rev == e.shown {
		c.mu.Unlock()
		return
	}
	e.shown = e.rev
	v := e.view()
	subs := c.subs[k]
	fns := make([]func(View), 0, len(subs))
	for _, fn := range subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
