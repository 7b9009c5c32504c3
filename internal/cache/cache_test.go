package cache_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ludoteca-console/internal/cache"
	"github.com/iliyamo/ludoteca-console/internal/invalidation"
	"github.com/iliyamo/ludoteca-console/internal/model"
	"github.com/iliyamo/ludoteca-console/internal/notify"
	"github.com/iliyamo/ludoteca-console/internal/tracker"
)

// testStore is a loader whose responses are versioned per kind. gate, when
// set, holds every load until a value is sent on it.
type testStore struct {
	mu       sync.Mutex
	version  map[model.Kind]int
	calls    map[string]int
	failWith error
	gate     chan struct{}
}

func newTestStore() *testStore {
	return &testStore{version: map[model.Kind]int{}, calls: map[string]int{}}
}

func (s *testStore) Load(ctx context.Context, key cache.Key) (cache.Snapshot, error) {
	s.mu.Lock()
	s.calls[key.String()]++
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return cache.Snapshot{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return cache.Snapshot{}, s.failWith
	}
	v := s.version[key.Kind]
	return cache.Snapshot{Items: []int{v}, Total: 1}, nil
}

func (s *testStore) bump(kind model.Kind) {
	s.mu.Lock()
	s.version[kind]++
	s.mu.Unlock()
}

func (s *testStore) callsFor(key cache.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key.String()]
}

func (s *testStore) setGate(ch chan struct{}) {
	s.mu.Lock()
	s.gate = ch
	s.mu.Unlock()
}

func (s *testStore) fail(err error) {
	s.mu.Lock()
	s.failWith = err
	s.mu.Unlock()
}

func newTestCache(store *testStore, opts cache.Options) *cache.Cache {
	opts.Loader = store
	if opts.Graph == nil {
		opts.Graph = invalidation.DependentsOf
	}
	return cache.New(opts)
}

var (
	gamesKey   = cache.NewKey(model.KindGame, model.GameFilter{}.Values())
	authorsKey = cache.NewKey(model.KindAuthor, nil)
)

func Test_Key_CanonicalParameterOrder(t *testing.T) {
	a := cache.NewKey(model.KindGame, url.Values{"title": {"catan"}, "idCategory": {"2"}})
	b := cache.NewKey(model.KindGame, url.Values{"idCategory": {"2"}, "title": {"catan"}})
	c := cache.NewKey(model.KindGame, url.Values{"idCategory": {"3"}, "title": {"catan"}})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "game?idCategory=2&title=catan", a.String())
	assert.Equal(t, "catan", a.Params().Get("title"))
	assert.Equal(t, "author", authorsKey.String())
}

func Test_Get_MissThenHit(t *testing.T) {
	store := newTestStore()
	c := newTestCache(store, cache.Options{})

	snap, err := c.Get(context.Background(), gamesKey)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, cache.Items[int](snap))
	assert.False(t, snap.FetchedAt.IsZero())

	_, err = c.Get(context.Background(), gamesKey)
	require.NoError(t, err)
	assert.Equal(t, 1, store.callsFor(gamesKey))

	v := c.Read(context.Background(), gamesKey)
	assert.Equal(t, cache.StatusFresh, v.Status)
}

func Test_Read_PendingThenFresh(t *testing.T) {
	store := newTestStore()
	c := newTestCache(store, cache.Options{})

	v := c.Read(context.Background(), gamesKey)
	assert.Equal(t, cache.StatusPending, v.Status)
	assert.False(t, v.HasData())

	c.Wait()

	v = c.Read(context.Background(), gamesKey)
	assert.Equal(t, cache.StatusFresh, v.Status)
	assert.Equal(t, []int{0}, cache.Items[int](v.Snapshot))
	assert.Equal(t, 1, store.callsFor(gamesKey))
}

func Test_Read_IdenticalConcurrentReadsShareOneFetch(t *testing.T) {
	store := newTestStore()
	gate := make(chan struct{})
	store.setGate(gate)
	c := newTestCache(store, cache.Options{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Get(context.Background(), gamesKey)
		}()
	}
	for i := 0; i < 10; i++ {
		c.Read(context.Background(), gamesKey)
	}

	close(gate)
	wg.Wait()
	c.Wait()

	assert.Equal(t, 1, store.callsFor(gamesKey))
}

func Test_Invalidate_NoEntryIsNoop(t *testing.T) {
	store := newTestStore()
	c := newTestCache(store, cache.Options{})

	assert.Equal(t, 0, c.Invalidate(model.KindClient))
	c.Wait()

	assert.Equal(t, 0, store.callsFor(cache.NewKey(model.KindClient, nil)))
}

func Test_Read_StaleWhileRevalidate(t *testing.T) {
	// arrange
	store := newTestStore()
	c := newTestCache(store, cache.Options{})
	_, err := c.Get(context.Background(), gamesKey)
	require.NoError(t, err)

	store.bump(model.KindGame)
	gate := make(chan struct{})
	store.setGate(gate)

	// act
	c.Invalidate(model.KindGame)
	v := c.Read(context.Background(), gamesKey)

	// assert: old snapshot visible while the refetch is held
	assert.Equal(t, cache.StatusStale, v.Status)
	assert.Equal(t, []int{0}, cache.Items[int](v.Snapshot))

	again := c.Read(context.Background(), gamesKey)
	assert.Equal(t, cache.StatusStale, again.Status)

	close(gate)
	c.Wait()

	v = c.Read(context.Background(), gamesKey)
	assert.Equal(t, cache.StatusFresh, v.Status)
	assert.Equal(t, []int{1}, cache.Items[int](v.Snapshot))
	assert.Equal(t, 2, store.callsFor(gamesKey))
}

func Test_Mutate_AuthorUpdateInvalidatesGames(t *testing.T) {
	store := newTestStore()
	c := newTestCache(store, cache.Options{})
	ctx := context.Background()
	_, err := c.Get(ctx, gamesKey)
	require.NoError(t, err)
	_, err = c.Get(ctx, authorsKey)
	require.NoError(t, err)

	_, err = c.Mutate(ctx, cache.Mutation{
		Kind: model.KindAuthor,
		Op:   model.OpUpdate,
		Do:   func(context.Context) (any, error) { return nil, nil },
	})
	require.NoError(t, err)

	assert.Equal(t, cache.StatusStale, c.Read(ctx, gamesKey).Status)
	assert.Equal(t, cache.StatusStale, c.Read(ctx, authorsKey).Status)
	c.Wait()
	assert.Equal(t, 2, store.callsFor(gamesKey))
	assert.Equal(t, 2, store.callsFor(authorsKey))
}

func Test_Mutate_CategoryUpdateLeavesGamesFresh(t *testing.T) {
	store := newTestStore()
	c := newTestCache(store, cache.Options{})
	ctx := context.Background()
	_, err := c.Get(ctx, gamesKey)
	require.NoError(t, err)

	_, err = c.Mutate(ctx, cache.Mutation{
		Kind: model.KindCategory,
		Op:   model.OpUpdate,
		Do:   func(context.Context) (any, error) { return nil, nil },
	})
	require.NoError(t, err)

	assert.Equal(t, cache.StatusFresh, c.Read(ctx, gamesKey).Status)
}

type backendErr struct{ msg string }

func (e backendErr) Error() string       { return "backend: " + e.msg }
func (e backendErr) UserMessage() string { return e.msg }

func Test_Mutate_FailureLeavesCacheAndNotifies(t *testing.T) {
	store := newTestStore()
	ch := notify.New()
	c := newTestCache(store, cache.Options{Notifier: ch})
	ctx := context.Background()
	_, err := c.Get(ctx, gamesKey)
	require.NoError(t, err)

	_, err = c.Mutate(ctx, cache.Mutation{
		Kind:    model.KindGame,
		Op:      model.OpCreate,
		Success: "Game created successfully",
		Do:      func(context.Context) (any, error) { return nil, backendErr{msg: "title already taken"} },
	})

	require.Error(t, err)
	assert.Equal(t, cache.StatusFresh, c.Read(ctx, gamesKey).Status)
	msg, ok := ch.Current()
	require.True(t, ok)
	assert.Equal(t, notify.Error, msg.Kind)
	assert.Equal(t, "title already taken", msg.Text)
}

func Test_Mutate_SuccessPublishesAndReturnsValue(t *testing.T) {
	store := newTestStore()
	ch := notify.New()
	c := newTestCache(store, cache.Options{Notifier: ch})

	v, err := c.Mutate(context.Background(), cache.Mutation{
		Kind:    model.KindClient,
		Op:      model.OpCreate,
		Success: "Client created successfully",
		Do:      func(context.Context) (any, error) { return model.Client{ID: "c1", Name: "Ana"}, nil },
	})

	require.NoError(t, err)
	assert.Equal(t, model.Client{ID: "c1", Name: "Ana"}, v)
	msg, ok := ch.Current()
	require.True(t, ok)
	assert.Equal(t, notify.Ok, msg.Kind)
}

func Test_Read_ErrorStateThenRefetch(t *testing.T) {
	store := newTestStore()
	store.fail(errors.New("connection refused"))
	c := newTestCache(store, cache.Options{})
	ctx := context.Background()

	_, err := c.Get(ctx, gamesKey)
	require.Error(t, err)

	v := c.Read(ctx, gamesKey)
	assert.Equal(t, cache.StatusError, v.Status)
	assert.EqualError(t, v.Err, "connection refused")
	c.Wait()
	assert.Equal(t, 1, store.callsFor(gamesKey), "errored entry is not refetched implicitly")

	store.fail(nil)
	c.Refetch(ctx, gamesKey)
	c.Wait()

	assert.Equal(t, cache.StatusFresh, c.Read(ctx, gamesKey).Status)
}

func Test_Read_FailedRefetchKeepsPreviousSnapshot(t *testing.T) {
	store := newTestStore()
	c := newTestCache(store, cache.Options{})
	ctx := context.Background()
	_, err := c.Get(ctx, gamesKey)
	require.NoError(t, err)

	store.fail(errors.New("502"))
	c.Invalidate(model.KindGame)
	c.Read(ctx, gamesKey)
	c.Wait()

	v := c.Read(ctx, gamesKey)
	assert.Equal(t, cache.StatusError, v.Status)
	assert.Equal(t, []int{0}, cache.Items[int](v.Snapshot))
}

func Test_Invalidate_DuringFetchKeepsEntryStale(t *testing.T) {
	store := newTestStore()
	gate := make(chan struct{})
	store.setGate(gate)
	c := newTestCache(store, cache.Options{})
	ctx := context.Background()

	c.Read(ctx, gamesKey)
	c.Invalidate(model.KindGame)
	close(gate)
	c.Wait()

	v := c.Read(ctx, gamesKey)
	assert.Equal(t, cache.StatusStale, v.Status, "data loaded before the invalidation must be refetched")
	c.Wait()
	assert.Equal(t, cache.StatusFresh, c.Read(ctx, gamesKey).Status)
}

func Test_Subscribe_ReceivesLoadsAndInvalidations(t *testing.T) {
	store := newTestStore()
	c := newTestCache(store, cache.Options{})
	var mu sync.Mutex
	var statuses []cache.Status
	cancel := c.Subscribe(gamesKey, func(v cache.View) {
		mu.Lock()
		statuses = append(statuses, v.Status)
		mu.Unlock()
	})

	_, err := c.Get(context.Background(), gamesKey)
	require.NoError(t, err)
	c.Invalidate(model.KindGame)
	cancel()
	c.Invalidate(model.KindGame)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []cache.Status{cache.StatusFresh, cache.StatusStale}, statuses)
}

func Test_Subscribe_LastViewIsTheNewest(t *testing.T) {
	store := newTestStore()
	c := newTestCache(store, cache.Options{})
	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var statuses []cache.Status
	c.Subscribe(gamesKey, func(v cache.View) {
		if v.Status == cache.StatusFresh {
			close(entered)
			<-release
		}
		mu.Lock()
		statuses = append(statuses, v.Status)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = c.Get(context.Background(), gamesKey)
	}()
	<-entered
	invalidated := make(chan int, 1)
	go func() {
		defer wg.Done()
		invalidated <- c.Invalidate(model.KindGame)
	}()
	// Invalidate bumps the entry before queueing behind the slow callback.
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, <-invalidated)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []cache.Status{cache.StatusFresh, cache.StatusStale}, statuses)
}

func Test_Read_PendingIsBusyBeforeReturning(t *testing.T) {
	store := newTestStore()
	gate := make(chan struct{})
	store.setGate(gate)
	board := tracker.NewBoard()
	page := board.Watch("game", model.KindGame)
	c := newTestCache(store, cache.Options{Observer: board})

	v := c.Read(context.Background(), gamesKey)

	assert.Equal(t, cache.StatusPending, v.Status)
	assert.True(t, page.IsBusy())
	close(gate)
	c.Wait()
	assert.False(t, page.IsBusy())
}

func Test_Observer_TracksFetchesAndMutations(t *testing.T) {
	store := newTestStore()
	gate := make(chan struct{})
	store.setGate(gate)
	board := tracker.NewBoard()
	page := board.Watch("game", model.KindGame)
	c := newTestCache(store, cache.Options{Observer: board})

	c.Read(context.Background(), gamesKey)
	require.Eventually(t, page.IsBusy, time.Second, time.Millisecond)

	close(gate)
	c.Wait()
	assert.False(t, page.IsBusy())

	var busyInside atomic.Bool
	_, err := c.Mutate(context.Background(), cache.Mutation{
		Kind: model.KindGame,
		Op:   model.OpCreate,
		Do: func(context.Context) (any, error) {
			busyInside.Store(page.IsBusy())
			return nil, errors.New("boom")
		},
	})
	require.Error(t, err)
	assert.True(t, busyInside.Load())
	assert.False(t, page.IsBusy(), "failed requests settle too")
}

func Test_Close_ClearsEntries(t *testing.T) {
	store := newTestStore()
	c := newTestCache(store, cache.Options{})
	_, err := c.Get(context.Background(), gamesKey)
	require.NoError(t, err)

	c.Close()

	_, err = c.Get(context.Background(), gamesKey)
	assert.ErrorIs(t, err, cache.ErrClosed)
	assert.Equal(t, cache.StatusError, c.Read(context.Background(), gamesKey).Status)
	assert.Equal(t, 0, c.Invalidate(model.KindGame))
}

func Test_New_PanicsWithoutLoader(t *testing.T) {
	assert.Panics(t, func() { cache.New(cache.Options{}) })
}
