// Package service is the console core the HTTP layer talks to. It owns the
// entity cache, routes every backend write through it so the invalidation
// graph and the notification channel see it, and gates loans through the
// validator.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/ludoteca-console/internal/cache"
	"github.com/iliyamo/ludoteca-console/internal/invalidation"
	"github.com/iliyamo/ludoteca-console/internal/model"
	"github.com/iliyamo/ludoteca-console/internal/queue"
)

// Backend is the REST collaborator. *backend.API implements it.
type Backend interface {
	Categories(ctx context.Context) (model.Page[model.Category], error)
	SaveCategory(ctx context.Context, c model.Category) (model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	Authors(ctx context.Context) (model.Page[model.Author], error)
	AuthorPage(ctx context.Context, p model.Pageable) (model.Page[model.Author], error)
	SaveAuthor(ctx context.Context, a model.Author) (model.Author, error)
	DeleteAuthor(ctx context.Context, id string) error

	Games(ctx context.Context, f model.GameFilter) (model.Page[model.Game], error)
	SaveGame(ctx context.Context, g model.Game) (model.Game, error)

	Clients(ctx context.Context) (model.Page[model.Client], error)
	SaveClient(ctx context.Context, c model.Client) (model.Client, error)
	DeleteClient(ctx context.Context, id string) error

	Loans(ctx context.Context, f model.LoanFilter) (model.Page[model.Loan], error)
	SaveLoan(ctx context.Context, in model.LoanInput) (model.Loan, error)
	DeleteLoan(ctx context.Context, id string) error
}

// LoanEvents receives accepted loan mutations. *queue.Publisher implements
// it.
type LoanEvents interface {
	PublishLoan(ctx context.Context, ev queue.LoanEvent) error
}

// Options wires a Console. Backend is required.
type Options struct {
	Backend Backend
	Events  LoanEvents
	Logger  *slog.Logger

	Metrics        cache.Metrics
	Observer       cache.Observer
	Notifier       cache.Notifier
	RefreshTimeout time.Duration
}

// Console is safe for concurrent use.
type Console struct {
	api    Backend
	cache  *cache.Cache
	events LoanEvents
	log    *slog.Logger
	now    func() time.Time
}

// New builds a console with an empty cache. It panics when opts.Backend is
// nil.
func New(opts Options) *Console {
	if opts.Backend == nil {
		panic("nil backend passed to service.New")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Console{
		api:    opts.Backend,
		events: opts.Events,
		log:    log,
		now:    time.Now,
	}
	s.cache = cache.New(cache.Options{
		Loader:         cache.LoaderFunc(s.load),
		Graph:          invalidation.DependentsOf,
		Metrics:        opts.Metrics,
		Observer:       opts.Observer,
		Notifier:       opts.Notifier,
		Logger:         log.With("component", "cache"),
		RefreshTimeout: opts.RefreshTimeout,
	})
	return s
}

// Read is the non-blocking read: it returns whatever the cache holds for
// key and starts a fetch when needed.
func (s *Console) Read(ctx context.Context, key cache.Key) cache.View {
	return s.cache.Read(ctx, key)
}

// Fetch blocks until key holds a fresh snapshot or the load fails.
func (s *Console) Fetch(ctx context.Context, key cache.Key) (cache.Snapshot, error) {
	return s.cache.Get(ctx, key)
}

// Refetch retries key, clearing an error state.
func (s *Console) Refetch(ctx context.Context, key cache.Key) cache.View {
	return s.cache.Refetch(ctx, key)
}

// Subscribe forwards to the cache.
func (s *Console) Subscribe(key cache.Key, fn func(cache.View)) (cancel func()) {
	return s.cache.Subscribe(key, fn)
}

// Warm fetches the default listing of each kind and waits for them. Errors
// are logged, not returned; the cache keeps them as error views.
func (s *Console) Warm(ctx context.Context, kinds ...model.Kind) {
	for _, k := range kinds {
		key := DefaultKey(k)
		if _, err := s.cache.Get(ctx, key); err != nil {
			s.log.Warn("cache warmup failed", "key", key.String(), "err", err)
		}
	}
}

// Close drops the cache after in-flight background fetches finish.
func (s *Console) Close() {
	s.cache.Close()
}

func read[T any](ctx context.Context, s *Console, key cache.Key) (model.Page[T], error) {
	snap, err := s.cache.Get(ctx, key)
	if err != nil {
		return model.Page[T]{}, err
	}
	items := cache.Items[T](snap)
	if items == nil {
		items = []T{}
	}
	return model.Page[T]{Content: items, Total: snap.Total, Paged: snap.Paged}, nil
}

func (s *Console) Categories(ctx context.Context) (model.Page[model.Category], error) {
	return read[model.Category](ctx, s, CategoriesKey())
}

func (s *Console) AllAuthors(ctx context.Context) (model.Page[model.Author], error) {
	return read[model.Author](ctx, s, AuthorsKey())
}

func (s *Console) AuthorPage(ctx context.Context, p model.Pageable) (model.Page[model.Author], error) {
	if !p.Valid() {
		return model.Page[model.Author]{}, invalid(ErrInvalidPage)
	}
	return read[model.Author](ctx, s, AuthorPageKey(p))
}

func (s *Console) Games(ctx context.Context, f model.GameFilter) (model.Page[model.Game], error) {
	return read[model.Game](ctx, s, GamesKey(f))
}

func (s *Console) Clients(ctx context.Context) (model.Page[model.Client], error) {
	return read[model.Client](ctx, s, ClientsKey())
}

func (s *Console) Loans(ctx context.Context, f model.LoanFilter) (model.Page[model.Loan], error) {
	return read[model.Loan](ctx, s, LoansKey(f))
}
