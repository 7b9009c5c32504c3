package cache

import (
	"context"
	"io"
	"log/slog"

	"github.com/iliyamo/ludoteca-console/internal/model"
	"github.com/iliyamo/ludoteca-console/internal/notify"
)

// Loader fetches one collection from the backing store on a miss or a
// refetch. It is the only way data enters the cache.
type Loader interface {
	Load(ctx context.Context, key Key) (Snapshot, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, key Key) (Snapshot, error)

func (f LoaderFunc) Load(ctx context.Context, key Key) (Snapshot, error) { return f(ctx, key) }

// Metrics is told about every cache event worth counting.
type Metrics interface {
	Hit(kind model.Kind)
	Miss(kind model.Kind)
	StaleHit(kind model.Kind)
	Invalidate(kind model.Kind)
	LoadError(kind model.Kind)
}

// NoopMetrics ignores every event.
type NoopMetrics struct{}

func (NoopMetrics) Hit(model.Kind)        {}
func (NoopMetrics) Miss(model.Kind)       {}
func (NoopMetrics) StaleHit(model.Kind)   {}
func (NoopMetrics) Invalidate(model.Kind) {}
func (NoopMetrics) LoadError(model.Kind)  {}

// Observer receives the start and settlement of every backend request the
// cache issues, fetches and mutations alike. tracker.Board implements it.
type Observer interface {
	Started(requestID string, kind model.Kind)
	Settled(requestID string, kind model.Kind)
}

type noopObserver struct{}

func (noopObserver) Started(string, model.Kind) {}
func (noopObserver) Settled(string, model.Kind) {}

// Notifier receives the outcome text of mutations. notify.Channel
// implements it.
type Notifier interface {
	Publish(text string, kind notify.Kind)
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, notify.Kind) {}

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

func discardLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
