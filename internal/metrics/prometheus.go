// Package metrics exposes cache and busy-indicator state to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/ludoteca-console/internal/model"
	"github.com/iliyamo/ludoteca-console/internal/tracker"
)

const namespace = "ludoteca"

// Registry owns every console metric. It implements cache.Metrics.
type Registry struct {
	reg *prometheus.Registry

	lookups      *prometheus.CounterVec
	invalidated  *prometheus.CounterVec
	loadFailures *prometheus.CounterVec
	busy         *prometheus.GaugeVec
}

// New builds a registry with the Go and process collectors attached.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache reads by entity kind and result (hit, stale, miss).",
		}, []string{"kind", "result"}),
		invalidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Entity kinds marked stale after a mutation.",
		}, []string{"kind"}),
		loadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "load_errors_total",
			Help:      "Failed backend fetches by entity kind.",
		}, []string{"kind"}),
		busy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "page_busy",
			Help:      "1 while a page has backend requests in flight.",
		}, []string{"page"}),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.lookups, r.invalidated, r.loadFailures, r.busy,
	)
	return r
}

func (r *Registry) Hit(kind model.Kind)      { r.lookups.WithLabelValues(string(kind), "hit").Inc() }
func (r *Registry) Miss(kind model.Kind)     { r.lookups.WithLabelValues(string(kind), "miss").Inc() }
func (r *Registry) StaleHit(kind model.Kind) { r.lookups.WithLabelValues(string(kind), "stale").Inc() }

func (r *Registry) Invalidate(kind model.Kind) {
	r.invalidated.WithLabelValues(string(kind)).Inc()
}

func (r *Registry) LoadError(kind model.Kind) {
	r.loadFailures.WithLabelValues(string(kind)).Inc()
}

// TrackBoard mirrors every page on b into the page_busy gauge. Pages
// watched after this call are not picked up. The returned func detaches.
func (r *Registry) TrackBoard(b *tracker.Board) (cancel func()) {
	var cancels []func()
	for _, page := range b.Pages() {
		g := r.busy.WithLabelValues(page)
		cancels = append(cancels, b.Page(page).Follow(func(busy bool) {
			if busy {
				g.Set(1)
				return
			}
			g.Set(0)
		}))
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer is exposed for tests and for callers merging registries.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
