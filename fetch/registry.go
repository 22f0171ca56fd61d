package fetch

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/IvanBrykalov/fetchcache/cache"
	"github.com/IvanBrykalov/fetchcache/coalesce"
	"github.com/IvanBrykalov/fetchcache/config"
	"github.com/IvanBrykalov/fetchcache/metrics/prom"
	"github.com/prometheus/client_golang/prometheus"
)

// RegistryOptions are shared by every preset of a Registry.
type RegistryOptions[V any] struct {
	// SizeOf overrides cache.JSONSize for all presets.
	SizeOf func(V) int64
	Logger *slog.Logger

	// Registerer, when set, gets one Prometheus adapter per preset,
	// labelled preset=<name>.
	Registerer prometheus.Registerer
	Namespace  string
}

// Registry builds one cache+coalescer pair per configured preset at service
// start and owns them until Close. Request handlers receive the Registry
// (or a single Fetcher) explicitly; there is no package-level state.
type Registry[V any] struct {
	fetchers map[string]*Fetcher[V]
	caches   []cache.Cache[string, V]
	log      *slog.Logger

	closeOnce sync.Once
}

// NewRegistry validates cfg and constructs every preset in it.
func NewRegistry[V any](cfg config.Config, opt RegistryOptions[V]) (*Registry[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opt.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ns := opt.Namespace
	if ns == "" {
		ns = "fetchcache"
	}

	r := &Registry[V]{fetchers: make(map[string]*Fetcher[V], len(cfg.Caches)), log: log}
	for _, name := range cfg.Names() {
		pc := cfg.Caches[name]
		plog := log.With(slog.String("preset", name))

		copt := cache.Options[string, V]{
			MaxEntries:     pc.MaxEntries,
			MaxMemoryBytes: pc.MaxMemoryBytes,
			TTL:            pc.TTL,
			SweepInterval:  pc.SweepInterval,
			SizeOf:         opt.SizeOf,
			Logger:         plog,
		}
		var gopt coalesce.Options
		if opt.Registerer != nil {
			m := prom.New(opt.Registerer, ns, "cache", prometheus.Labels{"preset": name})
			copt.Metrics = m
			gopt.Metrics = m
		}

		c := cache.New[string, V](copt)
		r.caches = append(r.caches, c)
		r.fetchers[name] = New(c, coalesce.NewGroup[string, V](gopt), plog)

		plog.Info("fetch: preset ready",
			slog.Int("max_entries", pc.MaxEntries),
			slog.Int64("max_memory_bytes", pc.MaxMemoryBytes),
			slog.Duration("ttl", pc.TTL))
	}
	return r, nil
}

// Get returns the Fetcher for a preset.
func (r *Registry[V]) Get(name string) (*Fetcher[V], bool) {
	f, ok := r.fetchers[name]
	return f, ok
}

// MustGet is Get for presets the caller knows are configured.
func (r *Registry[V]) MustGet(name string) *Fetcher[V] {
	f, ok := r.fetchers[name]
	if !ok {
		panic(fmt.Sprintf("fetch: unknown preset %q", name))
	}
	return f
}

// Close closes every cache. It is idempotent.
func (r *Registry[V]) Close() error {
	r.closeOnce.Do(func() {
		for _, c := range r.caches {
			_ = c.Close()
		}
		r.log.Info("fetch: registry closed", slog.Int("presets", len(r.caches)))
	})
	return nil
}
