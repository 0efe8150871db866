package resolver

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cseis-labs/csmod/internal/catalog"
	"github.com/cseis-labs/csmod/internal/metrics"
	"github.com/rs/zerolog"
)

// Options configure a Resolver.
type Options struct {
	// Loader opens libraries. Nil means NativeLoader().
	Loader Loader

	Logger zerolog.Logger

	// Metrics is optional.
	Metrics *metrics.Collector
}

// Stats is a snapshot of the resolver's library usage.
type Stats struct {
	OpenLibraries int   `json:"open_libraries"`
	Handles       int   `json:"handles"`
	NativeOpens   int64 `json:"native_opens"`
	NativeCloses  int64 `json:"native_closes"`
}

// Names differing only in case share an artifact but get separate bindings.
type cacheKey struct {
	module   string
	path     string
	category catalog.Category
}

type cacheEntry struct {
	ready   chan struct{}
	binding *Binding
	err     error
	refs    int
}

// Resolver binds module libraries and shares bindings between callers.
// Construct one per process and Close it at shutdown.
type Resolver struct {
	loader  Loader
	logger  zerolog.Logger
	metrics *metrics.Collector

	mu     sync.Mutex
	cache  map[cacheKey]*cacheEntry
	closed bool
	opens  int64
	closes int64
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	loader := opts.Loader
	if loader == nil {
		loader = NativeLoader()
	}
	return &Resolver{
		loader:  loader,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		cache:   make(map[cacheKey]*cacheEntry),
	}
}

// Open binds entry at version v without caching. The caller owns the
// returned binding and must Close it.
func (r *Resolver) Open(entry catalog.Entry, v Version) (*Binding, error) {
	if entry.Artifact == "" {
		return nil, fmt.Errorf("module %s has no artifact path", entry.Name)
	}

	start := time.Now()
	b, err := r.bind(entry, v)
	r.observe(err, time.Since(start))
	return b, err
}

func (r *Resolver) bind(entry catalog.Entry, v Version) (*Binding, error) {
	path := artifactPath(entry, v)

	lib, err := r.loader.Open(path)
	if err != nil {
		r.logger.Error().Err(err).Str("module", entry.Name).Str("version", v.String()).Str("path", path).
			Msg("error occurred while opening shared library")
		return nil, &LibraryNotFoundError{Module: entry.Name, Version: v, Path: path, Diagnostic: err.Error()}
	}
	r.countOpen()

	b := &Binding{
		Module:   entry.Name,
		Version:  v,
		Path:     path,
		Category: entry.Category,
		lib:      lib,
	}
	b.onClose = r.countClose

	lookup := func(symbol string) (uintptr, error) {
		addr, err := lib.Symbol(symbol)
		if err == nil && addr == 0 {
			err = errors.New("symbol resolved to a nil address")
		}
		if err != nil {
			return 0, &SymbolNotFoundError{Module: entry.Name, Version: v, Path: path, Symbol: symbol, Diagnostic: err.Error()}
		}
		return addr, nil
	}

	fail := func(err error) (*Binding, error) {
		r.logger.Error().Err(err).Str("module", entry.Name).Str("path", path).Msg("error resolving module entry point")
		b.Close()
		return nil, err
	}

	addr, err := lookup(ParamsSymbol(entry.Name))
	if err != nil {
		return fail(err)
	}
	b.Params = newParamsFunc(addr)

	if addr, err = lookup(InitSymbol(entry.Name)); err != nil {
		return fail(err)
	}
	b.Init = newInitFunc(addr)

	execName := ExecSymbol(entry.Name)
	if addr, err = lookup(execName); err != nil {
		return fail(err)
	}
	if singleTraceCategory(entry.Category) {
		b.Exec = SingleTraceExec{Name: execName, Call: newSingleTraceFunc(addr)}
	} else {
		b.Exec = MultiTraceExec{Name: execName, Call: newMultiTraceFunc(addr)}
	}

	r.logger.Debug().Str("module", entry.Name).Str("version", v.String()).Str("path", path).
		Str("category", entry.Category.String()).Msg("module bound")
	return b, nil
}

// Acquire returns a handle on the shared binding for entry at version v,
// opening the library on first use. Concurrent first requests for the same
// artifact wait for a single open. Failures are not cached.
func (r *Resolver) Acquire(entry catalog.Entry, v Version) (*Handle, error) {
	key := cacheKey{module: entry.Name, path: artifactPath(entry, v), category: entry.Category}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrResolverClosed
	}
	if ce, ok := r.cache[key]; ok {
		ce.refs++
		r.mu.Unlock()

		<-ce.ready
		if ce.err != nil {
			return nil, ce.err
		}
		return &Handle{r: r, key: key, entry: ce}, nil
	}
	ce := &cacheEntry{ready: make(chan struct{}), refs: 1}
	r.cache[key] = ce
	r.mu.Unlock()

	b, err := r.Open(entry, v)

	r.mu.Lock()
	if err == nil && r.closed {
		err = ErrResolverClosed
	}
	if err != nil {
		delete(r.cache, key)
	}
	ce.binding, ce.err = b, err
	close(ce.ready)
	r.mu.Unlock()

	if err != nil {
		if b != nil {
			b.Close()
		}
		return nil, err
	}
	return &Handle{r: r, key: key, entry: ce}, nil
}

func (r *Resolver) release(key cacheKey, ce *cacheEntry) {
	r.mu.Lock()
	if cur, ok := r.cache[key]; !ok || cur != ce {
		r.mu.Unlock()
		return
	}
	ce.refs--
	if ce.refs > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.cache, key)
	r.mu.Unlock()

	ce.binding.Close()
}

// Close releases every cached library. Handles still held become inert and
// later Acquire calls fail with ErrResolverClosed.
func (r *Resolver) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	var bindings []*Binding
	for key, ce := range r.cache {
		select {
		case <-ce.ready:
			if ce.binding != nil {
				bindings = append(bindings, ce.binding)
			}
		default:
			// Still opening; Acquire closes it when the open returns.
		}
		delete(r.cache, key)
	}
	r.mu.Unlock()

	var errs []error
	for _, b := range bindings {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", b.Path, err))
		}
	}
	return errors.Join(errs...)
}

// Stats returns a snapshot of library usage.
func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s Stats
	for _, ce := range r.cache {
		select {
		case <-ce.ready:
			if ce.binding != nil {
				s.Handles += ce.refs
			}
		default:
		}
	}
	s.NativeOpens = r.opens
	s.NativeCloses = r.closes
	s.OpenLibraries = int(r.opens - r.closes)
	return s
}

func (r *Resolver) countClose(b *Binding) {
	r.mu.Lock()
	r.closes++
	r.mu.Unlock()
	if r.metrics != nil {
		r.metrics.NativeCloses.Inc()
		r.metrics.OpenLibraries.Dec()
	}
	if b.closeErr != nil {
		r.logger.Warn().Err(b.closeErr).Str("path", b.Path).Msg("error closing shared library")
	}
}

func (r *Resolver) countOpen() {
	r.mu.Lock()
	r.opens++
	r.mu.Unlock()
	if r.metrics != nil {
		r.metrics.NativeOpens.Inc()
		r.metrics.OpenLibraries.Inc()
	}
}

func (r *Resolver) observe(err error, d time.Duration) {
	if r.metrics == nil {
		return
	}
	r.metrics.ResolveDuration.Observe(d.Seconds())

	var lnf *LibraryNotFoundError
	var snf *SymbolNotFoundError
	outcome := metrics.OutcomeBound
	switch {
	case err == nil:
	case errors.As(err, &lnf):
		outcome = metrics.OutcomeNotFound
	case errors.As(err, &snf):
		outcome = metrics.OutcomeNoSymbol
	default:
		outcome = metrics.OutcomeOtherFailed
	}
	r.metrics.ResolutionsTotal.WithLabelValues(outcome).Inc()
}

// Handle is a lease on a shared binding.
type Handle struct {
	r     *Resolver
	key   cacheKey
	entry *cacheEntry
	once  sync.Once
}

// Binding returns the leased binding. Its functions must not be called
// after Release.
func (h *Handle) Binding() *Binding { return h.entry.binding }

// Release returns the lease. The library is closed when the last lease on
// it is released. Release is idempotent.
func (h *Handle) Release() {
	h.once.Do(func() { h.r.release(h.key, h.entry) })
}
