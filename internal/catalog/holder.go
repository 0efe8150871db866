package catalog

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/cseis-labs/csmod/internal/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder owns the current catalog and swaps it atomically on reload. Readers
// that already hold a *Catalog keep a consistent view of the old one.
type Holder struct {
	mu       sync.RWMutex
	catalog  *Catalog
	path     string
	opts     Options
	logger   zerolog.Logger
	metrics  *metrics.Collector
	watcher  *fsnotify.Watcher
	onChange []func(*Catalog)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder loads the catalog at path and returns a holder for it.
func NewHolder(path string, opts Options) (*Holder, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	c, err := Load(absPath, opts)
	if err != nil {
		return nil, err
	}

	return &Holder{
		catalog: c,
		path:    absPath,
		opts:    opts,
		logger:  opts.Logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// WithMetrics reports reloads and the size of each new catalog on m.
func (h *Holder) WithMetrics(m *metrics.Collector) *Holder {
	h.mu.Lock()
	h.metrics = m
	c := h.catalog
	h.mu.Unlock()
	observeCatalog(m, c)
	return h
}

func observeCatalog(m *metrics.Collector, c *Catalog) {
	if m == nil {
		return
	}
	m.CatalogModules.Set(float64(c.Len()))
	m.CatalogProblems.Set(float64(len(c.problems)))
}

// Get returns the current catalog.
func (h *Holder) Get() *Catalog {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.catalog
}

// Path returns the absolute path of the current document.
func (h *Holder) Path() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.path
}

// Reload re-reads the document. On failure the previous catalog stays in
// place and the error is returned.
func (h *Holder) Reload() error {
	path := h.Path()
	h.logger.Info().Str("path", path).Msg("reloading catalog")

	next, err := Load(path, h.opts)
	if err != nil {
		h.reloadFailed(err)
		return fmt.Errorf("reload catalog: %w", err)
	}
	h.swap(path, next)
	return nil
}

// Replace loads the document at path and, if it is valid, makes it the
// current catalog and the document watched from now on. On failure nothing
// changes.
func (h *Holder) Replace(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	h.logger.Info().Str("path", absPath).Msg("replacing catalog")

	next, err := Load(absPath, h.opts)
	if err != nil {
		h.reloadFailed(err)
		return fmt.Errorf("replace catalog: %w", err)
	}

	prevPath := h.swap(absPath, next)
	if h.watcher != nil && filepath.Dir(prevPath) != filepath.Dir(absPath) {
		if err := h.watcher.Add(filepath.Dir(absPath)); err != nil {
			h.logger.Error().Err(err).Str("path", absPath).Msg("error watching new catalog directory")
		} else {
			_ = h.watcher.Remove(filepath.Dir(prevPath))
		}
	}
	return nil
}

func (h *Holder) reloadFailed(err error) {
	h.mu.RLock()
	m := h.metrics
	h.mu.RUnlock()
	if m != nil {
		m.CatalogReloadErrors.Inc()
	}
	h.logger.Error().Err(err).Msg("catalog reload failed, keeping old catalog")
}

// swap installs next as the current catalog and returns the previous path.
func (h *Holder) swap(path string, next *Catalog) string {
	h.mu.Lock()
	prev, prevPath := h.catalog, h.path
	h.catalog, h.path = next, path
	m := h.metrics
	listeners := make([]func(*Catalog), len(h.onChange))
	copy(listeners, h.onChange)
	h.mu.Unlock()

	if m != nil {
		m.CatalogReloads.Inc()
	}
	observeCatalog(m, next)

	if added, removed := diffNames(prev, next); len(added) > 0 || len(removed) > 0 {
		h.logger.Info().Strs("added", added).Strs("removed", removed).Msg("declared modules changed")
	}
	if prev.LibraryRoot() != next.LibraryRoot() {
		h.logger.Info().Str("old", prev.LibraryRoot()).Str("new", next.LibraryRoot()).Msg("library root changed")
	}

	for _, fn := range listeners {
		fn(next)
	}
	return prevPath
}

func diffNames(prev, next *Catalog) (added, removed []string) {
	for _, name := range next.Names() {
		if _, ok := prev.Entry(name); !ok {
			added = append(added, name)
		}
	}
	for _, name := range prev.Names() {
		if _, ok := next.Entry(name); !ok {
			removed = append(removed, name)
		}
	}
	return added, removed
}

// OnChange registers fn to run after every successful reload.
func (h *Holder) OnChange(fn func(*Catalog)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// WatchFile reloads the catalog whenever the document is written or
// replaced. The parent directory is watched so atomic saves are seen.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	path := h.Path()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	h.watcher = watcher

	go h.watchLoop(watcher)

	h.logger.Info().Str("path", path).Msg("watching catalog for changes")
	return nil
}

// WatchSignals reloads the catalog on SIGHUP until Stop is called.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP, reloading catalog")
				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("SIGHUP reload failed")
				}
			case <-h.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()
}

// Stop ends file and signal watching. It is safe to call more than once.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != h.Path() {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			h.logger.Debug().Str("event", event.Op.String()).Str("file", event.Name).Msg("catalog changed")
			if err := h.Reload(); err != nil {
				h.logger.Error().Err(err).Msg("file watch reload failed")
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}
