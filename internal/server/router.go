// Package server exposes the module catalog, the standard registry and the
// resolver's state over HTTP for operators.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cseis-labs/csmod/internal/catalog"
	"github.com/cseis-labs/csmod/internal/dispatch"
	"github.com/cseis-labs/csmod/internal/metrics"
	"github.com/cseis-labs/csmod/internal/registry"
	"github.com/cseis-labs/csmod/internal/resolver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// CatalogHolder supplies and reloads the catalog. *catalog.Holder
// satisfies it.
type CatalogHolder interface {
	Get() *catalog.Catalog
	Reload() error
	Replace(path string) error
}

// Config wires the router's collaborators. Everything but Catalog is
// optional.
type Config struct {
	Catalog    CatalogHolder
	Dispatcher *dispatch.Dispatcher
	Resolver   *resolver.Resolver
	Metrics    *metrics.Collector
	Gatherer   prometheus.Gatherer
	Logger     zerolog.Logger
	Version    string
}

type handler struct {
	cfg Config
}

// NewRouter builds the HTTP router.
func NewRouter(cfg Config) chi.Router {
	h := &handler{cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newLoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(newMetricsMiddleware(cfg.Metrics))
	}

	r.Get("/health", h.health)
	r.Get("/modules", h.listModules)
	r.Get("/modules/{name}", h.getModule)
	if cfg.Dispatcher != nil {
		r.Get("/modules/{name}/resolve", h.resolveModule)
	}
	r.Get("/standard", h.listStandard)
	r.Get("/stats", h.stats)
	r.Post("/reload", h.reload)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

type moduleView struct {
	catalog.Entry
	Standard bool `json:"standard"`
	Declared bool `json:"declared"`
}

type modulesResponse struct {
	LibraryRoot string       `json:"libdir"`
	Count       int          `json:"count"`
	Modules     []moduleView `json:"modules"`
	Problems    []string     `json:"problems,omitempty"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	c := h.cfg.Catalog.Get()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  h.cfg.Version,
		"modules":  c.Len(),
		"problems": len(c.Problems()),
	})
}

func (h *handler) listModules(w http.ResponseWriter, r *http.Request) {
	c := h.cfg.Catalog.Get()

	var want catalog.Category
	if q := r.URL.Query().Get("category"); q != "" {
		parsed, err := catalog.ParseCategory(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		want = parsed
	}

	resp := modulesResponse{LibraryRoot: c.LibraryRoot(), Modules: []moduleView{}}
	for _, e := range c.Entries() {
		if want != 0 && e.Category != want {
			continue
		}
		resp.Modules = append(resp.Modules, moduleView{Entry: e, Declared: true, Standard: registry.IsStandard(e.Name)})
	}
	resp.Count = len(resp.Modules)
	for _, p := range c.Problems() {
		resp.Problems = append(resp.Problems, p.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) getModule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	e, declared := h.cfg.Catalog.Get().Entry(name)
	standard := registry.IsStandard(name)
	if !declared && !standard {
		writeError(w, http.StatusNotFound, "module "+name+" is not a standard module and is not declared in the catalog")
		return
	}
	if !declared {
		e = catalog.Entry{Name: name}
	}
	writeJSON(w, http.StatusOK, moduleView{Entry: e, Declared: declared, Standard: standard})
}

type resolveResponse struct {
	Module   string `json:"module"`
	Version  string `json:"version,omitempty"`
	Standard bool   `json:"standard"`
	Path     string `json:"path,omitempty"`
	Category string `json:"category,omitempty"`
	Exec     string `json:"exec,omitempty"`
}

// resolveModule binds a module and releases it straight away, so operators
// can check a deployment without running a pipeline.
func (h *handler) resolveModule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	v := resolver.ParseVersion(r.URL.Query().Get("version"))
	resp := resolveResponse{Module: name, Version: v.String()}

	handle, err := h.cfg.Dispatcher.Resolve(name, v)
	var notDeclared *dispatch.ModuleNotDeclaredError
	switch {
	case errors.Is(err, dispatch.ErrStandardModule):
		resp.Standard = true
		writeJSON(w, http.StatusOK, resp)
		return
	case errors.As(err, &notDeclared):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	defer handle.Release()

	b := handle.Binding()
	resp.Path = b.Path
	resp.Category = b.Category.String()
	resp.Exec = b.Exec.Symbol()
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) listStandard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"count":        registry.Count(),
		"single_trace": registry.SingleTraceCount,
		"multi_trace":  registry.MultiTraceCount,
		"modules":      registry.StandardNames(),
	})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Resolver == nil {
		writeJSON(w, http.StatusOK, resolver.Stats{})
		return
	}
	writeJSON(w, http.StatusOK, h.cfg.Resolver.Stats())
}

func (h *handler) reload(w http.ResponseWriter, r *http.Request) {
	var err error
	if path := r.URL.Query().Get("path"); path != "" {
		err = h.cfg.Catalog.Replace(path)
	} else {
		err = h.cfg.Catalog.Reload()
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c := h.cfg.Catalog.Get()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "reloaded",
		"path":     c.Path(),
		"modules":  c.Len(),
		"problems": len(c.Problems()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func newLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

func newMetricsMiddleware(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			m.RequestsTotal.WithLabelValues(r.Method, route, metrics.StatusClass(ww.Status())).Inc()
			m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
