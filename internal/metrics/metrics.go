// Package metrics exposes Prometheus instrumentation for module resolution,
// catalog reloads and the HTTP status surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "csmod"

// Resolution outcomes used as the "outcome" label.
const (
	OutcomeBound       = "bound"
	OutcomeStandard    = "standard"
	OutcomeUndeclared  = "undeclared"
	OutcomeNotFound    = "library_not_found"
	OutcomeNoSymbol    = "symbol_not_found"
	OutcomeOtherFailed = "error"
)

// Collector holds every metric the module layer reports.
type Collector struct {
	// Resolution metrics
	ResolutionsTotal *prometheus.CounterVec
	ResolveDuration  prometheus.Histogram

	// Native library metrics
	NativeOpens   prometheus.Counter
	NativeCloses  prometheus.Counter
	OpenLibraries prometheus.Gauge

	// Catalog metrics
	CatalogReloads      prometheus.Counter
	CatalogReloadErrors prometheus.Counter
	CatalogModules      prometheus.Gauge
	CatalogProblems     prometheus.Gauge

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Module resolutions by outcome",
			},
			[]string{"outcome"},
		),
		ResolveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolve_duration_seconds",
				Help:      "Time spent binding a module library",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),

		NativeOpens: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "native_library_opens_total",
				Help:      "Shared libraries opened",
			},
		),
		NativeCloses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "native_library_closes_total",
				Help:      "Shared libraries closed",
			},
		),
		OpenLibraries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "open_libraries",
				Help:      "Shared libraries currently open",
			},
		),

		CatalogReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_reloads_total",
				Help:      "Successful catalog reloads",
			},
		),
		CatalogReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_reload_errors_total",
				Help:      "Failed catalog reloads",
			},
		),
		CatalogModules: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_modules",
				Help:      "Modules declared in the current catalog",
			},
		),
		CatalogProblems: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_problems",
				Help:      "Declared modules whose artifact was missing at load time",
			},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// StatusClass collapses an HTTP status code into 2xx, 4xx and so on.
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
