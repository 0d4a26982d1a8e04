// Package metrics exposes the web server's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"takotools.com/tako-web/internal/loadstate"
	mw "takotools.com/tako-web/internal/middleware"
)

type Metrics struct {
	documentLoads   *prometheus.CounterVec
	documentLatency *prometheus.HistogramVec
	requestDuration *prometheus.HistogramVec
	renderDuration  *prometheus.HistogramVec
	gatherer        prometheus.Gatherer
}

// New registers the collectors against registry. A nil registry falls back
// to the process default.
func New(registry *prometheus.Registry) *Metrics {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if registry != nil {
		registerer, gatherer = registry, registry
	}
	factory := promauto.With(registerer)

	return &Metrics{
		gatherer: gatherer,
		documentLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tako_web_document_loads_total",
				Help: "Settled content and tools document loads",
			},
			[]string{"document", "outcome"},
		),
		documentLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tako_web_document_load_duration_seconds",
				Help:    "Time until a document load settled",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"document"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tako_web_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"route", "status"},
		),
		renderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tako_web_render_duration_seconds",
				Help:    "Time spent rendering a page",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
			},
			[]string{"page", "renderer"},
		),
	}
}

// ObserveLoad has the loadstate.Observer signature.
func (m *Metrics) ObserveLoad(document string, status loadstate.Status, elapsed time.Duration) {
	m.documentLoads.WithLabelValues(document, status.String()).Inc()
	m.documentLatency.WithLabelValues(document).Observe(elapsed.Seconds())
}

// LoadObserver returns an option wiring ObserveLoad into loadstate.Start.
func (m *Metrics) LoadObserver() loadstate.Option {
	return loadstate.WithObserver(m.ObserveLoad)
}

func (m *Metrics) ObserveRender(page, renderer string, d time.Duration) {
	m.renderDuration.WithLabelValues(page, renderer).Observe(d.Seconds())
}

// Middleware records request durations labelled by chi route pattern, so
// detail pages for different slugs share one series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := mw.NewResponseRecorder(w)
		next.ServeHTTP(rw, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.requestDuration.WithLabelValues(route, strconv.Itoa(rw.Status())).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
