package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takotools.com/tako-web/internal/loadstate"
)

func TestNewUsesProvidedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveLoad("tools", loadstate.Ready, 20*time.Millisecond)
	m.ObserveLoad("content", loadstate.Failed, time.Second)
	m.ObserveRender("home", "template", time.Millisecond)

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "tako_web_document_loads_total")
	assert.Contains(t, names, "tako_web_document_load_duration_seconds")
	assert.Contains(t, names, "tako_web_render_duration_seconds")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.documentLoads.WithLabelValues("tools", "ready")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.documentLoads.WithLabelValues("content", "error")))
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/tools/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	for _, slug := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools/"+slug, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `tako_web_request_duration_seconds_count{route="/tools/{slug}",status="404"} 2`), body)
}
