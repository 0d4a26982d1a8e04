package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"takotools.com/tako-web/internal/observability"
)

func TestAssetsETag(t *testing.T) {
	fsys := fstest.MapFS{"styles.css": {Data: []byte("body{}")}}
	h := Assets(fsys, "/assets", false)

	req := httptest.NewRequest(http.MethodGet, "/assets/styles.css", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
	assert.Equal(t, assetCacheControl, rec.Header().Get("Cache-Control"))
	et := rec.Header().Get("ETag")
	require.NotEmpty(t, et)

	req = httptest.NewRequest(http.MethodGet, "/assets/styles.css", nil)
	req.Header.Set("If-None-Match", et)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/assets/missing.css", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssetsDevSkipsCaching(t *testing.T) {
	fsys := fstest.MapFS{"app.js": {Data: []byte("1")}}
	h := Assets(fsys, "/assets", true)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("ETag"))
}

func TestHTMXMarker(t *testing.T) {
	var gotHTMX bool
	var gotTarget string
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHTMX = IsHTMX(r.Context())
		gotTarget = HXTarget(r.Context())
		ReplaceURL(w, "/tools/?sort=price-asc")
	}))

	req := httptest.NewRequest(http.MethodGet, "/fragments/tools-grid", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "tools-grid")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.True(t, gotHTMX)
	assert.Equal(t, "tools-grid", gotTarget)
	assert.Equal(t, "/tools/?sort=price-asc", rec.Header().Get("HX-Replace-Url"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, gotHTMX)
	assert.Empty(t, gotTarget)
}

func TestLoggerEmitsRequestEntry(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var scoped *zap.Logger
	h := chiMid.RequestID(HTMX(Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = observability.FromContext(r.Context(), nil)
		w.WriteHeader(http.StatusNotFound)
	}))))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tool?slug=x", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, scoped)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/tool", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	assert.Equal(t, false, fields["htmx"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestErrorResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	Error(rec, req, http.StatusInternalServerError, "render failed")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "render failed")

	req = req.WithContext(WithHTMX(req.Context(), true))
	rec = httptest.NewRecorder()
	Error(rec, req, http.StatusInternalServerError, "render failed")
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"render failed"}`, rec.Body.String())
}
