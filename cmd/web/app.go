package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"takotools.com/tako-web/internal/catalog"
	"takotools.com/tako-web/internal/cms"
	"takotools.com/tako-web/internal/config"
	"takotools.com/tako-web/internal/handlers"
	"takotools.com/tako-web/internal/loadstate"
	"takotools.com/tako-web/internal/metrics"
	mw "takotools.com/tako-web/internal/middleware"
	"takotools.com/tako-web/internal/observability"
	"takotools.com/tako-web/internal/render"
	"takotools.com/tako-web/internal/richtext"
)

const (
	docContent = "content"
	docTools   = "tools"
	pageGrid   = "tools-grid"
)

// app carries the process-wide dependencies of the HTTP handlers.
type app struct {
	logger       *zap.Logger
	store        *cms.Client
	renderer     render.Renderer
	site         handlers.Site
	metrics      *metrics.Metrics
	fetchTimeout time.Duration
	publicDir    string
	dev          bool
}

func newApp(cfg *config.Config, logger *zap.Logger, registry *prometheus.Registry) (*app, error) {
	base, err := catalog.ParseBase(cfg.Site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("site.base_url: %w", err)
	}
	r, err := render.New(cfg.Render.Renderer, render.Options{Dir: cfg.Render.TemplatesDir, Dev: cfg.Server.Dev})
	if err != nil {
		return nil, err
	}
	return &app{
		logger: logger,
		store: cms.NewClient(cms.Options{
			BaseURL:     cfg.CMS.BaseURL,
			DataDir:     cfg.CMS.DataDir,
			ContentFile: cfg.CMS.ContentFile,
			ToolsFile:   cfg.CMS.ToolsFile,
			Timeout:     cfg.CMS.FetchTimeout,
			CacheTTL:    cfg.CMS.CacheTTL,
		}),
		renderer: r,
		site: handlers.Site{
			Name:      cfg.Site.Name,
			Email:     cfg.Site.Email,
			Linker:    catalog.NewLinker(base),
			Rich:      richtext.New(),
			Analytics: handlers.AnalyticsFromConfig(cfg.Analytics),
		},
		metrics:      metrics.New(registry),
		fetchTimeout: cfg.CMS.FetchTimeout,
		publicDir:    cfg.Server.PublicDir,
		dev:          cfg.Server.Dev,
	}, nil
}

func (a *app) Close() error { return a.store.Close() }

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP. Ensure only trusted proxies
	// can set these headers in production environments.
	r.Use(middleware.RealIP)
	r.Use(mw.HTMX)
	r.Use(mw.Logger(a.logger))
	r.Use(a.metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", a.metrics.Handler())
	r.Handle("/assets/*", mw.AssetsDir(filepath.Join(a.publicDir, "assets"), "/assets", a.dev))

	r.Get("/", a.home)
	r.Get("/index.html", a.home)
	r.Get("/tools", a.toolsList)
	r.Get("/tools/", a.toolsList)
	r.Get("/tools/index.html", a.toolsList)
	r.Get("/tools/{slug}", a.toolDetail)
	r.Get("/tools/{slug}/", a.toolDetail)
	r.Get("/tool", a.toolDetail)
	r.Get("/tool.html", a.toolDetail)
	r.Get("/fragments/tools-grid", a.toolsGrid)
	return r
}

// settleGrace is how long Wait outlives the fetch deadline, so a load that
// times out still reports its own failure before it could be cancelled.
const settleGrace = 250 * time.Millisecond

// loadContexts derives the fetch context, bounded by the fetch timeout, and
// the wait context, which only ends early when the request itself does.
func (a *app) loadContexts(ctx context.Context) (fetch, wait context.Context, cancel context.CancelFunc) {
	fetch, cancelFetch := context.WithTimeout(ctx, a.fetchTimeout)
	wait, cancelWait := context.WithTimeout(ctx, a.fetchTimeout+settleGrace)
	return fetch, wait, func() {
		cancelWait()
		cancelFetch()
	}
}

// load fetches both documents concurrently and waits for them to settle.
// Neither load can cancel the other.
func (a *app) load(ctx context.Context) (loadstate.State[cms.Document], loadstate.State[[]catalog.Tool]) {
	logger := observability.FromContext(ctx, a.logger)
	fetchCtx, waitCtx, cancel := a.loadContexts(ctx)
	defer cancel()

	var (
		content loadstate.State[cms.Document]
		tools   loadstate.State[[]catalog.Tool]
		g       errgroup.Group
	)
	g.Go(func() error {
		content = loadstate.Start(fetchCtx, logger, docContent, a.store.Content, a.metrics.LoadObserver()).Wait(waitCtx)
		return nil
	})
	g.Go(func() error {
		tools = a.loadTools(fetchCtx, logger).Wait(waitCtx)
		return nil
	})
	_ = g.Wait()
	return content, tools
}

func (a *app) loadTools(ctx context.Context, logger *zap.Logger) *loadstate.Task[[]catalog.Tool] {
	return loadstate.Start(ctx, logger, docTools, a.store.Tools, a.metrics.LoadObserver())
}

func (a *app) toolsOnly(ctx context.Context) loadstate.State[[]catalog.Tool] {
	logger := observability.FromContext(ctx, a.logger)
	fetchCtx, waitCtx, cancel := a.loadContexts(ctx)
	defer cancel()
	return a.loadTools(fetchCtx, logger).Wait(waitCtx)
}

func (a *app) home(w http.ResponseWriter, r *http.Request) {
	content, tools := a.load(r.Context())
	vm := handlers.BuildHome(a.site, r.URL, content, tools)
	a.write(w, r, string(handlers.PageHome), http.StatusOK, func(buf *bytes.Buffer) error {
		return a.renderer.Home(buf, vm)
	})
}

func (a *app) toolsList(w http.ResponseWriter, r *http.Request) {
	mode := catalog.ParseSortMode(r.URL.Query().Get("sort"))
	vm := handlers.BuildToolsList(a.site, r.URL, a.toolsOnly(r.Context()), mode)
	a.write(w, r, string(handlers.PageTools), http.StatusOK, func(buf *bytes.Buffer) error {
		return a.renderer.Tools(buf, vm)
	})
}

// toolsGrid serves the htmx fragment swapped in when the sort changes.
func (a *app) toolsGrid(w http.ResponseWriter, r *http.Request) {
	mode := catalog.ParseSortMode(r.URL.Query().Get("sort"))
	listing, err := url.Parse(a.site.Linker.ListURL())
	if err != nil {
		listing = r.URL
	}
	vm := handlers.BuildToolsGrid(a.site, listing, a.toolsOnly(r.Context()), mode)
	mw.ReplaceURL(w, vm.ListingURL)
	a.write(w, r, pageGrid, http.StatusOK, func(buf *bytes.Buffer) error {
		return a.renderer.ToolsGrid(buf, vm)
	})
}

func (a *app) toolDetail(w http.ResponseWriter, r *http.Request) {
	slug, _ := catalog.ResolveSlug(catalog.LocationFromURL(r.URL))
	var tools loadstate.State[[]catalog.Tool]
	if slug != "" {
		tools = a.toolsOnly(r.Context())
	} else {
		tools = loadstate.ReadyState[[]catalog.Tool](nil)
	}
	vm := handlers.BuildToolDetail(a.site, r.URL, slug, tools)
	if mw.IsHTMX(r.Context()) {
		mw.ReplaceURL(w, vm.ReplaceURL)
	}
	a.write(w, r, string(handlers.PageDetail), vm.StatusCode(), func(buf *bytes.Buffer) error {
		return a.renderer.Detail(buf, vm)
	})
}

// write renders into a buffer so a failing render can still answer 500.
func (a *app) write(w http.ResponseWriter, r *http.Request, page string, status int, fn func(*bytes.Buffer) error) {
	start := time.Now()
	var buf bytes.Buffer
	err := fn(&buf)
	a.metrics.ObserveRender(page, a.renderer.Name(), time.Since(start))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		observability.FromContext(r.Context(), a.logger).Error("render failed",
			zap.String("page", page),
			zap.String("renderer", a.renderer.Name()),
			zap.Error(err))
		mw.Error(w, r, http.StatusInternalServerError, "Something went wrong rendering this page.")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if page == pageGrid {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
