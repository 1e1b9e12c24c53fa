// Package toolkit serves a catalog of learning resources maintained in a
// published spreadsheet. It fetches the sheet as CSV, normalizes the rows into
// items, and renders a folder-style browser with search, type filters and a
// submission form, plus a small JSON API.
package toolkit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eringen/toolkit/catalog"
	"github.com/eringen/toolkit/logging"
	"github.com/eringen/toolkit/metrics"
	"github.com/eringen/toolkit/sheet"
	"github.com/eringen/toolkit/submission"
)

// App wires together the feed fetcher, catalog, submission client, handlers
// and middleware.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Catalog   *catalog.Catalog
	Fetcher   *sheet.Fetcher
	Submitter *submission.Client
	Metrics   *metrics.Metrics
	Logger    *zap.Logger

	submitLimiter *SubmitLimiter
	registry      *prometheus.Registry
	httpClient    *http.Client
	source        catalog.Source
	customRoutes  []func(*App)
	staticDir     string
	ready         bool
}

// New creates an App with the given configuration. Nothing is fetched until
// the first request or Warm.
func New(cfg SiteConfig, opts ...Option) (*App, error) {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.Logger == nil {
		l, err := logging.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return nil, fmt.Errorf("toolkit: %w", err)
		}
		a.Logger = l
	}
	if a.Config.SessionSecret == "" {
		a.Config.SessionSecret = randomSecret()
		a.Logger.Warn("SESSION_SECRET not set, using a random secret; view preferences reset on restart")
	}

	if cfg.MetricsEnabled {
		if a.registry == nil {
			a.registry = prometheus.NewRegistry()
		}
		a.Metrics = metrics.New(a.registry)
	}

	hc := a.httpClient
	feedClient := hc
	if feedClient == nil {
		feedClient = &http.Client{Timeout: cfg.FetchTimeout}
	}

	a.Fetcher = sheet.NewFetcher(cfg.SheetURL,
		sheet.WithClient(feedClient),
		sheet.WithTTL(cfg.SheetCacheTTL),
		sheet.WithLogger(a.Logger.Named("sheet")),
		sheet.WithMetrics(a.Metrics),
	)
	src := a.source
	if src == nil {
		src = a.Fetcher
	}
	a.Catalog = catalog.New(src,
		catalog.WithRefreshInterval(cfg.RefreshInterval),
		catalog.WithLogger(a.Logger.Named("catalog")),
		catalog.WithMetrics(a.Metrics),
	)
	a.Submitter = submission.NewClient(cfg.WebhookURL,
		submission.WithHTTPClient(hc),
		submission.WithLogger(a.Logger.Named("submission")),
		submission.WithMetrics(a.Metrics),
	)
	a.submitLimiter = NewSubmitLimiter(5, time.Minute)

	return a, nil
}

// Setup installs middleware and routes. Start calls it; tests call it to
// serve requests through a.Echo directly.
func (a *App) Setup() {
	if a.ready {
		return
	}
	a.ready = true

	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
}

// Warm loads the catalog once so the first visitor does not wait for the
// feed. A failure is logged and retried on the next request.
func (a *App) Warm(ctx context.Context) {
	if _, err := a.Catalog.Load(ctx, false); err != nil {
		a.Logger.Warn("initial catalog load failed", zap.Error(err))
	}
}

// Start sets up the server, warms the catalog in the background and listens
// on Config.Addr.
func (a *App) Start() error {
	a.Setup()

	go a.Warm(context.Background())

	a.Logger.Info("listening", zap.String("addr", a.Config.Addr), zap.String("sheet", a.Config.SheetURL))
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/catalog.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/catalog.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/placeholder/:w/:h", a.handlePlaceholder)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/healthz", a.handleHealthz)
	if a.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(a.Metrics.Handler()))
	}

	// Catalog browser
	e.GET("/", a.handleBrowse)
	e.GET("/browse/*", a.handleBrowse)
	e.GET("/item/:slug/", a.handleItem)
	e.POST("/refresh/", a.handleRefresh)
	e.POST("/prefs/view/", a.handleViewPref)
	e.GET("/submit/", a.handleSubmitForm)
	e.POST("/submit/", a.handleSubmit)

	api := e.Group("/api")
	api.GET("/items", a.handleAPIItems)
	api.GET("/items/:slug", a.handleAPIItem)
	api.GET("/categories", a.handleAPICategories)
	api.GET("/categories/:category/subcategories", a.handleAPISubcategories)
	api.GET("/hierarchy", a.handleAPIHierarchy)
	api.GET("/sections", a.handleAPISections)
	api.POST("/refresh", a.handleAPIRefresh)
	api.POST("/submit", a.handleAPISubmit)
}

// Close releases background resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.submitLimiter != nil {
		a.submitLimiter.Stop()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("toolkit-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
