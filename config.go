package toolkit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eringen/toolkit/catalog"
)

// Published feed and submission webhook used when the environment does not
// name others.
const (
	DefaultSheetURL   = "https://docs.google.com/spreadsheets/d/e/2PACX-1vT7s-KEJOG_ui2rqMxpOF6KwgzTCjEeXdL4_cNLx4oXelGbWNhu9aCCYcu68qEJygVGsiI08TnvDXCQ/pub?gid=0&single=true&output=csv"
	DefaultWebhookURL = "https://script.google.com/macros/s/AKfycbxmUC79wq_A_eHCoocrCT7Q6jl-DRP_jviLs56iju8-52LxhQWatcSp5rxwQBtXZW5x/exec"
)

// SiteConfig holds all configuration for a toolkit site.
type SiteConfig struct {
	Name        string // Site name (default "Global Toolkit")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr string // Listen address (default ":3000")

	SheetURL        string        // Published CSV feed
	WebhookURL      string        // Submission webhook
	SheetCacheTTL   time.Duration // How long fetched rows count as fresh (default 0, always refetch)
	RefreshInterval time.Duration // Snapshot age that triggers a reload (default 5min, negative disables)
	FetchTimeout    time.Duration // HTTP timeout for the feed (default 15s)

	SessionSecret string // Cookie session secret (random per process when empty)
	CookieSecure  bool   // Set true for HTTPS

	LogLevel       string // debug, info, warn, error (default "info")
	LogFormat      string // json or console (default "json")
	MetricsEnabled bool   // Serve /metrics
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Global Toolkit"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.SheetURL == "" {
		c.SheetURL = DefaultSheetURL
	}
	if c.WebhookURL == "" {
		c.WebhookURL = DefaultWebhookURL
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = 5 * time.Minute
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// ConfigFromEnv reads the configuration from environment variables, falling
// back to the defaults for unset ones.
func ConfigFromEnv() (SiteConfig, error) {
	cfg := SiteConfig{
		Name:          EnvOr("SITE_NAME", "Global Toolkit"),
		URL:           EnvOr("SITE_URL", "http://localhost:3000"),
		Description:   EnvOr("SITE_DESCRIPTION", "A curated collection of tools, guides and media for students."),
		Addr:          EnvOr("ADDR", ":3000"),
		SheetURL:      EnvOr("SHEET_CSV_URL", DefaultSheetURL),
		WebhookURL:    EnvOr("SUBMIT_WEBHOOK_URL", DefaultWebhookURL),
		SessionSecret: EnvOr("SESSION_SECRET", ""),
		LogLevel:      EnvOr("LOG_LEVEL", "info"),
		LogFormat:     EnvOr("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.SheetCacheTTL, err = envDuration("SHEET_CACHE_TTL", 0); err != nil {
		return cfg, err
	}
	if cfg.RefreshInterval, err = envDuration("CATALOG_REFRESH_INTERVAL", 5*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.FetchTimeout, err = envDuration("FETCH_TIMEOUT", 15*time.Second); err != nil {
		return cfg, err
	}
	if cfg.CookieSecure, err = envBool("COOKIE_SECURE", false); err != nil {
		return cfg, err
	}
	if cfg.MetricsEnabled, err = envBool("METRICS_ENABLED", true); err != nil {
		return cfg, err
	}
	// An explicit zero turns lazy reloading off.
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = -1
	}
	return cfg, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := EnvOr(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("toolkit: %s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := EnvOr(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("toolkit: %s: %w", key, err)
	}
	return b, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the logger. Without it New builds one from LogLevel and
// LogFormat.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithHTTPClient sets the client used for the feed and the webhook.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}

// WithRegistry sets the Prometheus registry the collectors are registered
// with (default: a fresh registry per App).
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// WithSource replaces the spreadsheet fetcher as the catalog's row source.
func WithSource(src catalog.Source) Option {
	return func(a *App) {
		a.source = src
	}
}
