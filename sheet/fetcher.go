// Package sheet downloads and parses the published spreadsheet CSV feed.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/toolkit/logging"
	"github.com/eringen/toolkit/metrics"
)

// Where the rows of a Result came from.
const (
	SourceNetwork = metrics.SourceNetwork
	SourceCache   = metrics.SourceCache
	SourceStale   = metrics.SourceStale
)

// maxBody caps the CSV download.
const maxBody = 32 << 20

// Result is the outcome of a successful Fetch.
type Result struct {
	Rows      []Row
	FetchedAt time.Time
	Source    string
	Skipped   int
}

// Fetcher retrieves the CSV feed and keeps the last good result in its Cache.
type Fetcher struct {
	url     string
	client  *http.Client
	cache   *Cache
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client. The default client has a 15 second timeout.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithCache replaces the fetcher's cache.
func WithCache(c *Cache) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.cache = c
		}
	}
}

// WithTTL sets how long a cached result is served without a network call.
// Zero, the default, always goes to the network.
func WithTTL(d time.Duration) Option {
	return func(f *Fetcher) { f.ttl = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = logging.OrNop(l) }
}

// WithMetrics sets the collectors fetch outcomes are recorded in.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// NewFetcher creates a Fetcher for the CSV published at url.
func NewFetcher(url string, opts ...Option) *Fetcher {
	f := &Fetcher{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
		cache:  NewCache(),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the feed address without the cache buster.
func (f *Fetcher) URL() string { return f.url }

// Cache returns the fetcher's cache.
func (f *Fetcher) Cache() *Cache { return f.cache }

// Fetch returns the feed rows. Unless force is set, rows cached within the
// TTL are returned without a request. When the request or parse fails and an
// earlier result is cached, that result is returned with Source set to stale.
func (f *Fetcher) Fetch(ctx context.Context, force bool) (Result, error) {
	now := f.now()
	if !force && f.cache.Fresh(f.ttl, now) {
		rows, fetched, _ := f.cache.Get()
		f.logger.Debug("using cached sheet rows", zap.Int("rows", len(rows)))
		f.metrics.ObserveFetch(SourceCache, 0)
		return Result{Rows: rows, FetchedAt: fetched, Source: SourceCache}, nil
	}

	start := time.Now()
	rows, skipped, err := f.download(ctx, now)
	if err != nil {
		if cached, fetched, ok := f.cache.Get(); ok {
			f.logger.Warn("sheet fetch failed, serving cached rows",
				zap.Error(err),
				zap.Int("rows", len(cached)),
				zap.Time("fetched_at", fetched),
			)
			f.metrics.ObserveFetch(SourceStale, 0)
			return Result{Rows: cached, FetchedAt: fetched, Source: SourceStale}, nil
		}
		f.metrics.ObserveFetch(metrics.SourceError, 0)
		return Result{}, err
	}

	fetchedAt := f.now()
	f.cache.Set(rows, fetchedAt)
	f.metrics.ObserveFetch(SourceNetwork, time.Since(start))
	f.metrics.AddSkippedRows(skipped)
	f.logger.Info("fetched sheet",
		zap.Int("rows", len(rows)),
		zap.Int("skipped", skipped),
		zap.Duration("took", time.Since(start)),
	)
	return Result{Rows: rows, FetchedAt: fetchedAt, Source: SourceNetwork, Skipped: skipped}, nil
}

func (f *Fetcher) download(ctx context.Context, now time.Time) ([]Row, int, error) {
	target := bustCache(f.url, now)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, &NetworkError{URL: f.url, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	f.logger.Debug("fetching sheet", zap.String("url", target))
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, &NetworkError{URL: f.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, 0, &NetworkError{
			URL:        f.url,
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		}
	}

	rows, issues, err := Parse(io.LimitReader(resp.Body, maxBody))
	for _, is := range issues {
		f.logger.Warn("skipped csv row", zap.Int("line", is.Line), zap.String("reason", is.Reason))
	}
	if err != nil {
		var pe *ParseError
		if !errors.As(err, &pe) {
			err = &NetworkError{URL: f.url, Err: err}
		}
		return nil, len(issues), err
	}
	return rows, len(issues), nil
}

// bustCache appends _cb=<unix millis> so intermediaries cannot serve a cached copy.
func bustCache(url string, now time.Time) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_cb=" + strconv.FormatInt(now.UnixMilli(), 10)
}
