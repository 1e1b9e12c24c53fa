// Package catalog holds the in-memory content store. Each load fetches the
// feed, normalizes and de-duplicates it, and publishes a new immutable
// Snapshot in a single swap.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/toolkit/content"
	"github.com/eringen/toolkit/logging"
	"github.com/eringen/toolkit/metrics"
	"github.com/eringen/toolkit/sheet"
)

// Source supplies raw feed rows. *sheet.Fetcher implements it.
type Source interface {
	Fetch(ctx context.Context, force bool) (sheet.Result, error)
}

// Catalog is safe for concurrent use.
type Catalog struct {
	src        Source
	normalizer content.Normalizer
	refresh    time.Duration
	now        func() time.Time
	logger     *zap.Logger
	metrics    *metrics.Metrics

	mu      sync.RWMutex
	snap    *Snapshot
	applied uint64

	seq   atomic.Uint64
	group singleflight.Group
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithRefreshInterval sets the age after which a read triggers a reload.
// Zero disables lazy reloading.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Catalog) { c.refresh = d }
}

// WithClock overrides time.Now for snapshot ages and normalized dates.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
			c.normalizer.Now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) { c.logger = logging.OrNop(l) }
}

// WithMetrics sets the collectors load results are recorded in.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// New creates an empty Catalog reading from src. Nothing is fetched until the
// first Load or read.
func New(src Source, opts ...Option) *Catalog {
	c := &Catalog{
		src:     src,
		refresh: 5 * time.Minute,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the feed and replaces the current snapshot. On error the
// previous snapshot stays in place. Concurrent loads with the same force flag
// share one fetch, which a canceled caller does not abort. A load that completes after a newer load has been applied
// is dropped and the newer snapshot is returned.
func (c *Catalog) Load(ctx context.Context, force bool) (*Snapshot, error) {
	key := "load"
	if force {
		key = "force"
	}
	// The shared load must outlive any one caller; each caller still stops
	// waiting when its own context ends. The fetch client bounds the load.
	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(context.WithoutCancel(ctx), force)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load catalog: %w", ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			c.logger.Debug("catalog load shared", zap.Bool("force", force))
		}
		return r.Val.(*Snapshot), nil
	}
}

func (c *Catalog) load(ctx context.Context, force bool) (*Snapshot, error) {
	seq := c.seq.Add(1)
	res, err := c.src.Fetch(ctx, force)
	if err != nil {
		c.logger.Error("catalog load failed", zap.Uint64("seq", seq), zap.Bool("force", force), zap.Error(err))
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	items := c.normalizer.NormalizeAll(res.Rows)
	dups := content.Dedupe(items)
	snap := newSnapshot(items)
	snap.Seq = seq
	snap.LoadedAt = c.now()
	snap.FetchedAt = res.FetchedAt
	snap.Source = res.Source
	snap.Skipped = res.Skipped
	snap.Duplicates = dups

	c.mu.Lock()
	if seq < c.applied {
		current := c.snap
		c.mu.Unlock()
		c.metrics.LoadDiscarded()
		c.logger.Info("discarding out-of-order catalog load",
			zap.Uint64("seq", seq),
			zap.Uint64("applied", current.Seq),
		)
		return current, nil
	}
	c.applied = seq
	c.snap = snap
	c.mu.Unlock()

	c.metrics.SetItems(len(items))
	c.metrics.AddDuplicateIDs(dups)
	if dups > 0 {
		c.logger.Warn("rewrote duplicate item ids", zap.Int("count", dups))
	}
	c.logger.Info("catalog loaded",
		zap.Uint64("seq", seq),
		zap.Int("items", len(items)),
		zap.Int("categories", len(snap.Categories)),
		zap.String("source", res.Source),
	)
	return snap, nil
}

// Refresh drops the fetch cache when the source has one and forces a load.
func (c *Catalog) Refresh(ctx context.Context) (*Snapshot, error) {
	if cs, ok := c.src.(interface{ Cache() *sheet.Cache }); ok {
		cs.Cache().Clear()
	}
	return c.Load(ctx, true)
}

// Peek returns the current snapshot without loading. It is nil before the
// first successful load.
func (c *Catalog) Peek() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Snapshot returns the current snapshot, loading it first when there is none
// or it is older than the refresh interval. A failed reload of an expired
// snapshot keeps serving the old one.
func (c *Catalog) Snapshot(ctx context.Context) (*Snapshot, error) {
	s := c.Peek()
	if s != nil && (c.refresh <= 0 || c.now().Sub(s.LoadedAt) < c.refresh) {
		return s, nil
	}
	fresh, err := c.Load(ctx, false)
	if err != nil {
		if s != nil {
			c.logger.Warn("catalog reload failed, keeping previous snapshot", zap.Error(err))
			return s, nil
		}
		return nil, err
	}
	return fresh, nil
}

// All returns a copy of every item in feed order.
func (c *Catalog) All(ctx context.Context) ([]content.Item, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(s.Items), nil
}

// Categories returns a copy of the sorted distinct category names.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(s.Categories), nil
}

// Subcategories returns the sorted subcategories of category.
func (c *Catalog) Subcategories(ctx context.Context, category string) ([]string, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Subcategories(category), nil
}

// Hierarchy returns the category hierarchy.
func (c *Catalog) Hierarchy(ctx context.Context) (content.Hierarchy, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Hierarchy, nil
}

// Tree returns the folder tree.
func (c *Catalog) Tree(ctx context.Context) (*content.Folder, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Tree, nil
}

// Lookup returns the item with slug, or ErrNotFound.
func (c *Catalog) Lookup(ctx context.Context, slug string) (content.Item, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return content.Item{}, err
	}
	return s.Lookup(slug)
}

// Filter returns the items matching criteria.
func (c *Catalog) Filter(ctx context.Context, criteria content.Criteria) ([]content.Item, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if ce := c.logger.Check(zap.DebugLevel, "filter passes"); ce != nil {
		ce.Write(zap.Any("passes", content.Trace(s.Items, criteria)))
	}
	return s.Filter(criteria), nil
}

// Related returns up to n items related to it.
func (c *Catalog) Related(ctx context.Context, it content.Item, n int) ([]content.Item, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Related(it, n), nil
}
