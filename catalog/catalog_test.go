package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/toolkit/content"
	"github.com/eringen/toolkit/sheet"
)

type fakeSource struct {
	fn    func(ctx context.Context, force bool) (sheet.Result, error)
	calls atomic.Int32
}

func (f *fakeSource) Fetch(ctx context.Context, force bool) (sheet.Result, error) {
	f.calls.Add(1)
	return f.fn(ctx, force)
}

func rows(titles ...string) []sheet.Row {
	out := make([]sheet.Row, len(titles))
	for i, title := range titles {
		out[i] = sheet.Row{"ID": title, "Title": title, "Category": "Design"}
	}
	return out
}

func staticSource(r []sheet.Row) *fakeSource {
	return &fakeSource{fn: func(context.Context, bool) (sheet.Result, error) {
		return sheet.Result{Rows: r, Source: sheet.SourceNetwork}, nil
	}}
}

func titles(items []content.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestLoadBuildsSnapshot(t *testing.T) {
	src := staticSource([]sheet.Row{
		{"ID": "42", "Title": "A", "Category": "Design", "Subcategory": "UIUX", "ContentType": "Link"},
		{"ID": "42", "Title": "B", "Category": "", "ContentType": "pdf"},
	})
	c := New(src)

	snap, err := c.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, 1, snap.Duplicates)
	assert.Equal(t, []string{"Design", "Uncategorized"}, snap.Categories)
	assert.Equal(t, "42-1", snap.Items[1].ID)
	assert.Equal(t, "42", snap.Items[1].OriginalID)

	subs, err := c.Subcategories(context.Background(), "design")
	require.NoError(t, err)
	assert.Equal(t, []string{"UIUX"}, subs)

	it, err := c.Lookup(context.Background(), snap.Items[0].Slug)
	require.NoError(t, err)
	assert.Equal(t, "A", it.Title)

	_, err = c.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadFailureKeepsPreviousSnapshot(t *testing.T) {
	var fail atomic.Bool
	src := &fakeSource{fn: func(context.Context, bool) (sheet.Result, error) {
		if fail.Load() {
			return sheet.Result{}, &sheet.ParseError{Skipped: 3}
		}
		return sheet.Result{Rows: rows("one", "two")}, nil
	}}
	c := New(src)

	first, err := c.Load(context.Background(), true)
	require.NoError(t, err)

	fail.Store(true)
	_, err = c.Load(context.Background(), true)
	var pe *sheet.ParseError
	require.ErrorAs(t, err, &pe)

	assert.Same(t, first, c.Peek())
	all, err := c.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, titles(all))
}

func TestScenarioENetworkErrorWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(sheet.NewFetcher(srv.URL))
	_, err := c.Load(context.Background(), true)

	var ne *sheet.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, http.StatusServiceUnavailable, ne.StatusCode)
	assert.Nil(t, c.Peek())

	_, err = c.Categories(context.Background())
	assert.ErrorAs(t, err, &ne)
}

func TestOutOfOrderLoadIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{fn: func(_ context.Context, force bool) (sheet.Result, error) {
		if !force {
			close(started)
			<-release
			return sheet.Result{Rows: rows("old")}, nil
		}
		return sheet.Result{Rows: rows("new")}, nil
	}}
	c := New(src)

	var wg sync.WaitGroup
	var slow *Snapshot
	wg.Add(1)
	go func() {
		defer wg.Done()
		slow, _ = c.Load(context.Background(), false)
	}()

	<-started
	fresh, err := c.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, titles(fresh.Items))

	close(release)
	wg.Wait()

	require.NotNil(t, slow)
	assert.Same(t, fresh, slow)
	assert.Equal(t, []string{"new"}, titles(c.Peek().Items))
}

func TestConcurrentLoadsShareFetch(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{fn: func(context.Context, bool) (sheet.Result, error) {
		<-gate
		return sheet.Result{Rows: rows("a")}, nil
	}}
	c := New(src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Load(context.Background(), true)
		}()
	}
	// Give the goroutines time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.LessOrEqual(t, src.calls.Load(), int32(8))
	assert.GreaterOrEqual(t, src.calls.Load(), int32(1))
	require.NotNil(t, c.Peek())
}

func TestCanceledCallerDoesNotAbortSharedLoad(t *testing.T) {
	started := make(chan struct{})
	gate := make(chan struct{})
	src := &fakeSource{fn: func(ctx context.Context, _ bool) (sheet.Result, error) {
		close(started)
		<-gate
		if err := ctx.Err(); err != nil {
			return sheet.Result{}, err
		}
		return sheet.Result{Rows: rows("a")}, nil
	}}
	c := New(src)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Load(ctx, false)
		firstErr <- err
	}()
	<-started

	type result struct {
		snap *Snapshot
		err  error
	}
	second := make(chan result, 1)
	go func() {
		s, err := c.Load(context.Background(), false)
		second <- result{s, err}
	}()

	cancel()
	err := <-firstErr
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// The load is still blocked on gate, so the second caller shares it.
	time.Sleep(20 * time.Millisecond)
	close(gate)

	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, []string{"a"}, titles(got.snap.Items))
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Same(t, got.snap, c.Peek())
}

func TestAllReturnsCopy(t *testing.T) {
	c := New(staticSource(rows("a", "b")))

	all, err := c.All(context.Background())
	require.NoError(t, err)
	all[0].Title = "changed"

	again, err := c.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, titles(again))
	assert.Equal(t, []string{"a", "b"}, titles(c.Peek().Items))

	cats, err := c.Categories(context.Background())
	require.NoError(t, err)
	cats[0] = "changed"
	assert.Equal(t, []string{"Design"}, c.Peek().Categories)
}

func TestSnapshotLazyReload(t *testing.T) {
	var n atomic.Int32
	src := &fakeSource{fn: func(context.Context, bool) (sheet.Result, error) {
		if n.Add(1) == 1 {
			return sheet.Result{Rows: rows("first")}, nil
		}
		return sheet.Result{Rows: rows("second")}, nil
	}}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(src, WithRefreshInterval(time.Minute), WithClock(func() time.Time { return now }))

	all, err := c.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, titles(all))

	all, err = c.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, titles(all))
	assert.EqualValues(t, 1, src.calls.Load())

	now = now.Add(2 * time.Minute)
	all, err = c.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, titles(all))
}

func TestExpiredSnapshotServedWhenReloadFails(t *testing.T) {
	var fail atomic.Bool
	src := &fakeSource{fn: func(context.Context, bool) (sheet.Result, error) {
		if fail.Load() {
			return sheet.Result{}, errors.New("boom")
		}
		return sheet.Result{Rows: rows("kept")}, nil
	}}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(src, WithRefreshInterval(time.Minute), WithClock(func() time.Time { return now }))

	_, err := c.Load(context.Background(), false)
	require.NoError(t, err)

	fail.Store(true)
	now = now.Add(time.Hour)
	all, err := c.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, titles(all))
}

func TestRefreshClearsFetcherCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("ID,Title,Category\n1,Figma,Design\n"))
	}))
	defer srv.Close()

	f := sheet.NewFetcher(srv.URL, sheet.WithTTL(time.Hour))
	c := New(f)

	_, err := c.Load(context.Background(), false)
	require.NoError(t, err)
	_, err = c.Load(context.Background(), false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())

	snap, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())
	assert.Equal(t, sheet.SourceNetwork, snap.Source)
}

func TestFilterAndRelatedDelegate(t *testing.T) {
	src := staticSource([]sheet.Row{
		{"ID": "1", "Title": "Resume", "Category": "jobsearch", "Tags": "career"},
		{"ID": "2", "Title": "Cover letter", "Category": "Job Search", "Tags": "career"},
		{"ID": "3", "Title": "Figma", "Category": "Design"},
	})
	c := New(src)

	got, err := c.Filter(context.Background(), content.Criteria{Path: "/Job Search"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Resume", "Cover letter"}, titles(got))

	snap := c.Peek()
	rel, err := c.Related(context.Background(), snap.Items[0], 4)
	require.NoError(t, err)
	assert.Equal(t, "Cover letter", rel[0].Title)
}
