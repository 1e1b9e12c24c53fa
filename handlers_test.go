package toolkit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eringen/toolkit/sheet"
)

type fakeSource struct {
	mu    sync.Mutex
	rows  []sheet.Row
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Fetch(ctx context.Context, force bool) (sheet.Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return sheet.Result{}, f.err
	}
	return sheet.Result{Rows: f.rows, Source: sheet.SourceNetwork}, nil
}

func sampleRows() []sheet.Row {
	return []sheet.Row{
		{"ID": "1", "Title": "Figma", "Category": "Design", "Subcategory": "UIUX", "ContentType": "Tool",
			"Description": "Collaborative interface design", "Tags": "design, prototyping", "Date": "2024-01-05",
			"URL": "https://www.figma.com"},
		{"ID": "2", "Title": "Resume Guide", "Category": "Job Search", "Subcategory": "Resumes", "ContentType": "PDF",
			"Description": "How to write a resume", "Tags": "career", "Date": "2023-09-01",
			"URL": "https://example.com/resume.pdf"},
		{"ID": "3", "Title": "Color Theory", "Category": "Design", "ContentType": "Video",
			"Description": "Intro to color", "Tags": "design", "Date": "2022",
			"URL": "https://video.example.com/color"},
	}
}

type testClient struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T, src *fakeSource, webhook string) *testClient {
	t.Helper()
	app, err := New(SiteConfig{
		URL:            "https://toolkit.example.com",
		SessionSecret:  "test-session-secret",
		WebhookURL:     webhook,
		MetricsEnabled: true,
	}, WithLogger(zap.NewNop()), WithSource(src))
	require.NoError(t, err)
	app.Setup()
	t.Cleanup(func() { _ = app.Close() })
	return &testClient{t: t, app: app, cookies: make(map[string]*http.Cookie)}
}

func (tc *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range tc.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	tc.app.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		tc.cookies[ck.Name] = ck
	}
	return rec
}

func (tc *testClient) get(target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return tc.do(req)
}

// postForm sends form with the CSRF token issued by an earlier GET.
func (tc *testClient) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	if ck, ok := tc.cookies["_csrf"]; ok {
		form.Set("_csrf", ck.Value)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return tc.do(req)
}

func (tc *testClient) postJSON(target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return tc.do(req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestBrowseRoot(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Figma")
	assert.Contains(t, body, "Resume Guide")
	assert.Contains(t, body, "3 of 3 items")
	assert.Contains(t, body, `href="/browse/Design/"`)
	assert.Contains(t, body, `href="/browse/Job%20Search/"`)
	assert.Equal(t, "private, no-cache", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestBrowseFolder(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/browse/Design/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Figma")
	assert.Contains(t, body, "Color Theory")
	assert.NotContains(t, body, "Resume Guide")
	assert.Contains(t, body, "2 of 2 items")
	assert.NotContains(t, body, `name="category"`, "dropdown is only offered at the root")

	rec = tc.get("/browse/Design/UIUX/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 of 1 items")
}

func TestBrowseSynonymFolder(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/browse/JobSearch/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Resume Guide")
}

func TestBrowseUnknownFolder(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/browse/Cooking/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found")
}

func TestBrowseCategoryWithSlash(t *testing.T) {
	rows := []sheet.Row{
		{"ID": "9", "Title": "Wireframe Kit", "Category": "UI/UX", "Subcategory": "Kits", "ContentType": "Tool",
			"Description": "Low fidelity components", "URL": "https://kit.example.com"},
		{"ID": "10", "Title": "UI Basics", "Category": "UI", "ContentType": "Article"},
	}
	tc := newTestApp(t, &fakeSource{rows: rows}, "")

	rec := tc.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/browse/UI%2FUX/"`)
	assert.NotContains(t, rec.Body.String(), `href="/browse/UI/UX/"`)

	rec = tc.get("/browse/UI%2FUX/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Wireframe Kit")
	assert.NotContains(t, body, "UI Basics")
	assert.Contains(t, body, `href="/browse/UI%2FUX/Kits/"`)

	rec = tc.get("/browse/UI%2FUX/Kits/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wireframe Kit")

	rec = tc.get("/browse/UI/UX/")
	assert.Equal(t, http.StatusNotFound, rec.Code, "UI has no UX subfolder")

	rec = tc.get("/browse/UI%2FUX/Kits/extra/")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = tc.get("/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>https://toolkit.example.com/browse/UI%2FUX/Kits/</loc>")
}

func TestBrowseAddsTrailingSlash(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/browse/Design")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/browse/Design/", rec.Header().Get(echo.HeaderLocation))
}

func TestSearchAndTypeFilter(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/?q=design")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2 of 3 items")

	rec = tc.get("/?q=design&type=video")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "1 of 3 items")
	assert.Contains(t, body, "Color Theory")
}

func TestRootDropdownFilter(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/?category=Design&subcategory=UIUX")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "1 of 3 items")
	assert.Contains(t, body, `<option value="UIUX" selected>`)
}

func TestTypeFilterIsRemembered(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/?q=&type=pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 of 3 items")

	rec = tc.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 of 3 items")

	rec = tc.get("/?q=")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "3 of 3 items")
}

func TestResultsPartial(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/?q=figma&partial=results", "HX-Request", "true")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, "Figma")
	assert.Contains(t, body, "1 of 3 items")

	// Without the header the full page is returned.
	rec = tc.get("/?q=figma&partial=results")
	assert.Contains(t, rec.Body.String(), "<html")
}

func TestItemPage(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/item/figma-1/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Figma</h1>")
	assert.Contains(t, body, "Open on figma.com")
	assert.Contains(t, body, "Color Theory", "related item from the same category")

	rec = tc.get("/item/nope/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoadFailureRendersErrorState(t *testing.T) {
	src := &fakeSource{err: &sheet.NetworkError{URL: "https://sheet", StatusCode: http.StatusBadGateway}}
	tc := newTestApp(t, src, "")

	rec := tc.get("/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Retry")
	assert.Contains(t, body, `data-code="NETWORK"`)

	rec = tc.get("/api/items")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp apiError
	decode(t, rec, &resp)
	assert.Equal(t, CodeNetwork, resp.Code)
	assert.NotEmpty(t, resp.Error)
}

func TestParseFailureCode(t *testing.T) {
	src := &fakeSource{err: &sheet.ParseError{Skipped: 4}}
	tc := newTestApp(t, src, "")

	rec := tc.get("/api/categories")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp apiError
	decode(t, rec, &resp)
	assert.Equal(t, CodeParse, resp.Code)
}

func TestRefreshRequiresCSRFToken(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	req := httptest.NewRequest(http.MethodPost, "/refresh/", strings.NewReader("next=/"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := tc.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefreshReloadsAndNotifies(t *testing.T) {
	src := &fakeSource{rows: sampleRows()}
	tc := newTestApp(t, src, "")

	require.Equal(t, http.StatusOK, tc.get("/").Code)
	before := src.calls.Load()

	rec := tc.postForm("/refresh/", url.Values{"next": {"/browse/Design/"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/browse/Design/", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, before+1, src.calls.Load())

	rec = tc.get("/browse/Design/")
	assert.Contains(t, rec.Body.String(), "Catalog refreshed: 3 items.")

	rec = tc.get("/browse/Design/")
	assert.NotContains(t, rec.Body.String(), "Catalog refreshed", "notice is shown once")
}

func TestRefreshRejectsExternalNext(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")
	tc.get("/")

	rec := tc.postForm("/refresh/", url.Values{"next": {"//evil.example.com/"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestViewPreference(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/")
	assert.Contains(t, rec.Body.String(), `class="items items-grid"`)

	rec = tc.postForm("/prefs/view/", url.Values{"view": {"list"}, "next": {"/"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = tc.get("/")
	assert.Contains(t, rec.Body.String(), `class="items items-list"`)

	rec = tc.postForm("/prefs/view/", url.Values{"view": {"tiles"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIItems(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	var resp struct {
		Items []struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			ContentType string `json:"contentType"`
		} `json:"items"`
		Count  int    `json:"count"`
		Total  int    `json:"total"`
		Source string `json:"source"`
	}
	rec := tc.get("/api/items?path=/Design&type=tool")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Figma", resp.Items[0].Title)
	assert.Equal(t, "tool", resp.Items[0].ContentType)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, sheet.SourceNetwork, resp.Source)

	rec = tc.get("/api/items/resume-guide-2")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = tc.get("/api/items/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPINavigation(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	var cats struct {
		Categories []string `json:"categories"`
	}
	decode(t, tc.get("/api/categories"), &cats)
	assert.Equal(t, []string{"Design", "Job Search"}, cats.Categories)

	var subs struct {
		Category      string   `json:"category"`
		Subcategories []string `json:"subcategories"`
	}
	decode(t, tc.get("/api/categories/Design/subcategories"), &subs)
	assert.Equal(t, []string{"UIUX"}, subs.Subcategories)

	var h map[string]struct {
		Count         int `json:"count"`
		Subcategories map[string]struct {
			ParentCategory string   `json:"parentCategory"`
			ContentTypes   []string `json:"contentTypes"`
		} `json:"subcategories"`
	}
	decode(t, tc.get("/api/hierarchy"), &h)
	require.Contains(t, h, "Design")
	assert.Equal(t, 2, h["Design"].Count)
	assert.Equal(t, "Design", h["Design"].Subcategories["UIUX"].ParentCategory)
	assert.Equal(t, []string{"tool"}, h["Design"].Subcategories["UIUX"].ContentTypes)

	var sections struct {
		Sections []struct {
			Name string `json:"name"`
		} `json:"sections"`
	}
	decode(t, tc.get("/api/sections"), &sections)
	assert.NotEmpty(t, sections.Sections)
}

func TestAPIRefresh(t *testing.T) {
	src := &fakeSource{rows: sampleRows()}
	tc := newTestApp(t, src, "")

	rec := tc.postJSON("/api/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp loadResponse
	decode(t, rec, &resp)
	assert.Equal(t, 3, resp.Items)
	assert.Equal(t, int32(1), src.calls.Load())

	src.mu.Lock()
	src.err = errors.New("offline")
	src.mu.Unlock()
	rec = tc.postJSON("/api/refresh", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// The previous snapshot keeps serving.
	rec = tc.get("/api/items")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzAndMetrics(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	var health map[string]any
	decode(t, tc.get("/healthz"), &health)
	assert.Equal(t, false, health["loaded"])

	tc.get("/")
	decode(t, tc.get("/healthz"), &health)
	assert.Equal(t, true, health["loaded"])
	assert.EqualValues(t, 3, health["items"])

	rec := tc.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "toolkit_catalog_items 3")
}

func TestFeedAndSitemap(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<rss")
	assert.Contains(t, body, "https://toolkit.example.com/item/figma-1/")
	assert.Less(t, strings.Index(body, "Figma"), strings.Index(body, "Resume Guide"), "newest first")

	rec = tc.get("/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "<loc>https://toolkit.example.com/browse/Design/UIUX/</loc>")
	assert.Contains(t, body, "<lastmod>2024-01-05</lastmod>")

	rec = tc.get("/robots.txt")
	assert.Contains(t, rec.Body.String(), "Sitemap: https://toolkit.example.com/sitemap.xml")
}

func TestEmbeddedAssets(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/public/catalog.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DEBOUNCE_MS = 100")
}

func TestSubmitForm(t *testing.T) {
	var received atomic.Int32
	var lastBody atomic.Value
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		lastBody.Store(string(b))
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, hook.URL)

	rec := tc.get("/submit/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="url"`)

	rec = tc.postForm("/submit/", url.Values{"url": {"not a url"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `aria-invalid="true"`)
	assert.Equal(t, int32(0), received.Load())

	rec = tc.postForm("/submit/", url.Values{
		"url": {"https://example.com/tool"}, "name": {"Ann"}, "email": {"ann@example.com"}, "xUsername": {"@ann"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thanks!")
	assert.Equal(t, int32(1), received.Load())
	assert.Contains(t, lastBody.Load().(string), `"xUsername":"ann"`)
}

const validSubmission = `{"url":"https://example.com","name":"Ann","email":"ann@example.com"}`

func TestAPISubmit(t *testing.T) {
	var received atomic.Int32
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
	}))
	defer hook.Close()
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, hook.URL)

	rec := tc.postJSON("/api/submit", `{"url":"ftp://example.com"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var bad apiError
	decode(t, rec, &bad)
	assert.Contains(t, bad.Fields, "url")
	assert.Contains(t, bad.Fields, "name")
	assert.Contains(t, bad.Fields, "email")

	rec = tc.postJSON("/api/submit", `{"url":"https://example.com","name":"Ann","email":"ann@example.com"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var ok struct {
		ID string `json:"id"`
	}
	decode(t, rec, &ok)
	assert.NotEmpty(t, ok.ID)
	assert.Equal(t, int32(1), received.Load())

	// Two attempts used; three more are allowed in the window.
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusAccepted, tc.postJSON("/api/submit", validSubmission).Code)
	}
	rec = tc.postJSON("/api/submit", validSubmission)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAPISubmitWebhookDown(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	hookURL := hook.URL
	hook.Close()
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, hookURL)

	rec := tc.postJSON("/api/submit", validSubmission)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPlaceholderRoute(t *testing.T) {
	tc := newTestApp(t, &fakeSource{rows: sampleRows()}, "")

	rec := tc.get("/placeholder/400/300")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	rec = tc.get("/placeholder/wide/300")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
