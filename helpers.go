package toolkit

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/toolkit/catalog"
	"github.com/eringen/toolkit/content"
	"github.com/eringen/toolkit/sheet"
	"github.com/eringen/toolkit/views"
)

// Error codes reported when the catalog cannot be loaded.
const (
	CodeNetwork = "NETWORK"
	CodeParse   = "PARSE"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ErrorCode classifies a catalog load error.
func ErrorCode(err error) string {
	var pe *sheet.ParseError
	if errors.As(err, &pe) {
		return CodeParse
	}
	return CodeNetwork
}

// ErrorMessage is the visitor-facing text for a catalog load error.
func ErrorMessage(err error) string {
	if ErrorCode(err) == CodeParse {
		return "The toolkit spreadsheet could not be read."
	}
	return "The toolkit spreadsheet could not be reached. Check your connection and try again."
}

// safeNext returns next when it is a local path, and "/" otherwise.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// parseTypes reads the repeatable type parameter. Comma separated values are
// accepted too.
func parseTypes(vals []string) []content.ContentType {
	var out []content.ContentType
	seen := make(map[content.ContentType]bool)
	for _, v := range vals {
		for _, part := range FilterEmpty(strings.Split(v, ",")) {
			t := content.ParseContentType(part)
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// criteriaFromQuery builds filter criteria from the query string. The browse
// path comes from the route for pages and the path parameter for the API.
func criteriaFromQuery(c echo.Context, browsePath string) content.Criteria {
	q := c.QueryParams()
	return content.Criteria{
		Search:      q.Get("q"),
		Types:       parseTypes(q["type"]),
		Path:        browsePath,
		Category:    strings.TrimSpace(q.Get("category")),
		Subcategory: strings.TrimSpace(q.Get("subcategory")),
	}
}

func (a *App) siteView() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
	}
}

// chrome collects what every page needs. snap may be nil when the catalog
// has not loaded.
func (a *App) chrome(c echo.Context, snap *catalog.Snapshot, browsePath string) views.Chrome {
	ch := views.Chrome{
		Site:   a.siteView(),
		Path:   browsePath,
		CSRF:   CsrfToken(c),
		Notice: takeNotice(c),
		Meta: views.PageMeta{
			URL: BuildURL(a.Config.URL, strings.TrimPrefix(c.Request().URL.Path, "/")),
		},
	}
	if snap != nil {
		ch.Sections = snap.Sections
	}
	return ch
}
