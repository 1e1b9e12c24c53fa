package views

import (
	"encoding/json"
	"html"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/toolkit/content"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
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

// PathEscape wraps url.PathEscape for use in templ expressions.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// BrowseHref returns the browser URL for a catalog path such as "/Design/UIUX".
func BrowseHref(catalogPath string) string {
	cat, sub := content.PathSegments(catalogPath)
	if cat == "" {
		return "/"
	}
	p := "/browse/" + url.PathEscape(cat) + "/"
	if sub != "" {
		p += url.PathEscape(sub) + "/"
	}
	return p
}

// ItemHref returns the preview URL of an item.
func ItemHref(it content.Item) string {
	return "/item/" + url.PathEscape(it.Slug) + "/"
}

// FilterQuery encodes the search and type selection of d, plus extra pairs.
func FilterQuery(d BrowseData, extra ...string) string {
	q := url.Values{}
	if d.Query != "" {
		q.Set("q", d.Query)
	}
	for _, t := range d.Types {
		q.Add("type", string(t))
	}
	if d.Category != "" {
		q.Set("category", d.Category)
	}
	if d.Subcategory != "" {
		q.Set("subcategory", d.Subcategory)
	}
	for i := 0; i+1 < len(extra); i += 2 {
		q.Set(extra[i], extra[i+1])
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// TypeSelected reports whether t is one of the selected types.
func TypeSelected(selected []content.ContentType, t content.ContentType) bool {
	for _, s := range selected {
		if s == t {
			return true
		}
	}
	return false
}

// TypeClass returns CSS classes for a content type badge.
func TypeClass(t content.ContentType) string {
	if t.Known() {
		return "badge badge-" + string(t)
	}
	return "badge badge-other"
}

// safeURL returns raw escaped for an attribute when it is a relative path or
// uses an allowed scheme, and "" otherwise.
func safeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto":
		return html.EscapeString(val)
	default:
		return ""
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

// esc escapes text content and attribute values.
func esc(s string) string {
	return templ.EscapeString(s)
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      buildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	return marshalLD(data)
}

// ItemJsonLD produces a Schema.org CreativeWork JSON-LD block for an item.
func ItemJsonLD(cfg SiteConfig, it content.Item) string {
	pageURL := buildURL(cfg.URL, "item", it.Slug)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "CreativeWork",
		"name":        it.Title,
		"description": it.Description,
		"genre":       it.Category,
		"url":         pageURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   pageURL,
		},
	}
	if it.Author != "" && it.Author != content.DefaultAuthor {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  it.Author,
		}
	}
	if tags := it.TagList(); len(tags) > 0 {
		data["keywords"] = strings.Join(tags, ", ")
	}
	if u := it.ContentURL(); u != "" {
		data["sameAs"] = u
	}
	return marshalLD(data)
}

func marshalLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
