package views

import (
	"github.com/eringen/toolkit/content"
	"github.com/eringen/toolkit/submission"
)

// SiteConfig holds site-wide settings populated from environment variables.
// Every handler passes this to templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME  (default "Global Toolkit")
	URL         string // SITE_URL   (default "http://localhost:3000")
	Description string // SITE_DESCRIPTION
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// View modes of the results list.
const (
	ViewGrid = "grid"
	ViewList = "list"
)

// Crumb is one breadcrumb link.
type Crumb struct {
	Name string
	Path string
}

// Chrome is what every full page needs for the header and sidebar.
type Chrome struct {
	Site     SiteConfig
	Meta     PageMeta
	Sections []content.Section
	Path     string // current browse path, "/" at the root
	CSRF     string
	Notice   string
}

// BrowseData drives the catalog browser page and its results partial.
type BrowseData struct {
	Chrome
	Crumbs        []Crumb
	Folders       []*content.Folder
	Items         []content.Item
	Total         int
	Query         string
	Types         []content.ContentType
	Category      string
	Subcategory   string
	Categories    []string
	Subcategories []string
	View          string
	Stale         bool
}

// ItemData drives the item preview page.
type ItemData struct {
	Chrome
	Item    content.Item
	Related []content.Item
}

// ErrorData describes a catalog that could not be loaded.
type ErrorData struct {
	Chrome
	Message string
	Code    string
}

// SubmitData drives the submission form.
type SubmitData struct {
	Chrome
	Form       submission.Form
	Errors     map[string]string
	Sent       bool
	Failed     bool
	Categories []string
}
