package views

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/toolkit/content"
)

// Layout wraps body in the document shell: head, header with search,
// sidebar sections and footer.
func Layout(ch Chrome, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		title := ch.Site.Name
		if ch.Meta.Title != "" && ch.Meta.Title != ch.Site.Name {
			title = ch.Meta.Title + " | " + ch.Site.Name
		}
		desc := ch.Meta.Description
		if desc == "" {
			desc = ch.Site.Description
		}
		ogType := ch.Meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		buf.WriteString(`<!doctype html><html lang="en"><head><meta charset="utf-8"/>`)
		buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		buf.WriteString(`<title>` + esc(title) + `</title>`)
		buf.WriteString(`<meta name="description" content="` + esc(desc) + `"/>`)
		buf.WriteString(`<meta name="csrf-token" content="` + esc(ch.CSRF) + `"/>`)
		buf.WriteString(`<meta property="og:title" content="` + esc(title) + `"/>`)
		buf.WriteString(`<meta property="og:type" content="` + esc(ogType) + `"/>`)
		if ch.Meta.URL != "" {
			buf.WriteString(`<meta property="og:url" content="` + esc(ch.Meta.URL) + `"/>`)
			buf.WriteString(`<link rel="canonical" href="` + esc(ch.Meta.URL) + `"/>`)
		}
		buf.WriteString(`<link rel="alternate" type="application/rss+xml" title="` + esc(ch.Site.Name) + `" href="/feed.xml"/>`)
		buf.WriteString(`<link rel="stylesheet" href="/public/catalog.css"/>`)
		buf.WriteString(`<script defer src="/public/catalog.js"></script>`)
		buf.WriteString(`<script type="application/ld+json">` + WebsiteJsonLD(ch.Site) + `</script>`)
		buf.WriteString(`</head><body>`)

		buf.WriteString(`<header class="topbar"><a class="brand" href="/">` + esc(ch.Site.Name) + `</a>`)
		buf.WriteString(`<a class="button" href="/submit/">Submit a resource</a></header>`)
		if ch.Notice != "" {
			buf.WriteString(`<div class="notice" role="status">` + esc(ch.Notice) + `</div>`)
		}
		buf.WriteString(`<div class="shell">`)
		writeSidebar(&buf, ch)
		buf.WriteString(`<main id="main">`)
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		buf.Reset()

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		buf.WriteString(`</main></div><footer class="footer">`)
		buf.WriteString(esc(ch.Site.Name))
		buf.WriteString(` &middot; <a href="/feed.xml">RSS</a> &middot; <a href="/sitemap.xml">Sitemap</a></footer>`)
		buf.WriteString(`</body></html>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeSidebar(buf *bytes.Buffer, ch Chrome) {
	buf.WriteString(`<nav class="sidebar" aria-label="Categories">`)
	buf.WriteString(`<a class="` + navClass(ch.Path == "/" || ch.Path == "") + `" href="/"><span class="icon icon-all"></span>All</a>`)
	for _, s := range ch.Sections {
		buf.WriteString(`<div class="sidebar-section"><h2>` + esc(s.Name) + `</h2>`)
		for _, e := range s.Categories {
			cat, _ := content.PathSegments(ch.Path)
			active := cat != "" && content.SameCategory(cat, e.Name)
			buf.WriteString(`<a class="` + navClass(active) + `" href="` + esc(BrowseHref(e.Path)) + `">`)
			buf.WriteString(`<span class="icon icon-` + esc(e.Icon) + `"></span>`)
			buf.WriteString(esc(e.Name))
			buf.WriteString(` <span class="count">` + itoa(e.Count) + `</span></a>`)
		}
		buf.WriteString(`</div>`)
	}
	buf.WriteString(`</nav>`)
}

func navClass(active bool) string {
	if active {
		return "nav-item active"
	}
	return "nav-item"
}
