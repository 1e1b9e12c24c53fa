package views

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/toolkit/content"
)

// Browse renders the full catalog browser page.
func Browse(d BrowseData) templ.Component {
	return Layout(d.Chrome, BrowseBody(d))
}

// BrowseBody renders the browser without the document shell, for HX requests
// that swap the main column.
func BrowseBody(d BrowseData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		writeCrumbs(&buf, d.Crumbs)
		writeFilterForm(&buf, d)
		writeToolbar(&buf, d)

		if strings.TrimSpace(d.Query) == "" && len(d.Folders) > 0 {
			buf.WriteString(`<section class="folders" aria-label="Folders">`)
			for _, f := range d.Folders {
				buf.WriteString(`<a class="folder" href="` + esc(BrowseHref(f.Path)) + `">`)
				buf.WriteString(`<span class="icon icon-` + esc(f.Icon) + `"></span>`)
				buf.WriteString(`<span class="folder-name">` + esc(f.Name) + `</span>`)
				buf.WriteString(`<span class="count">` + itoa(f.Count()) + ` items</span></a>`)
			}
			buf.WriteString(`</section>`)
		}

		buf.WriteString(`<section id="results" aria-live="polite">`)
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		if err := Results(d).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

// Results renders the item list. The search box requests it on its own with
// partial=results.
func Results(d BrowseData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if d.Stale {
			buf.WriteString(`<p class="hint">Showing saved results; the spreadsheet could not be reached.</p>`)
		}
		buf.WriteString(`<p class="result-count">` + itoa(len(d.Items)) + ` of ` + itoa(d.Total) + ` items</p>`)
		if len(d.Items) == 0 {
			msg := "This folder is empty"
			if strings.TrimSpace(d.Query) != "" || len(d.Types) > 0 || d.Category != "" {
				msg = "No items match your search"
			}
			buf.WriteString(`<div class="empty-state"><p>` + msg + `</p></div>`)
			_, err := w.Write(buf.Bytes())
			return err
		}

		view := d.View
		if view != ViewList {
			view = ViewGrid
		}
		buf.WriteString(`<ul class="items items-` + view + `">`)
		for _, it := range d.Items {
			writeCard(&buf, it, view)
		}
		buf.WriteString(`</ul>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeCard(buf *bytes.Buffer, it content.Item, view string) {
	buf.WriteString(`<li class="card">`)
	if view == ViewGrid {
		if img := safeURL(it.Image); img != "" {
			buf.WriteString(`<img class="thumb" loading="lazy" width="400" height="300" alt="" src="` + img + `"/>`)
		}
	}
	buf.WriteString(`<div class="card-body">`)
	buf.WriteString(`<span class="` + TypeClass(it.ContentType) + `">` + esc(it.ContentType.Label()) + `</span>`)
	buf.WriteString(`<h3><a href="` + esc(ItemHref(it)) + `">` + esc(it.Title) + `</a></h3>`)
	if it.Tagline != "" {
		buf.WriteString(`<p class="tagline">` + esc(it.Tagline) + `</p>`)
	} else if view == ViewList && it.Description != "" {
		buf.WriteString(`<p class="tagline">` + esc(truncate(it.Description, 160)) + `</p>`)
	}
	buf.WriteString(`<p class="meta">` + esc(it.Category))
	if it.Subcategory != "" {
		buf.WriteString(` / ` + esc(it.Subcategory))
	}
	buf.WriteString(` &middot; ` + esc(it.Date))
	if d := it.Domain(); d != "" {
		buf.WriteString(` &middot; ` + esc(d))
	}
	buf.WriteString(`</p></div></li>`)
}

func writeCrumbs(buf *bytes.Buffer, crumbs []Crumb) {
	if len(crumbs) == 0 {
		return
	}
	buf.WriteString(`<nav class="crumbs" aria-label="Breadcrumb"><ol>`)
	for i, c := range crumbs {
		if i == len(crumbs)-1 {
			buf.WriteString(`<li aria-current="page">` + esc(c.Name) + `</li>`)
			continue
		}
		buf.WriteString(`<li><a href="` + esc(BrowseHref(c.Path)) + `">` + esc(c.Name) + `</a></li>`)
	}
	buf.WriteString(`</ol></nav>`)
}

func writeFilterForm(buf *bytes.Buffer, d BrowseData) {
	action := BrowseHref(d.Path)
	buf.WriteString(`<form class="filters" method="get" action="` + esc(action) + `" data-results="#results">`)
	buf.WriteString(`<input type="search" name="q" value="` + esc(d.Query) + `" placeholder="Search titles, descriptions and tags" aria-label="Search" data-debounce="100"/>`)
	buf.WriteString(`<fieldset class="types"><legend>Type</legend>`)
	for _, t := range content.Types {
		checked := ""
		if TypeSelected(d.Types, t) {
			checked = ` checked`
		}
		buf.WriteString(`<label><input type="checkbox" name="type" value="` + esc(string(t)) + `"` + checked + `/> ` + esc(t.Label()) + `</label>`)
	}
	buf.WriteString(`</fieldset>`)

	// The dropdown filter only exists at the root.
	cat, _ := content.PathSegments(d.Path)
	if cat == "" {
		buf.WriteString(`<select name="category" aria-label="Category"><option value="">All categories</option>`)
		for _, c := range d.Categories {
			buf.WriteString(`<option value="` + esc(c) + `"` + selected(c == d.Category) + `>` + esc(c) + `</option>`)
		}
		buf.WriteString(`</select>`)
		if d.Category != "" && len(d.Subcategories) > 0 {
			buf.WriteString(`<select name="subcategory" aria-label="Subcategory"><option value="">All subcategories</option>`)
			for _, s := range d.Subcategories {
				buf.WriteString(`<option value="` + esc(s) + `"` + selected(s == d.Subcategory) + `>` + esc(s) + `</option>`)
			}
			buf.WriteString(`</select>`)
		}
	}
	buf.WriteString(`<button type="submit">Apply</button></form>`)
}

func writeToolbar(buf *bytes.Buffer, d BrowseData) {
	buf.WriteString(`<div class="toolbar">`)
	for _, mode := range []string{ViewGrid, ViewList} {
		buf.WriteString(`<form method="post" action="/prefs/view/">`)
		buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(d.CSRF) + `"/>`)
		buf.WriteString(`<input type="hidden" name="view" value="` + mode + `"/>`)
		buf.WriteString(`<input type="hidden" name="next" value="` + esc(BrowseHref(d.Path)+FilterQuery(d)) + `"/>`)
		buf.WriteString(`<button type="submit"` + pressed(d.View == mode) + `>` + mode + `</button></form>`)
	}
	buf.WriteString(`<form method="post" action="/refresh/">`)
	buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(d.CSRF) + `"/>`)
	buf.WriteString(`<input type="hidden" name="next" value="` + esc(BrowseHref(d.Path)) + `"/>`)
	buf.WriteString(`<button type="submit">Refresh</button></form>`)
	buf.WriteString(`</div>`)
}

func selected(b bool) string {
	if b {
		return ` selected`
	}
	return ""
}

func pressed(b bool) string {
	if b {
		return ` aria-pressed="true"`
	}
	return ` aria-pressed="false"`
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
