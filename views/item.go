package views

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/toolkit/content"
)

// ItemPage renders the full preview page of an item.
func ItemPage(d ItemData) templ.Component {
	return Layout(d.Chrome, ItemBody(d))
}

// ItemBody renders the preview without the document shell.
func ItemBody(d ItemData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		it := d.Item
		var buf bytes.Buffer

		crumbs := []Crumb{{Name: content.RootName, Path: "/"}, {Name: it.Category, Path: content.FolderPath(it.Category, "")}}
		if it.Subcategory != "" {
			crumbs = append(crumbs, Crumb{Name: it.Subcategory, Path: content.FolderPath(it.Category, it.Subcategory)})
		}
		name := it.FileName()
		if name == "" {
			name = it.Title
		}
		crumbs = append(crumbs, Crumb{Name: name})
		writeCrumbs(&buf, crumbs)

		buf.WriteString(`<article class="item">`)
		buf.WriteString(`<script type="application/ld+json">` + ItemJsonLD(d.Site, it) + `</script>`)
		buf.WriteString(`<header><span class="` + TypeClass(it.ContentType) + `">` + esc(it.ContentType.Label()) + `</span>`)
		buf.WriteString(`<h1>` + esc(it.Title) + `</h1>`)
		if it.Tagline != "" {
			buf.WriteString(`<p class="tagline">` + esc(it.Tagline) + `</p>`)
		}
		buf.WriteString(`<p class="meta">By ` + esc(it.Author) + ` &middot; ` + esc(it.Date) + `</p></header>`)

		if img := safeURL(it.Image); img != "" {
			buf.WriteString(`<img class="preview" width="400" height="300" alt="" src="` + img + `"/>`)
		}
		if href := safeURL(it.ContentURL()); href != "" {
			label := "Open link"
			if host := it.Domain(); host != "" {
				label = "Open on " + host
			}
			buf.WriteString(`<p><a class="button" href="` + href + `" target="_blank" rel="noopener noreferrer">` + esc(label) + `</a></p>`)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		buf.Reset()

		body := it.Description
		if it.ContentType == content.TypeBlog {
			body = it.Body
		}
		if body != "" {
			if err := section(ctx, w, "About", Prose(body)); err != nil {
				return err
			}
		}
		for _, s := range []struct{ title, text string }{
			{"Use case", it.UseCaseScenario},
			{"Tip", it.RISDTip},
			{"Pros", it.Pros},
			{"Cons", it.Cons},
			{"Platform", it.PlatformInfo},
		} {
			if s.text == "" {
				continue
			}
			if err := section(ctx, w, s.title, Prose(s.text)); err != nil {
				return err
			}
		}

		writeDetails(&buf, it)
		buf.WriteString(`</article>`)

		if len(d.Related) > 0 {
			buf.WriteString(`<section class="related"><h2>Related</h2><ul class="items items-grid">`)
			for _, r := range d.Related {
				writeCard(&buf, r, ViewGrid)
			}
			buf.WriteString(`</ul></section>`)
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func section(ctx context.Context, w io.Writer, title string, body templ.Component) error {
	if _, err := io.WriteString(w, `<section class="prose"><h2>`+esc(title)+`</h2>`); err != nil {
		return err
	}
	if err := body.Render(ctx, w); err != nil {
		return err
	}
	_, err := io.WriteString(w, `</section>`)
	return err
}

func writeDetails(buf *bytes.Buffer, it content.Item) {
	rows := [][2]string{
		{"Category", it.Category},
		{"Subcategory", it.Subcategory},
		{"Tags", joinTags(it.TagList())},
		{"File size", it.FileSize},
		{"Duration", it.Duration},
		{"Tool type", it.ToolType},
		{"ISBN", it.ISBN},
		{"Publisher", it.Publisher},
		{"Published", it.PublicationDate},
		{"Host", it.Host},
		{"Episode", it.Episode},
		{"Username", it.Username},
		{"Tweeted", it.TweetDate},
		{"Submitted by", it.SubmittedBy},
	}
	buf.WriteString(`<dl class="details">`)
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		buf.WriteString(`<dt>` + esc(r[0]) + `</dt><dd>` + esc(r[1]) + `</dd>`)
	}
	buf.WriteString(`</dl>`)
}

func joinTags(tags []string) string {
	var buf bytes.Buffer
	for i, t := range tags {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(t)
	}
	return buf.String()
}
