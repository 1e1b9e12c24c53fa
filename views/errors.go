package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorState tells the visitor the catalog could not be loaded and offers a
// retry.
func ErrorState(d ErrorData) templ.Component {
	return Layout(d.Chrome, ErrorBody(d))
}

// ErrorBody renders the error message and Retry button.
func ErrorBody(d ErrorData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		msg := d.Message
		if msg == "" {
			msg = "We couldn't load the toolkit right now."
		}
		next := d.Path
		if next == "" {
			next = "/"
		}
		_, err := io.WriteString(w, `<div class="error-state" role="alert" data-code="`+esc(d.Code)+`">`+
			`<h1>Something went wrong</h1><p>`+esc(msg)+`</p>`+
			`<form method="post" action="/refresh/">`+
			`<input type="hidden" name="_csrf" value="`+esc(d.CSRF)+`"/>`+
			`<input type="hidden" name="next" value="`+esc(BrowseHref(next))+`"/>`+
			`<button type="submit">Retry</button></form></div>`)
		return err
	})
}

// NotFound renders the 404 page.
func NotFound(site SiteConfig) templ.Component {
	return Layout(Chrome{Site: site, Meta: PageMeta{Title: "Not found"}}, message(
		"Not found", "That page or item does not exist. It may have been removed from the spreadsheet."))
}

// ServerError renders the 500 page.
func ServerError(site SiteConfig) templ.Component {
	return Layout(Chrome{Site: site, Meta: PageMeta{Title: "Error"}}, message(
		"Something went wrong", "Please try again in a moment."))
}

func message(title, text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="message"><h1>`+esc(title)+`</h1><p>`+esc(text)+`</p>`+
			`<p><a href="/">Back to the toolkit</a></p></div>`)
		return err
	})
}
