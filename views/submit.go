package views

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
)

// SubmitPage renders the resource submission form.
func SubmitPage(d SubmitData) templ.Component {
	return Layout(d.Chrome, SubmitBody(d))
}

// SubmitBody renders the form, its inline errors and the outcome message.
func SubmitBody(d SubmitData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<section class="submit"><h1>Submit a resource</h1>`)

		if d.Sent {
			buf.WriteString(`<div class="success" role="status"><p>Thanks! Your submission was sent for review.</p>`)
			buf.WriteString(`<p><a href="/submit/">Submit another</a> or <a href="/">back to the toolkit</a>.</p></div></section>`)
			_, err := w.Write(buf.Bytes())
			return err
		}
		if d.Failed {
			buf.WriteString(`<div class="error" role="alert">We couldn't send your submission. Please try again.</div>`)
		}

		buf.WriteString(`<form method="post" action="/submit/" novalidate>`)
		buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(d.CSRF) + `"/>`)
		field(&buf, d, "url", "Link", "url", d.Form.URL, true)
		field(&buf, d, "name", "Your name", "text", d.Form.Name, true)
		field(&buf, d, "email", "Email", "email", d.Form.Email, true)
		field(&buf, d, "xUsername", "X username", "text", d.Form.XUsername, false)

		buf.WriteString(`<label for="category">Category</label>`)
		buf.WriteString(`<input id="category" name="category" list="category-options" value="` + esc(d.Form.Category) + `"/>`)
		buf.WriteString(`<datalist id="category-options">`)
		for _, c := range d.Categories {
			buf.WriteString(`<option value="` + esc(c) + `"></option>`)
		}
		buf.WriteString(`</datalist>`)
		fieldError(&buf, d, "category")

		field(&buf, d, "tags", "Tags (comma separated)", "text", d.Form.Tags, false)

		buf.WriteString(`<label for="description">Why is it useful?</label>`)
		buf.WriteString(`<textarea id="description" name="description" rows="5">` + esc(d.Form.Description) + `</textarea>`)
		fieldError(&buf, d, "description")

		buf.WriteString(`<button type="submit">Submit</button></form></section>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func field(buf *bytes.Buffer, d SubmitData, name, label, typ, value string, required bool) {
	buf.WriteString(`<label for="` + name + `">` + esc(label) + `</label>`)
	buf.WriteString(`<input id="` + name + `" name="` + name + `" type="` + typ + `" value="` + esc(value) + `"`)
	if required {
		buf.WriteString(` required`)
	}
	if d.Errors[name] != "" {
		buf.WriteString(` aria-invalid="true"`)
	}
	buf.WriteString(`/>`)
	fieldError(buf, d, name)
}

func fieldError(buf *bytes.Buffer, d SubmitData, name string) {
	if msg := d.Errors[name]; msg != "" {
		buf.WriteString(`<p class="field-error">` + esc(msg) + `</p>`)
	}
}
