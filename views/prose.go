package views

import (
	"bytes"
	"context"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic = regexp.MustCompile(`\*([^*]+)\*`)
	reLink   = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reBare   = regexp.MustCompile(`(^|[\s(])(https?://[^\s<)]+)`)
)

// Prose renders free text from the spreadsheet: blank lines separate
// paragraphs, lines starting with "- " or "• " form a list, and **bold**,
// *italic* and [label](url) are recognized. Everything else is escaped.
func Prose(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		renderProse(&buf, text)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func renderProse(buf *bytes.Buffer, text string) {
	inList := false
	inPara := false

	flushPara := func() {
		if inPara {
			buf.WriteString("</p>")
			inPara = false
		}
	}
	flushList := func() {
		if inList {
			buf.WriteString("</ul>")
			inList = false
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" {
			flushPara()
			flushList()
			continue
		}
		if item, ok := listItem(line); ok {
			if !inList {
				flushPara()
				buf.WriteString("<ul>")
				inList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(formatInline(item))
			buf.WriteString("</li>")
			continue
		}
		if !inPara {
			flushList()
			buf.WriteString("<p>")
			inPara = true
		} else {
			buf.WriteString("<br/>")
		}
		buf.WriteString(formatInline(line))
	}
	flushPara()
	flushList()
}

func listItem(line string) (string, bool) {
	for _, marker := range []string{"- ", "• ", "* "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	return "", false
}

func formatInline(s string) string {
	escaped := html.EscapeString(s)
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := safeURL(html.UnescapeString(match[2]))
		if href == "" {
			return match[1]
		}
		return `<a href="` + href + `" target="_blank" rel="noopener noreferrer">` + match[1] + `</a>`
	})
	if !strings.Contains(escaped, "<a ") {
		escaped = reBare.ReplaceAllStringFunc(escaped, func(m string) string {
			match := reBare.FindStringSubmatch(m)
			href := safeURL(html.UnescapeString(match[2]))
			if href == "" {
				return m
			}
			return match[1] + `<a href="` + href + `" target="_blank" rel="noopener noreferrer">` + match[2] + `</a>`
		})
	}
	// Bold and italic only outside tags so hrefs are left alone.
	return applyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		return seg
	})
}

// applyOutsideTags applies fn only to text segments outside HTML tags.
func applyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}
