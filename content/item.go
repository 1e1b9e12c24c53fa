// Package content turns spreadsheet rows into catalog items and derives the
// views the catalog is browsed through: the category hierarchy, the folder
// tree, sidebar sections, filters and related items.
package content

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ContentType tags the kind of resource an item points at. Values are always
// lowercase.
type ContentType string

const (
	TypeBlog    ContentType = "blog"
	TypeLink    ContentType = "link"
	TypePDF     ContentType = "pdf"
	TypeVideo   ContentType = "video"
	TypeTool    ContentType = "tool"
	TypeBook    ContentType = "book"
	TypeArticle ContentType = "article"
	TypePodcast ContentType = "podcast"
	TypeTweet   ContentType = "tweet"
)

// Types lists the known content types in display order.
var Types = []ContentType{
	TypeBlog, TypeLink, TypePDF, TypeVideo, TypeTool,
	TypeBook, TypeArticle, TypePodcast, TypeTweet,
}

// ParseContentType trims and lowercases s. Empty input yields TypeLink.
func ParseContentType(s string) ContentType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TypeLink
	}
	return ContentType(s)
}

// Known reports whether t is one of Types.
func (t ContentType) Known() bool {
	for _, k := range Types {
		if k == t {
			return true
		}
	}
	return false
}

// Label returns the display form, e.g. "Podcast" or "PDF".
func (t ContentType) Label() string {
	switch t {
	case TypePDF:
		return "PDF"
	case "":
		return ""
	}
	return cases.Title(language.English).String(string(t))
}

// Item is one normalized catalog resource.
type Item struct {
	ID          string      `json:"id"`
	OriginalID  string      `json:"originalId,omitempty"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Tagline     string      `json:"tagline"`
	Description string      `json:"description"`
	ContentType ContentType `json:"contentType"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory"`
	Tags        string      `json:"tags"`
	Date        string      `json:"date"`
	DateValue   time.Time   `json:"-"`
	Author      string      `json:"author"`
	Path        string      `json:"path"`
	Image       string      `json:"image"`

	URL        string `json:"url"`
	FileURL    string `json:"fileUrl,omitempty"`
	VideoURL   string `json:"videoUrl,omitempty"`
	ToolURL    string `json:"toolUrl,omitempty"`
	BookURL    string `json:"bookUrl,omitempty"`
	ArticleURL string `json:"articleUrl,omitempty"`
	PodcastURL string `json:"podcastUrl,omitempty"`
	TweetURL   string `json:"tweetUrl,omitempty"`

	FileSize        string `json:"fileSize,omitempty"`
	Duration        string `json:"duration,omitempty"`
	ToolType        string `json:"toolType,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	PublicationDate string `json:"publicationDate,omitempty"`
	Host            string `json:"host,omitempty"`
	Episode         string `json:"episode,omitempty"`
	Username        string `json:"username,omitempty"`
	TweetDate       string `json:"tweetDate,omitempty"`
	Body            string `json:"body,omitempty"`

	UseCaseScenario string `json:"useCaseScenario,omitempty"`
	RISDTip         string `json:"risdTip,omitempty"`
	Pros            string `json:"pros,omitempty"`
	Cons            string `json:"cons,omitempty"`
	PlatformInfo    string `json:"platformInfo,omitempty"`
	SubmittedBy     string `json:"submittedBy,omitempty"`
}

// TagList splits Tags on commas, trimming and dropping empty entries.
func (it Item) TagList() []string {
	if strings.TrimSpace(it.Tags) == "" {
		return nil
	}
	parts := strings.Split(it.Tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ContentURL returns the first populated link field, generic URL first.
func (it Item) ContentURL() string {
	for _, u := range []string{
		it.URL, it.FileURL, it.VideoURL, it.ToolURL,
		it.BookURL, it.ArticleURL, it.PodcastURL, it.TweetURL,
	} {
		if u != "" {
			return u
		}
	}
	return ""
}

// Domain returns the host of ContentURL without a leading "www.", or "" when
// the URL has no host.
func (it Item) Domain() string {
	raw := it.ContentURL()
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// FileName is the last element of Path, e.g. "Resume Guide.pdf".
func (it Item) FileName() string {
	if i := strings.LastIndex(it.Path, "/"); i >= 0 {
		return it.Path[i+1:]
	}
	return it.Path
}
