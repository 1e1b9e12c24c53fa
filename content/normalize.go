package content

import (
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/eringen/toolkit/sheet"
)

// Defaults applied when a row leaves a field empty.
const (
	DefaultCategory = "Uncategorized"
	DefaultTitle    = "Untitled Item"
	DefaultAuthor   = "Unknown"
	DefaultImage    = "/placeholder/400/300"
	DefaultBody     = "No content available."
)

// Column names of the feed header.
const (
	colID              = "ID"
	colTitle           = "Title"
	colTagline         = "Tagline"
	colDescription     = "Description"
	colContentType     = "ContentType"
	colContentTypeAlt  = "Content Type"
	colCategory        = "Category"
	colSubcategory     = "Subcategory"
	colTags            = "Tags"
	colDate            = "Date"
	colAuthor          = "Author"
	colImage           = "Image"
	colURL             = "URL"
	colFileURL         = "FileURL"
	colDuration        = "Duration"
	colToolType        = "ToolType"
	colISBN            = "ISBN"
	colPublisher       = "Publisher"
	colPublicationDate = "PublicationDate"
	colHost            = "Host"
	colEpisode         = "Episode"
	colUsername        = "Username"
	colTweetDate       = "TweetDate"
	colUseCase         = "Use Case Scenario"
	colRISDTip         = "RISD Tip"
	colPros            = "Pros"
	colCons            = "Cons"
	colPlatformInfo    = "Platform Info"
	colSubmittedBy     = "Submitted By"
)

// DisplayDateLayout formats full dates.
const DisplayDateLayout = "Jan 2, 2006"

// dateLayouts are tried in order. Month-only dates keep month precision.
var dateLayouts = []struct {
	layout  string
	display string
}{
	{time.RFC3339, DisplayDateLayout},
	{"2006-01-02T15:04:05", DisplayDateLayout},
	{"2006-01-02 15:04:05", DisplayDateLayout},
	{"2006-01-02", DisplayDateLayout},
	{"2006/01/02", DisplayDateLayout},
	{"1/2/2006", DisplayDateLayout},
	{"1/2/2006 15:04:05", DisplayDateLayout},
	{"Jan 2, 2006", DisplayDateLayout},
	{"January 2, 2006", DisplayDateLayout},
	{"2 Jan 2006", DisplayDateLayout},
	{"2 January 2006", DisplayDateLayout},
	{time.RFC1123, DisplayDateLayout},
	{time.RFC1123Z, DisplayDateLayout},
	{"2006-01", "January 2006"},
	{"Jan 2006", "January 2006"},
	{"January 2006", "January 2006"},
}

// Normalizer maps raw rows to Items. The zero value uses time.Now.
type Normalizer struct {
	Now func() time.Time
}

func (n Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

// Normalize builds an Item from row, filling defaults for anything missing.
// It never fails.
func (n Normalizer) Normalize(row sheet.Row) Item {
	category := row.Get(colCategory)
	if category == "" {
		category = DefaultCategory
	}
	subcategory := row.Get(colSubcategory)
	title := row.Get(colTitle)
	if title == "" {
		title = DefaultTitle
	}
	rawType := row.Get(colContentType)
	if rawType == "" {
		rawType = row.Get(colContentTypeAlt)
	}
	ct := ParseContentType(rawType)

	it := Item{
		ID:              row.Get(colID),
		Title:           title,
		Tagline:         row.Get(colTagline),
		Description:     row.Get(colDescription),
		ContentType:     ct,
		Category:        category,
		Subcategory:     subcategory,
		Tags:            row.Get(colTags),
		Author:          orDefault(row.Get(colAuthor), DefaultAuthor),
		Path:            BuildPath(category, subcategory, title, ct),
		Image:           orDefault(row.Get(colImage), DefaultImage),
		UseCaseScenario: row.Get(colUseCase),
		RISDTip:         row.Get(colRISDTip),
		Pros:            row.Get(colPros),
		Cons:            row.Get(colCons),
		PlatformInfo:    row.Get(colPlatformInfo),
		SubmittedBy:     row.Get(colSubmittedBy),
	}
	it.Date, it.DateValue = n.date(row.Get(colDate))

	link := row.Get(colURL)
	if link == "" {
		link = row.Get(colFileURL)
	}
	it.URL = link

	switch ct {
	case TypeBlog:
		it.Body = orDefault(it.Description, DefaultBody)
	case TypePDF:
		it.FileURL = link
		it.FileSize = "Unknown"
	case TypeVideo:
		it.VideoURL = link
		it.Duration = orDefault(row.Get(colDuration), "Unknown")
	case TypeTool:
		it.ToolURL = link
		it.ToolType = orDefault(row.Get(colToolType), "General")
	case TypeBook:
		it.BookURL = link
		it.ISBN = row.Get(colISBN)
		it.Publisher = row.Get(colPublisher)
	case TypeArticle:
		it.ArticleURL = link
		it.Publisher = row.Get(colPublisher)
		it.PublicationDate = row.Get(colPublicationDate)
	case TypePodcast:
		it.PodcastURL = link
		it.Host = row.Get(colHost)
		it.Episode = row.Get(colEpisode)
		it.Duration = row.Get(colDuration)
	case TypeTweet:
		it.TweetURL = link
		it.Username = row.Get(colUsername)
		it.TweetDate = row.Get(colTweetDate)
	}

	if it.ID == "" {
		it.ID = slug.Make(it.Path)
	}
	return it
}

// NormalizeAll normalizes rows in order.
func (n Normalizer) NormalizeAll(rows []sheet.Row) []Item {
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, n.Normalize(r))
	}
	return items
}

// BuildPath returns "/{category}/{subcategory}/{title}.{type}", omitting the
// subcategory segment when it is empty.
func BuildPath(category, subcategory, title string, ct ContentType) string {
	var b strings.Builder
	b.WriteByte('/')
	b.WriteString(category)
	b.WriteByte('/')
	if subcategory != "" {
		b.WriteString(subcategory)
		b.WriteByte('/')
	}
	b.WriteString(title)
	b.WriteByte('.')
	b.WriteString(strings.ToLower(string(ct)))
	return b.String()
}

// date turns the Date column into a display value. A bare year stays a year,
// a recognized full date is reformatted, and anything else becomes the
// current year.
func (n Normalizer) date(raw string) (string, time.Time) {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if y, err := strconv.Atoi(raw); err == nil && y > 0 && y < 10000 {
			return strconv.Itoa(y), time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int(f)) && f > 0 && f < 10000 {
			y := int(f)
			return strconv.Itoa(y), time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		}
		for _, l := range dateLayouts {
			if t, err := time.Parse(l.layout, raw); err == nil {
				return t.Format(l.display), t
			}
		}
	}
	now := n.now()
	return strconv.Itoa(now.Year()), time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
