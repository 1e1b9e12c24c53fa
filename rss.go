package toolkit

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/toolkit/catalog"
)

const feedSize = 50

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

func (a *App) renderRSS(c echo.Context, snap *catalog.Snapshot) error {
	base := a.Config.URL
	newest := snap.Newest(feedSize)
	items := make([]rssItem, 0, len(newest))
	for _, it := range newest {
		pubDate := ""
		if !it.DateValue.IsZero() {
			pubDate = it.DateValue.Format(time.RFC1123Z)
		}
		desc := it.Tagline
		if desc == "" {
			desc = it.Description
		}
		cats := []string{it.Category}
		if it.Subcategory != "" {
			cats = append(cats, it.Subcategory)
		}
		itemURL := BuildURL(base, "item", it.Slug)
		items = append(items, rssItem{
			Title:       it.Title,
			Link:        itemURL,
			Description: desc,
			Author:      it.Author,
			Categories:  cats,
			PubDate:     pubDate,
			GUID:        itemURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:         a.Config.Name,
			Link:          base,
			Description:   a.Config.Description,
			LastBuildDate: snap.LoadedAt.Format(time.RFC1123Z),
			Items:         items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
