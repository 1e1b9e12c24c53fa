package toolkit

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/toolkit/catalog"
	"github.com/eringen/toolkit/content"
	"github.com/eringen/toolkit/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) renderSitemap(c echo.Context, snap *catalog.Snapshot) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	var walk func(f *content.Folder)
	walk = func(f *content.Folder) {
		for _, child := range f.Children {
			urls = append(urls, sitemapURL{Loc: strings.TrimSuffix(base, "/") + views.BrowseHref(child.Path)})
			walk(child)
		}
	}
	walk(snap.Tree)

	for _, it := range snap.Items {
		u := sitemapURL{Loc: BuildURL(base, "item", it.Slug)}
		if !it.DateValue.IsZero() {
			u.LastMod = it.DateValue.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
