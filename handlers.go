package toolkit

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/toolkit/catalog"
	"github.com/eringen/toolkit/content"
	"github.com/eringen/toolkit/logging"
	"github.com/eringen/toolkit/sheet"
	"github.com/eringen/toolkit/views"
)

const relatedCount = 6

func (a *App) handleBrowse(c echo.Context) error {
	browsePath, ok := browsePathFrom(c)
	if !ok {
		return echo.ErrNotFound
	}

	snap, err := a.Catalog.Snapshot(c.Request().Context())
	if err != nil {
		return a.renderLoadError(c, err, browsePath)
	}
	folder := snap.Tree.Lookup(browsePath)
	if folder == nil {
		return echo.ErrNotFound
	}

	crit := criteriaFromQuery(c, browsePath)
	q := c.QueryParams()
	if q.Has("q") || q.Has("type") {
		if err := setTypesPref(c, crit.Types); err != nil {
			logging.FromContext(c, a.Logger).Debug("save type preference", zap.Error(err))
		}
	} else {
		crit.Types = typesPref(c)
	}

	view := q.Get("view")
	if view != views.ViewGrid && view != views.ViewList {
		view = viewPref(c)
	}

	d := views.BrowseData{
		Chrome:      a.chrome(c, snap, browsePath),
		Crumbs:      crumbs(snap.Tree, browsePath),
		Folders:     folder.Children,
		Items:       snap.Filter(crit),
		Total:       len(snap.Filter(content.Criteria{Path: browsePath})),
		Query:       crit.Search,
		Types:       crit.Types,
		Category:    crit.Category,
		Subcategory: crit.Subcategory,
		Categories:  snap.Categories,
		View:        view,
		Stale:       snap.Source == sheet.SourceStale,
	}
	if crit.Category != "" {
		d.Subcategories = snap.Subcategories(crit.Category)
	}
	d.Meta.Title = folder.Name
	d.Meta.Description = fmt.Sprintf("%d resources in %s.", d.Total, folder.Name)

	switch {
	case isPartial(c, "results"):
		return Render(c, views.Results(d))
	case isPartial(c, "main"):
		return Render(c, views.BrowseBody(d))
	}
	return Render(c, views.Browse(d))
}

// browsePathFrom reads the folder path of a /browse/ request. The escaped
// request path is split before unescaping so "%2F" stays inside a name.
func browsePathFrom(c echo.Context) (string, bool) {
	raw := strings.TrimPrefix(c.Request().URL.EscapedPath(), "/browse")
	var names []string
	for _, seg := range strings.Split(strings.Trim(raw, "/"), "/") {
		if seg == "" {
			continue
		}
		if u, err := url.PathUnescape(seg); err == nil {
			seg = u
		}
		names = append(names, seg)
	}
	switch len(names) {
	case 0:
		return "/", true
	case 1:
		return content.FolderPath(names[0], ""), true
	case 2:
		return content.FolderPath(names[0], names[1]), true
	}
	return "", false
}

func crumbs(root *content.Folder, browsePath string) []views.Crumb {
	out := []views.Crumb{{Name: root.Name, Path: "/"}}
	cat, sub := content.PathSegments(browsePath)
	if cat == "" {
		return out
	}
	cf := root.Child(cat)
	if cf == nil {
		return out
	}
	out = append(out, views.Crumb{Name: cf.Name, Path: cf.Path})
	if sub == "" {
		return out
	}
	if sf := cf.Child(sub); sf != nil {
		out = append(out, views.Crumb{Name: sf.Name, Path: sf.Path})
	}
	return out
}

func (a *App) handleItem(c echo.Context) error {
	snap, err := a.Catalog.Snapshot(c.Request().Context())
	if err != nil {
		return a.renderLoadError(c, err, "/")
	}
	it, err := snap.Lookup(c.Param("slug"))
	if errors.Is(err, catalog.ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, views.NotFound(a.siteView()))
	}
	if err != nil {
		return err
	}

	d := views.ItemData{
		Chrome:  a.chrome(c, snap, content.FolderPath(it.Category, "")),
		Item:    it,
		Related: snap.Related(it, relatedCount),
	}
	d.Meta.Title = it.Title
	d.Meta.Description = it.Tagline
	if d.Meta.Description == "" {
		d.Meta.Description = it.Description
	}
	d.Meta.OGType = "article"

	if isPartial(c, "main") {
		return Render(c, views.ItemBody(d))
	}
	return Render(c, views.ItemPage(d))
}

func (a *App) handleRefresh(c echo.Context) error {
	next := safeNext(c.FormValue("next"))
	snap, err := a.Catalog.Refresh(c.Request().Context())
	if err != nil {
		if a.Catalog.Peek() == nil {
			return a.renderLoadError(c, err, "/")
		}
		_ = addNotice(c, "Refresh failed. "+ErrorMessage(err))
		return c.Redirect(http.StatusSeeOther, next)
	}
	_ = addNotice(c, fmt.Sprintf("Catalog refreshed: %d items.", snap.Len()))
	return c.Redirect(http.StatusSeeOther, next)
}

func (a *App) handleViewPref(c echo.Context) error {
	view := c.FormValue("view")
	if view != views.ViewGrid && view != views.ViewList {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown view mode")
	}
	if err := setViewPref(c, view); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, safeNext(c.FormValue("next")))
}

func (a *App) renderLoadError(c echo.Context, err error, browsePath string) error {
	logging.FromContext(c, a.Logger).Error("catalog unavailable", zap.Error(err))
	d := views.ErrorData{
		Chrome:  a.chrome(c, nil, browsePath),
		Message: ErrorMessage(err),
		Code:    ErrorCode(err),
	}
	d.Meta.Title = "Unavailable"
	if isPartial(c, "results") || isPartial(c, "main") {
		return RenderStatus(c, http.StatusServiceUnavailable, views.ErrorBody(d))
	}
	return RenderStatus(c, http.StatusServiceUnavailable, views.ErrorState(d))
}

// JSON API

func (a *App) apiLoadError(c echo.Context, err error) error {
	logging.FromContext(c, a.Logger).Error("catalog unavailable", zap.Error(err))
	return renderAPIError(c, http.StatusServiceUnavailable, apiError{Error: ErrorMessage(err), Code: ErrorCode(err)})
}

func (a *App) handleAPIItems(c echo.Context) error {
	snap, err := a.Catalog.Snapshot(c.Request().Context())
	if err != nil {
		return a.apiLoadError(c, err)
	}
	browsePath := c.QueryParam("path")
	if browsePath == "" {
		browsePath = "/"
	}
	items := snap.Filter(criteriaFromQuery(c, browsePath))
	return c.JSON(http.StatusOK, itemsResponse{
		Items:    items,
		Count:    len(items),
		Total:    snap.Len(),
		LoadedAt: snap.LoadedAt,
		Source:   snap.Source,
	})
}

func (a *App) handleAPIItem(c echo.Context) error {
	snap, err := a.Catalog.Snapshot(c.Request().Context())
	if err != nil {
		return a.apiLoadError(c, err)
	}
	it, err := snap.Lookup(c.Param("slug"))
	if errors.Is(err, catalog.ErrNotFound) {
		return renderAPIError(c, http.StatusNotFound, apiError{Error: "item not found"})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itemResponse{Item: it, Related: snap.Related(it, relatedCount)})
}

func (a *App) handleAPICategories(c echo.Context) error {
	snap, err := a.Catalog.Snapshot(c.Request().Context())
	if err != nil {
		return a.apiLoadError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"categories": snap.Categories})
}

func (a *App) handleAPISubcategories(c echo.Context) error {
	snap, err := a.Catalog.Snapshot(c.Request().Context())
	if err != nil {
		return a.apiLoadError(c, err)
	}
	category := c.Param("category")
	if u, err := url.PathUnescape(category); err == nil {
		category = u
	}
	return c.JSON(http.StatusOK, map[string]any{
		"category":      category,
		"subcategories": snap.Subcategories(category),
	})
}

func (a *App) handleAPIHierarchy(c echo.Context) error {
	snap, err := a.Catalog.Snapshot(c.Request().Context())
	if err != nil {
		return a.apiLoadError(c, err)
	}
	return c.JSON(http.StatusOK, snap.Hierarchy)
}

func (a *App) handleAPISections(c echo.Context) error {
	snap, err := a.Catalog.Snapshot(c.Request().Context())
	if err != nil {
		return a.apiLoadError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]content.Section{"sections": snap.Sections})
}

func (a *App) handleAPIRefresh(c echo.Context) error {
	snap, err := a.Catalog.Refresh(c.Request().Context())
	if err != nil {
		return a.apiLoadError(c, err)
	}
	return c.JSON(http.StatusOK, loadResponse{
		Items:      snap.Len(),
		Skipped:    snap.Skipped,
		Duplicates: snap.Duplicates,
		LoadedAt:   snap.LoadedAt,
		Source:     snap.Source,
	})
}

func (a *App) handleHealthz(c echo.Context) error {
	resp := map[string]any{"status": "ok", "loaded": false, "items": 0}
	if snap := a.Catalog.Peek(); snap != nil {
		resp["loaded"] = true
		resp["items"] = snap.Len()
		resp["loadedAt"] = snap.LoadedAt
		resp["source"] = snap.Source
	}
	return c.JSON(http.StatusOK, resp)
}

// Feeds

func (a *App) handleSitemap(c echo.Context) error {
	snap, err := a.Catalog.Snapshot(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrorMessage(err)).SetInternal(err)
	}
	return a.renderSitemap(c, snap)
}

func (a *App) handleFeed(c echo.Context) error {
	snap, err := a.Catalog.Snapshot(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrorMessage(err)).SetInternal(err)
	}
	return a.renderRSS(c, snap)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + strings.TrimSuffix(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}

	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		msg := http.StatusText(code)
		if ok && code < 500 {
			if s, isStr := he.Message.(string); isStr {
				msg = s
			}
		}
		if code >= 500 {
			logging.FromContext(c, a.Logger).Error("server error", zap.Error(err))
		}
		_ = renderAPIError(c, code, apiError{Error: msg})
		return
	}

	if code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.siteView()))
		return
	}
	if code >= 500 {
		logging.FromContext(c, a.Logger).Error("server error", zap.Error(err))
		_ = RenderStatus(c, code, views.ServerError(a.siteView()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
