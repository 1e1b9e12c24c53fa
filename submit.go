package toolkit

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/toolkit/logging"
	"github.com/eringen/toolkit/metrics"
	"github.com/eringen/toolkit/submission"
	"github.com/eringen/toolkit/views"
)

const rateLimitedMessage = "Too many submissions. Please wait a minute and try again."

func (a *App) submitData(c echo.Context) views.SubmitData {
	// The form works without a catalog; categories are only suggestions.
	snap := a.Catalog.Peek()
	d := views.SubmitData{Chrome: a.chrome(c, snap, "/submit")}
	if snap != nil {
		d.Categories = snap.Categories
	}
	d.Meta.Title = "Submit a resource"
	return d
}

func (a *App) handleSubmitForm(c echo.Context) error {
	return Render(c, views.SubmitPage(a.submitData(c)))
}

func (a *App) handleSubmit(c echo.Context) error {
	d := a.submitData(c)
	if err := c.Bind(&d.Form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	if !a.submitLimiter.Allow(c.RealIP()) {
		a.Metrics.Submission(metrics.SubmissionLimited)
		d.Chrome.Notice = rateLimitedMessage
		return RenderStatus(c, http.StatusTooManyRequests, views.SubmitPage(d))
	}

	_, err := a.Submitter.Submit(c.Request().Context(), d.Form)
	if ve, ok := submission.IsValidation(err); ok {
		d.Errors = ve.Fields
		return RenderStatus(c, http.StatusUnprocessableEntity, views.SubmitPage(d))
	}
	if err != nil {
		logging.FromContext(c, a.Logger).Warn("submission not delivered", zap.Error(err))
		d.Failed = true
		return RenderStatus(c, http.StatusBadGateway, views.SubmitPage(d))
	}

	d.Sent = true
	return Render(c, views.SubmitPage(d))
}

func (a *App) handleAPISubmit(c echo.Context) error {
	var f submission.Form
	if err := c.Bind(&f); err != nil {
		return renderAPIError(c, http.StatusBadRequest, apiError{Error: "invalid request body"})
	}

	if !a.submitLimiter.Allow(c.RealIP()) {
		a.Metrics.Submission(metrics.SubmissionLimited)
		return renderAPIError(c, http.StatusTooManyRequests, apiError{Error: rateLimitedMessage})
	}

	rc, err := a.Submitter.Submit(c.Request().Context(), f)
	if ve, ok := submission.IsValidation(err); ok {
		return renderAPIError(c, http.StatusUnprocessableEntity, apiError{Error: "invalid submission", Fields: ve.Fields})
	}
	if err != nil {
		logging.FromContext(c, a.Logger).Warn("submission not delivered", zap.Error(err))
		return renderAPIError(c, http.StatusBadGateway, apiError{Error: "submission could not be delivered"})
	}
	return c.JSON(http.StatusAccepted, rc)
}
