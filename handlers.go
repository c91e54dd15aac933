package pulseboard

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/pulseboard/dashboard"
	"github.com/eringen/pulseboard/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

func (a *App) handleDashboard(c echo.Context) error {
	meta := views.PageMeta{
		Title:     a.Config.Name,
		Lang:      a.formatter.Locale(),
		CSRFToken: CsrfToken(c),
		LiveURL:   "/ws",
	}
	return Render(c, views.Page(meta, dashboard.Render(a.View.State(), a.formatter)))
}

func (a *App) handleFragment(c echo.Context) error {
	return Render(c, dashboard.Render(a.View.State(), a.formatter))
}

// handleRefresh starts a new fetch attempt, bypassing the summary cache, and
// replies with the current fragment. With data already on screen the dashboard stays visible while the
// fetch runs; the outcome arrives over the live connection.
func (a *App) handleRefresh(c echo.Context) error {
	a.Service.InvalidateSummary()
	if !a.View.Reload() {
		c.Logger().Debug("refresh ignored: fetch already in flight")
	}
	return Render(c, dashboard.Render(a.View.State(), a.formatter))
}

type healthResponse struct {
	Status      string `json:"status"`
	View        string `json:"view"`
	LiveClients int    `json:"live_clients"`
	Error       string `json:"error,omitempty"`
}

func (a *App) handleHealthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:      "ok",
		View:        dashboard.Decide(a.View.State()).Branch.String(),
		LiveClients: a.hub.Count(),
	}
	if err := a.Store.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Error = err.Error()
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// fragment renders s for live broadcast.
func (a *App) fragment(s dashboard.State) []byte {
	var buf bytes.Buffer
	if err := dashboard.Render(s, a.formatter).Render(context.Background(), &buf); err != nil {
		a.Echo.Logger.Errorf("render live fragment: %v", err)
	}
	return buf.Bytes()
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
