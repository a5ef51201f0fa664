package folio

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(a.adminPage(c), false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Log.Warn("admin login failed", zap.String("ip", ip))
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(a.adminPage(c), true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminRefresh(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Refresh(c.Request().Context()); err != nil {
		return err
	}
	a.Log.Info("content refreshed from admin")
	return c.Redirect(http.StatusSeeOther, "/admin/?msg=Content+refreshed.")
}

// adminPage is the layout data for admin screens. Admin pages skip the
// content navigation so they work while the source is down.
func (a *App) adminPage(c echo.Context) views.Page {
	return views.Page{
		Site: a.site(),
		Meta: views.PageMeta{Title: "Admin"},
		Nav:  views.Nav{SiteTitle: a.Config.Name, Active: c.Request().URL.Path},
	}
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	st, err := a.status(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(a.adminPage(c), st, msg, CsrfToken(c)))
}

// status counts what the current source serves, through the cache.
func (a *App) status(c echo.Context) (views.AdminStatus, error) {
	ctx := c.Request().Context()
	st := views.AdminStatus{
		Source:       a.sourceName(),
		CacheBackend: a.Content.Backend().Name(),
		Watching:     a.watcher != nil,
		CheckedAt:    time.Now(),
	}
	if a.sanity != nil {
		st.Breaker = a.sanity.BreakerState()
	}
	collections, err := a.Content.Collections(ctx)
	if err != nil {
		return st, err
	}
	st.Collections = len(collections)
	for _, col := range collections {
		st.Photos += len(col.Photos)
	}
	series, err := a.Content.SeriesList(ctx)
	if err != nil {
		return st, err
	}
	st.Series = len(series)
	for _, s := range series {
		st.Galleries += len(s.Galleries)
	}
	slugs, err := a.Content.InfoPageSlugs(ctx)
	if err != nil {
		return st, err
	}
	st.InfoPages = len(slugs)
	return st, nil
}
