package folio

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type revalidateResponse struct {
	Revalidated bool  `json:"revalidated"`
	Now         int64 `json:"now"`
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// handleRevalidate flushes cached content when called with the configured
// secret. An unset secret rejects every call.
func (a *App) handleRevalidate(c echo.Context) error {
	ip := c.RealIP()
	if !a.revalidateLimiter.Check(ip) {
		a.metrics.revalidations.WithLabelValues("limited").Inc()
		return c.JSON(http.StatusTooManyRequests, messageResponse{Message: "Too many attempts"})
	}

	secret := a.Config.RevalidationSecret
	given := c.QueryParam("secret")
	if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
		a.revalidateLimiter.Record(ip)
		a.metrics.revalidations.WithLabelValues("unauthorized").Inc()
		return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Invalid secret"})
	}

	if err := a.Refresh(c.Request().Context()); err != nil {
		a.Log.Error("revalidation failed", zap.Error(err))
		a.metrics.revalidations.WithLabelValues("failed").Inc()
		return c.JSON(http.StatusInternalServerError, messageResponse{
			Message: "Revalidation failed",
			Error:   err.Error(),
		})
	}

	a.metrics.revalidations.WithLabelValues("ok").Inc()
	a.Log.Info("content revalidated", zap.String("ip", ip))
	return c.JSON(http.StatusOK, revalidateResponse{Revalidated: true, Now: time.Now().UnixMilli()})
}
