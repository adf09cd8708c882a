package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/klinik-sejahtera/clinic-portal/internal/api/middleware"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/service"
)

// ctxSession extracts the session injected by the guard middleware and
// fast-fails before any backend call: its presence proves the guard ran and
// admitted the request.
func ctxSession(c echo.Context) (*service.Session, error) {
	s, _ := c.Get(middleware.SessionContextKey).(*service.Session)
	if s == nil || s.User() == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return s, nil
}
