package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
)

// NavigationHandler serves the sidebar menu for the session's role.
type NavigationHandler struct{}

func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

type navigationResponse struct {
	Role  domain.Role       `json:"role"`
	Items []domain.MenuItem `json:"items"`
}

// Menu resolves the session role to its ordered navigation entries.
//
// @Summary      Navigation menu for the current role
// @Tags         navigation
// @Produce      json
// @Success      200  {object}  navigationResponse
// @Failure      401  {object}  map[string]string
// @Router       /navigation [get]
func (h *NavigationHandler) Menu(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	role := s.User().Role
	return c.JSON(http.StatusOK, navigationResponse{
		Role:  role,
		Items: domain.MenuFor(role),
	})
}
