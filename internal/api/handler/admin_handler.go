package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/ports"
)

// AdminHandler serves the admin dashboard pages: user management, clinic
// services, medications, and the report overview. Everything is a display
// of backend collections; the backend owns all rules.
type AdminHandler struct {
	upstream
}

func NewAdminHandler(api ports.ResourceAPI) *AdminHandler {
	return &AdminHandler{upstream{api: api}}
}

// Dashboard aggregates the report overview and the revenue chart, the two
// fetches the admin landing page performs.
//
// @Summary      Admin dashboard data
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /admin [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	overview, err := h.api.Get(ctx, s.AccessToken(), "/reports/overview/", nil)
	if err != nil {
		return passthrough(c, err)
	}
	revenue, err := h.api.Get(ctx, s.AccessToken(), "/reports/revenue-chart/", nil)
	if err != nil {
		return passthrough(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"overview":      overview,
		"revenue_chart": revenue,
	})
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (h *AdminHandler) ListUsers(c echo.Context) error {
	return h.list(c, "/users/")
}

func (h *AdminHandler) GetUser(c echo.Context) error {
	return h.list(c, fmt.Sprintf("/users/%s/", c.Param("id")))
}

func (h *AdminHandler) CreateUser(c echo.Context) error {
	return h.create(c, "/users/")
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	return h.update(c, fmt.Sprintf("/users/%s/", c.Param("id")))
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	return h.remove(c, fmt.Sprintf("/users/%s/", c.Param("id")))
}

// ToggleUserActive flips a user's active flag.
func (h *AdminHandler) ToggleUserActive(c echo.Context) error {
	return h.action(c, fmt.Sprintf("/users/%s/toggle_active/", c.Param("id")))
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetUserPassword sets a new password for a user, admin-side.
func (h *AdminHandler) ResetUserPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	raw, err := h.api.Post(c.Request().Context(), s.AccessToken(),
		fmt.Sprintf("/users/%s/reset_password/", c.Param("id")), req)
	if err != nil {
		return passthrough(c, err)
	}
	return relay(c, http.StatusOK, raw)
}

// UserTransactionHistory lists one user's payment and appointment history.
func (h *AdminHandler) UserTransactionHistory(c echo.Context) error {
	return h.list(c, fmt.Sprintf("/users/%s/transaction_history/", c.Param("id")))
}

// ── Clinic services ───────────────────────────────────────────────────────────

func (h *AdminHandler) ListServices(c echo.Context) error {
	return h.list(c, "/services/")
}

func (h *AdminHandler) CreateService(c echo.Context) error {
	return h.create(c, "/services/")
}

func (h *AdminHandler) UpdateService(c echo.Context) error {
	return h.update(c, fmt.Sprintf("/services/%s/", c.Param("id")))
}

func (h *AdminHandler) DeleteService(c echo.Context) error {
	return h.remove(c, fmt.Sprintf("/services/%s/", c.Param("id")))
}

// ── Medications (admin view) ──────────────────────────────────────────────────

func (h *AdminHandler) ListMedications(c echo.Context) error {
	return h.list(c, "/medications/")
}

func (h *AdminHandler) CreateMedication(c echo.Context) error {
	return h.create(c, "/medications/")
}

func (h *AdminHandler) UpdateMedication(c echo.Context) error {
	return h.replace(c, fmt.Sprintf("/medications/%s/", c.Param("id")))
}

func (h *AdminHandler) DeleteMedication(c echo.Context) error {
	return h.remove(c, fmt.Sprintf("/medications/%s/", c.Param("id")))
}
