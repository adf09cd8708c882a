package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/ports"
)

// PharmacistHandler serves the pharmacy pages: prescription fulfilment and
// medication stock. Stock decrements happen on the backend when a
// prescription is processed.
type PharmacistHandler struct {
	upstream
}

func NewPharmacistHandler(api ports.ResourceAPI) *PharmacistHandler {
	return &PharmacistHandler{upstream{api: api}}
}

// Dashboard shows pharmacy stats (pending prescriptions, low stock counts).
//
// @Summary      Pharmacist dashboard data
// @Tags         pharmacist
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /pharmacist [get]
func (h *PharmacistHandler) Dashboard(c echo.Context) error {
	return h.list(c, "/pharmacist/stats/")
}

// ── Prescriptions ─────────────────────────────────────────────────────────────

func (h *PharmacistHandler) ListPrescriptions(c echo.Context) error {
	return h.list(c, "/prescriptions/")
}

func (h *PharmacistHandler) GetPrescription(c echo.Context) error {
	return h.list(c, fmt.Sprintf("/prescriptions/%s/", c.Param("id")))
}

// ProcessPrescription marks a prescription dispensed or rejected.
func (h *PharmacistHandler) ProcessPrescription(c echo.Context) error {
	return h.action(c, fmt.Sprintf("/prescriptions/%s/process/", c.Param("id")))
}

// ── Medications ───────────────────────────────────────────────────────────────

func (h *PharmacistHandler) ListMedications(c echo.Context) error {
	return h.list(c, "/medications/")
}

func (h *PharmacistHandler) GetMedication(c echo.Context) error {
	return h.list(c, fmt.Sprintf("/medications/%s/", c.Param("id")))
}

func (h *PharmacistHandler) CreateMedication(c echo.Context) error {
	return h.create(c, "/medications/")
}

func (h *PharmacistHandler) UpdateMedication(c echo.Context) error {
	return h.replace(c, fmt.Sprintf("/medications/%s/", c.Param("id")))
}

func (h *PharmacistHandler) DeleteMedication(c echo.Context) error {
	return h.remove(c, fmt.Sprintf("/medications/%s/", c.Param("id")))
}

// LowStock lists medications at or below their restock threshold.
func (h *PharmacistHandler) LowStock(c echo.Context) error {
	return h.list(c, "/medications/low_stock/")
}
