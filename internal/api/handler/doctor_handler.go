package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/ports"
)

// DoctorHandler serves the doctor dashboard pages: practice schedule,
// patient list, appointments, and medical records.
type DoctorHandler struct {
	upstream
}

func NewDoctorHandler(api ports.ResourceAPI) *DoctorHandler {
	return &DoctorHandler{upstream{api: api}}
}

// Dashboard shows the doctor's appointments for today.
//
// @Summary      Doctor dashboard data
// @Tags         doctor
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /doctor [get]
func (h *DoctorHandler) Dashboard(c echo.Context) error {
	return h.list(c, "/doctors/appointments/")
}

// Schedule returns the doctor's own practice schedule.
func (h *DoctorHandler) Schedule(c echo.Context) error {
	return h.list(c, "/doctors/my-schedule/")
}

type scheduleUpdateRequest struct {
	PracticeSchedule map[string]struct {
		Start string `json:"start" validate:"required"`
		End   string `json:"end" validate:"required"`
	} `json:"practice_schedule" validate:"required"`
}

// UpdateSchedule replaces the weekly practice schedule.
func (h *DoctorHandler) UpdateSchedule(c echo.Context) error {
	var req scheduleUpdateRequest
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
	raw, err := h.api.Patch(c.Request().Context(), s.AccessToken(), "/doctors/my-schedule/", req)
	if err != nil {
		return passthrough(c, err)
	}
	return relay(c, http.StatusOK, raw)
}

// Patients lists the patients this doctor has seen.
func (h *DoctorHandler) Patients(c echo.Context) error {
	return h.list(c, "/doctors/my-patients/")
}

// Appointments lists the doctor's appointments.
func (h *DoctorHandler) Appointments(c echo.Context) error {
	return h.list(c, "/doctors/appointments/")
}

// StartConsultation marks an appointment as in consultation.
func (h *DoctorHandler) StartConsultation(c echo.Context) error {
	return h.action(c, fmt.Sprintf("/doctors/appointments/%s/start_consultation/", c.Param("id")))
}

// ── Medical records ───────────────────────────────────────────────────────────

func (h *DoctorHandler) ListRecords(c echo.Context) error {
	return h.list(c, "/medical-records/")
}

func (h *DoctorHandler) GetRecord(c echo.Context) error {
	return h.list(c, fmt.Sprintf("/medical-records/%s/", c.Param("id")))
}

func (h *DoctorHandler) CreateRecord(c echo.Context) error {
	return h.create(c, "/medical-records/")
}

func (h *DoctorHandler) UpdateRecord(c echo.Context) error {
	return h.update(c, fmt.Sprintf("/medical-records/%s/", c.Param("id")))
}
