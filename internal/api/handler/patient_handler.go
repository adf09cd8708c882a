package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/ports"
)

// PatientHandler serves the patient dashboard pages: doctor discovery and
// booking, appointment history, medical records, and payment history.
type PatientHandler struct {
	upstream
}

func NewPatientHandler(api ports.ResourceAPI) *PatientHandler {
	return &PatientHandler{upstream{api: api}}
}

// Dashboard shows the patient's upcoming and recent appointments.
//
// @Summary      Patient dashboard data
// @Tags         patient
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /patient [get]
func (h *PatientHandler) Dashboard(c echo.Context) error {
	return h.list(c, "/patients/appointment-history/")
}

// DoctorSchedules lists doctors and their bookable schedules.
func (h *PatientHandler) DoctorSchedules(c echo.Context) error {
	return h.list(c, "/doctors/schedule/")
}

type bookingRequest struct {
	DoctorID  int64  `json:"doctor_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required"`
	Complaint string `json:"complaint" validate:"required"`
}

// BookAppointment submits a booking. Conflict detection and queue numbering
// are the backend's; a rejection is surfaced verbatim.
//
// @Summary      Book an appointment
// @Tags         patient
// @Accept       json
// @Produce      json
// @Param        body  body      bookingRequest  true  "Booking details"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Router       /patient/appointments [post]
func (h *PatientHandler) BookAppointment(c echo.Context) error {
	var req bookingRequest
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
	raw, err := h.api.Post(c.Request().Context(), s.AccessToken(), "/booking/create/", req)
	if err != nil {
		return passthrough(c, err)
	}
	return relay(c, http.StatusCreated, raw)
}

// History lists the patient's past appointments.
func (h *PatientHandler) History(c echo.Context) error {
	return h.list(c, "/patients/appointment-history/")
}

// CancelAppointment cancels one of the patient's own appointments.
func (h *PatientHandler) CancelAppointment(c echo.Context) error {
	return h.update(c, fmt.Sprintf("/appointments/%s/cancel/", c.Param("id")))
}

// Records lists the patient's own medical records.
func (h *PatientHandler) Records(c echo.Context) error {
	return h.list(c, "/medical-records/mine/")
}

// Payments lists the patient's payment history.
func (h *PatientHandler) Payments(c echo.Context) error {
	return h.list(c, "/payments/history/")
}
