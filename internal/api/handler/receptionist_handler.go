package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/ports"
)

// ReceptionistHandler serves the front-desk pages: patient registration,
// appointment management, and the waiting queue.
type ReceptionistHandler struct {
	upstream
}

func NewReceptionistHandler(api ports.ResourceAPI) *ReceptionistHandler {
	return &ReceptionistHandler{upstream{api: api}}
}

// Dashboard shows the current waiting queue.
//
// @Summary      Receptionist dashboard data
// @Tags         receptionist
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /receptionist [get]
func (h *ReceptionistHandler) Dashboard(c echo.Context) error {
	return h.list(c, "/queue/")
}

// Patients lists registered patients.
func (h *ReceptionistHandler) Patients(c echo.Context) error {
	return h.list(c, "/patients/")
}

// RegisterPatient creates a walk-in patient record.
func (h *ReceptionistHandler) RegisterPatient(c echo.Context) error {
	return h.create(c, "/patients/")
}

// Appointments lists all appointments for triage.
func (h *ReceptionistHandler) Appointments(c echo.Context) error {
	return h.list(c, "/appointments/")
}

// ConfirmAppointment approves a pending appointment.
func (h *ReceptionistHandler) ConfirmAppointment(c echo.Context) error {
	return h.action(c, fmt.Sprintf("/appointments/%s/confirm/", c.Param("id")))
}

// RejectAppointment declines a pending appointment with a note.
func (h *ReceptionistHandler) RejectAppointment(c echo.Context) error {
	return h.action(c, fmt.Sprintf("/appointments/%s/reject/", c.Param("id")))
}

// Queue returns today's waiting queue, optionally filtered by doctor.
func (h *ReceptionistHandler) Queue(c echo.Context) error {
	return h.list(c, "/queue/")
}
