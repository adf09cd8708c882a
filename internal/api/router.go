package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/klinik-sejahtera/clinic-portal/docs"
	"github.com/klinik-sejahtera/clinic-portal/internal/api/handler"
	"github.com/klinik-sejahtera/clinic-portal/internal/api/middleware"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/service"
	"github.com/klinik-sejahtera/clinic-portal/internal/infrastructure/backend"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// Every role area is mounted under its guard rule; the guard decides between
// admitting, waiting on session load, and redirecting to /login or the
// user's own dashboard.
func NewRouter(sessions *service.Manager, client *backend.Client, db *mongo.Database, rdb *redis.Client, cookieName string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("clinic_portal"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(sessions, client, cookieName)
	navHandler := handler.NewNavigationHandler()
	adminHandler := handler.NewAdminHandler(client)
	doctorHandler := handler.NewDoctorHandler(client)
	patientHandler := handler.NewPatientHandler(client)
	receptionHandler := handler.NewReceptionistHandler(client)
	pharmacistHandler := handler.NewPharmacistHandler(client)
	cashierHandler := handler.NewCashierHandler(client)

	// --- Auth routes (no session required) ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/session", authHandler.Session)

	// --- Session-bound JSON routes ---
	requireSession := middleware.RequireSession(sessions, cookieName)
	e.GET("/auth/me", authHandler.Me, requireSession)
	e.PATCH("/auth/me", authHandler.UpdateMe, requireSession)
	e.GET("/navigation", navHandler.Menu, requireSession)

	// --- Role areas, one group per guard rule ---
	guarded := func(prefix string) *echo.Group {
		return e.Group(prefix, middleware.Guard(sessions, cookieName, guardRule(prefix)))
	}

	admin := guarded("/admin")
	admin.GET("", adminHandler.Dashboard)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.GET("/users/:id", adminHandler.GetUser)
	admin.PATCH("/users/:id", adminHandler.UpdateUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.POST("/users/:id/toggle-active", adminHandler.ToggleUserActive)
	admin.POST("/users/:id/reset-password", adminHandler.ResetUserPassword)
	admin.GET("/users/:id/transactions", adminHandler.UserTransactionHistory)
	admin.GET("/services", adminHandler.ListServices)
	admin.POST("/services", adminHandler.CreateService)
	admin.PATCH("/services/:id", adminHandler.UpdateService)
	admin.DELETE("/services/:id", adminHandler.DeleteService)
	admin.GET("/medications", adminHandler.ListMedications)
	admin.POST("/medications", adminHandler.CreateMedication)
	admin.PUT("/medications/:id", adminHandler.UpdateMedication)
	admin.DELETE("/medications/:id", adminHandler.DeleteMedication)

	doctor := guarded("/doctor")
	doctor.GET("", doctorHandler.Dashboard)
	doctor.GET("/schedule", doctorHandler.Schedule)
	doctor.PUT("/schedule", doctorHandler.UpdateSchedule)
	doctor.GET("/patients", doctorHandler.Patients)
	doctor.GET("/appointments", doctorHandler.Appointments)
	doctor.POST("/appointments/:id/start", doctorHandler.StartConsultation)
	doctor.GET("/records", doctorHandler.ListRecords)
	doctor.POST("/records", doctorHandler.CreateRecord)
	doctor.GET("/records/:id", doctorHandler.GetRecord)
	doctor.PATCH("/records/:id", doctorHandler.UpdateRecord)

	patient := guarded("/patient")
	patient.GET("", patientHandler.Dashboard)
	patient.GET("/doctors", patientHandler.DoctorSchedules)
	patient.POST("/appointments", patientHandler.BookAppointment)
	patient.GET("/appointments", patientHandler.History)
	patient.POST("/appointments/:id/cancel", patientHandler.CancelAppointment)
	patient.GET("/records", patientHandler.Records)
	patient.GET("/payments", patientHandler.Payments)

	reception := guarded("/receptionist")
	reception.GET("", receptionHandler.Dashboard)
	reception.GET("/patients", receptionHandler.Patients)
	reception.POST("/patients", receptionHandler.RegisterPatient)
	reception.GET("/appointments", receptionHandler.Appointments)
	reception.POST("/appointments/:id/confirm", receptionHandler.ConfirmAppointment)
	reception.POST("/appointments/:id/reject", receptionHandler.RejectAppointment)
	reception.GET("/queue", receptionHandler.Queue)

	pharmacist := guarded("/pharmacist")
	pharmacist.GET("", pharmacistHandler.Dashboard)
	pharmacist.GET("/prescriptions", pharmacistHandler.ListPrescriptions)
	pharmacist.GET("/prescriptions/:id", pharmacistHandler.GetPrescription)
	pharmacist.POST("/prescriptions/:id/process", pharmacistHandler.ProcessPrescription)
	pharmacist.GET("/medications", pharmacistHandler.ListMedications)
	pharmacist.POST("/medications", pharmacistHandler.CreateMedication)
	pharmacist.GET("/medications/low-stock", pharmacistHandler.LowStock)
	pharmacist.GET("/medications/:id", pharmacistHandler.GetMedication)
	pharmacist.PUT("/medications/:id", pharmacistHandler.UpdateMedication)
	pharmacist.DELETE("/medications/:id", pharmacistHandler.DeleteMedication)

	cashier := guarded("/cashier")
	cashier.GET("", cashierHandler.Dashboard)
	cashier.GET("/payments", cashierHandler.ListPayments)
	cashier.GET("/payments/pending", cashierHandler.PendingPayments)
	cashier.GET("/payments/:id", cashierHandler.GetPayment)
	cashier.POST("/payments/:id/pay", cashierHandler.Pay)
	cashier.GET("/payments/:id/invoice", cashierHandler.Invoice)
	cashier.GET("/finance-report", cashierHandler.FinanceReport)

	// Shared areas, any authenticated role.
	profile := guarded("/profile")
	profile.GET("", authHandler.Me)
	profile.PATCH("", authHandler.UpdateMe)

	settings := guarded("/settings")
	settings.GET("", authHandler.Me)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb, client)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// guardRule looks up the static guard table entry for a path prefix.
func guardRule(prefix string) domain.GuardRule {
	for _, rule := range domain.GuardRules {
		if rule.PathPrefix == prefix {
			return rule
		}
	}
	// Unlisted prefixes admit any authenticated role.
	return domain.GuardRule{PathPrefix: prefix}
}
