package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/ports"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/service"
	"github.com/klinik-sejahtera/clinic-portal/internal/infrastructure/backend"
)

// AuthHandler exposes the session lifecycle over HTTP: login, register,
// logout, session introspection, and profile updates.
type AuthHandler struct {
	sessions   *service.Manager
	api        ports.AuthAPI
	cookieName string
}

func NewAuthHandler(sessions *service.Manager, api ports.AuthAPI, cookieName string) *AuthHandler {
	return &AuthHandler{sessions: sessions, api: api, cookieName: cookieName}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username         string `json:"username" validate:"required,min=3"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	PasswordConfirm  string `json:"password2" validate:"required,eqfield=Password"`
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	DateOfBirth      string `json:"date_of_birth"`
	BloodType        string `json:"blood_type"`
	Allergies        string `json:"allergies"`
	EmergencyContact string `json:"emergency_contact"`
}

type sessionResponse struct {
	State domain.SessionState `json:"state"`
	User  *domain.UserProfile `json:"user,omitempty"`
}

// Login authenticates against the backend and issues the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s, err := h.sessions.Login(c.Request().Context(), ports.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return passthrough(c, err)
	}

	h.setCookie(c, s)
	return c.JSON(http.StatusOK, sessionResponse{State: s.State(), User: s.User()})
}

// Register creates a patient account and logs it straight in.
//
// @Summary      Register a patient account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration fields"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s, err := h.sessions.Register(c.Request().Context(), ports.Registration{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		PasswordConfirm:  req.PasswordConfirm,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Phone:            req.Phone,
		Address:          req.Address,
		DateOfBirth:      req.DateOfBirth,
		BloodType:        req.BloodType,
		Allergies:        req.Allergies,
		EmergencyContact: req.EmergencyContact,
	})
	if err != nil {
		return passthrough(c, err)
	}

	h.setCookie(c, s)
	return c.JSON(http.StatusCreated, sessionResponse{State: s.State(), User: s.User()})
}

// Logout clears the persisted session and expires the cookie. It never
// contacts the backend and succeeds even when no session exists.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Logout(c.Request().Context(), cookie.Value); err != nil {
			return err
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, sessionResponse{State: domain.StateUnauthenticated})
}

// Session reports the current session state without redirecting, so a
// client can poll during the loading window.
//
// @Summary      Inspect session state
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	cookie, err := c.Cookie(h.cookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusOK, sessionResponse{State: domain.StateUnauthenticated})
	}

	s := h.sessions.Resume(c.Request().Context(), cookie.Value)
	state := s.State()
	if state == domain.StateUninitialized {
		state = domain.StateLoading
	}
	resp := sessionResponse{State: state}
	if state == domain.StateAuthenticated {
		resp.User = s.User()
	}
	return c.JSON(http.StatusOK, resp)
}

// Me returns the session's current user profile.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.UserProfile
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.User())
}

// UpdateMe forwards a partial profile edit to the backend, then replaces the
// cached and persisted user with the returned profile in one step.
//
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]any  true  "Fields to change"
// @Success      200   {object}  domain.UserProfile
// @Failure      401   {object}  map[string]string
// @Router       /auth/me [patch]
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	var patch map[string]any
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	fresh, err := h.api.UpdateProfile(c.Request().Context(), s.AccessToken(), patch)
	if err != nil {
		return passthrough(c, err)
	}
	if err := h.sessions.UpdateUser(c.Request().Context(), s.ID(), *fresh); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fresh)
}

func (h *AuthHandler) setCookie(c echo.Context, s *service.Session) {
	cookie := &http.Cookie{
		Name:     h.cookieName,
		Value:    s.ID(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	// Align the cookie lifetime with the refresh token when its expiry is
	// readable; otherwise leave it a browser-session cookie.
	if exp, ok := domain.TokenExpiry(s.RefreshToken()); ok && exp.After(time.Now()) {
		cookie.Expires = exp
	}
	c.SetCookie(cookie)
}

// passthrough surfaces a backend rejection verbatim: same status, same body.
// The session layer performs no retry and adds no interpretation; the
// calling form renders the backend's message.
func passthrough(c echo.Context, err error) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return c.JSONBlob(apiErr.StatusCode, apiErr.Body)
	}
	return err
}
