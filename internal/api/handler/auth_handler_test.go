package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/klinik-sejahtera/clinic-portal/internal/api/middleware"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/ports"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/service"
	"github.com/klinik-sejahtera/clinic-portal/internal/infrastructure/backend"
)

const testCookie = "clinic_session"

type memStore struct {
	records map[string]domain.SessionRecord
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]domain.SessionRecord)}
}

func (m *memStore) Save(_ context.Context, id string, rec domain.SessionRecord) error {
	m.records[id] = rec
	return nil
}

func (m *memStore) Load(_ context.Context, id string) (domain.SessionRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}
	return rec, nil
}

func (m *memStore) Clear(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

type stubAuthAPI struct {
	loginFn       func(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error)
	registerFn    func(ctx context.Context, reg ports.Registration) (*ports.AuthResult, error)
	registerCalls int
}

func (s *stubAuthAPI) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	return s.loginFn(ctx, creds)
}

func (s *stubAuthAPI) Register(ctx context.Context, reg ports.Registration) (*ports.AuthResult, error) {
	s.registerCalls++
	return s.registerFn(ctx, reg)
}

func (s *stubAuthAPI) Profile(context.Context, string) (*domain.UserProfile, error) {
	return &domain.UserProfile{}, nil
}

func (s *stubAuthAPI) UpdateProfile(context.Context, string, map[string]any) (*domain.UserProfile, error) {
	return &domain.UserProfile{}, nil
}

func okResult(role domain.Role) *ports.AuthResult {
	return &ports.AuthResult{
		User:   domain.UserProfile{ID: 3, Username: "budi", Role: role},
		Tokens: ports.TokenPair{Access: "access", Refresh: "refresh"},
	}
}

func newTestHandler(api *stubAuthAPI) (*AuthHandler, *memStore) {
	store := newMemStore()
	mgr := service.NewManager(store, api, nil, zerolog.Nop())
	return NewAuthHandler(mgr, api, testCookie), store
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == testCookie {
			return cookie
		}
	}
	t.Fatal("expected a session cookie")
	return nil
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	api := &stubAuthAPI{
		loginFn: func(_ context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
			if creds.Username != "budi" || creds.Password != "rahasia1" {
				t.Fatalf("credentials must be forwarded verbatim, got %+v", creds)
			}
			return okResult(domain.RoleDoctor), nil
		},
	}
	handler, store := newTestHandler(api)

	c, rec := postJSON(e, "/auth/login", `{"username":"budi","password":"rahasia1"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["state"] != "authenticated" {
		t.Errorf("expected authenticated state, got %v", resp["state"])
	}
	user, _ := resp["user"].(map[string]any)
	if user == nil || user["role"] != "doctor" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}

	cookie := sessionCookie(t, rec)
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if rec := store.records[cookie.Value]; !rec.Complete() {
		t.Error("login must leave a complete persisted record under the cookie value")
	}
}

func TestAuthHandler_Login_BackendErrorPassthrough(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	api := &stubAuthAPI{
		loginFn: func(context.Context, ports.Credentials) (*ports.AuthResult, error) {
			return nil, &backend.APIError{
				StatusCode: http.StatusUnauthorized,
				Body:       json.RawMessage(`{"detail":"No active account found with the given credentials"}`),
			}
		},
	}
	handler, store := newTestHandler(api)

	c, rec := postJSON(e, "/auth/login", `{"username":"budi","password":"salah"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected the backend's 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No active account") {
		t.Errorf("backend message must pass through untouched, got %s", rec.Body.String())
	}
	if len(store.records) != 0 {
		t.Error("failed login must not persist anything")
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	handler, _ := newTestHandler(&stubAuthAPI{
		loginFn: func(context.Context, ports.Credentials) (*ports.AuthResult, error) {
			t.Fatal("validation must reject before any backend call")
			return nil, nil
		},
	})

	c, _ := postJSON(e, "/auth/login", `{"username":"budi"}`)
	err := handler.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Register_PasswordMismatch(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	api := &stubAuthAPI{
		registerFn: func(context.Context, ports.Registration) (*ports.AuthResult, error) {
			return okResult(domain.RolePatient), nil
		},
	}
	handler, _ := newTestHandler(api)

	body := `{"username":"budi","email":"budi@example.com","password":"rahasia12","password2":"berbeda12","first_name":"Budi"}`
	c, _ := postJSON(e, "/auth/register", body)
	err := handler.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched passwords, got %v", err)
	}
	if api.registerCalls != 0 {
		t.Error("mismatched passwords must never reach the backend")
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	api := &stubAuthAPI{
		registerFn: func(_ context.Context, reg ports.Registration) (*ports.AuthResult, error) {
			if reg.Email != "budi@example.com" {
				t.Fatalf("registration fields must be forwarded, got %+v", reg)
			}
			return okResult(domain.RolePatient), nil
		},
	}
	handler, _ := newTestHandler(api)

	body := `{"username":"budi","email":"budi@example.com","password":"rahasia12","password2":"rahasia12","first_name":"Budi"}`
	c, rec := postJSON(e, "/auth/register", body)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	sessionCookie(t, rec)
}

func TestAuthHandler_Logout_ClearsSessionAndCookie(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	api := &stubAuthAPI{
		loginFn: func(context.Context, ports.Credentials) (*ports.AuthResult, error) {
			return okResult(domain.RoleAdmin), nil
		},
	}
	handler, store := newTestHandler(api)

	c, rec := postJSON(e, "/auth/login", `{"username":"budi","password":"rahasia1"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	cookie := sessionCookie(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: cookie.Value})
	out := httptest.NewRecorder()
	if err := handler.Logout(e.NewContext(req, out)); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if out.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", out.Code)
	}
	if len(store.records) != 0 {
		t.Error("logout must clear the persisted record")
	}
	expired := sessionCookie(t, out)
	if expired.MaxAge != -1 {
		t.Error("logout must expire the cookie")
	}
	if !strings.Contains(out.Body.String(), "unauthenticated") {
		t.Errorf("logout must report the unauthenticated state, got %s", out.Body.String())
	}
}

func TestAuthHandler_Logout_WithoutCookie(t *testing.T) {
	e := echo.New()
	handler, _ := newTestHandler(&stubAuthAPI{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	if err := handler.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("logout without a session must succeed, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Session_NoCookie(t *testing.T) {
	e := echo.New()
	handler, _ := newTestHandler(&stubAuthAPI{})

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	rec := httptest.NewRecorder()
	if err := handler.Session(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "unauthenticated") {
		t.Errorf("missing cookie must report unauthenticated, got %s", rec.Body.String())
	}
}

func TestAuthHandler_Me_RequiresSession(t *testing.T) {
	e := echo.New()
	handler, _ := newTestHandler(&stubAuthAPI{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	err := handler.Me(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a guard-injected session, got %v", err)
	}
}

func TestAuthHandler_Me_ReturnsProfile(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	api := &stubAuthAPI{
		loginFn: func(context.Context, ports.Credentials) (*ports.AuthResult, error) {
			return okResult(domain.RolePharmacist), nil
		},
	}
	handler, _ := newTestHandler(api)

	c, _ := postJSON(e, "/auth/login", `{"username":"budi","password":"rahasia1"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	// Resolve the session the way the guard would, from the issued cookie.
	s := handler.sessions.Resume(context.Background(), sessionIDFromCookie(t, c))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	meCtx := e.NewContext(req, rec)
	meCtx.Set(middleware.SessionContextKey, s)

	if err := handler.Me(meCtx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"pharmacist"`) {
		t.Errorf("expected the pharmacist profile, got %s", rec.Body.String())
	}
}

func sessionIDFromCookie(t *testing.T, c echo.Context) string {
	t.Helper()
	rec, ok := c.Response().Writer.(*httptest.ResponseRecorder)
	if !ok {
		t.Fatal("response writer is not a recorder")
	}
	return sessionCookie(t, rec).Value
}
