package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
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

type stubResourceAPI struct {
	lastToken string
	lastPath  string
	lastQuery url.Values
	lastBody  any
	result    json.RawMessage
	err       error
}

func (s *stubResourceAPI) Get(_ context.Context, token, path string, query url.Values) (json.RawMessage, error) {
	s.lastToken, s.lastPath, s.lastQuery = token, path, query
	return s.result, s.err
}

func (s *stubResourceAPI) Post(_ context.Context, token, path string, body any) (json.RawMessage, error) {
	s.lastToken, s.lastPath, s.lastBody = token, path, body
	return s.result, s.err
}

func (s *stubResourceAPI) Patch(_ context.Context, token, path string, body any) (json.RawMessage, error) {
	s.lastToken, s.lastPath, s.lastBody = token, path, body
	return s.result, s.err
}

func (s *stubResourceAPI) Put(_ context.Context, token, path string, body any) (json.RawMessage, error) {
	s.lastToken, s.lastPath, s.lastBody = token, path, body
	return s.result, s.err
}

func (s *stubResourceAPI) Delete(_ context.Context, token, path string) error {
	s.lastToken, s.lastPath = token, path
	return s.err
}

// guardedContext builds an echo context carrying an authenticated session,
// the way the guard middleware leaves it.
func guardedContext(t *testing.T, e *echo.Echo, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	api := &stubAuthAPI{
		loginFn: func(context.Context, ports.Credentials) (*ports.AuthResult, error) {
			return &ports.AuthResult{
				User:   domain.UserProfile{ID: 1, Username: "siti", Role: domain.RoleReceptionist},
				Tokens: ports.TokenPair{Access: "tok-xyz", Refresh: "ref"},
			}, nil
		},
	}
	mgr := service.NewManager(newMemStore(), api, nil, zerolog.Nop())
	s, err := mgr.Login(context.Background(), ports.Credentials{Username: "siti", Password: "rahasia1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.SessionContextKey, s)
	return c, rec
}

func TestUpstream_List_ForwardsTokenAndQuery(t *testing.T) {
	e := echo.New()
	api := &stubResourceAPI{result: json.RawMessage(`[{"id":1}]`)}
	u := upstream{api: api}

	req := httptest.NewRequest(http.MethodGet, "/receptionist/patients?search=budi&page=2", nil)
	c, rec := guardedContext(t, e, req)

	if err := u.list(c, "/patients/"); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if api.lastToken != "tok-xyz" {
		t.Errorf("session token must be forwarded, got %q", api.lastToken)
	}
	if api.lastPath != "/patients/" {
		t.Errorf("path wrong: %s", api.lastPath)
	}
	if api.lastQuery.Get("search") != "budi" || api.lastQuery.Get("page") != "2" {
		t.Errorf("query not forwarded: %+v", api.lastQuery)
	}
	if rec.Body.String() != `[{"id":1}]` {
		t.Errorf("payload must be relayed raw, got %s", rec.Body.String())
	}
}

func TestUpstream_List_KeepsRepeatedQueryKeys(t *testing.T) {
	e := echo.New()
	api := &stubResourceAPI{result: json.RawMessage(`[]`)}
	u := upstream{api: api}

	req := httptest.NewRequest(http.MethodGet, "/cashier/payments?status=paid&status=pending", nil)
	c, _ := guardedContext(t, e, req)

	if err := u.list(c, "/payments/"); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	got := api.lastQuery["status"]
	if len(got) != 2 || got[0] != "paid" || got[1] != "pending" {
		t.Errorf("repeated keys must all reach the backend, got %v", got)
	}
}

func TestUpstream_Create_RelaysBodyAnd201(t *testing.T) {
	e := echo.New()
	api := &stubResourceAPI{result: json.RawMessage(`{"id":9}`)}
	u := upstream{api: api}

	req := httptest.NewRequest(http.MethodPost, "/receptionist/patients", strings.NewReader(`{"name":"Budi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := guardedContext(t, e, req)

	if err := u.create(c, "/patients/"); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	body, _ := api.lastBody.(map[string]any)
	if body["name"] != "Budi" {
		t.Errorf("request body must pass through, got %+v", api.lastBody)
	}
}

func TestUpstream_BackendErrorPassthrough(t *testing.T) {
	e := echo.New()
	api := &stubResourceAPI{err: &backend.APIError{
		StatusCode: http.StatusConflict,
		Body:       json.RawMessage(`{"detail":"Jadwal bentrok dengan janji lain"}`),
	}}
	u := upstream{api: api}

	req := httptest.NewRequest(http.MethodGet, "/receptionist/appointments", nil)
	c, rec := guardedContext(t, e, req)

	if err := u.list(c, "/appointments/"); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("backend status must pass through, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Jadwal bentrok") {
		t.Errorf("backend message must pass through untouched, got %s", rec.Body.String())
	}
}

func TestUpstream_Remove_204(t *testing.T) {
	e := echo.New()
	api := &stubResourceAPI{}
	u := upstream{api: api}

	req := httptest.NewRequest(http.MethodDelete, "/admin/services/3", nil)
	c, rec := guardedContext(t, e, req)

	if err := u.remove(c, "/services/3/"); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestUpstream_WithoutSession_401(t *testing.T) {
	e := echo.New()
	u := upstream{api: &stubResourceAPI{}}

	req := httptest.NewRequest(http.MethodGet, "/receptionist/queue", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := u.list(c, "/queue/")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %v", err)
	}
}

func TestNavigationHandler_MenuMatchesRole(t *testing.T) {
	e := echo.New()
	h := NewNavigationHandler()

	req := httptest.NewRequest(http.MethodGet, "/navigation", nil)
	c, rec := guardedContext(t, e, req)

	if err := h.Menu(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Role  domain.Role       `json:"role"`
		Items []domain.MenuItem `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Role != domain.RoleReceptionist {
		t.Errorf("role wrong: %s", resp.Role)
	}
	if len(resp.Items) == 0 || resp.Items[0].Path != "/receptionist" {
		t.Errorf("menu must start at the role root, got %+v", resp.Items)
	}
}
