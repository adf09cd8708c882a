package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/ports"
)

// upstream gives role handlers a uniform way to forward a request to the
// backend under the session's bearer token. Responses are relayed raw: the
// payload shapes are the backend's contract and the portal only displays
// them.
type upstream struct {
	api ports.ResourceAPI
}

// list forwards a GET with the request's query string (pagination, search,
// filters) passed through untouched.
func (u upstream) list(c echo.Context, path string) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	raw, err := u.api.Get(c.Request().Context(), s.AccessToken(), path, c.QueryParams())
	if err != nil {
		return passthrough(c, err)
	}
	return relay(c, http.StatusOK, raw)
}

// create forwards a POST with the request body relayed verbatim.
func (u upstream) create(c echo.Context, path string) error {
	return u.send(c, path, http.StatusCreated, u.api.Post)
}

// action forwards a POST whose success answer is 200 rather than 201
// (confirm, reject, process, pay and similar backend verbs).
func (u upstream) action(c echo.Context, path string) error {
	return u.send(c, path, http.StatusOK, u.api.Post)
}

// update forwards a PATCH.
func (u upstream) update(c echo.Context, path string) error {
	return u.send(c, path, http.StatusOK, u.api.Patch)
}

// replace forwards a PUT.
func (u upstream) replace(c echo.Context, path string) error {
	return u.send(c, path, http.StatusOK, u.api.Put)
}

// remove forwards a DELETE.
func (u upstream) remove(c echo.Context, path string) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := u.api.Delete(c.Request().Context(), s.AccessToken(), path); err != nil {
		return passthrough(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (u upstream) send(c echo.Context, path string, okStatus int, do func(ctx context.Context, token, path string, body any) (json.RawMessage, error)) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	var body any
	if c.Request().ContentLength != 0 {
		var m map[string]any
		if err := c.Bind(&m); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		body = m
	}

	raw, err := do(c.Request().Context(), s.AccessToken(), path, body)
	if err != nil {
		return passthrough(c, err)
	}
	return relay(c, okStatus, raw)
}

// relay writes a raw backend payload, or a bare status when the backend
// answered with an empty body.
func relay(c echo.Context, status int, raw json.RawMessage) error {
	if len(raw) == 0 {
		return c.NoContent(status)
	}
	return c.JSONBlob(status, raw)
}
