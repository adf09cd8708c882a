// Package backend is the thin HTTP wrapper over the clinic REST backend.
// All business logic — stock decrements, invoice computation, queue
// numbering, scheduling conflicts — lives on the other side of this client;
// the portal only forwards requests and displays responses.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/klinik-sejahtera/clinic-portal/internal/api/metrics"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/ports"
)

// APIError is a non-2xx backend response, preserved verbatim so callers can
// surface the backend's own message (login forms render it untouched).
type APIError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, string(e.Body))
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Client talks to the clinic backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a backend client. No retry policy and no timeout beyond the
// one configured on the HTTP client.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// do performs one backend request. A non-2xx status is returned as *APIError
// with the response body intact.
func (c *Client) do(ctx context.Context, method, path, accessToken string, query url.Values, body any) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(method, "transport_error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(method, "transport_error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("read response: %w", err)
	}

	outcome := "ok"
	switch {
	case resp.StatusCode >= 500:
		outcome = "server_error"
	case resp.StatusCode >= 400:
		outcome = "client_error"
	}
	metrics.UpstreamRequestDuration.WithLabelValues(method, outcome).Observe(time.Since(start).Seconds())

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: respBody}
	}
	if len(respBody) == 0 {
		return nil, nil
	}
	return respBody, nil
}

// Ping checks that the backend answers at all. Any HTTP response counts as
// reachable; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

// ── AuthAPI ───────────────────────────────────────────────────────────────────

func (c *Client) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	raw, err := c.do(ctx, http.MethodPost, "/auth/login/", "", nil, creds)
	if err != nil {
		return nil, err
	}
	var res ports.AuthResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, reg ports.Registration) (*ports.AuthResult, error) {
	raw, err := c.do(ctx, http.MethodPost, "/auth/register/", "", nil, reg)
	if err != nil {
		return nil, err
	}
	var res ports.AuthResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode register response: %w", err)
	}
	return &res, nil
}

func (c *Client) Profile(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	raw, err := c.do(ctx, http.MethodGet, "/auth/me/", accessToken, nil, nil)
	if err != nil {
		return nil, err
	}
	var u domain.UserProfile
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, accessToken string, patch map[string]any) (*domain.UserProfile, error) {
	raw, err := c.do(ctx, http.MethodPatch, "/auth/me/", accessToken, nil, patch)
	if err != nil {
		return nil, err
	}
	var u domain.UserProfile
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &u, nil
}

// ── ResourceAPI ───────────────────────────────────────────────────────────────

func (c *Client) Get(ctx context.Context, accessToken, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, accessToken, query, nil)
}

func (c *Client) Post(ctx context.Context, accessToken, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, accessToken, nil, body)
}

func (c *Client) Patch(ctx context.Context, accessToken, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, path, accessToken, nil, body)
}

func (c *Client) Put(ctx context.Context, accessToken, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, path, accessToken, nil, body)
}

func (c *Client) Delete(ctx context.Context, accessToken, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, accessToken, nil, nil)
	return err
}
