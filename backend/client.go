// Package backend talks to the managed backend: a PostgREST style table API
// under /rest/v1 and an identity API under /auth/v1.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ad-funnel-gate/config"

	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is a unique constraint violation.
	ErrConflict = errors.New("conflict")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Is maps status codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound || e.Code == "PGRST116"
	case ErrConflict:
		return e.Status == http.StatusConflict || e.Code == "23505"
	}
	return false
}

type tokenKey struct{}

// WithAccessToken makes requests issued with ctx act as the token's user.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func accessToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client is a backend client.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// New creates a client from config.
func New(cfg config.BackendConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewWithHTTPClient(cfg.URL, cfg.AnonKey, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a client with a caller supplied http.Client.
func NewWithHTTPClient(baseURL, anonKey string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: hc,
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	prefer string
}

// do sends req and decodes a JSON answer into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", req.path, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", req.path, err)
	}
	httpReq.Header.Set("apikey", c.anonKey)
	bearer := accessToken(ctx)
	if bearer == "" {
		bearer = c.anonKey
	}
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.prefer != "" {
		httpReq.Header.Set("Prefer", req.prefer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if len(data) > 0 {
			if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
				var identityErr struct {
					Msg         string `json:"msg"`
					Description string `json:"error_description"`
				}
				if json.Unmarshal(data, &identityErr) == nil {
					apiErr.Message = identityErr.Msg
					if apiErr.Message == "" {
						apiErr.Message = identityErr.Description
					}
				}
			}
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.path, err)
	}
	return nil
}

func eq(v string) string { return "eq." + v }
