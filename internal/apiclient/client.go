// Package apiclient is the JSON HTTP client for the classroom service.
// It holds the default Authorization header that the session core configures
// after login and clears on logout.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/me/classroom/internal/logging"
	"github.com/me/classroom/pkg/model"
)

// DefaultTimeout bounds a single request when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client for the classroom API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates an API client.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Logger:     logger.With("component", "apiclient"),
	}
}

// SetAuthToken makes every subsequent request carry "Authorization: Bearer <token>".
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearAuthToken removes the default Authorization header.
func (c *Client) ClearAuthToken() {
	c.SetAuthToken("")
}

// AuthToken returns the token currently attached to requests.
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Do performs an HTTP request. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded response body.
// Transport failures are returned as *model.NetworkError and non-2xx responses
// as *HTTPError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	url := c.BaseURL + path
	op := method + " " + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	reqID := "req_" + uuid.New().String()[:8]
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.AuthToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.Logger.Debug("HTTP request", "method", method, "url", url, "request_id", reqID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &model.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	c.Logger.Debug("HTTP response", "status", resp.StatusCode, "request_id", reqID, "bytes", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &model.ValidationError{
			Message: "Invalid response from server",
			Err:     fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err),
		}
	}
	return nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// IsUnauthorized reports whether err is an HTTP 401 from the service.
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized
}
