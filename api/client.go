// Package api implements the HTTP clients for the two remote backends
// the dinehall client talks to: the admin backend (menu, tables, the
// staff order feed) and the customer backend (auth, customer orders,
// reservations). Both speak JSON; failures are decoded into structured
// errors so the state layer can classify them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dinehall/dinehall/core"
)

// HTTPError is a non-2xx backend response. It carries the status code
// and the human-readable message from the body.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error returns the string representation of the error
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// HTTPStatus implements core.StatusCoder so the auth classifier can see
// 401 responses through wrapped errors.
func (e *HTTPError) HTTPStatus() int {
	return e.StatusCode
}

// Client talks to both backends. It is safe for concurrent use.
type Client struct {
	adminBase    string
	customerBase string
	http         *http.Client
	logger       core.Logger
}

// NewClient builds a client from the configuration. When telemetry is
// enabled the transport is instrumented with otelhttp so every backend
// call produces a span.
func NewClient(cfg *core.Config, logger core.Logger) *Client {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}

	timeout := cfg.HTTP.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := http.DefaultTransport
	if cfg.Telemetry.Enabled {
		transport = otelhttp.NewTransport(transport)
	}

	return &Client{
		adminBase:    strings.TrimRight(cfg.Backends.AdminBaseURL, "/"),
		customerBase: strings.TrimRight(cfg.Backends.CustomerBaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// errorBody is the error envelope both backends use; they disagree on
// the field name.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e errorBody) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// do performs one JSON request. A nil out discards the response body.
// Non-2xx responses become a ClientError wrapping an HTTPError with the
// backend's message; transport failures wrap ErrConnectionFailed.
func (c *Client) do(ctx context.Context, op, method, url, token string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &core.ClientError{Op: op, Kind: "api", Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return &core.ClientError{Op: op, Kind: "api", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Request failed", map[string]interface{}{
			"op":     op,
			"method": method,
			"url":    url,
			"error":  err.Error(),
		})
		return &core.ClientError{Op: op, Kind: "api", Err: fmt.Errorf("%w: %v", core.ErrConnectionFailed, err)}
	}
	defer resp.Body.Close()

	c.logger.Debug("Request completed", map[string]interface{}{
		"op":      op,
		"method":  method,
		"url":     url,
		"status":  resp.StatusCode,
		"latency": time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(data, &eb)
		return &core.ClientError{
			Op:      op,
			Kind:    "api",
			Message: eb.text(),
			Err:     &HTTPError{StatusCode: resp.StatusCode, Message: eb.text()},
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &core.ClientError{Op: op, Kind: "api", Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func (c *Client) adminURL(path string) string {
	return c.adminBase + path
}

func (c *Client) customerURL(path string) string {
	return c.customerBase + path
}
