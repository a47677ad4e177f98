// Package client is a Go client for the issue tracker HTTP API.
package client

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

	"github.com/ignite/issue-tracker/internal/domain"
	"github.com/ignite/issue-tracker/internal/pkg/httpretry"
)

// APIError is a failure envelope returned by the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a NOT_FOUND API error.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == "NOT_FOUND"
}

// Client talks to the issue API.
type Client struct {
	baseURL string
	http    httpretry.HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. The default retries safe
// requests through httpretry.
func WithHTTPClient(doer httpretry.HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpretry.NewRetryClient(&http.Client{Timeout: 15 * time.Second}, 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create adds a new issue.
func (c *Client) Create(ctx context.Context, req domain.CreateIssueRequest) (*domain.Issue, error) {
	var iss domain.Issue
	if err := c.do(ctx, http.MethodPost, "/issues", req, &iss); err != nil {
		return nil, err
	}
	return &iss, nil
}

// Get fetches one issue.
func (c *Client) Get(ctx context.Context, id string) (*domain.Issue, error) {
	var iss domain.Issue
	if err := c.do(ctx, http.MethodGet, issuePath(id), nil, &iss); err != nil {
		return nil, err
	}
	return &iss, nil
}

// List returns every issue, or those with the given status when status is
// non-empty.
func (c *Client) List(ctx context.Context, status domain.Status) ([]domain.Issue, error) {
	path := "/issues"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	issues := []domain.Issue{}
	if err := c.do(ctx, http.MethodGet, path, nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// Update applies a partial update.
func (c *Client) Update(ctx context.Context, id string, req domain.UpdateIssueRequest) (*domain.Issue, error) {
	var iss domain.Issue
	if err := c.do(ctx, http.MethodPut, issuePath(id), req, &iss); err != nil {
		return nil, err
	}
	return &iss, nil
}

// Delete removes an issue.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, issuePath(id), nil, nil)
}

func issuePath(id string) string {
	return "/issues/" + url.PathEscape(id)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Code: "INVALID_RESPONSE", Message: strings.TrimSpace(string(raw))}
	}
	if !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "UNKNOWN", Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}
