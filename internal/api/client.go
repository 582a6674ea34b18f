// Package api implements service.Service against the remote REST task
// service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/task"
)

// DefaultTimeout bounds each remote call.
const DefaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token for authenticated calls. An empty
// string means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// Client talks JSON over HTTP to the task service.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	timeout        time.Duration
	logger         *log.Logger
	onUnauthorized func()
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger for request failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUnauthorizedHook registers a callback fired on every 401 response,
// before the AuthError is returned. The hook performs the global session
// teardown.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a client for the service at baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		tokens:     tokens,
		timeout:    DefaultTimeout,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a bearer token and user identity.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.Identity, error) {
	var id service.Identity
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", creds, &id); err != nil {
		return service.Identity{}, err
	}
	return id, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg service.Registration) error {
	return c.do(ctx, "register", http.MethodPost, "/auth/register", reg, nil)
}

// ListTasks returns one page of tasks scoped by filter. Out-of-range
// pages are passed through; the server's response is accepted as-is.
func (c *Client) ListTasks(ctx context.Context, page, pageSize int, filter task.Filter) (task.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	if !filter.All() {
		q.Set("status", strconv.Itoa(int(filter.Status)))
	}

	var p task.Page
	if err := c.do(ctx, "load tasks", http.MethodGet, "/tasks?"+q.Encode(), nil, &p); err != nil {
		return task.Page{}, err
	}
	return p, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req task.CreateRequest) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, "create task", http.MethodPost, "/tasks", req, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// UpdateTask replaces the full task object.
func (c *Client) UpdateTask(ctx context.Context, id int, req task.UpdateRequest) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, "update task", http.MethodPut, fmt.Sprintf("/tasks/%d", id), req, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// DeleteTask deletes a task by ID.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, "delete task", http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}

// do runs one request/response cycle. Every transport failure becomes a
// *FetchError; a 401 becomes an *AuthError after firing the unauthorized
// hook.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &service.FetchError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &service.FetchError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "err", err)
		return &service.FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("unauthorized, tearing down session", "op", op)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &service.AuthError{Op: op}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := serverMessage(resp.Body)
		c.logger.Warn("server error", "op", op, "status", resp.StatusCode, "message", msg)
		return &service.FetchError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &service.FetchError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// serverMessage extracts the server-provided error message, verbatim, if
// the body carries one.
func serverMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
