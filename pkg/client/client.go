package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const (
	DefaultTimeout = 30 * time.Second
	jobListTimeout = 60 * time.Second
)

var (
	ErrSessionExpired = errors.New("Session expired. Please login again.")
	ErrTimeout        = errors.New("Request timed out. Please try again.")
	ErrLoginRequired  = errors.New("login required")
	ErrNoToken        = errors.New("login failed: no token returned")
	ErrNoCustomerID   = errors.New("Customer ID not returned from server")
)

// HTTPError is a non-2xx answer other than 401.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Client talks to the shop REST API. After the first connectivity failure it
// stays offline for its whole lifetime and serves empty stubs instead.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	store      SessionStore
	log        *slog.Logger
	offline    atomic.Bool

	Auth      *AuthService
	Customers *CustomerService
	Bills     *BillService
	Tailors   *TailorService
	Jobs      *JobService
	Settings  *SettingsService
	Reports   *ReportService
	Dashboard *DashboardService
	Workflow  *WorkflowService
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithSessionStore(s SessionStore) Option {
	return func(c *Client) { c.store = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		store:      NewMemoryStore(),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthService{c: c}
	c.Customers = &CustomerService{c: c}
	c.Bills = &BillService{c: c}
	c.Tailors = &TailorService{c: c}
	c.Jobs = &JobService{c: c}
	c.Settings = &SettingsService{c: c}
	c.Reports = &ReportService{c: c}
	c.Dashboard = &DashboardService{c: c}
	c.Workflow = &WorkflowService{c: c}
	return c
}

// Offline reports whether the client has switched to stub responses.
func (c *Client) Offline() bool {
	return c.offline.Load()
}

// Session exposes the token store.
func (c *Client) Session() SessionStore {
	return c.store
}

// Health pings the API.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodGet, "/health", nil, &out, public())
	return out, err
}

// RequireSession fails with ErrLoginRequired when no token is stored.
func (c *Client) RequireSession() error {
	if c.store.Token() == "" {
		return ErrLoginRequired
	}
	return nil
}

type requestOptions struct {
	timeout time.Duration
	public  bool
}

type requestOption func(*requestOptions)

func withRequestTimeout(d time.Duration) requestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// public marks endpoints that do not need a session, such as login. A 401
// from them is a normal error and leaves the stored session alone.
func public() requestOption {
	return func(o *requestOptions) { o.public = true }
}

// do performs one request. out may be nil, a *[]byte for the raw body, or
// anything json.Unmarshal accepts.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any, opts ...requestOption) error {
	ro := requestOptions{timeout: c.timeout}
	for _, opt := range opts {
		opt(&ro)
	}

	if c.offline.Load() {
		return decodeFallback(endpoint, out)
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	reqCtx, cancel := context.WithTimeout(ctx, ro.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+endpoint, rdr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.store.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, endpoint, err, out)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportError(ctx, endpoint, err, out)
	}

	if resp.StatusCode == http.StatusUnauthorized && !ro.public {
		c.store.Clear()
		return ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(data, resp.StatusCode)}
		c.log.Error("api error", "endpoint", endpoint, "status", resp.StatusCode, "err", herr.Message)
		return herr
	}

	return decodeBody(data, out)
}

func (c *Client) transportError(ctx context.Context, endpoint string, err error, out any) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		c.log.Error("api timeout", "endpoint", endpoint)
		return ErrTimeout
	}

	// unreachable backend: stay offline for the rest of the session
	c.offline.Store(true)
	c.log.Debug("api unreachable, switching to offline mode", "endpoint", endpoint, "err", err)
	return decodeFallback(endpoint, out)
}

func decodeBody(data []byte, out any) error {
	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = data
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func errorMessage(data []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}
