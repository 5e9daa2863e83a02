// Package splunk implements a client for the Splunk Enterprise/Cloud
// REST API: asynchronous search-job execution with bounded polling and
// paginated result collection, plus index, saved-search, application,
// and server-info listings.
//
// All failures surface as *SearchError values drawn from a closed
// taxonomy so callers never have to interpret raw transport errors.
package splunk

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const userAgent = "splunkmcp/1.0"

// Config holds resolved connection settings for one Splunk endpoint.
//
// Either Token (bearer) or Username+Password must be set. With
// username/password the client exchanges them for a session key on
// Connect and attaches it as `Authorization: Splunk <key>`.
type Config struct {
	Host      string
	Port      int
	Scheme    string
	Token     string
	Username  string
	Password  string
	VerifySSL bool

	// RequestTimeout bounds each individual HTTP call, not the whole
	// search lifecycle (that is the caller's deadline).
	RequestTimeout time.Duration

	// MaxRequestsPerSecond rate-limits outgoing calls across all
	// in-flight invocations. Zero disables limiting.
	MaxRequestsPerSecond float64
}

// Validate checks connection settings before any network use.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return newError(KindValidation, "host is required", nil)
	}
	if c.Port < 1 || c.Port > 65535 {
		return newError(KindValidation, fmt.Sprintf("port %d out of range 1-65535", c.Port), nil)
	}
	if c.Scheme != "http" && c.Scheme != "https" {
		return newError(KindValidation, fmt.Sprintf("scheme must be http or https, got %q", c.Scheme), nil)
	}
	if c.Token == "" && (c.Username == "" || c.Password == "") {
		return newError(KindValidation, "either token or username/password is required", nil)
	}
	return nil
}

// BaseURL returns the endpoint root, e.g. https://splunk.example.com:8089.
func (c Config) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", c.Scheme, c.Host, c.Port)
}

// Client is a Splunk REST API client. It is safe for concurrent use;
// the underlying http.Client connection pool is the only shared
// resource between in-flight invocations.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	pollPolicy PollPolicy
	pageSize   int

	// sessionKey is set by Connect for username/password auth and is
	// read-only afterwards.
	sessionKey string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a zap logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient overrides the underlying HTTP client. Used by tests
// to point at an httptest server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPollPolicy overrides the status poll schedule. Tests inject a
// zero-delay policy here.
func WithPollPolicy(policy PollPolicy) Option {
	return func(c *Client) { c.pollPolicy = policy }
}

// WithPageSize overrides the internal result page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New creates a Client from validated connection settings.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.Scheme == "https" && !cfg.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c := &Client{
		cfg:     cfg,
		baseURL: cfg.BaseURL(),
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		logger:     zap.NewNop(),
		pollPolicy: DefaultPollPolicy(),
		pageSize:   defaultPageSize,
	}
	if cfg.MaxRequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetBaseURL points the client at a different endpoint root. Test hook.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

// Connect verifies credentials against the remote instance. Bearer
// tokens are probed with a server-info call; username/password pairs
// are exchanged for a session key at /services/auth/login.
func (c *Client) Connect(ctx context.Context) error {
	if c.cfg.Token != "" {
		if _, err := c.get(ctx, "/services/server/info", nil); err != nil {
			mapped := classify("connect", err)
			c.logger.Warn("token verification failed", zap.String("kind", string(mapped.Kind)))
			return mapped
		}
		c.logger.Info("token authentication verified")
		return nil
	}

	form := url.Values{
		"username":    {c.cfg.Username},
		"password":    {c.cfg.Password},
		"output_mode": {"json"},
	}
	body, err := c.postForm(ctx, "/services/auth/login", nil, form)
	if err != nil {
		mapped := classify("login", err)
		c.logger.Warn("session login failed", zap.String("kind", string(mapped.Kind)))
		return mapped
	}

	var loginResp struct {
		SessionKey string `json:"sessionKey"`
	}
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return newError(KindPlatform, "unexpected login response", err)
	}
	if loginResp.SessionKey == "" {
		return newError(KindAuth, "login response carried no session key", nil)
	}
	c.sessionKey = loginResp.SessionKey
	c.logger.Info("session authentication established", zap.String("user", c.cfg.Username))
	return nil
}

// get performs an authenticated GET. params may be nil; output_mode=json
// is always applied.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, params, "", nil)
}

// postForm performs an authenticated form POST.
func (c *Client) postForm(ctx context.Context, path string, params url.Values, form url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, params,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

// delete performs an authenticated DELETE.
func (c *Client) delete(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, params, "", nil)
}

// do performs one authenticated request and returns the response body.
// Non-2xx responses become *httpStatusError; network failures pass
// through untouched for the transient-retry check.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, contentType string, body io.Reader) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	if q.Get("output_mode") == "" {
		q.Set("output_mode", "json")
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	switch {
	case c.cfg.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	case c.sessionKey != "":
		req.Header.Set("Authorization", "Splunk "+c.sessionKey)
	}

	c.logger.Debug("splunk request",
		zap.String("method", method),
		zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
