// Package apiclient talks to the remote VISTA REST API.
//
// Successful responses wrap their payload as {"data": ...}. Failures carry a
// human-readable message selected from the body by a JMESPath expression.
// Authenticated calls attach "Authorization: Bearer <token>" through an
// oauth2.Transport whose token source reads the browser client's storage.
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
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/oauth2"

	domainauth "github.com/target/vista-ui/internal/domain/auth"
	"github.com/target/vista-ui/internal/observability/statsd"
	"github.com/target/vista-ui/internal/ports"
)

var (
	// ErrUnauthorized matches API responses with status 401.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrNoToken is returned for authenticated calls when the client has no token.
	ErrNoToken = errors.New("api: no bearer token in client storage")
)

const maxErrorBody = 64 << 10

// Error is a non-2xx API response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// HTTPStatus returns the response status code.
func (e *Error) HTTPStatus() int { return e.Status }

// ServerMessage returns the message the server gave for the failure.
func (e *Error) ServerMessage() string { return e.Message }

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// ErrorMessagePath is a JMESPath expression evaluated against error bodies.
	ErrorMessagePath string
	// Transport is the base round tripper; nil uses http.DefaultTransport.
	Transport http.RoundTripper
	Metrics   statsd.Sink
	Logger    *slog.Logger
}

// Client builds per-browser API views sharing one connection pool.
type Client struct {
	baseURL   string
	timeout   time.Duration
	errorPath string
	transport http.RoundTripper
	anon      *http.Client
	metrics   statsd.Sink
	logger    *slog.Logger
}

var (
	_ ports.AuthAPIFactory      = (*Client)(nil)
	_ ports.WorkspaceAPIFactory = (*Client)(nil)
)

// New constructs a Client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api base url is required")
	}
	path := strings.TrimSpace(cfg.ErrorMessagePath)
	if path == "" {
		path = "error"
	}
	if _, err := jmespath.Compile(path); err != nil {
		return nil, fmt.Errorf("compile error message path %q: %w", path, err)
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   base,
		timeout:   timeout,
		errorPath: path,
		transport: transport,
		anon:      &http.Client{Transport: transport, Timeout: timeout},
		metrics:   cfg.Metrics,
		logger:    logger.With("component", "apiclient"),
	}, nil
}

// AuthAPI returns the auth endpoints for the client owning storage.
//
//nolint:ireturn // factory returns the port.
func (c *Client) AuthAPI(storage ports.Storage) ports.AuthAPI {
	return &authAPI{c: c, authed: c.authedHTTP(storage)}
}

// WorkspaceAPI returns the project and task endpoints for the client owning storage.
//
//nolint:ireturn // factory returns the port.
func (c *Client) WorkspaceAPI(storage ports.Storage) ports.WorkspaceAPI {
	return &workspaceAPI{c: c, authed: c.authedHTTP(storage)}
}

func (c *Client) authedHTTP(storage ports.Storage) *http.Client {
	return &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: &storageTokenSource{storage: storage, timeout: c.timeout},
			Base:   c.transport,
		},
	}
}

// storageTokenSource reads the bearer token on every request so a logout
// takes effect immediately.
type storageTokenSource struct {
	storage ports.Storage
	timeout time.Duration
}

func (s *storageTokenSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	tok, ok, err := s.storage.Get(ctx, domainauth.KeyToken)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if !ok || tok == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// do sends body as JSON and decodes the "data" member of the response into out.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, hc, method, path, body, out)
	c.observe(method, path, status, err, time.Since(start))
	return err
}

func (c *Client) roundTrip(ctx context.Context, hc *http.Client, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &Error{Status: resp.StatusCode, Message: c.errorMessage(raw)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return resp.StatusCode, errors.New("decode response: missing data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response data: %w", err)
	}
	return resp.StatusCode, nil
}

// errorMessage evaluates the configured expression against an error body.
// Non-JSON bodies and non-string results yield "".
func (c *Client) errorMessage(raw []byte) string {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	v, err := jmespath.Search(c.errorPath, doc)
	if err != nil {
		c.logger.Debug("evaluate error message path", "error", err)
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func (c *Client) observe(method, path string, status int, err error, d time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	if c.metrics != nil {
		tags := map[string]string{"method": method, "endpoint": endpointTag(path), "result": result}
		c.metrics.Timing("api.request", d, tags)
	}
	c.logger.Debug("api request", "method", method, "path", path, "status", status, "duration_ms", d.Milliseconds(), "error", err)
}

// endpointTag keeps metric cardinality bounded by masking ids and dropping query strings.
func endpointTag(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if p != "" && strings.Trim(p, "0123456789") == "" {
			parts[i] = "id"
		}
	}
	return strings.Join(parts, ".")
}
