// Package remote is the typed HTTP client for the weights API.
package remote

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

	"go.uber.org/zap"

	"weighttrack/internal/domain"
	"weighttrack/internal/logging"
)

// DefaultTimeout bounds every request when no other timeout is configured.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is kept for the error message.
const maxErrorBody = 4 << 10

// Client talks to the weights API rooted at a base URL:
//
//	GET    /      list
//	POST   /      create
//	PATCH  /{id}  update
//	DELETE /{id}  delete
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     *zap.Logger
}

var _ domain.WeightStore = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. one that adds
// authentication. The client is copied; its Timeout is kept unless
// WithTimeout is also given.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		base: u,
		http: &http.Client{Timeout: DefaultTimeout},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.http
	switch {
	case c.timeout > 0:
		hc.Timeout = c.timeout
	case hc.Timeout == 0:
		hc.Timeout = DefaultTimeout
	}
	c.http = &hc
	return c, nil
}

// List fetches the whole collection.
func (c *Client) List(ctx context.Context) ([]domain.WeightEntry, error) {
	var out []domain.WeightEntry
	if err := c.do(ctx, logging.OpList, http.MethodGet, c.endpoint(""), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.WeightEntry{}
	}
	return out, nil
}

// Create posts a new entry.
func (c *Client) Create(ctx context.Context, in domain.WeightInput) (*domain.WeightEntry, error) {
	var out domain.WeightEntry
	if err := c.do(ctx, logging.OpCreate, http.MethodPost, c.endpoint(""), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update patches the entry with the given id.
func (c *Client) Update(ctx context.Context, id string, in domain.WeightInput) (*domain.WeightEntry, error) {
	var out domain.WeightEntry
	if err := c.do(ctx, logging.OpUpdate, http.MethodPatch, c.endpoint(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the entry with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, logging.OpDelete, http.MethodDelete, c.endpoint(id), nil, nil)
}

func (c *Client) endpoint(id string) string {
	u := *c.base
	if id == "" {
		u.Path += "/"
		u.RawPath = ""
		return u.String()
	}
	u.Path = c.base.Path + "/" + id
	u.RawPath = c.base.EscapedPath() + "/" + url.PathEscape(id)
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method, target string, body, dst any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		nerr := &domain.NetworkError{Op: op, Err: err}
		errType := logging.ErrorTypeNetwork
		if nerr.Timeout() {
			errType = logging.ErrorTypeTimeout
		}
		c.log.Warn("request failed",
			zap.String(logging.FieldOperation, op),
			zap.String(logging.FieldErrorType, errType),
			zap.Error(err))
		return nerr
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("request done",
		zap.String(logging.FieldOperation, op),
		zap.String(logging.FieldMethod, method),
		zap.Int(logging.FieldStatus, resp.StatusCode),
		zap.Duration(logging.FieldDuration, time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.ServerError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) {
			return &domain.NetworkError{Op: op, Err: err}
		}
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} from a failed response, falling back
// to the raw body.
func errorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(b))
}
