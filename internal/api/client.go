package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/justyntemme/quill-t/pkg/models"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second

	// Outgoing request pacing: 5 requests per second, burst of 10
	defaultRPS   = 5
	defaultBurst = 10

	// Avatars larger than this are refused
	maxImageBytes = 8 << 20
)

// Client is the HTTP client for the Quill API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRateLimit overrides the outgoing request pacing
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a new API client
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(defaultRPS, defaultBurst),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request makes an HTTP request to the API
func (c *Client) request(ctx context.Context, method, path string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("api request", "method", method, "path", path)

	return c.httpClient.Do(req)
}

// parseResponse reads and unmarshals the response body
func parseResponse[T any](op string, resp *http.Response) (T, error) {
	var result T
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, wrapError(op, resp.StatusCode, "", err)
	}

	if resp.StatusCode >= 400 {
		var errResp models.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			return result, wrapError(op, resp.StatusCode, errResp.Error, statusError(resp.StatusCode))
		}
		return result, wrapError(op, resp.StatusCode, "", statusError(resp.StatusCode))
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return result, wrapError(op, resp.StatusCode, "", fmt.Errorf("%w: %v", ErrBadResponse, err))
	}

	return result, nil
}

// Author methods

// ListAuthors returns every author known to the server, in server order
func (c *Client) ListAuthors(ctx context.Context) ([]models.Author, error) {
	resp, err := c.request(ctx, http.MethodGet, "/api/authors")
	if err != nil {
		return nil, wrapError("listAuthors", 0, "", err)
	}
	authors, err := parseResponse[[]models.Author]("listAuthors", resp)
	if err != nil {
		return nil, err
	}
	if authors == nil {
		authors = []models.Author{}
	}
	c.logger.Debug("authors listed", "count", len(authors))
	return authors, nil
}

// GetAuthor returns a single author by ID
func (c *Client) GetAuthor(ctx context.Context, id string) (*models.Author, error) {
	resp, err := c.request(ctx, http.MethodGet, "/api/authors/"+url.PathEscape(id))
	if err != nil {
		return nil, wrapError("getAuthor", 0, "", err)
	}
	status := resp.StatusCode
	author, err := parseResponse[*models.Author]("getAuthor", resp)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, wrapError("getAuthor", status, "empty author", ErrBadResponse)
	}
	return author, nil
}

// FetchImage downloads an avatar. Relative URLs resolve against the server.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	target := imageURL
	if strings.HasPrefix(imageURL, "/") {
		target = c.baseURL + imageURL
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, wrapError("fetchImage", 0, "", err)
	}
	if c.token != "" && c.sameOrigin(req.URL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapError("fetchImage", 0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, wrapError("fetchImage", resp.StatusCode, "", statusError(resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, wrapError("fetchImage", resp.StatusCode, "", err)
	}
	if len(data) > maxImageBytes {
		return nil, wrapError("fetchImage", resp.StatusCode, "image too large", ErrBadResponse)
	}
	return data, nil
}

// sameOrigin reports whether u points at the configured server. Only then
// may the token be sent.
func (c *Client) sameOrigin(u *url.URL) bool {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(base.Scheme, u.Scheme) && strings.EqualFold(base.Host, u.Host)
}

// Health check

// Health checks if the server is available
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.request(ctx, http.MethodGet, "/health")
	if err != nil {
		return wrapError("health", 0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return wrapError("health", resp.StatusCode, "", statusError(resp.StatusCode))
	}
	return nil
}
