package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"subsctl/internal/logging"
	"subsctl/internal/models"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// API_VERSION is the path prefix of every API endpoint
const API_VERSION = "v1"

// maxBodySize caps how much of a response body is read into memory
const maxBodySize = 8 << 20

// Client handles communication with the subscriptions API server
type Client struct {
	// Base URL of the API server
	BaseURL string

	// Authentication token; when empty the token store is consulted per request
	AuthToken string

	// HTTP client with a timeout and a cookie jar for sign-in cookies
	client *http.Client

	// Token store for managing authentication tokens
	tokenStore *models.TokenStore

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *Metrics
	logger  *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout of the underlying HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithRateLimit bounds outgoing requests to rps with the given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger for request and circuit breaker events
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics instruments the client transport and circuit breaker
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient creates a new API client
func NewClient(baseURL string, tokenStore *models.TokenStore, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)

	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		tokenStore: tokenStore,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		logger: logging.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.metrics != nil {
		c.client.Transport = c.metrics.InstrumentTransport(c.client.Transport)
	}
	c.breaker = c.newBreaker()

	return c
}

func (c *Client) newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "subscriptions-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// A cancelled fetch says nothing about server health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())
			if c.metrics != nil {
				c.metrics.observeBreaker(name, to)
			}
		},
	})
}

// token returns the bearer token, or "" when the user is not logged in
func (c *Client) token() string {
	if c.AuthToken != "" {
		return c.AuthToken
	}
	if c.tokenStore == nil {
		return ""
	}
	token, err := c.tokenStore.GetToken()
	if err != nil {
		return ""
	}
	return token
}

// endpoint builds an absolute URL for a versioned API path
func (c *Client) endpoint(path string, query url.Values) string {
	u := fmt.Sprintf("%s/%s/%s", c.BaseURL, API_VERSION, strings.TrimLeft(path, "/"))
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// response is a fully read HTTP response
type response struct {
	StatusCode int
	Body       []byte
	Cookies    []*http.Cookie
}

// send performs one request through the rate limiter and circuit breaker.
// Non-2xx statuses are returned as *APIError.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error marshalling request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				c.logger.Warn("Failed to close response body", "error", err)
			}
		}(resp.Body)

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("error reading response body: %w", err)
		}

		res := &response{StatusCode: resp.StatusCode, Body: data, Cookies: resp.Cookies()}
		if resp.StatusCode >= http.StatusInternalServerError {
			return res, decodeAPIError(resp.StatusCode, data)
		}
		return res, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn("Circuit breaker open", "method", method, "path", path, "request_id", requestID)
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.logRequest(method, path, requestID, apiErr.StatusCode, start)
			return nil, err
		}
		c.logger.Debug("API request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("error making request: %w", err)
	}

	res := result.(*response)
	c.logRequest(method, path, requestID, res.StatusCode, start)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, decodeAPIError(res.StatusCode, res.Body)
	}

	return res, nil
}

// do sends a request and decodes a JSON response body into out when out is not nil
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	res, err := c.send(ctx, method, path, query, payload)
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(res.Body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(res.Body, out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}

func (c *Client) logRequest(method, path, requestID string, status int, start time.Time) {
	c.logger.Debug("API request",
		"method", method,
		"path", path,
		"status", status,
		"request_id", requestID,
		"duration", time.Since(start))
}
