// Package transport performs round-trips against the EcoFuelConnect backend.
//
// A Client wraps go-retryablehttp with a fixed base URL, JSON headers, bearer
// credential attachment and a linear-backoff retry policy that only repeats
// requests whose repetition cannot duplicate a side effect. Every failure
// comes back as an *Error.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	DefaultTimeout        = 90 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = time.Second
	defaultUserAgent      = "efc"
	maxResponseBytes      = 4 << 20

	headerRequestID      = "X-Request-ID"
	headerIdempotencyKey = "Idempotency-Key"
)

// Config holds the connection settings for a Client.
type Config struct {
	BaseURL string
	// Timeout bounds a single attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxRetries is the number of attempts beyond the first. Negative disables retries.
	MaxRetries     int
	RetryBaseDelay time.Duration
	UserAgent      string
}

// Request describes one logical API call. Path is relative to the base URL.
type Request struct {
	Method         string
	Path           string
	Query          url.Values
	Body           any
	IdempotencyKey string
}

// Response is a settled call: the final attempt's status and body.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	Attempts  int
	RequestID string
}

// Client sends API requests with retries and an optional bearer credential.
type Client struct {
	baseURL      *url.URL
	retry        *retryablehttp.Client
	credentials  CredentialProvider
	logger       *zap.Logger
	metrics      *Metrics
	userAgent    string
	newRequestID func() string
}

// Option customizes a Client.
type Option func(*Client)

// WithCredentials sets where the bearer token comes from.
func WithCredentials(provider CredentialProvider) Option {
	return func(c *Client) {
		c.credentials = provider
	}
}

// WithLogger sets the logger for per-attempt log lines.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records every call in metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithRequestIDFunc replaces the X-Request-ID generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newRequestID = fn
		}
	}
}

// New builds a Client. Zero values in cfg fall back to the package defaults.
func New(cfg Config, opts ...Option) (*Client, error) {
	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = DefaultRetryBaseDelay
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:      baseURL,
		logger:       zap.NewNop(),
		userAgent:    userAgent,
		newRequestID: uuid.NewString,
	}

	c.retry = &retryablehttp.Client{
		HTTPClient:      &http.Client{Timeout: timeout, Jar: jar},
		RetryWaitMin:    baseDelay,
		RetryWaitMax:    baseDelay * time.Duration(max(maxRetries, 1)),
		RetryMax:        maxRetries,
		CheckRetry:      checkRetry,
		Backoff:         LinearBackoff,
		ErrorHandler:    retryablehttp.PassthroughErrorHandler,
		RequestLogHook:  c.logAttempt,
		ResponseLogHook: c.logResponse,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do dispatches req, retrying per the retry policy, and returns the 2xx
// response. Any other outcome is an *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()
	requestID := c.newRequestID()

	resp, callErr := c.do(ctx, req, requestID)

	attempts := 0
	if resp != nil {
		attempts = resp.Attempts
	}
	if callErr != nil {
		attempts = callErr.Attempts
		callErr.Method = req.Method
		callErr.Path = req.Path
		callErr.RequestID = requestID
	}
	c.metrics.observeCall(req.Method, outcomeFor(callErr), attempts, time.Since(started))

	if callErr != nil {
		c.logger.Debug("api request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("request_id", requestID),
			zap.String("kind", string(callErr.Kind)),
			zap.Int("status", callErr.Status),
			zap.Int("attempts", callErr.Attempts),
		)
		return nil, callErr
	}

	return resp, nil
}

func (c *Client) do(ctx context.Context, req Request, requestID string) (*Response, *Error) {
	endpoint, err := c.endpoint(req)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Err: err}
	}

	var body any
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("encode request body: %w", err)}
		}
		body = encoded
	}

	counter := &atomic.Int32{}
	ctx = context.WithValue(ctx, attemptCounterKey{}, counter)
	ctx = context.WithValue(ctx, retryPolicyKey{}, retryAllowed(req))

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("create request: %w", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(headerRequestID, requestID)
	if req.IdempotencyKey != "" {
		httpReq.Header.Set(headerIdempotencyKey, req.IdempotencyKey)
	}
	c.attachCredential(ctx, httpReq.Header)

	httpResp, err := c.retry.Do(httpReq)
	attempts := max(int(counter.Load()), 1)
	if httpResp != nil {
		defer func() { _ = httpResp.Body.Close() }()
	}
	if err != nil {
		return nil, &Error{Kind: classifyDoError(err), Attempts: attempts, Err: err}
	}

	payload, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Kind: classifyDoError(err), Status: httpResp.StatusCode, Attempts: attempts, Err: fmt.Errorf("read response: %w", err)}
	}

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		statusErr := statusError(httpResp.StatusCode, payload)
		statusErr.Attempts = attempts
		return nil, statusErr
	}

	return &Response{
		Status:    httpResp.StatusCode,
		Header:    httpResp.Header,
		Body:      bytes.TrimSpace(payload),
		Attempts:  attempts,
		RequestID: requestID,
	}, nil
}

func (c *Client) endpoint(req Request) (string, error) {
	switch req.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return "", fmt.Errorf("unsupported method %q", req.Method)
	}

	relative := strings.TrimSpace(req.Path)
	if relative == "" {
		return "", errors.New("request path is empty")
	}
	if strings.Contains(relative, "://") || strings.Contains(relative, "..") || strings.ContainsAny(relative, "?#") {
		return "", fmt.Errorf("invalid request path %q", req.Path)
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join("/", c.baseURL.Path, relative)
	endpoint.RawPath = ""
	endpoint.RawQuery = req.Query.Encode()

	return endpoint.String(), nil
}

func (c *Client) logAttempt(_ retryablehttp.Logger, req *http.Request, retryNumber int) {
	countAttempt(req.Context())
	c.metrics.observeAttempt(req.Method)

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("attempt", retryNumber+1),
		zap.String("request_id", req.Header.Get(headerRequestID)),
	}
	if retryNumber > 0 {
		c.logger.Info("retrying api request", fields...)
		return
	}
	c.logger.Debug("api request attempt", fields...)
}

func (c *Client) logResponse(_ retryablehttp.Logger, resp *http.Response) {
	if resp == nil || resp.Request == nil {
		return
	}

	c.logger.Debug("api response",
		zap.String("method", resp.Request.Method),
		zap.String("path", resp.Request.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", resp.Request.Header.Get(headerRequestID)),
	)
}

func parseBaseURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("api base url is required")
	}

	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("api base url host is required")
	}

	return parsed, nil
}
