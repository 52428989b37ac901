package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()

	client, err := New(Config{
		BaseURL:        baseURL,
		Timeout:        2 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: time.Millisecond,
	}, opts...)
	require.NoError(t, err)
	return client
}

func statusServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, &hits
}

func TestDoReturnsSuccessfulResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/fuel-requests", r.URL.Path)
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"requests":[]}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL+"/api", WithRequestIDFunc(func() string { return "req-1" }))

	resp, err := client.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/fuel-requests",
		Query:  url.Values{"status": []string{"pending"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, `{"requests":[]}`, string(resp.Body))
	assert.Equal(t, 1, resp.Attempts)
	assert.Equal(t, "req-1", resp.RequestID)
}

func TestDoSendsJSONBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"coins":50}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	resp, err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "rewards/convert",
		Body:   map[string]int{"coins": 50},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
}

func TestDoNeverRetriesClientErrors(t *testing.T) {
	t.Parallel()

	for _, status := range []int{400, 403, 404, 409, 422, 429, 499} {
		server, hits := statusServer(t, status, `{"message":"Quantity must be positive"}`)
		client := newTestClient(t, server.URL)

		_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/waste-entries"})
		require.Error(t, err)

		var apiErr *Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, KindHTTP, apiErr.Kind, "status %d", status)
		assert.Equal(t, status, apiErr.Status)
		assert.Equal(t, 1, apiErr.Attempts)
		assert.Equal(t, "Quantity must be positive", apiErr.Message)
		assert.False(t, apiErr.Retryable())
		assert.Equal(t, int32(1), hits.Load(), "status %d must not be retried", status)
	}
}

func TestDoRetriesServerErrorsUntilExhausted(t *testing.T) {
	t.Parallel()

	for _, status := range []int{500, 502, 503, 599} {
		server, hits := statusServer(t, status, `{"error":"backend waking up"}`)
		client := newTestClient(t, server.URL)

		_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/dashboard/stats"})
		require.Error(t, err)

		var apiErr *Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, KindHTTP, apiErr.Kind)
		assert.Equal(t, status, apiErr.Status)
		assert.Equal(t, 4, apiErr.Attempts)
		assert.Equal(t, "backend waking up", apiErr.Message)
		assert.Equal(t, int32(4), hits.Load())
		assert.Contains(t, apiErr.Error(), "after 4 attempts")
	}
}

func TestDoRecoversAfterTransientServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	resp, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/notifications"})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, int32(3), hits.Load())
}

func TestDoRetriesNetworkUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := newTestClient(t, baseURL)
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/users"})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindNetworkUnreachable, apiErr.Kind)
	assert.Equal(t, 4, apiErr.Attempts)
	assert.True(t, apiErr.Retryable())
}

func TestDoRetriesAttemptTimeouts(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{
		BaseURL:        server.URL,
		Timeout:        20 * time.Millisecond,
		MaxRetries:     3,
		RetryBaseDelay: time.Millisecond,
	})
	require.NoError(t, err)

	_, err = client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/dashboard/stats"})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindTimeout, apiErr.Kind)
	assert.Equal(t, 4, apiErr.Attempts)
	assert.Equal(t, int32(4), hits.Load())
}

func TestDoDoesNotRetryPostWithoutIdempotencyKey(t *testing.T) {
	t.Parallel()

	server, hits := statusServer(t, http.StatusBadGateway, ``)
	client := newTestClient(t, server.URL)

	_, err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/rewards/convert",
		Body:   map[string]int{"coins": 100},
	})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, 1, apiErr.Attempts)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDoRetriesPostCarryingIdempotencyKey(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "convert-123", r.Header.Get("Idempotency-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"coins":100}`, string(body), "body must be replayed on every attempt")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	_, err := client.Do(context.Background(), Request{
		Method:         http.MethodPost,
		Path:           "/rewards/convert",
		Body:           map[string]int{"coins": 100},
		IdempotencyKey: "convert-123",
	})
	require.Error(t, err)
	assert.Equal(t, int32(4), hits.Load())
}

func TestDoStopsRetryingWhenContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		cancel()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, MaxRetries: 3, RetryBaseDelay: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.Do(ctx, Request{Method: http.MethodGet, Path: "/notifications"})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindCanceled, apiErr.Kind)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDoClassifiesUnauthorizedRegardlessOfBody(t *testing.T) {
	t.Parallel()

	for _, body := range []string{``, `not json`, `{"message":"jwt malformed"}`, `{"requests":[]}`} {
		server, hits := statusServer(t, http.StatusUnauthorized, body)
		client := newTestClient(t, server.URL)

		_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/rewards"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized), "body %q", body)

		var apiErr *Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, KindUnauthorized, apiErr.Kind)
		assert.Equal(t, int32(1), hits.Load())
	}
}

func TestDoForbiddenIsNotUnauthorized(t *testing.T) {
	t.Parallel()

	server, _ := statusServer(t, http.StatusForbidden, `{"message":"Admins only"}`)
	client := newTestClient(t, server.URL)

	_, err := client.Do(context.Background(), Request{Method: http.MethodDelete, Path: "/users/u1"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestDoNotFoundMatchesSentinel(t *testing.T) {
	t.Parallel()

	server, _ := statusServer(t, http.StatusNotFound, `{"message":"Fuel request not found"}`)
	client := newTestClient(t, server.URL)

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/fuel-requests/missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDoAttachesBearerCredentialWhenPresent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL, WithCredentials(StaticCredential("token-abc")))
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/auth/me"})
	require.NoError(t, err)
}

func TestDoOmitsAuthorizationHeaderWithoutCredential(t *testing.T) {
	t.Parallel()

	providers := map[string]CredentialProvider{
		"no provider":    nil,
		"empty token":    StaticCredential(""),
		"blank token":    StaticCredential("   "),
		"provider error": CredentialFunc(func(context.Context) (string, error) { return "", errors.New("keyring locked") }),
	}

	for name, provider := range providers {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, present := r.Header["Authorization"]
				assert.False(t, present, "Authorization header must be omitted entirely")
				_, _ = w.Write([]byte(`{}`))
			}))
			t.Cleanup(server.Close)

			opts := []Option{}
			if provider != nil {
				opts = append(opts, WithCredentials(provider))
			}
			client := newTestClient(t, server.URL, opts...)

			_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/content"})
			require.NoError(t, err)
		})
	}
}

func TestDoRejectsInvalidRequestsWithoutDispatch(t *testing.T) {
	t.Parallel()

	server, hits := statusServer(t, http.StatusOK, `{}`)
	client := newTestClient(t, server.URL)

	testCases := []Request{
		{Method: http.MethodPatch, Path: "/fuel-requests/1"},
		{Method: http.MethodGet, Path: ""},
		{Method: http.MethodGet, Path: "../admin"},
		{Method: http.MethodGet, Path: "https://evil.example.com/steal"},
		{Method: http.MethodGet, Path: "/users?role=admin"},
		{Method: http.MethodPost, Path: "/contact", Body: func() {}},
	}

	for _, req := range testCases {
		_, err := client.Do(context.Background(), req)
		require.Error(t, err)

		var apiErr *Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, KindInvalidRequest, apiErr.Kind, "%+v", req)
	}
	assert.Equal(t, int32(0), hits.Load())
}

func TestLinearBackoffIsStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	base := time.Second
	maxWait := 3 * base

	var previous time.Duration
	for retry := 0; retry < 3; retry++ {
		wait := LinearBackoff(base, maxWait, retry, nil)
		assert.Equal(t, base*time.Duration(retry+1), wait)
		assert.Greater(t, wait, previous)
		previous = wait
	}

	assert.Equal(t, maxWait, LinearBackoff(base, maxWait, 10, nil))
}

func TestDoRecordsMetrics(t *testing.T) {
	t.Parallel()

	server, _ := statusServer(t, http.StatusInternalServerError, `{}`)
	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(registry)
	require.NoError(t, err)

	client := newTestClient(t, server.URL, WithMetrics(metrics))
	_, err = client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/dashboard/stats"})
	require.Error(t, err)

	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.attempts.WithLabelValues(http.MethodGet)))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.retries.WithLabelValues(http.MethodGet)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodGet, "http_5xx")))
}

func TestNewMetricsRejectsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewMetrics(registry)
	require.NoError(t, err)

	_, err = NewMetrics(registry)
	require.Error(t, err)
}

func TestDoLogsEveryAttempt(t *testing.T) {
	t.Parallel()

	server, _ := statusServer(t, http.StatusServiceUnavailable, `{}`)
	core, logs := observer.New(zapcore.DebugLevel)

	client := newTestClient(t, server.URL, WithLogger(zap.New(core)))
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/notifications"})
	require.Error(t, err)

	assert.Equal(t, 1, logs.FilterMessage("api request attempt").Len())
	retries := logs.FilterMessage("retrying api request").All()
	require.Len(t, retries, 3)
	assert.Equal(t, int64(4), retries[2].ContextMap()["attempt"])
	assert.Equal(t, 4, logs.FilterMessage("api response").Len())
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "localhost:5000", "ftp://example.com", "http://"} {
		_, err := New(Config{BaseURL: raw})
		require.Error(t, err, raw)
	}
}

func TestExtractMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message", body: `{"message":"Insufficient coins"}`, want: "Insufficient coins"},
		{name: "nested error", body: `{"error":{"message":"Token expired"}}`, want: "Token expired"},
		{name: "error string", body: `{"error":"Invalid producer"}`, want: "Invalid producer"},
		{name: "msg", body: `{"msg":"No token, authorization denied"}`, want: "No token, authorization denied"},
		{name: "validation list", body: `{"errors":[{"msg":"Email is required"}]}`, want: "Email is required"},
		{name: "blank message", body: `{"message":"   "}`, want: ""},
		{name: "html page", body: `<html>Bad Gateway</html>`, want: ""},
		{name: "empty", body: ``, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMessage([]byte(tt.body)))
		})
	}
}

func TestErrorDisplayMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Insufficient coins", (&Error{Kind: KindHTTP, Status: 400, Message: "Insufficient coins"}).DisplayMessage("Error converting coins"))
	assert.Equal(t, "Error converting coins", (&Error{Kind: KindHTTP, Status: 500}).DisplayMessage("Error converting coins"))
	assert.Contains(t, (&Error{Kind: KindUnauthorized, Status: 401}).DisplayMessage("ignored"), "log in again")
}
