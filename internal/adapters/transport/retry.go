package transport

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"
)

type retryPolicyKey struct{}

type attemptCounterKey struct{}

// retryAllowed reports whether repeating req cannot duplicate a side effect.
// GET, PUT and DELETE are treated as idempotent. A POST is only repeated when
// the caller attached an idempotency key the backend can deduplicate on.
func retryAllowed(req Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodPut, http.MethodDelete:
		return true
	case http.MethodPost:
		return req.IdempotencyKey != ""
	default:
		return false
	}
}

// checkRetry retries network failures, timeouts and 5xx responses. 4xx
// responses are terminal, and so is cancellation of the caller's context.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	if allowed, _ := ctx.Value(retryPolicyKey{}).(bool); !allowed {
		return false, nil
	}

	if err != nil {
		return true, nil
	}

	if resp != nil && resp.StatusCode >= http.StatusInternalServerError {
		return true, nil
	}

	return false, nil
}

// LinearBackoff waits base × n before retry n (n starting at 1), capped at maxWait.
func LinearBackoff(base, maxWait time.Duration, attemptNum int, _ *http.Response) time.Duration {
	wait := base * time.Duration(attemptNum+1)
	if maxWait > 0 && wait > maxWait {
		return maxWait
	}

	return wait
}

func countAttempt(ctx context.Context) {
	if counter, ok := ctx.Value(attemptCounterKey{}).(*atomic.Int32); ok {
		counter.Add(1)
	}
}
