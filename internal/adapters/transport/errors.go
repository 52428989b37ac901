package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/tidwall/gjson"
)

// Kind classifies a failed call.
type Kind string

const (
	KindNetworkUnreachable Kind = "network_unreachable"
	KindTimeout            Kind = "timeout"
	KindHTTP               Kind = "http"
	KindUnauthorized       Kind = "unauthorized"
	KindMalformedResponse  Kind = "malformed_response"
	KindInvalidRequest     Kind = "invalid_request"
	KindCanceled           Kind = "canceled"
)

// Error is the normalized failure returned by Client.Do. Message carries the
// backend's own wording when the error payload had one.
type Error struct {
	Kind      Kind
	Status    int
	Message   string
	Method    string
	Path      string
	Attempts  int
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Method != "" || e.Path != "" {
		fmt.Fprintf(&b, "%s %s: ", e.Method, e.Path)
	}

	switch e.Kind {
	case KindHTTP, KindUnauthorized:
		fmt.Fprintf(&b, "status %d", e.Status)
	default:
		b.WriteString(strings.ReplaceAll(string(e.Kind), "_", " "))
	}

	if e.Message != "" {
		b.WriteString(": " + e.Message)
	} else if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}

	if e.Attempts > 1 {
		fmt.Fprintf(&b, " (after %d attempts)", e.Attempts)
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches 401 to domain.ErrUnauthorized and 404 to domain.ErrNotFound.
func (e *Error) Is(target error) bool {
	switch target {
	case domain.ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case domain.ErrNotFound:
		return e.Kind == KindHTTP && e.Status == http.StatusNotFound
	default:
		return false
	}
}

// Retryable reports whether the failure class is one the retry policy retries.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetworkUnreachable, KindTimeout:
		return true
	case KindHTTP:
		return e.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

// DisplayMessage returns the backend message, or fallback when the backend
// did not explain itself.
func (e *Error) DisplayMessage(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind == KindUnauthorized {
		return "Your session has expired. Please log in again."
	}
	if fallback != "" {
		return fallback
	}

	return e.Error()
}

// NewMalformedResponseError reports a body that decoded into an unexpected shape.
func NewMalformedResponseError(resp *Response, method string, path string, cause error) *Error {
	err := &Error{
		Kind:   KindMalformedResponse,
		Method: method,
		Path:   path,
		Err:    cause,
	}
	if resp != nil {
		err.Status = resp.Status
		err.Attempts = resp.Attempts
		err.RequestID = resp.RequestID
	}

	return err
}

func statusError(status int, body []byte) *Error {
	kind := KindHTTP
	if status == http.StatusUnauthorized {
		kind = KindUnauthorized
	}

	return &Error{
		Kind:    kind,
		Status:  status,
		Message: ExtractMessage(body),
	}
}

func classifyDoError(err error) Kind {
	switch {
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	return KindNetworkUnreachable
}

var messagePaths = []string{"message", "error.message", "error", "msg", "errors.0.msg", "errors.0.message"}

// ExtractMessage pulls a human-readable message out of a backend error
// payload. Non-JSON bodies (proxy error pages) yield "".
func ExtractMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}

	for _, path := range messagePaths {
		result := gjson.GetBytes(body, path)
		if result.Type != gjson.String {
			continue
		}
		if message := strings.TrimSpace(result.Str); message != "" {
			return message
		}
	}

	return ""
}
