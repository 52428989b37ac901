package backend

import (
	"errors"

	"github.com/ecofuelconnect/efc/internal/adapters/transport"
)

// Error is what every façade call fails with. Message is ready to show to a
// user as is; the wrapped error keeps the transport detail for errors.As.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failure(fallback string, err error) error {
	var apiErr *transport.Error
	if errors.As(err, &apiErr) {
		return &Error{Message: apiErr.DisplayMessage(fallback), Err: err}
	}

	return &Error{Message: fallback, Err: err}
}
