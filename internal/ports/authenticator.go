package ports

import (
	"context"

	"github.com/ecofuelconnect/efc/internal/domain"
)

// Authenticator exchanges credentials for a bearer token with the backend.
type Authenticator interface {
	Login(ctx context.Context, credentials domain.Credentials) (domain.LoginResult, error)
}
