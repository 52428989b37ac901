package transport

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// CredentialProvider supplies the bearer token for outgoing requests. An
// empty token means the request goes out unauthenticated.
type CredentialProvider interface {
	Credential(ctx context.Context) (string, error)
}

// CredentialFunc adapts a function to CredentialProvider.
type CredentialFunc func(ctx context.Context) (string, error)

func (f CredentialFunc) Credential(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticCredential always returns the same token.
func StaticCredential(token string) CredentialProvider {
	return CredentialFunc(func(context.Context) (string, error) {
		return token, nil
	})
}

func (c *Client) attachCredential(ctx context.Context, header http.Header) {
	if c.credentials == nil {
		return
	}

	token, err := c.credentials.Credential(ctx)
	if err != nil {
		c.logger.Warn("credential lookup failed, sending request unauthenticated", zap.Error(err))
		return
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return
	}

	header.Set("Authorization", "Bearer "+token)
}
