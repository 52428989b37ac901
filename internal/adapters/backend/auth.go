package backend

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ecofuelconnect/efc/internal/adapters/transport"
	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/tidwall/gjson"
)

type Auth struct {
	*resource
}

var errMissingToken = errors.New("login response carries no token")

func (a *Auth) Login(ctx context.Context, credentials domain.Credentials) (domain.LoginResult, error) {
	credentials.Email = strings.TrimSpace(credentials.Email)
	if err := a.validator.check("credentials", credentials); err != nil {
		return domain.LoginResult{}, err
	}

	const fallback = "Login failed"
	req := post("/auth/login", credentials)

	resp, err := a.send(ctx, req, fallback)
	if err != nil {
		return domain.LoginResult{}, err
	}

	body := gjson.ParseBytes(unwrapEnvelope(resp.Body))
	token := strings.TrimSpace(body.Get("token").String())
	if token == "" {
		token = strings.TrimSpace(body.Get("accessToken").String())
	}
	if token == "" {
		return domain.LoginResult{}, failure(fallback, transport.NewMalformedResponseError(resp, req.Method, req.Path, errMissingToken))
	}

	result := domain.LoginResult{Token: token}
	if user := body.Get("user"); user.IsObject() {
		if err := json.Unmarshal([]byte(user.Raw), &result.User); err != nil {
			return domain.LoginResult{}, failure(fallback, transport.NewMalformedResponseError(resp, req.Method, req.Path, err))
		}
	}

	return result, nil
}

func (a *Auth) Me(ctx context.Context) (domain.User, error) {
	return oneOf[domain.User](ctx, a.resource, get("/auth/me", nil), "Error fetching profile", "user")
}
