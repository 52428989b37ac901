package backend

import (
	"context"
	"net/url"

	"github.com/ecofuelconnect/efc/internal/domain"
)

type Users struct {
	*resource
}

func (u *Users) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	query := url.Values{}
	if role != "" {
		parsed, err := domain.ParseRole(string(role))
		if err != nil {
			return nil, invalid("Invalid role", err)
		}
		query.Set("role", string(parsed))
	}

	return listOf[domain.User](ctx, u.resource, get("/users", query), "Error fetching users", "users")
}

func (u *Users) Producers(ctx context.Context) ([]domain.User, error) {
	return listOf[domain.User](ctx, u.resource, get("/users/producers", nil), "Error fetching producers", "producers", "users")
}

func (u *Users) Get(ctx context.Context, id string) (domain.User, error) {
	if err := checkID("user", id); err != nil {
		return domain.User{}, err
	}

	return oneOf[domain.User](ctx, u.resource, get("/users/"+id, nil), "Error fetching user", "user")
}
