package ports

import (
	"context"

	"github.com/ecofuelconnect/efc/internal/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, profile domain.ProfileName) (domain.Session, error)
	List(ctx context.Context) ([]domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, profile domain.ProfileName) error
}
