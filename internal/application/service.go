package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/ecofuelconnect/efc/internal/ports"
	"github.com/golang-jwt/jwt/v5"
)

// SessionService owns the client side of a login: the bearer token in the
// secret store and the session record next to it.
type SessionService struct {
	auth  ports.Authenticator
	repo  ports.SessionRepository
	store ports.SecretStore
	clock ports.Clock
}

func NewSessionService(auth ports.Authenticator, repo ports.SessionRepository, store ports.SecretStore, clock ports.Clock) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SessionService{
		auth:  auth,
		repo:  repo,
		store: store,
		clock: clock,
	}
}

func (s *SessionService) Login(ctx context.Context, cmd LoginCommand) (domain.Session, error) {
	profile := cmd.profile()

	result, err := s.auth.Login(ctx, domain.Credentials{Email: cmd.Email, Password: cmd.Password})
	if err != nil {
		return domain.Session{}, fmt.Errorf("authenticate: %w", err)
	}

	secretKey := domain.CredentialKey(profile)
	if err := s.store.Put(ctx, secretKey, result.Token); err != nil {
		return domain.Session{}, fmt.Errorf("store session token: %w", err)
	}

	email := result.User.Email
	if email == "" {
		email = strings.TrimSpace(cmd.Email)
	}

	session := domain.Session{
		Profile:       profile,
		UserID:        result.User.ID,
		Name:          result.User.Name,
		Email:         email,
		Role:          result.User.Role,
		CredentialRef: secretKey,
		ExpiresAt:     tokenExpiry(result.Token),
		LoggedInAt:    s.clock.Now().UTC(),
	}

	if err := s.repo.Save(ctx, session); err != nil {
		if rollbackErr := s.store.Delete(ctx, secretKey); rollbackErr != nil {
			return domain.Session{}, fmt.Errorf("save session and rollback stored token: %w", errors.Join(err, rollbackErr))
		}

		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}

	return session, nil
}

// Logout forgets the profile's token and session. Logging out of a profile
// that has no session is not an error.
func (s *SessionService) Logout(ctx context.Context, profile domain.ProfileName) error {
	profile = profileOrDefault(profile)

	session, err := s.repo.Get(ctx, profile)
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			return nil
		}
		return fmt.Errorf("get session: %w", err)
	}

	return s.clear(ctx, session)
}

// Current returns the profile's session. An expired session is cleared and
// reported as domain.ErrSessionExpired.
func (s *SessionService) Current(ctx context.Context, profile domain.ProfileName) (domain.Session, error) {
	profile = profileOrDefault(profile)

	session, err := s.repo.Get(ctx, profile)
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			return domain.Session{}, err
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.clock.Now()) {
		if err := s.clear(ctx, session); err != nil {
			return domain.Session{}, fmt.Errorf("clear expired session: %w", errors.Join(domain.ErrSessionExpired, err))
		}
		return domain.Session{}, domain.ErrSessionExpired
	}

	return session, nil
}

func (s *SessionService) List(ctx context.Context) ([]SessionStatus, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	now := s.clock.Now()
	statuses := make([]SessionStatus, 0, len(sessions))
	for _, session := range sessions {
		statuses = append(statuses, statusFromSession(session, now))
	}

	return statuses, nil
}

// Token returns the bearer token for profile, or "" when there is no usable
// session. Requests made with "" go out unauthenticated and the backend
// decides.
func (s *SessionService) Token(ctx context.Context, profile domain.ProfileName) (string, error) {
	session, err := s.Current(ctx, profile)
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) || errors.Is(err, domain.ErrSessionExpired) {
			return "", nil
		}
		return "", err
	}

	token, err := s.store.Get(ctx, session.CredentialRef)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read session token: %w", err)
	}

	return token, nil
}

func (s *SessionService) clear(ctx context.Context, session domain.Session) error {
	ref := session.CredentialRef
	if ref == "" {
		ref = domain.CredentialKey(session.Profile)
	}

	if err := s.store.Delete(ctx, ref); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return fmt.Errorf("delete session token: %w", err)
	}

	if err := s.repo.Delete(ctx, session.Profile); err != nil && !errors.Is(err, domain.ErrNoSession) {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend is the one that verifies. Opaque tokens have no known expiry.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.UTC()
}
