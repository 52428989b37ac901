package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/ecofuelconnect/efc/internal/ports/mocks"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u-1",
		"exp": expiresAt.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

type serviceFixture struct {
	auth    *mocks.MockAuthenticator
	repo    *mocks.MockSessionRepository
	store   *mocks.MockSecretStore
	clock   *mocks.MockClock
	service *SessionService
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()

	f := serviceFixture{
		auth:  mocks.NewMockAuthenticator(t),
		repo:  mocks.NewMockSessionRepository(t),
		store: mocks.NewMockSecretStore(t),
		clock: mocks.NewMockClock(t),
	}
	f.service = NewSessionService(f.auth, f.repo, f.store, f.clock)

	return f
}

func TestSessionServiceLoginStoresTokenAndSession(t *testing.T) {
	f := newServiceFixture(t)

	expiresAt := testNow.Add(24 * time.Hour)
	token := signedToken(t, expiresAt)
	credentials := domain.Credentials{Email: "amina@school.rw", Password: "secret123"}

	f.auth.EXPECT().Login(mockAnyContext(), credentials).Return(domain.LoginResult{
		Token: token,
		User:  domain.User{ID: "u-1", Name: "Amina", Email: "amina@school.rw", Role: domain.RoleSchool},
	}, nil)
	f.store.EXPECT().Put(mockAnyContext(), "efc/sessions/default/token", token).Return(nil)
	f.clock.EXPECT().Now().Return(testNow)

	expected := domain.Session{
		Profile:       domain.DefaultProfile,
		UserID:        "u-1",
		Name:          "Amina",
		Email:         "amina@school.rw",
		Role:          domain.RoleSchool,
		CredentialRef: "efc/sessions/default/token",
		ExpiresAt:     expiresAt,
		LoggedInAt:    testNow,
	}
	f.repo.EXPECT().Save(mockAnyContext(), expected).Return(nil)

	session, err := f.service.Login(context.Background(), LoginCommand{Email: "amina@school.rw", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, expected, session)
}

func TestSessionServiceLoginFailureStoresNothing(t *testing.T) {
	f := newServiceFixture(t)

	authErr := errors.New("Invalid credentials")
	f.auth.EXPECT().Login(mockAnyContext(), mock.Anything).Return(domain.LoginResult{}, authErr)

	_, err := f.service.Login(context.Background(), LoginCommand{Profile: "ops", Email: "a@b.rw", Password: "wrongpass"})
	require.ErrorIs(t, err, authErr)
}

func TestSessionServiceLoginRollsBackTokenWhenSaveFails(t *testing.T) {
	f := newServiceFixture(t)

	saveErr := errors.New("disk full")
	f.auth.EXPECT().Login(mockAnyContext(), mock.Anything).Return(domain.LoginResult{Token: "opaque"}, nil)
	f.store.EXPECT().Put(mockAnyContext(), "efc/sessions/ops/token", "opaque").Return(nil)
	f.clock.EXPECT().Now().Return(testNow)
	f.repo.EXPECT().Save(mockAnyContext(), mock.Anything).Return(saveErr)
	f.store.EXPECT().Delete(mockAnyContext(), "efc/sessions/ops/token").Return(nil)

	_, err := f.service.Login(context.Background(), LoginCommand{Profile: "ops", Email: "a@b.rw", Password: "secret123"})
	require.ErrorIs(t, err, saveErr)
}

func TestSessionServiceLoginReportsFailedRollback(t *testing.T) {
	f := newServiceFixture(t)

	saveErr := errors.New("disk full")
	rollbackErr := errors.New("pass locked")
	f.auth.EXPECT().Login(mockAnyContext(), mock.Anything).Return(domain.LoginResult{Token: "opaque"}, nil)
	f.store.EXPECT().Put(mockAnyContext(), "efc/sessions/default/token", "opaque").Return(nil)
	f.clock.EXPECT().Now().Return(testNow)
	f.repo.EXPECT().Save(mockAnyContext(), mock.Anything).Return(saveErr)
	f.store.EXPECT().Delete(mockAnyContext(), "efc/sessions/default/token").Return(rollbackErr)

	_, err := f.service.Login(context.Background(), LoginCommand{Email: "a@b.rw", Password: "secret123"})
	require.ErrorIs(t, err, saveErr)
	require.ErrorIs(t, err, rollbackErr)
}

func TestSessionServiceLogoutWithoutSessionIsNoop(t *testing.T) {
	f := newServiceFixture(t)

	f.repo.EXPECT().Get(mockAnyContext(), domain.DefaultProfile).Return(domain.Session{}, domain.ErrNoSession)

	require.NoError(t, f.service.Logout(context.Background(), ""))
}

func TestSessionServiceLogoutClearsTokenAndSession(t *testing.T) {
	f := newServiceFixture(t)

	session := domain.Session{Profile: "ops", CredentialRef: "efc/sessions/ops/token"}
	f.repo.EXPECT().Get(mockAnyContext(), domain.ProfileName("ops")).Return(session, nil)
	f.store.EXPECT().Delete(mockAnyContext(), "efc/sessions/ops/token").Return(domain.ErrSecretNotFound)
	f.repo.EXPECT().Delete(mockAnyContext(), domain.ProfileName("ops")).Return(nil)

	require.NoError(t, f.service.Logout(context.Background(), "ops"))
}

func TestSessionServiceCurrentClearsExpiredSession(t *testing.T) {
	f := newServiceFixture(t)

	session := domain.Session{Profile: domain.DefaultProfile, CredentialRef: "efc/sessions/default/token", ExpiresAt: testNow.Add(-time.Minute)}
	f.repo.EXPECT().Get(mockAnyContext(), domain.DefaultProfile).Return(session, nil)
	f.clock.EXPECT().Now().Return(testNow)
	f.store.EXPECT().Delete(mockAnyContext(), "efc/sessions/default/token").Return(nil)
	f.repo.EXPECT().Delete(mockAnyContext(), domain.DefaultProfile).Return(nil)

	_, err := f.service.Current(context.Background(), domain.DefaultProfile)
	require.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestSessionServiceTokenReturnsStoredCredential(t *testing.T) {
	f := newServiceFixture(t)

	session := domain.Session{Profile: domain.DefaultProfile, CredentialRef: "efc/sessions/default/token", ExpiresAt: testNow.Add(time.Hour)}
	f.repo.EXPECT().Get(mockAnyContext(), domain.DefaultProfile).Return(session, nil)
	f.clock.EXPECT().Now().Return(testNow)
	f.store.EXPECT().Get(mockAnyContext(), "efc/sessions/default/token").Return("bearer-value", nil)

	token, err := f.service.Token(context.Background(), domain.DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "bearer-value", token)
}

func TestSessionServiceTokenIsEmptyWithoutUsableSession(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.EXPECT().Get(mockAnyContext(), domain.DefaultProfile).Return(domain.Session{}, domain.ErrNoSession)

		token, err := f.service.Token(context.Background(), domain.DefaultProfile)
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("expired session", func(t *testing.T) {
		f := newServiceFixture(t)
		session := domain.Session{Profile: domain.DefaultProfile, CredentialRef: "efc/sessions/default/token", ExpiresAt: testNow}
		f.repo.EXPECT().Get(mockAnyContext(), domain.DefaultProfile).Return(session, nil)
		f.clock.EXPECT().Now().Return(testNow)
		f.store.EXPECT().Delete(mockAnyContext(), "efc/sessions/default/token").Return(nil)
		f.repo.EXPECT().Delete(mockAnyContext(), domain.DefaultProfile).Return(nil)

		token, err := f.service.Token(context.Background(), domain.DefaultProfile)
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("missing secret", func(t *testing.T) {
		f := newServiceFixture(t)
		session := domain.Session{Profile: domain.DefaultProfile, CredentialRef: "efc/sessions/default/token"}
		f.repo.EXPECT().Get(mockAnyContext(), domain.DefaultProfile).Return(session, nil)
		f.clock.EXPECT().Now().Return(testNow)
		f.store.EXPECT().Get(mockAnyContext(), "efc/sessions/default/token").Return("", domain.ErrSecretNotFound)

		token, err := f.service.Token(context.Background(), domain.DefaultProfile)
		require.NoError(t, err)
		assert.Empty(t, token)
	})
}

func TestSessionServiceTokenSurfacesStoreFailures(t *testing.T) {
	f := newServiceFixture(t)

	storeErr := errors.New("pass: gpg agent unavailable")
	session := domain.Session{Profile: domain.DefaultProfile, CredentialRef: "efc/sessions/default/token"}
	f.repo.EXPECT().Get(mockAnyContext(), domain.DefaultProfile).Return(session, nil)
	f.clock.EXPECT().Now().Return(testNow)
	f.store.EXPECT().Get(mockAnyContext(), "efc/sessions/default/token").Return("", storeErr)

	_, err := f.service.Token(context.Background(), domain.DefaultProfile)
	require.ErrorIs(t, err, storeErr)
}

func TestSessionServiceListReportsExpiry(t *testing.T) {
	f := newServiceFixture(t)

	f.repo.EXPECT().List(mockAnyContext()).Return([]domain.Session{
		{Profile: "default", ExpiresAt: testNow.Add(2 * time.Hour)},
		{Profile: "ops", ExpiresAt: testNow.Add(-time.Hour)},
		{Profile: "opaque"},
	}, nil)
	f.clock.EXPECT().Now().Return(testNow)

	statuses, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.False(t, statuses[0].Expired)
	assert.Equal(t, 2*time.Hour, statuses[0].ExpiresIn)
	assert.True(t, statuses[1].Expired)
	assert.False(t, statuses[2].Expired)
	assert.Zero(t, statuses[2].ExpiresIn)
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	expiresAt := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, expiresAt, tokenExpiry(signedToken(t, expiresAt)))
	assert.True(t, tokenExpiry("not-a-jwt").IsZero())

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u-1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	assert.True(t, tokenExpiry(noExp).IsZero())
}

func mockAnyContext() interface{} {
	return mock.Anything
}
