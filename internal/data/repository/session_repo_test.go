package repository_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/middleware"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sessionJWT = utils.JWTConfig{Secret: "session-secret", ExpiryHours: 1}

// login stores a session row for u and returns its signed token.
func (f fixture) login(t *testing.T, u *entity.User) string {
	t.Helper()
	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		UserID:     u.ID,
		ExpiresAt:  now.Add(sessionJWT.TTL()),
	}
	require.NoError(t, f.sessions.Create(context.Background(), session))

	token, _, err := utils.SignSessionToken(sessionJWT, u.ID, session.ID, string(u.Role), now)
	require.NoError(t, err)
	return token
}

func verify(t *testing.T, v *middleware.SessionVerifier, token string) *middleware.Identity {
	t.Helper()
	identity, err := v.Verify(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), token)
	require.NoError(t, err)
	return identity
}

func TestSession_DeletedUserLosesAccess(t *testing.T) {
	f := newFixture(t)
	verifier := middleware.NewSessionVerifier(f.sessions, sessionJWT, zap.NewNop())
	users := usecase.NewUserService(f.users, f.sessions, zap.NewNop())

	u := f.user(t, "leaver@example.com")
	token := f.login(t, u)

	identity := verify(t, verifier, token)
	require.NotNil(t, identity)
	assert.Equal(t, u.ID, identity.UserID)

	require.NoError(t, users.DeleteUser(context.Background(), u.ID))
	assert.Nil(t, verify(t, verifier, token))
}

func TestSession_SoftDeletedUserRejectedEvenWithoutRevoke(t *testing.T) {
	f := newFixture(t)
	verifier := middleware.NewSessionVerifier(f.sessions, sessionJWT, zap.NewNop())

	u := f.user(t, "direct@example.com")
	token := f.login(t, u)
	require.NoError(t, f.users.Delete(context.Background(), u.ID))

	assert.Nil(t, verify(t, verifier, token))
}

func TestSession_LogoutRevokesOnlyThatSession(t *testing.T) {
	f := newFixture(t)
	verifier := middleware.NewSessionVerifier(f.sessions, sessionJWT, zap.NewNop())

	u := f.user(t, "two-devices@example.com")
	phone := f.login(t, u)
	laptop := f.login(t, u)

	claims, err := utils.ParseSessionToken(sessionJWT, phone)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Revoke(context.Background(), uuid.MustParse(claims.ID)))

	assert.Nil(t, verify(t, verifier, phone))
	assert.NotNil(t, verify(t, verifier, laptop))
}
