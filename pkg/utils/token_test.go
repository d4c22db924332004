package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	cfg := JWTConfig{Secret: "s3cret", ExpiryHours: 1}
	userID, sessionID := uuid.New(), uuid.New()
	now := time.Now()

	token, expiresAt, err := SignSessionToken(cfg, userID, sessionID, "admin", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	claims, err := ParseSessionToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, sessionID.String(), claims.ID)
	assert.Equal(t, "admin", claims.Role)

	_, err = ParseSessionToken(JWTConfig{Secret: "other"}, token)
	assert.Error(t, err)
}

func TestSessionToken_Expired(t *testing.T) {
	cfg := JWTConfig{Secret: "s3cret", ExpiryHours: 1}
	token, _, err := SignSessionToken(cfg, uuid.New(), uuid.New(), "user", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = ParseSessionToken(cfg, token)
	assert.Error(t, err)
}

func TestTicketToken_RoundTrip(t *testing.T) {
	cfg := JWTConfig{Secret: "qr", ExpiryHours: 24}
	id := uuid.New()

	token, err := SignTicketToken(cfg, id, time.Now())
	require.NoError(t, err)

	got, err := ParseTicketToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	// two tokens for the same ticket are still distinct
	again, err := SignTicketToken(cfg, id, time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, token, again)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestValidateStruct_UsesJSONNames(t *testing.T) {
	type payload struct {
		EventID string   `json:"eventId" validate:"required,uuid"`
		Seats   []string `json:"seats" validate:"required,min=1,unique"`
	}

	errs := ValidateStruct(payload{EventID: "x", Seats: []string{"A1", "A1"}})
	assert.Contains(t, errs, "eventId")
	assert.Contains(t, errs, "seats")
	assert.Empty(t, ValidateStruct(payload{EventID: uuid.NewString(), Seats: []string{"A1"}}))
}
