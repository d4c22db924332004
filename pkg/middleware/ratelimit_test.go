package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"event-ticketing/pkg/utils"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_Allow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiter(db, utils.RateLimitConfig{Max: 2, Window: time.Minute}, zap.NewNop())
	ctx := context.Background()

	mock.ExpectIncr("rl:ip:1.2.3.4").SetVal(1)
	mock.ExpectExpireNX("rl:ip:1.2.3.4", time.Minute).SetVal(true)
	mock.ExpectIncr("rl:ip:1.2.3.4").SetVal(2)
	mock.ExpectExpireNX("rl:ip:1.2.3.4", time.Minute).SetVal(false)
	mock.ExpectIncr("rl:ip:1.2.3.4").SetVal(3)
	mock.ExpectExpireNX("rl:ip:1.2.3.4", time.Minute).SetVal(false)

	ok, err := rl.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rl.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rl.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiter(db, utils.RateLimitConfig{Max: 1, Window: 15 * time.Minute}, zap.NewNop())
	h := RateLimit(rl)(okHandler())

	mock.ExpectIncr("rl:ip:10.0.0.1").SetVal(2)
	mock.ExpectExpireNX("rl:ip:10.0.0.1", 15*time.Minute).SetVal(false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimit_FailsOpen(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiter(db, utils.RateLimitConfig{Max: 1, Window: time.Minute}, zap.NewNop())
	h := RateLimit(rl)(okHandler())

	mock.ExpectIncr("rl:ip:10.0.0.2").SetErr(errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimit_NilLimiterPassesThrough(t *testing.T) {
	h := RateLimit(nil)(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
