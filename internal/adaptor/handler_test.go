package adaptor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"event-ticketing/internal/domain"
	"event-ticketing/internal/dto/request"
	"event-ticketing/pkg/utils"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", domain.Validation("date must be in the future"), http.StatusBadRequest, "date must be in the future"},
		{"seat taken", errors.Wrap(domain.ErrSeatTaken, "seat A1"), http.StatusBadRequest, "seat A1: seat already booked"},
		{"not bookable", domain.ErrNotBookable, http.StatusBadRequest, "event is not open for booking"},
		{"unknown seat", domain.ErrUnknownSeat, http.StatusBadRequest, "seat does not exist"},
		{"seat shrink", errors.Wrapf(domain.ErrSeatShrink, "have %d, requested %d", 10, 8), http.StatusBadRequest, "have 10, requested 8: total seats can only grow"},
		{"already checked in", domain.ErrAlreadyCheckedIn, http.StatusBadRequest, "ticket already checked in"},
		{"token detail hidden", errors.Mark(errors.New("token is expired"), domain.ErrInvalidToken), http.StatusBadRequest, "invalid or expired ticket token"},
		{"email taken", domain.ErrEmailTaken, http.StatusBadRequest, "email already registered"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "Forbidden"},
		{"event not found", domain.ErrEventNotFound, http.StatusNotFound, "event: not found"},
		{"ticket not found", domain.ErrTicketNotFound, http.StatusNotFound, "ticket: not found"},
		{"unexpected", errors.New("pq: connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, zap.NewNop(), tt.err, "Test")

			assert.Equal(t, tt.code, rec.Code)
			resp := decodeEnvelope(t, rec)
			assert.False(t, resp.Status)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))

		var req request.BookTicketRequest
		assert.False(t, decodeAndValidate(rec, r, &req))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", decodeEnvelope(t, rec).Message)
	})

	t.Run("validation errors keyed by json name", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"eventId":"x","seats":[]}`))

		var req request.BookTicketRequest
		assert.False(t, decodeAndValidate(rec, r, &req))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeEnvelope(t, rec)
		assert.Equal(t, "Validation failed", resp.Message)
		errs, ok := resp.Errors.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "seats")
	})

	t.Run("valid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"eventId":"` + uuid.NewString() + `","seats":["A1","A2"]}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		var req request.BookTicketRequest
		require.True(t, decodeAndValidate(rec, r, &req))
		assert.Equal(t, []string{"A1", "A2"}, req.Seats)
	})
}

func TestIsAdminAndCurrentUser(t *testing.T) {
	userID := uuid.New()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(utils.SetUserContext(r.Context(), userID, "admin"))

	assert.True(t, isAdmin(r))
	got, ok := currentUser(httptest.NewRecorder(), r)
	require.True(t, ok)
	assert.Equal(t, userID, got)

	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	_, ok = currentUser(rec, anon)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:5173"})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	assert.True(t, check(r))

	r.Header.Set("Origin", "http://localhost:5173")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://elsewhere.example")
	assert.False(t, check(r))
}
