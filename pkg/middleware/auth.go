package middleware

import (
	"net/http"
	"strings"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenCookie is the cookie register/login set alongside the JSON token.
const TokenCookie = "token"

// TokenFromRequest reads the session token from the Authorization header,
// falling back to the token cookie.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// SessionVerifier checks a signed session token against the session store.
type SessionVerifier struct {
	sessions repository.SessionRepository
	jwt      utils.JWTConfig
	log      *zap.Logger
}

func NewSessionVerifier(sessions repository.SessionRepository, jwt utils.JWTConfig, log *zap.Logger) *SessionVerifier {
	return &SessionVerifier{sessions: sessions, jwt: jwt, log: log.With(zap.String("middleware", "auth"))}
}

// Identity is who a verified token speaks for.
type Identity struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Role      string
}

// Verify returns nil identity and nil error for tokens that are invalid,
// expired or revoked; a non-nil error means the store could not be asked.
func (v *SessionVerifier) Verify(r *http.Request, token string) (*Identity, error) {
	claims, err := utils.ParseSessionToken(v.jwt, token)
	if err != nil {
		v.log.Debug("Rejected session token", zap.Error(err))
		return nil, nil
	}

	userID, errUser := uuid.Parse(claims.Subject)
	sessionID, errSession := uuid.Parse(claims.ID)
	if errUser != nil || errSession != nil {
		return nil, nil
	}

	session, err := v.sessions.FindValidSession(r.Context(), sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		v.log.Warn("Invalid or expired session", zap.String("session_id", sessionID.String()))
		return nil, nil
	}

	return &Identity{UserID: userID, SessionID: sessionID, Role: claims.Role}, nil
}

// AuthSession middleware rejects requests without a valid session token
func AuthSession(verifier *SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			identity, err := verifier.Verify(r, token)
			if err != nil {
				verifier.log.Error("Failed to validate session", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if identity == nil {
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			ctx := utils.SetUserContext(r.Context(), identity.UserID, identity.Role)
			ctx = utils.SetSessionContext(ctx, identity.SessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin - middleware cek role admin
func Admin(userRepo repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Get user ID dari context (sudah diset AuthSession)
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			// 2. Role in the token may be stale, ask the store
			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Admin check: failed to get user",
					zap.Error(err), zap.String("user_id", userID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			// 3. Check if admin
			if user == nil || user.Role != entity.RoleAdmin {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", userID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID, string(entity.RoleAdmin))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
