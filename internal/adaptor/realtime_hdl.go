package adaptor

import (
	"net/http"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/realtime"
	"event-ticketing/pkg/middleware"
	"event-ticketing/pkg/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type RealtimeHandler struct {
	hub      *realtime.Hub
	verifier *middleware.SessionVerifier
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewRealtimeHandler(hub *realtime.Hub, verifier *middleware.SessionVerifier, origins []string, log *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:      hub,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
		log: log.With(zap.String("handler", "realtime")),
	}
}

// originChecker allows requests without an Origin header (non-browser
// clients) and browsers on one of the configured origins.
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed["*"] || allowed[origin]
	}
}

// Connect handles GET /api/v1/ws. Browsers cannot set headers on a
// websocket handshake, so the token may also come as ?token=.
func (h *RealtimeHandler) Connect(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		utils.ResponseUnauthorized(w, "Missing authorization token")
		return
	}

	identity, err := h.verifier.Verify(r, token)
	if err != nil {
		h.log.Error("Failed to validate session", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}
	if identity == nil {
		utils.ResponseUnauthorized(w, "Invalid or expired session")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client
		h.log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	h.hub.Serve(conn, identity.UserID.String(), identity.Role == string(entity.RoleAdmin))
}
