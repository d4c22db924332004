package adaptor

import (
	"encoding/json"
	"net"
	"net/http"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/domain"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/realtime"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/middleware"
	"event-ticketing/pkg/utils"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Event        *EventHandler
	Ticket       *TicketHandler
	Notification *NotificationHandler
	Analytics    *AnalyticsHandler
	Realtime     *RealtimeHandler
}

func NewHandler(service *usecase.Service, hub *realtime.Hub, verifier *middleware.SessionVerifier, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(service.Auth, config, log),
		User:         NewUserHandler(service.User, log),
		Event:        NewEventHandler(service.Event, log),
		Ticket:       NewTicketHandler(service.Ticket, log),
		Notification: NewNotificationHandler(service.Notification, log),
		Analytics:    NewAnalyticsHandler(service.Analytics, log),
		Realtime:     NewRealtimeHandler(hub, verifier, config.App.ClientOrigins, log),
	}
}

// handleServiceError maps domain errors to HTTP answers. Client mistakes are
// logged at Warn, everything else at Error with a generic message.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrSeatShrink),
		errors.Is(err, domain.ErrNotBookable),
		errors.Is(err, domain.ErrUnknownSeat),
		errors.Is(err, domain.ErrSeatTaken),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrAlreadyCheckedIn):
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, clientMessage(err), nil)

	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		log.Warn(operation+" unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, clientMessage(err))

	case errors.Is(err, domain.ErrForbidden):
		log.Warn(operation+" forbidden", zap.Error(err))
		utils.ResponseForbidden(w, "Forbidden")

	case errors.Is(err, domain.ErrNotFound):
		log.Warn(operation+" not found", zap.Error(err))
		utils.ResponseNotFound(w, clientMessage(err))

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// clientMessage is the sentinel text plus any detail wrapped around it,
// e.g. "seat A1: seat already booked".
func clientMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, domain.ErrInvalidToken) {
		return domain.ErrInvalidToken.Error()
	}
	return msg
}

// decodeAndValidate reads a JSON body into req. It writes the 400 itself and
// reports false when the body is unusable.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}
	return true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

func isAdmin(r *http.Request) bool {
	role, _ := utils.GetRoleFromContext(r.Context())
	return role == string(entity.RoleAdmin)
}

func clientInfo(r *http.Request) request.ClientInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return request.ClientInfo{UserAgent: r.UserAgent(), IPAddress: ip}
}
