package adaptor

import (
	"net/http"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	service usecase.NotificationService
	log     *zap.Logger
}

func NewNotificationHandler(service usecase.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log.With(zap.String("handler", "notification")),
	}
}

// ListNotifications handles GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.ListNotificationsRequest{
		Page:       utils.ParseInt(query.Get("page"), 1),
		Limit:      utils.ParseInt(query.Get("limit"), 20),
		UnreadOnly: utils.ParseBool(query.Get("unreadOnly")),
	}

	list, err := h.service.List(r.Context(), userID.String(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list notifications")
		return
	}

	utils.ResponseSuccess(w, "success", list)
}

// UnreadCount handles GET /api/v1/notifications/count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID.String())
	if err != nil {
		handleServiceError(w, h.log, err, "count notifications")
		return
	}

	utils.ResponseSuccess(w, "success", count)
}

// SendTest handles POST /api/v1/notifications/test
func (h *NotificationHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	n, err := h.service.SendTest(r.Context(), userID.String())
	if err != nil {
		handleServiceError(w, h.log, err, "send test notification")
		return
	}

	utils.ResponseCreated(w, "Test notification sent", n)
}

// MarkRead handles PATCH /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	n, err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id"), userID.String())
	if err != nil {
		handleServiceError(w, h.log, err, "mark notification read")
		return
	}

	utils.ResponseSuccess(w, "Notification marked as read", n)
}

// MarkAllRead handles PATCH /api/v1/notifications/mark-all-read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	modified, err := h.service.MarkAllRead(r.Context(), userID.String())
	if err != nil {
		handleServiceError(w, h.log, err, "mark all notifications read")
		return
	}

	utils.ResponseSuccess(w, "All notifications marked as read", map[string]int64{"modifiedCount": modified})
}

// DeleteNotification handles DELETE /api/v1/notifications/{id}
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), userID.String()); err != nil {
		handleServiceError(w, h.log, err, "delete notification")
		return
	}

	utils.ResponseSuccess(w, "Notification deleted", nil)
}
