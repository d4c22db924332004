package wire

import (
	"event-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireNotification(r chi.Router, notificationHandler *adaptor.NotificationHandler, g guards) {
	// ==================== PROTECTED ROUTES ====================
	r.With(g.auth).Route("/notifications", func(r chi.Router) {
		r.Get("/", notificationHandler.ListNotifications)
		r.Get("/count", notificationHandler.UnreadCount)
		r.Post("/test", notificationHandler.SendTest)
		r.Patch("/mark-all-read", notificationHandler.MarkAllRead)
		r.Patch("/{id}/read", notificationHandler.MarkRead)
		r.Delete("/{id}", notificationHandler.DeleteNotification)
	})
}
