package wire

import (
	"event-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireEvent(r chi.Router, eventHandler *adaptor.EventHandler, g guards) {
	r.Route("/events", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{id}", eventHandler.GetEvent)

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(g.auth, g.admin)
			r.Post("/", eventHandler.CreateEvent)
			r.Put("/{id}", eventHandler.UpdateEvent)
			r.Delete("/{id}", eventHandler.DeleteEvent)
			r.Post("/{id}/publish", eventHandler.PublishEvent)
		})
	})
}
