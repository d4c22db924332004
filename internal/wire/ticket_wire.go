package wire

import (
	"event-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireTicket(r chi.Router, ticketHandler *adaptor.TicketHandler, g guards) {
	r.Route("/tickets", func(r chi.Router) {
		r.Use(g.auth)

		// ==================== PROTECTED ROUTES ====================
		r.Post("/book", ticketHandler.BookTickets)
		r.Get("/my", ticketHandler.MyTickets)
		r.Get("/{id}", ticketHandler.GetTicket) // owner or admin, checked by the service

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(g.admin)
			r.Get("/", ticketHandler.AllTickets)
			r.Post("/check-in", ticketHandler.CheckIn)
		})
	})
}
