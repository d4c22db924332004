package wire

import (
	"event-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAnalytics(r chi.Router, analyticsHandler *adaptor.AnalyticsHandler, g guards) {
	// ==================== ADMIN ROUTES ====================
	r.With(g.auth, g.admin).Route("/analytics", func(r chi.Router) {
		r.Get("/summary", analyticsHandler.Summary)
		r.Get("/demographics", analyticsHandler.Demographics)
		r.Get("/events/{id}", analyticsHandler.EventAnalytics)
		r.Get("/sales-trend", analyticsHandler.SalesTrend)
		r.Get("/export", analyticsHandler.Export)
	})
}
