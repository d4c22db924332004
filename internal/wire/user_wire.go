package wire

import (
	"event-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures user management routes with role-based access control
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, g guards) {
	// ==================== ADMIN ROUTES ====================
	// requires both authentication AND admin role
	r.With(g.auth, g.admin).Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.GetAllUsers)       // GET /api/v1/users?page=1&per_page=10
		r.Delete("/{id}", userHandler.DeleteUser) // DELETE /api/v1/users/{user-id}
	})
}
