// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// AdminRoutes returns the user admin surface; mounted under /api/admin/users.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	return r
}
