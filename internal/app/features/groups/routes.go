// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// ProductRoutes returns the per-product group admin surface; mounted under
// /api/admin/products/{productID}/groups.
func ProductRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Get("/", h.HandleList)
	return r
}

// Routes returns the group-scoped admin surface; mounted under
// /api/admin/groups.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Delete("/{groupID}", h.HandleDelete)
	return r
}
