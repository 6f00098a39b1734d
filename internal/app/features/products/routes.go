// internal/app/features/products/routes.go
package products

import "github.com/go-chi/chi/v5"

// Routes returns the signed-in catalog surface; mounted under /api/products.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList)
	r.Get("/{productID}", h.HandleDetail)
	return r
}

// AdminRoutes returns the admin surface; mounted under /api/admin/products.
// Role enforcement happens on the parent router.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Post("/{productID}/lessons", h.HandleCreateLesson)
	return r
}
