// internal/app/features/grants/routes.go
package grants

import "github.com/go-chi/chi/v5"

// ProductRoutes returns the per-product grant surface; mounted under
// /api/admin/products/{productID}/grants.
func ProductRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	return r
}

// FailureRoutes returns the allocation-failure surface; mounted under
// /api/admin/allocation-failures.
func FailureRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleListFailures)
	r.Post("/{failureID}/retry", h.HandleRetryFailure)
	return r
}
