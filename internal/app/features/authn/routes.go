// internal/app/features/authn/routes.go
package authn

import "github.com/go-chi/chi/v5"

// Routes mounts the auth endpoints (mounted under /v1/auth from
// bootstrap). All of them are anonymous by nature.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/refresh-token", h.HandleRefresh)
	r.Post("/vk", h.HandleVK)
	return r
}
