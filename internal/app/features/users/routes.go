// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"
	"github.com/shelterhub/shelterhub/internal/app/system/auth"
	"github.com/shelterhub/shelterhub/internal/domain/models"
)

// Routes mounts the user endpoints (mounted under /v1/users from
// bootstrap). Per-document access (self or admin) is checked in the
// handlers; route-level gates cover the admin-only surfaces.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.With(auth.RequireRole(models.RoleAdmin)).Get("/", h.ServeList)
	r.With(auth.RequireRole(models.RoleAdmin)).Post("/", h.HandleCreate)

	r.Get("/profile", h.ServeProfile)

	r.Get("/{userID}", h.ServeGet)
	r.Patch("/{userID}", h.HandleUpdate)
	r.Delete("/{userID}", h.HandleDelete)

	return r
}
