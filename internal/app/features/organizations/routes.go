// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/go-chi/chi/v5"
	"github.com/shelterhub/shelterhub/internal/app/system/auth"
	"github.com/shelterhub/shelterhub/internal/domain/models"
)

// Routes mounts the organization endpoints (mounted under
// /v1/organizations from bootstrap). Reads are open; mutation is
// admin-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{orgID}", h.ServeGet)
	r.Get("/{orgID}/members", h.ServeMembers)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Post("/", h.HandleCreate)
		pr.Put("/{orgID}", h.HandleReplace)
		pr.Patch("/{orgID}", h.HandleUpdate)
		pr.Delete("/{orgID}", h.HandleDelete)
	})

	return r
}
