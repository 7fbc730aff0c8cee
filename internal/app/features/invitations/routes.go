// internal/app/features/invitations/routes.go
package invitations

import (
	"github.com/go-chi/chi/v5"
	"github.com/shelterhub/shelterhub/internal/app/system/auth"
	"github.com/shelterhub/shelterhub/internal/domain/models"
)

// Routes mounts the invitation endpoints (mounted under /v1/invitations
// from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.With(auth.RequireRole(models.RoleOrganization)).Post("/", h.HandleCreate)
	return r
}
