// internal/app/features/properties/routes.go
package properties

import (
	"github.com/go-chi/chi/v5"
	"github.com/shelterhub/shelterhub/internal/app/system/auth"
	"github.com/shelterhub/shelterhub/internal/domain/models"
)

// Routes mounts the property endpoints (mounted under /v1/properties
// from bootstrap). Admin only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Use(auth.RequireRole(models.RoleAdmin))

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleSet)
	return r
}
