// internal/app/features/doorlog/routes.go
package doorlog

import (
	"github.com/go-chi/chi/v5"
	"github.com/shelterhub/shelterhub/internal/app/system/auth"
	"github.com/shelterhub/shelterhub/internal/domain/models"
)

// Routes mounts the door log endpoints (mounted under /v1/doorLog from
// bootstrap). The sensor firmware posts without credentials; reading
// the history is admin only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleAppend)
	r.With(auth.RequireSignedIn, auth.RequireRole(models.RoleAdmin)).Get("/", h.ServeList)
	return r
}
