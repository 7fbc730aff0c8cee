// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/go-chi/chi/v5"
	"github.com/shelterhub/shelterhub/internal/app/system/auth"
	"github.com/shelterhub/shelterhub/internal/domain/models"
)

// Routes mounts the task endpoints (mounted under /v1/tasks from
// bootstrap). Reads are public; every mutation requires a signed-in
// caller, and admins pass every role gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.With(auth.RequireSignedIn, auth.RequireRole(models.RoleOrganization)).Post("/", h.HandleCreate)

	r.Route("/{taskID}", func(tr chi.Router) {
		tr.Get("/", h.ServeGet)

		tr.Group(func(g chi.Router) {
			g.Use(auth.RequireSignedIn)
			g.With(auth.RequireRole(models.RoleOrganization)).Put("/", h.HandleReplace)
			g.Patch("/", h.HandleUpdate)
			g.With(auth.RequireRole(models.RoleOrganization)).Delete("/", h.HandleDelete)

			g.With(auth.RequireRole(models.RoleUser)).Post("/take", h.HandleTake)
			g.With(auth.RequireRole(models.RoleUser)).Post("/release", h.HandleRelease)
			g.With(auth.RequireRole(models.RoleUser, models.RoleOrganization)).Post("/finish", h.HandleFinish)
		})
	})

	return r
}
