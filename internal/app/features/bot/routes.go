// internal/app/features/bot/routes.go
package bot

import "github.com/go-chi/chi/v5"

// Routes mounts the webhook (mounted under /v1 from bootstrap). The
// path carries the bot token as its secret, so no bearer auth applies.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/bot{botToken}", h.HandleUpdate)
	return r
}
