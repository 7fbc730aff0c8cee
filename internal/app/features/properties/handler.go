// Package properties serves the named global configuration rows.
package properties

import (
	"context"
	"net/http"

	propertystore "github.com/shelterhub/shelterhub/internal/app/store/properties"
	"github.com/shelterhub/shelterhub/internal/app/system/apierr"
	"github.com/shelterhub/shelterhub/internal/app/system/httpjson"
	"github.com/shelterhub/shelterhub/internal/app/system/timeouts"
	"github.com/shelterhub/shelterhub/internal/app/system/validate"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler holds dependencies for the property endpoints.
type Handler struct {
	Props *propertystore.Store
	Log   *zap.Logger
}

// NewHandler constructs a property Handler.
func NewHandler(props *propertystore.Store, logger *zap.Logger) *Handler {
	return &Handler{Props: props, Log: logger}
}

// ServeList handles GET /v1/properties.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	props, err := h.Props.List(ctx)
	if err != nil {
		h.Log.Error("property list failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	if props == nil {
		props = []models.Property{}
	}
	httpjson.Write(w, http.StatusOK, props)
}

type setPropertyRequest struct {
	Name  string `json:"name" validate:"required,max=128"`
	Value string `json:"value" validate:"required"`
}

// HandleSet handles POST /v1/properties: upsert by name.
func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var req setPropertyRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	prop, err := h.Props.Set(ctx, req.Name, req.Value)
	if err != nil {
		h.Log.Error("property set failed", zap.String("name", req.Name), zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, prop)
}
