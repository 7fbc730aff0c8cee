// Package organizations serves the organization REST surface.
package organizations

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	organizationstore "github.com/shelterhub/shelterhub/internal/app/store/organizations"
	userstore "github.com/shelterhub/shelterhub/internal/app/store/users"
	"github.com/shelterhub/shelterhub/internal/app/system/apierr"
	"github.com/shelterhub/shelterhub/internal/app/system/httpjson"
	"github.com/shelterhub/shelterhub/internal/app/system/paging"
	"github.com/shelterhub/shelterhub/internal/app/system/timeouts"
	"github.com/shelterhub/shelterhub/internal/app/system/validate"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for the organization endpoints.
type Handler struct {
	Orgs  *organizationstore.Store
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs an organization Handler.
func NewHandler(orgs *organizationstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Orgs: orgs, Users: users, Log: logger}
}

type orgRequest struct {
	Title       string   `json:"title" validate:"required,max=256"`
	Type        string   `json:"type" validate:"omitempty,oneof=shelter grooming pet_clinic"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Phone       string   `json:"phone"`
}

func (req *orgRequest) toModel() models.Organization {
	org := models.Organization{
		Title:       req.Title,
		Type:        req.Type,
		Description: req.Description,
		Phone:       req.Phone,
	}
	if req.Latitude != nil {
		org.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		org.Longitude = *req.Longitude
	}
	return org
}

// ServeList handles GET /v1/organizations.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page := paging.Parse(r)
	list, err := h.Orgs.List(ctx, page.Skip(), page.Limit())
	if err != nil {
		h.Log.Error("organization list failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	if list == nil {
		list = []models.Organization{}
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleCreate handles POST /v1/organizations.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req orgRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Orgs.Create(ctx, req.toModel())
	if err == organizationstore.ErrDuplicateTitle {
		apierr.Write(w, apierr.Conflict("Validation Error", apierr.FieldError{
			Field:    "title",
			Location: "body",
			Messages: []string{`"title" already exists`},
		}))
		return
	}
	if err != nil {
		h.Log.Error("organization create failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// ServeGet handles GET /v1/organizations/{orgID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, ok := h.loadOrg(ctx, w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, org)
}

// HandleReplace handles PUT /v1/organizations/{orgID}. Task bookkeeping
// survives the replace.
func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, ok := h.loadOrg(ctx, w, r)
	if !ok {
		return
	}

	var req orgRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	updated, err := h.Orgs.Replace(ctx, org.ID, req.toModel())
	if err == organizationstore.ErrDuplicateTitle {
		apierr.Write(w, apierr.Conflict("Validation Error", apierr.FieldError{
			Field:    "title",
			Location: "body",
			Messages: []string{`"title" already exists`},
		}))
		return
	}
	if err != nil {
		h.Log.Error("organization replace failed", zap.String("org_id", org.ID.Hex()), zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

type orgPatchRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=256"`
	Type        *string  `json:"type" validate:"omitempty,oneof=shelter grooming pet_clinic"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Phone       *string  `json:"phone"`
}

// HandleUpdate handles PATCH /v1/organizations/{orgID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, ok := h.loadOrg(ctx, w, r)
	if !ok {
		return
	}

	var req orgPatchRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	set := bson.M{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Type != nil {
		set["type"] = *req.Type
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Latitude != nil {
		set["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		set["longitude"] = *req.Longitude
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if len(set) == 0 {
		httpjson.Write(w, http.StatusOK, org)
		return
	}

	updated, err := h.Orgs.Update(ctx, org.ID, set)
	if err == organizationstore.ErrDuplicateTitle {
		apierr.Write(w, apierr.Conflict("Validation Error", apierr.FieldError{
			Field:    "title",
			Location: "body",
			Messages: []string{`"title" already exists`},
		}))
		return
	}
	if err != nil {
		h.Log.Error("organization update failed", zap.String("org_id", org.ID.Hex()), zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /v1/organizations/{orgID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, ok := h.loadOrg(ctx, w, r)
	if !ok {
		return
	}
	if _, err := h.Orgs.Delete(ctx, org.ID); err != nil {
		h.Log.Error("organization delete failed", zap.String("org_id", org.ID.Hex()), zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.NoContent(w)
}

// ServeMembers handles GET /v1/organizations/{orgID}/members: the users
// whose organization snapshot references this org.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, ok := h.loadOrg(ctx, w, r)
	if !ok {
		return
	}

	members, err := h.Users.ListByOrganization(ctx, org.ID)
	if err != nil {
		h.Log.Error("organization members query failed", zap.String("org_id", org.ID.Hex()), zap.Error(err))
		apierr.Write(w, err)
		return
	}
	if members == nil {
		members = []models.User{}
	}
	httpjson.Write(w, http.StatusOK, members)
}

func (h *Handler) loadOrg(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Organization, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orgID"))
	if err != nil {
		apierr.Write(w, apierr.NotFound("Organization does not exist"))
		return models.Organization{}, false
	}
	org, err := h.Orgs.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		apierr.Write(w, apierr.NotFound("Organization does not exist"))
		return models.Organization{}, false
	}
	if err != nil {
		h.Log.Error("organization fetch failed", zap.String("org_id", id.Hex()), zap.Error(err))
		apierr.Write(w, err)
		return models.Organization{}, false
	}
	return org, true
}
