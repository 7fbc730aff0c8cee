// Package users serves the user REST surface, including the
// authenticated profile endpoints.
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	userstore "github.com/shelterhub/shelterhub/internal/app/store/users"
	"github.com/shelterhub/shelterhub/internal/app/system/apierr"
	"github.com/shelterhub/shelterhub/internal/app/system/auth"
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

// Handler holds dependencies for the user endpoints.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a user Handler.
func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

// ServeList handles GET /v1/users with optional email, role, and
// organizationId filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := userstore.ListFilter{
		Email: query.Get(r, "email"),
		Role:  query.Get(r, "role"),
	}
	if s := query.Get(r, "organizationId"); s != "" {
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			apierr.Write(w, apierr.Validation([]apierr.FieldError{{
				Field:    "organizationId",
				Location: "query",
				Messages: []string{`"organizationId" must be a valid id`},
			}}))
			return
		}
		filter.OrganizationID = &oid
	}

	page := paging.Parse(r)
	list, err := h.Users.List(ctx, filter, page.Skip(), page.Limit())
	if err != nil {
		h.Log.Error("user list failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	if list == nil {
		list = []models.User{}
	}
	httpjson.Write(w, http.StatusOK, list)
}

type createUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=128"`
	FirstName string `json:"firstName" validate:"max=128"`
	LastName  string `json:"lastName" validate:"max=128"`
	Phone     string `json:"phone"`
	Role      string `json:"role" validate:"omitempty,oneof=user admin organization"`
}

// HandleCreate handles POST /v1/users (admin provisioning).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}

	created, err := h.Users.Create(ctx, models.User{
		Email:     req.Email,
		Password:  hash,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
	})
	if err == userstore.ErrDuplicateEmail {
		apierr.Write(w, apierr.DuplicateEmail())
		return
	}
	if err != nil {
		h.Log.Error("user create failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// ServeProfile handles GET /v1/users/profile for the signed-in caller.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	bearer, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, apierr.Unauthorized("unauthorized"))
		return
	}
	id, err := primitive.ObjectIDFromHex(bearer.ID)
	if err != nil {
		apierr.Write(w, apierr.Unauthorized("unauthorized"))
		return
	}
	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		apierr.Write(w, apierr.Unauthorized("unauthorized"))
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}

// ServeGet handles GET /v1/users/{userID}. Self or admin.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, ok := h.loadUser(ctx, w, r)
	if !ok {
		return
	}
	if !requireSelfOrAdmin(w, r, user.ID) {
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}

type patchUserRequest struct {
	Email                 *string  `json:"email" validate:"omitempty,email"`
	Password              *string  `json:"password" validate:"omitempty,min=6,max=128"`
	FirstName             *string  `json:"firstName" validate:"omitempty,max=128"`
	LastName              *string  `json:"lastName" validate:"omitempty,max=128"`
	Picture               *string  `json:"picture"`
	Phone                 *string  `json:"phone"`
	Role                  *string  `json:"role" validate:"omitempty,oneof=user admin organization"`
	Latitude              *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude             *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	TelegramNotifications *bool    `json:"telegramNotifications"`
}

// HandleUpdate handles PATCH /v1/users/{userID}. Self or admin; role
// changes are admin-only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, ok := h.loadUser(ctx, w, r)
	if !ok {
		return
	}
	if !requireSelfOrAdmin(w, r, user.ID) {
		return
	}

	var req patchUserRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	bearer, _ := auth.CurrentUser(r)
	if req.Role != nil && bearer.Role != models.RoleAdmin {
		apierr.Write(w, apierr.Forbidden("only admins may change roles"))
		return
	}

	set := bson.M{}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.Log.Error("password hash failed", zap.Error(err))
			apierr.Write(w, err)
			return
		}
		set["password"] = hash
	}
	if req.FirstName != nil {
		set["firstName"] = *req.FirstName
	}
	if req.LastName != nil {
		set["lastName"] = *req.LastName
	}
	if req.Picture != nil {
		set["picture"] = *req.Picture
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Role != nil {
		set["role"] = *req.Role
	}
	if req.Latitude != nil {
		set["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		set["longitude"] = *req.Longitude
	}
	if req.TelegramNotifications != nil {
		set["notifications.telegram"] = *req.TelegramNotifications
	}
	if len(set) == 0 {
		httpjson.Write(w, http.StatusOK, user)
		return
	}

	updated, err := h.Users.Update(ctx, user.ID, set)
	if err == userstore.ErrDuplicateEmail {
		apierr.Write(w, apierr.DuplicateEmail())
		return
	}
	if err != nil {
		h.Log.Error("user update failed", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /v1/users/{userID}. Self or admin.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, ok := h.loadUser(ctx, w, r)
	if !ok {
		return
	}
	if !requireSelfOrAdmin(w, r, user.ID) {
		return
	}
	if _, err := h.Users.Delete(ctx, user.ID); err != nil {
		h.Log.Error("user delete failed", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.NoContent(w)
}

func (h *Handler) loadUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		apierr.Write(w, apierr.NotFound("User does not exist"))
		return models.User{}, false
	}
	user, err := h.Users.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		apierr.Write(w, apierr.NotFound("User does not exist"))
		return models.User{}, false
	}
	if err != nil {
		h.Log.Error("user fetch failed", zap.String("user_id", id.Hex()), zap.Error(err))
		apierr.Write(w, err)
		return models.User{}, false
	}
	return user, true
}

func requireSelfOrAdmin(w http.ResponseWriter, r *http.Request, target primitive.ObjectID) bool {
	bearer, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, apierr.Unauthorized("unauthorized"))
		return false
	}
	if bearer.Role == models.RoleAdmin || bearer.ID == target.Hex() {
		return true
	}
	apierr.Write(w, apierr.Forbidden("forbidden"))
	return false
}
