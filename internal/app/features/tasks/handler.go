// Package tasks serves the task REST surface and its lifecycle actions.
package tasks

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"github.com/shelterhub/shelterhub/internal/app/lifecycle"
	taskstore "github.com/shelterhub/shelterhub/internal/app/store/tasks"
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

// Handler holds dependencies for the task endpoints.
type Handler struct {
	Tasks     *taskstore.Store
	Users     *userstore.Store
	Lifecycle *lifecycle.Service
	Log       *zap.Logger
}

// NewHandler constructs a task Handler.
func NewHandler(tasks *taskstore.Store, users *userstore.Store, lc *lifecycle.Service, logger *zap.Logger) *Handler {
	return &Handler{Tasks: tasks, Users: users, Lifecycle: lc, Log: logger}
}

type taskRequest struct {
	Title           string     `json:"title" validate:"required,max=256"`
	Description     string     `json:"description"`
	Status          string     `json:"status" validate:"omitempty,oneof=available in_progress hidden done deleted assigned"`
	Priority        string     `json:"priority" validate:"omitempty,oneof=low medium high hot extra"`
	Type            string     `json:"type" validate:"omitempty,oneof=auto animals remote donate other"`
	Latitude        *float64   `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude       *float64   `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Date            *time.Time `json:"date"`
	Duration        int        `json:"duration" validate:"omitempty,min=0"`
	HasManyAssignee bool       `json:"hasManyAssignee"`
}

func (req *taskRequest) toModel() models.Task {
	task := models.Task{
		Title:           req.Title,
		Description:     req.Description,
		Status:          req.Status,
		Priority:        req.Priority,
		Type:            req.Type,
		Date:            req.Date,
		Duration:        req.Duration,
		HasManyAssignee: req.HasManyAssignee,
	}
	if req.Latitude != nil && req.Longitude != nil {
		task.Location = models.NewGeoPoint(*req.Latitude, *req.Longitude)
	}
	return task
}

// ServeList handles GET /v1/tasks.
//
// Hidden and deleted tasks never appear. Optional filters: title (text
// search) and priority, type, status (each repeatable or
// comma-separated). Newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page := paging.Parse(r)
	filter := taskstore.ListFilter{
		Title:      strings.TrimSpace(query.Get(r, "title")),
		Priorities: queryValues(r, "priority", models.ValidTaskPriority),
		Types:      queryValues(r, "type", models.ValidTaskType),
		Statuses:   queryValues(r, "status", models.ValidTaskStatus),
	}

	list, err := h.Tasks.List(ctx, filter, page.Skip(), page.Limit())
	if err != nil {
		h.Log.Error("task list failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	if list == nil {
		list = []models.Task{}
	}
	httpjson.Write(w, http.StatusOK, list)
}

// queryValues gathers every value for key from the query, accepting
// both ?key=a&key=b and ?key=a,b, and drops values valid rejects.
func queryValues(r *http.Request, key string, valid func(string) bool) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, v := range strings.Split(raw, ",") {
			v = strings.TrimSpace(v)
			if valid(v) {
				out = append(out, v)
			}
		}
	}
	return out
}

// HandleCreate handles POST /v1/tasks. The creator becomes the owner
// and their organization snapshot is stamped onto the task.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	owner, ok := h.actingUser(ctx, w, r)
	if !ok {
		return
	}

	created, err := h.Lifecycle.Create(ctx, req.toModel(), owner)
	if err != nil {
		h.Log.Error("task create failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// ServeGet handles GET /v1/tasks/{taskID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, ok := h.loadTask(ctx, w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, task)
}

// HandleReplace handles PUT /v1/tasks/{taskID}. Owner only; the owner,
// organization snapshot, and creation time are preserved.
func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadTask(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireOwner(w, r, task) {
		return
	}

	var req taskRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	updated, err := h.Tasks.Replace(ctx, task.ID, req.toModel())
	if err != nil {
		h.Log.Error("task replace failed", zap.String("task_id", task.ID.Hex()), zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

type taskPatchRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=256"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" validate:"omitempty,oneof=available in_progress hidden done deleted assigned"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high hot extra"`
	Type        *string    `json:"type" validate:"omitempty,oneof=auto animals remote donate other"`
	Date        *time.Time `json:"date"`
	Duration    *int       `json:"duration" validate:"omitempty,min=0"`
}

// HandleUpdate handles PATCH /v1/tasks/{taskID}. Owner only; absent
// fields are left untouched.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadTask(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireOwner(w, r, task) {
		return
	}

	var req taskPatchRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	set := bson.M{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Status != nil {
		set["status"] = *req.Status
	}
	if req.Priority != nil {
		set["priority"] = *req.Priority
	}
	if req.Type != nil {
		set["type"] = *req.Type
	}
	if req.Date != nil {
		set["date"] = *req.Date
	}
	if req.Duration != nil {
		set["duration"] = *req.Duration
	}
	if len(set) == 0 {
		httpjson.Write(w, http.StatusOK, task)
		return
	}

	updated, err := h.Tasks.Update(ctx, task.ID, set)
	if err != nil {
		h.Log.Error("task update failed", zap.String("task_id", task.ID.Hex()), zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /v1/tasks/{taskID}. Owner only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadTask(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireOwner(w, r, task) {
		return
	}

	if _, err := h.Tasks.Delete(ctx, task.ID); err != nil {
		h.Log.Error("task delete failed", zap.String("task_id", task.ID.Hex()), zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.NoContent(w)
}

// HandleTake handles POST /v1/tasks/{taskID}/take.
func (h *Handler) HandleTake(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.Lifecycle.Take)
}

// HandleRelease handles POST /v1/tasks/{taskID}/release.
func (h *Handler) HandleRelease(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.Lifecycle.Release)
}

// HandleFinish handles POST /v1/tasks/{taskID}/finish.
func (h *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.Lifecycle.Finish)
}

func (h *Handler) lifecycleAction(w http.ResponseWriter, r *http.Request,
	op func(context.Context, models.Task, models.User) (models.Task, error)) {

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	task, ok := h.loadTask(ctx, w, r)
	if !ok {
		return
	}
	user, ok := h.actingUser(ctx, w, r)
	if !ok {
		return
	}

	updated, err := op(ctx, task, user)
	switch {
	case err == lifecycle.ErrNotAvailable || err == lifecycle.ErrNotAssigned:
		apierr.Write(w, apierr.BadRequest(err.Error()))
		return
	case err != nil:
		h.Log.Error("task lifecycle action failed",
			zap.String("task_id", task.ID.Hex()),
			zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// loadTask resolves {taskID} and fetches the task, writing the error
// response itself when either step fails.
func (h *Handler) loadTask(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Task, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	if err != nil {
		apierr.Write(w, apierr.NotFound("Task does not exist"))
		return models.Task{}, false
	}
	task, err := h.Tasks.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		apierr.Write(w, apierr.NotFound("Task does not exist"))
		return models.Task{}, false
	}
	if err != nil {
		h.Log.Error("task fetch failed", zap.String("task_id", id.Hex()), zap.Error(err))
		apierr.Write(w, err)
		return models.Task{}, false
	}
	return task, true
}

// actingUser loads the full user document for the bearer identity.
func (h *Handler) actingUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	bearer, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, apierr.Unauthorized("unauthorized"))
		return models.User{}, false
	}
	id, err := primitive.ObjectIDFromHex(bearer.ID)
	if err != nil {
		apierr.Write(w, apierr.Unauthorized("unauthorized"))
		return models.User{}, false
	}
	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		apierr.Write(w, apierr.Unauthorized("unauthorized"))
		return models.User{}, false
	}
	return user, true
}

// requireOwner ensures the caller owns the task. Admins bypass.
func (h *Handler) requireOwner(w http.ResponseWriter, r *http.Request, task models.Task) bool {
	bearer, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, apierr.Unauthorized("unauthorized"))
		return false
	}
	if bearer.Role == models.RoleAdmin || task.OwnerID.Hex() == bearer.ID {
		return true
	}
	apierr.Write(w, apierr.Forbidden("forbidden"))
	return false
}
