// Package doorlog serves the door sensor endpoints: event ingestion
// with notification fan-out, and the event history.
package doorlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	doorlogstore "github.com/shelterhub/shelterhub/internal/app/store/doorlogs"
	"github.com/shelterhub/shelterhub/internal/app/notify"
	"github.com/shelterhub/shelterhub/internal/app/system/apierr"
	"github.com/shelterhub/shelterhub/internal/app/system/httpjson"
	"github.com/shelterhub/shelterhub/internal/app/system/paging"
	"github.com/shelterhub/shelterhub/internal/app/system/timeouts"
	"github.com/shelterhub/shelterhub/internal/app/system/validate"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler holds dependencies for the door log endpoints.
type Handler struct {
	Logs     *doorlogstore.Store
	Notifier *notify.Notifier
	Log      *zap.Logger
}

// NewHandler constructs a door log Handler.
func NewHandler(logs *doorlogstore.Store, notifier *notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{Logs: logs, Notifier: notifier, Log: logger}
}

type doorEventRequest struct {
	State string `json:"state" validate:"required,oneof=OPEN CLOSE open close"`
}

// HandleAppend handles POST /v1/doorLog. The event is stored first;
// notification fan-out happens after the write and never affects the
// response.
func (h *Handler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	var req doorEventRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	event, err := h.Logs.Append(ctx, req.State)
	if err != nil {
		h.Log.Error("door event append failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}

	// Fan out detached from the request so slow Telegram delivery does
	// not hold the sensor's connection open.
	go func(event models.DoorLog) {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
		defer cancel()
		h.Notifier.DoorStateChanged(ctx, event)
	}(event)

	httpjson.Write(w, http.StatusCreated, event)
}

// ServeList handles GET /v1/doorLog with an optional state filter.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page := paging.Parse(r)
	logs, err := h.Logs.List(ctx, query.Get(r, "state"), page.Skip(), page.Limit())
	if err != nil {
		h.Log.Error("door log list failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	if logs == nil {
		logs = []models.DoorLog{}
	}
	httpjson.Write(w, http.StatusOK, logs)
}
