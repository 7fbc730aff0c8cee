// Package invitations serves organization membership invitations.
package invitations

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	invitationstore "github.com/shelterhub/shelterhub/internal/app/store/invitations"
	organizationstore "github.com/shelterhub/shelterhub/internal/app/store/organizations"
	"github.com/shelterhub/shelterhub/internal/app/system/apierr"
	"github.com/shelterhub/shelterhub/internal/app/system/auth"
	"github.com/shelterhub/shelterhub/internal/app/system/httpjson"
	"github.com/shelterhub/shelterhub/internal/app/system/mailer"
	"github.com/shelterhub/shelterhub/internal/app/system/timeouts"
	"github.com/shelterhub/shelterhub/internal/app/system/validate"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for the invitation endpoints.
type Handler struct {
	Invitations *invitationstore.Store
	Orgs        *organizationstore.Store
	Mail        *mailer.Mailer
	BaseURL     string
	ExpiryDays  int
	Log         *zap.Logger
}

// NewHandler constructs an invitation Handler.
func NewHandler(invitations *invitationstore.Store, orgs *organizationstore.Store, mail *mailer.Mailer, baseURL string, expiryDays int, logger *zap.Logger) *Handler {
	return &Handler{
		Invitations: invitations,
		Orgs:        orgs,
		Mail:        mail,
		BaseURL:     baseURL,
		ExpiryDays:  expiryDays,
		Log:         logger,
	}
}

type inviteRequest struct {
	Email          string `json:"email" validate:"required,email"`
	OrganizationID string `json:"organizationId" validate:"required"`
}

// HandleCreate handles POST /v1/invitations. Organization accounts may
// only invite into their own organization; admins may invite anywhere.
// The invite email is sent out-of-band: a delivery failure is logged
// and the invitation still stands.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	orgID, err := primitive.ObjectIDFromHex(req.OrganizationID)
	if err != nil {
		apierr.Write(w, apierr.Validation([]apierr.FieldError{{
			Field:    "organizationId",
			Location: "body",
			Messages: []string{`"organizationId" must be a valid id`},
		}}))
		return
	}

	bearer, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, apierr.Unauthorized("unauthorized"))
		return
	}
	if bearer.Role != models.RoleAdmin && bearer.OrganizationID != orgID.Hex() {
		apierr.Write(w, apierr.Forbidden("you may only invite into your own organization"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, err := h.Orgs.GetByID(ctx, orgID)
	if err == mongo.ErrNoDocuments {
		apierr.Write(w, apierr.NotFound("Organization does not exist"))
		return
	}
	if err != nil {
		h.Log.Error("invitation organization fetch failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}

	inviterID, err := primitive.ObjectIDFromHex(bearer.ID)
	if err != nil {
		apierr.Write(w, apierr.Unauthorized("unauthorized"))
		return
	}

	inv, err := h.Invitations.Generate(ctx, inviterID, orgID, req.Email)
	if err == invitationstore.ErrDuplicateEmail {
		apierr.Write(w, apierr.Conflict("Validation Error", apierr.FieldError{
			Field:    "email",
			Location: "body",
			Messages: []string{"an invitation for this email already exists"},
		}))
		return
	}
	if err != nil {
		h.Log.Error("invitation generate failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}

	h.sendInviteEmail(inv, org)
	httpjson.Write(w, http.StatusCreated, inv)
}

func (h *Handler) sendInviteEmail(inv models.Invitation, org models.Organization) {
	if h.Mail == nil || !h.Mail.Enabled() {
		return
	}
	accept := fmt.Sprintf("%s/register?invitationToken=%s&email=%s",
		h.BaseURL, inv.Token, url.QueryEscape(inv.Email))
	msg, err := mailer.BuildInvitationEmail(inv.Email, mailer.InvitationEmailData{
		OrganizationTitle: org.Title,
		AcceptURL:         accept,
		ExpiresInDays:     h.ExpiryDays,
	})
	if err != nil {
		h.Log.Error("invitation email render failed", zap.Error(err))
		return
	}
	if err := h.Mail.Send(msg); err != nil {
		h.Log.Warn("invitation email delivery failed",
			zap.String("email", inv.Email),
			zap.Error(err))
	}
}
