// Package authn serves registration, login, token refresh, and the VK
// OAuth login.
package authn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	invitationstore "github.com/shelterhub/shelterhub/internal/app/store/invitations"
	organizationstore "github.com/shelterhub/shelterhub/internal/app/store/organizations"
	refreshtokenstore "github.com/shelterhub/shelterhub/internal/app/store/refreshtokens"
	userstore "github.com/shelterhub/shelterhub/internal/app/store/users"
	"github.com/shelterhub/shelterhub/internal/app/system/apierr"
	"github.com/shelterhub/shelterhub/internal/app/system/auth"
	"github.com/shelterhub/shelterhub/internal/app/system/httpjson"
	"github.com/shelterhub/shelterhub/internal/app/system/timeouts"
	"github.com/shelterhub/shelterhub/internal/app/system/validate"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/vk"
)

const serviceVK = "vk"

// VKProfile is the subset of the VK user profile the login flow needs.
type VKProfile struct {
	ID        string
	FirstName string
	LastName  string
	Picture   string
}

// VKProfileFetcher retrieves the profile behind a VK access token. The
// indirection keeps tests off the network.
type VKProfileFetcher func(ctx context.Context, accessToken string) (VKProfile, error)

// Handler holds dependencies for the auth endpoints.
type Handler struct {
	Users       *userstore.Store
	Orgs        *organizationstore.Store
	Invitations *invitationstore.Store
	Refresh     *refreshtokenstore.Store
	Tokens      *auth.TokenManager
	Log         *zap.Logger

	// VK OAuth configuration. Empty client id disables /vk.
	VKClientID     string
	VKClientSecret string
	VKRedirectURL  string
	FetchVKProfile VKProfileFetcher
}

// NewHandler constructs an auth Handler with the production VK profile
// fetcher.
func NewHandler(
	users *userstore.Store,
	orgs *organizationstore.Store,
	invitations *invitationstore.Store,
	refresh *refreshtokenstore.Store,
	tokens *auth.TokenManager,
	vkClientID, vkClientSecret, vkRedirectURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:          users,
		Orgs:           orgs,
		Invitations:    invitations,
		Refresh:        refresh,
		Tokens:         tokens,
		Log:            logger,
		VKClientID:     vkClientID,
		VKClientSecret: vkClientSecret,
		VKRedirectURL:  vkRedirectURL,
		FetchVKProfile: fetchVKProfile,
	}
}

// tokenPayload is the token object returned by register, login, vk,
// and refresh-token.
type tokenPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds until the access token expires
}

type authResponse struct {
	Token tokenPayload `json:"token"`
	User  models.User  `json:"user"`
}

// issueTokens signs an access token and rotates the refresh token for
// the user.
func (h *Handler) issueTokens(ctx context.Context, user models.User) (tokenPayload, error) {
	access, _, err := h.Tokens.Issue(user.ID.Hex())
	if err != nil {
		return tokenPayload{}, err
	}
	refresh, err := h.Refresh.Generate(ctx, user.ID, user.Email)
	if err != nil {
		return tokenPayload{}, err
	}
	return tokenPayload{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(h.Tokens.Expiry().Seconds()),
	}, nil
}

type registerRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=128"`
	FirstName       string `json:"firstName" validate:"max=128"`
	LastName        string `json:"lastName" validate:"max=128"`
	InvitationToken string `json:"invitationToken"`
}

// HandleRegister handles POST /v1/auth/register. An invitation token,
// when present, is consumed and attaches the inviting organization to
// the new account.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	user := models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if req.InvitationToken != "" {
		inv, err := h.Invitations.Redeem(ctx, req.InvitationToken, req.Email)
		switch {
		case err == invitationstore.ErrNotFound:
			apierr.Write(w, apierr.BadRequest("Invitation is not valid"))
			return
		case err == invitationstore.ErrExpired:
			apierr.Write(w, apierr.BadRequest("Invitation has expired"))
			return
		case err != nil:
			h.Log.Error("invitation redeem failed", zap.Error(err))
			apierr.Write(w, err)
			return
		}
		org, err := h.Orgs.GetByID(ctx, inv.OrganizationID)
		if err == nil {
			user.Organization = org.Snapshot()
		} else if err != mongo.ErrNoDocuments {
			h.Log.Error("invitation organization fetch failed", zap.Error(err))
			apierr.Write(w, err)
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	user.Password = hash

	created, err := h.Users.Create(ctx, user)
	if err == userstore.ErrDuplicateEmail {
		apierr.Write(w, apierr.DuplicateEmail())
		return
	}
	if err != nil {
		h.Log.Error("user registration failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}

	tokens, err := h.issueTokens(ctx, created)
	if err != nil {
		h.Log.Error("token issue failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, authResponse{Token: tokens, User: created})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles POST /v1/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err == mongo.ErrNoDocuments || (err == nil && !auth.PasswordMatches(user.Password, req.Password)) {
		apierr.Write(w, apierr.Unauthorized("Incorrect email or password"))
		return
	}
	if err != nil {
		h.Log.Error("login lookup failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}

	tokens, err := h.issueTokens(ctx, user)
	if err != nil {
		h.Log.Error("token issue failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, authResponse{Token: tokens, User: user})
}

type refreshRequest struct {
	Email        string `json:"email" validate:"required,email"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// HandleRefresh handles POST /v1/auth/refresh-token. The presented
// refresh token is consumed and a fresh pair is issued.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rt, err := h.Refresh.Consume(ctx, req.Email, req.RefreshToken)
	if err == refreshtokenstore.ErrInvalid {
		apierr.Write(w, apierr.Unauthorized("Invalid refresh token"))
		return
	}
	if err != nil {
		h.Log.Error("refresh token lookup failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}

	user, err := h.Users.GetByID(ctx, rt.UserID)
	if err != nil {
		apierr.Write(w, apierr.Unauthorized("Invalid refresh token"))
		return
	}

	tokens, err := h.issueTokens(ctx, user)
	if err != nil {
		h.Log.Error("token issue failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]tokenPayload{"token": tokens})
}

type vkRequest struct {
	AccessToken string `json:"accessToken"`
	Code        string `json:"code"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// HandleVK handles POST /v1/auth/vk. The client supplies either a VK
// access token or an authorization code to exchange. The provider
// profile is attached to the matching account, or a new account is
// created with a random unusable password.
func (h *Handler) HandleVK(w http.ResponseWriter, r *http.Request) {
	if h.VKClientID == "" {
		apierr.Write(w, apierr.BadRequest("VK login is not configured"))
		return
	}

	var req vkRequest
	if err := validate.Body(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}
	if req.AccessToken == "" && req.Code == "" {
		apierr.Write(w, apierr.Validation([]apierr.FieldError{{
			Field:    "accessToken",
			Location: "body",
			Messages: []string{`either "accessToken" or "code" is required`},
		}}))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	accessToken := req.AccessToken
	email := req.Email
	if req.Code != "" {
		tok, err := h.oauthConfig().Exchange(ctx, req.Code)
		if err != nil {
			apierr.Write(w, apierr.Unauthorized("VK authorization failed"))
			return
		}
		accessToken = tok.AccessToken
		// VK reports the account email as an extra token field.
		if e, ok := tok.Extra("email").(string); ok && e != "" {
			email = e
		}
	}

	profile, err := h.FetchVKProfile(ctx, accessToken)
	if err != nil {
		h.Log.Warn("vk profile fetch failed", zap.Error(err))
		apierr.Write(w, apierr.Unauthorized("VK authorization failed"))
		return
	}

	user, err := h.Users.GetByServiceOrEmail(ctx, serviceVK, profile.ID, email)
	switch {
	case err == mongo.ErrNoDocuments:
		if email == "" {
			apierr.Write(w, apierr.Validation([]apierr.FieldError{{
				Field:    "email",
				Location: "body",
				Messages: []string{`"email" is required for first VK login`},
			}}))
			return
		}
		// The password is random and never disclosed; the account is
		// only reachable through the provider until a reset.
		hash, herr := auth.HashPassword(uuid.NewString())
		if herr != nil {
			apierr.Write(w, herr)
			return
		}
		user, err = h.Users.Create(ctx, models.User{
			Email:     email,
			Password:  hash,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Picture:   profile.Picture,
			Services:  models.Services{VK: profile.ID},
		})
		if err == userstore.ErrDuplicateEmail {
			apierr.Write(w, apierr.DuplicateEmail())
			return
		}
		if err != nil {
			h.Log.Error("vk account creation failed", zap.Error(err))
			apierr.Write(w, err)
			return
		}
	case err != nil:
		h.Log.Error("vk account lookup failed", zap.Error(err))
		apierr.Write(w, err)
		return
	default:
		if user.Services.VK == "" {
			if err := h.Users.AttachService(ctx, user.ID, serviceVK, profile.ID, profile.FirstName, profile.LastName); err != nil {
				h.Log.Error("vk service attach failed", zap.Error(err))
				apierr.Write(w, err)
				return
			}
			user.Services.VK = profile.ID
		}
	}

	tokens, err := h.issueTokens(ctx, user)
	if err != nil {
		h.Log.Error("token issue failed", zap.Error(err))
		apierr.Write(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, authResponse{Token: tokens, User: user})
}

func (h *Handler) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.VKClientID,
		ClientSecret: h.VKClientSecret,
		RedirectURL:  h.VKRedirectURL,
		Scopes:       []string{"email"},
		Endpoint:     vk.Endpoint,
	}
}

// fetchVKProfile calls the VK users.get method for the token owner.
func fetchVKProfile(ctx context.Context, accessToken string) (VKProfile, error) {
	q := url.Values{
		"v":            {"5.131"},
		"fields":       {"photo_200"},
		"access_token": {accessToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.vk.com/method/users.get?"+q.Encode(), nil)
	if err != nil {
		return VKProfile{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return VKProfile{}, err
	}
	defer resp.Body.Close()

	var body struct {
		Response []struct {
			ID        int64  `json:"id"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Photo200  string `json:"photo_200"`
		} `json:"response"`
		Error *struct {
			Code    int    `json:"error_code"`
			Message string `json:"error_msg"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return VKProfile{}, err
	}
	if body.Error != nil {
		return VKProfile{}, fmt.Errorf("vk api error %d: %s", body.Error.Code, body.Error.Message)
	}
	if len(body.Response) == 0 {
		return VKProfile{}, fmt.Errorf("vk api returned no profile")
	}
	p := body.Response[0]
	return VKProfile{
		ID:        strconv.FormatInt(p.ID, 10),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Picture:   p.Photo200,
	}, nil
}
