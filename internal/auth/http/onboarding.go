package http

import (
	"log/slog"
	"net/http"

	"github.com/docuchat/docuchat/internal/auth/service"
	"github.com/docuchat/docuchat/pkg/authsdk"
	"github.com/docuchat/docuchat/pkg/httpx"
	"github.com/docuchat/docuchat/pkg/slogx"
)

type RegisterHandler struct {
	OnboardingService *service.OnboardingService
}

// ServeHTTP godoc
//
//	@Summary		Register
//	@Description	Creates an account. Without an invite token the user becomes the owner of a new workspace; with one the user joins the inviting tenant.
//	@Description	A verification mail is sent either way. Sign in is refused until the email is verified.
//	@Tags			Onboarding
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"Registration"
//	@Success		201		{object}	authsdk.StatusResponse	"registered"
//	@Failure		400		{object}	httpx.ErrorResponse		"invalid_request or invalid_invite"
//	@Failure		409		{object}	httpx.ErrorResponse		"conflict - email already registered"
//	@Failure		429		{object}	httpx.ErrorResponse		"rate_limit_exceeded"
//	@Router			/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reg, err := h.OnboardingService.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		TenantName:  req.TenantName,
		InviteToken: req.InviteToken,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("user registered",
		slog.String("user_id", reg.User.ID),
		slog.String("tenant_id", reg.Membership.TenantID),
	)
	httpx.WriteStatus(w, http.StatusCreated, "registered")
}

type AcceptInviteHandler struct {
	OnboardingService *service.OnboardingService
}

// ServeHTTP godoc
//
//	@Summary		Accept invitation
//	@Description	Creates an account inside the inviting tenant with the invited role. The email must match the invitation.
//	@Tags			Onboarding
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.AcceptInviteRequest	true	"Invitation acceptance"
//	@Success		201		{object}	authsdk.StatusResponse		"registered"
//	@Failure		400		{object}	httpx.ErrorResponse			"invalid_request or invalid_invite"
//	@Failure		409		{object}	httpx.ErrorResponse			"conflict - email already registered"
//	@Router			/auth/accept-invite [post].
func (h *AcceptInviteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.AcceptInviteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.OnboardingService.AcceptInvite(r.Context(), service.AcceptInviteInput{
		Email:       req.Email,
		Password:    req.Password,
		InviteToken: req.InviteToken,
	}); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteStatus(w, http.StatusCreated, "registered")
}
