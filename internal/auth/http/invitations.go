package http

import (
	"log/slog"
	"net/http"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/service"
	"github.com/docuchat/docuchat/pkg/authsdk"
	"github.com/docuchat/docuchat/pkg/httpx"
	"github.com/docuchat/docuchat/pkg/slogx"
)

type InvitationHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Invite a user
//	@Description	Mails an invitation into the tenant. The caller must be an owner or admin of that tenant and the session must be bound to it.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Security		CookieAuth
//	@Param			tenantId		path		string						true	"Tenant ID"
//	@Param			X-CSRF-Token	header		string						true	"Value of the CSRF cookie"
//	@Param			request			body		authsdk.InvitationRequest	true	"Invitee"
//	@Success		201				{object}	authsdk.StatusResponse		"sent"
//	@Failure		400				{object}	httpx.ErrorResponse			"invalid_request"
//	@Failure		401				{object}	httpx.ErrorResponse			"unauthorized"
//	@Failure		403				{object}	httpx.ErrorResponse			"forbidden or invalid_csrf"
//	@Router			/auth/tenants/{tenantId}/invitations [post].
func (h *InvitationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req authsdk.InvitationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tenantID := r.PathValue("tenantId")
	inv, err := h.InvitationService.Create(r.Context(), identityFrom(claims), tenantID, req.Email, domain.Role(req.Role))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("invitation sent",
		slog.String("invitation_id", inv.ID),
		slog.String("tenant_id", tenantID),
	)
	httpx.WriteStatus(w, http.StatusCreated, "sent")
}
