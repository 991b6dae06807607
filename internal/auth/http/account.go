package http

import (
	"net/http"

	"github.com/docuchat/docuchat/internal/auth/service"
	"github.com/docuchat/docuchat/pkg/authsdk"
	"github.com/docuchat/docuchat/pkg/httpx"
)

type VerifyEmailHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Verify email
//	@Description	Redeems the token from the verification mail. Each token works once.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyEmailRequest	true	"Verification token"
//	@Success		200		{object}	authsdk.StatusResponse		"verified"
//	@Failure		400		{object}	httpx.ErrorResponse			"invalid_request or invalid_token"
//	@Router			/auth/verify-email [post].
func (h *VerifyEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyEmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.AuthService.VerifyEmail(r.Context(), req.Token); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteStatus(w, http.StatusOK, "verified")
}

type ForgotPasswordHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Request password reset
//	@Description	Mails a reset link when the address is registered. The response is the same either way.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ForgotPasswordRequest	true	"Email"
//	@Success		200		{object}	authsdk.StatusResponse			"ok"
//	@Failure		400		{object}	httpx.ErrorResponse				"invalid_request"
//	@Router			/auth/forgot-password [post].
func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ForgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.AuthService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteStatus(w, http.StatusOK, "ok")
}

type ResetPasswordHandler struct {
	AuthService *service.AuthService
	Cookies     SessionCookies
}

// ServeHTTP godoc
//
//	@Summary		Reset password
//	@Description	Sets a new password from a reset token, revokes every session of the user and clears the caller's cookies.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResetPasswordRequest	true	"Token and new password"
//	@Success		200		{object}	authsdk.StatusResponse			"ok"
//	@Failure		400		{object}	httpx.ErrorResponse				"invalid_request or invalid_token"
//	@Router			/auth/reset-password [post].
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), req.Token, req.Password, httpx.ClientIP(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.Clear(w)
	httpx.WriteStatus(w, http.StatusOK, "ok")
}

type MeHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Current user
//	@Description	Returns the signed-in user and the tenant and role the session is bound to.
//	@Tags			Account
//	@Produce		json
//	@Security		CookieAuth
//	@Success		200	{object}	authsdk.MeResponse
//	@Failure		401	{object}	httpx.ErrorResponse	"unauthorized"
//	@Router			/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	p, err := h.AuthService.Me(r.Context(), identityFrom(claims))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{User: authsdk.UserSummary{
		ID:              p.UserID,
		Email:           p.Email,
		EmailVerifiedAt: p.EmailVerifiedAt,
		TenantID:        p.TenantID,
		Role:            p.Role.String(),
	}})
}
