package http

import (
	"net/http"

	"github.com/docuchat/docuchat/internal/auth/service"
	"github.com/docuchat/docuchat/pkg/authsdk"
	"github.com/docuchat/docuchat/pkg/httpx"
)

type LoginHandler struct {
	AuthService *service.AuthService
	Cookies     SessionCookies
}

// ServeHTTP godoc
//
//	@Summary		Sign in
//	@Description	Verifies the password and sets the access, refresh and CSRF cookies. The session is bound to the user's earliest membership.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.StatusResponse	"ok"
//	@Failure		400		{object}	httpx.ErrorResponse		"invalid_request"
//	@Failure		401		{object}	httpx.ErrorResponse		"unauthorized - invalid credentials"
//	@Failure		403		{object}	httpx.ErrorResponse		"email_not_verified or no_membership"
//	@Failure		429		{object}	httpx.ErrorResponse		"rate_limit_exceeded"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sess, err := h.AuthService.Login(r.Context(), req.Email, req.Password, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.Set(w, sess)
	httpx.WriteStatus(w, http.StatusOK, "ok")
}

type RefreshHandler struct {
	AuthService *service.AuthService
	Cookies     SessionCookies
}

// ServeHTTP godoc
//
//	@Summary		Rotate session
//	@Description	Exchanges the refresh cookie for a new session. Presenting an already rotated refresh token revokes every session of the user.
//	@Tags			Session
//	@Produce		json
//	@Param			X-CSRF-Token	header		string					true	"Value of the CSRF cookie"
//	@Success		200				{object}	authsdk.StatusResponse	"ok"
//	@Failure		401				{object}	httpx.ErrorResponse		"unauthorized"
//	@Failure		403				{object}	httpx.ErrorResponse		"invalid_csrf or no_membership"
//	@Router			/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.Cookies.RefreshName)
	if err != nil || cookie.Value == "" {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	sess, err := h.AuthService.Refresh(r.Context(), cookie.Value, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.Set(w, sess)
	httpx.WriteStatus(w, http.StatusOK, "ok")
}

type LogoutHandler struct {
	AuthService *service.AuthService
	Cookies     SessionCookies
}

// ServeHTTP godoc
//
//	@Summary		Sign out
//	@Description	Revokes the refresh token, if any, and clears the session cookies.
//	@Tags			Session
//	@Produce		json
//	@Param			X-CSRF-Token	header		string					true	"Value of the CSRF cookie"
//	@Success		200				{object}	authsdk.StatusResponse	"ok"
//	@Failure		403				{object}	httpx.ErrorResponse		"invalid_csrf"
//	@Router			/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.Cookies.RefreshName); err == nil && cookie.Value != "" {
		if err := h.AuthService.Logout(r.Context(), cookie.Value, httpx.ClientIP(r)); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	h.Cookies.Clear(w)
	httpx.WriteStatus(w, http.StatusOK, "ok")
}
