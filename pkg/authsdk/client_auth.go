package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Register creates an account, either with a new workspace or, when
// InviteToken is set, inside the inviting tenant.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) error {
	return c.call(ctx, http.MethodPost, "/auth/register", req, nil, http.StatusCreated)
}

// VerifyEmail redeems the token from the verification mail.
func (c *SDKClient) VerifyEmail(ctx context.Context, token string) error {
	return c.call(ctx, http.MethodPost, "/auth/verify-email", VerifyEmailRequest{Token: token}, nil, http.StatusOK)
}

// Login stores the session cookies in the jar.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) error {
	return c.call(ctx, http.MethodPost, "/auth/login", req, nil, http.StatusOK)
}

// Refresh rotates the session cookies.
func (c *SDKClient) Refresh(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/auth/refresh", nil, nil, http.StatusOK)
}

// Logout revokes the refresh token and clears the cookies.
func (c *SDKClient) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/auth/logout", nil, nil, http.StatusOK)
}

// ForgotPassword requests a reset mail. It succeeds whether or not the
// address is registered.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) error {
	return c.call(ctx, http.MethodPost, "/auth/forgot-password", ForgotPasswordRequest{Email: email}, nil, http.StatusOK)
}

// ResetPassword sets a new password and ends every session of the user.
func (c *SDKClient) ResetPassword(ctx context.Context, token, password string) error {
	req := ResetPasswordRequest{Token: token, Password: password}
	return c.call(ctx, http.MethodPost, "/auth/reset-password", req, nil, http.StatusOK)
}

// Me returns the caller's profile.
func (c *SDKClient) Me(ctx context.Context) (*UserSummary, error) {
	var me MeResponse
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, &me, http.StatusOK); err != nil {
		return nil, err
	}
	return &me.User, nil
}

// CreateInvitation invites email into tenantID. The caller must be an owner
// or admin of that tenant.
func (c *SDKClient) CreateInvitation(ctx context.Context, tenantID string, req InvitationRequest) error {
	path := "/auth/tenants/" + url.PathEscape(tenantID) + "/invitations"
	return c.call(ctx, http.MethodPost, path, req, nil, http.StatusCreated)
}

// AcceptInvite creates an account from an invitation.
func (c *SDKClient) AcceptInvite(ctx context.Context, req AcceptInviteRequest) error {
	return c.call(ctx, http.MethodPost, "/auth/accept-invite", req, nil, http.StatusCreated)
}
