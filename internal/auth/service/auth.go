package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/metrics"
	"github.com/docuchat/docuchat/internal/auth/store"
	"github.com/docuchat/docuchat/internal/mail"
	"github.com/docuchat/docuchat/pkg/cryptox"
	"github.com/docuchat/docuchat/pkg/slogx"
)

// Session is everything the cookie manager needs to set after a login or a
// refresh. The raw tokens exist only here.
type Session struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	CSRFToken        string
	Identity         domain.Identity
}

// Profile is the caller as seen by GET /auth/me.
type Profile struct {
	UserID          string
	Email           string
	EmailVerifiedAt *time.Time
	TenantID        string
	Role            domain.Role
}

// dummyPasswordHash is checked against when no user matches, so unknown
// addresses cost the same as wrong passwords.
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, err := cryptox.HashPassword("docuchat-unknown-account")
	if err != nil {
		return ""
	}
	return hash
})

type AuthService struct {
	Store             store.Store
	Access            *AccessTokens
	Ledger            *RefreshLedger
	Verification      *OneTimeTokens
	Reset             *OneTimeTokens
	Mailer            mail.Sender
	Metrics           *metrics.Metrics
	PasswordMinLength int
	AppBaseURL        string
	Now               func() time.Time
}

// Login authenticates a password and binds the session to the user's
// earliest membership.
func (s *AuthService) Login(ctx context.Context, rawEmail, password string, meta domain.RequestMeta) (Session, error) {
	log := slogx.FromContext(ctx)

	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return Session{}, err
	}
	if password == "" {
		return Session{}, invalid("password", "Password is required.")
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Spend the same argon2 work as a real mismatch.
			cryptox.CheckPassword(dummyPasswordHash(), password)
			s.Metrics.Login("invalid_credentials")
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	// Verification state is only reported once the password matched.
	if !cryptox.CheckPassword(user.PasswordHash, password) {
		log.Info("login failed", slog.String("user_id", user.ID), slog.String("ip", meta.IP))
		s.Metrics.Login("invalid_credentials")
		return Session{}, ErrInvalidCredentials
	}

	if !user.IsVerified() {
		s.Metrics.Login("email_not_verified")
		return Session{}, ErrEmailNotVerified
	}

	m, err := s.Store.Memberships().GetEarliestMembership(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.Login("no_membership")
			return Session{}, ErrNoMembership
		}
		return Session{}, err
	}

	identity := domain.Identity{UserID: user.ID, TenantID: m.TenantID, Role: m.Role}
	refresh, err := s.Ledger.Issue(ctx, user.ID, meta)
	if err != nil {
		return Session{}, err
	}

	session, err := s.newSession(identity, refresh)
	if err != nil {
		return Session{}, err
	}

	log.Info("login succeeded",
		slog.String("user_id", user.ID),
		slog.String("tenant_id", m.TenantID),
	)
	s.Metrics.Login("success")
	return session, nil
}

// Refresh rotates raw and re-reads the membership so role changes reach the
// next access token.
func (s *AuthService) Refresh(ctx context.Context, raw string, meta domain.RequestMeta) (Session, error) {
	next, err := s.Ledger.Rotate(ctx, raw, meta)
	if err != nil {
		return Session{}, err
	}

	m, err := s.Store.Memberships().GetEarliestMembership(ctx, next.UserID)
	if err != nil {
		// The successor must not outlive a failed refresh.
		if rerr := s.Ledger.RevokeOne(ctx, next.Token, meta.IP); rerr != nil {
			slogx.FromContext(ctx).Error("failed to revoke orphaned refresh token", slog.Any("error", rerr))
		}
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrNoMembership
		}
		return Session{}, err
	}

	return s.newSession(domain.Identity{UserID: next.UserID, TenantID: m.TenantID, Role: m.Role}, next)
}

func (s *AuthService) newSession(id domain.Identity, refresh IssuedRefreshToken) (Session, error) {
	access, accessExp, err := s.Access.Sign(id)
	if err != nil {
		return Session{}, err
	}

	csrf, err := cryptox.GenerateToken(cryptox.TokenSizeCSRF)
	if err != nil {
		return Session{}, err
	}

	return Session{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh.Token,
		RefreshExpiresAt: refresh.ExpiresAt,
		CSRFToken:        csrf,
		Identity:         id,
	}, nil
}

// Logout revokes the presented refresh token. A missing or unknown token is
// not an error; the cookies are cleared either way.
func (s *AuthService) Logout(ctx context.Context, raw, ip string) error {
	return s.Ledger.RevokeOne(ctx, raw, ip)
}

// VerifyEmail redeems an email verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, raw string) error {
	token, err := requireToken("token", raw)
	if err != nil {
		return err
	}

	now := clock(s.Now)
	userID, err := s.Verification.Consume(ctx, token, func(tx store.Tx, userID string) error {
		_, err := tx.Users().MarkEmailVerified(ctx, userID, now)
		return err
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("email verified", slog.String("user_id", userID))
	return nil
}

// ForgotPassword mails a reset link when the address belongs to a user. The
// result is the same whether or not it does.
func (s *AuthService) ForgotPassword(ctx context.Context, rawEmail string) error {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := s.Reset.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	mail.Dispatch(ctx, s.Mailer, s.Metrics, mail.Message{
		To:      user.Email,
		Subject: mail.SubjectResetPassword,
		Text:    "Reset your password by visiting: " + link(s.AppBaseURL, "/reset-password", token),
	})
	return nil
}

// ResetPassword redeems a reset token, replaces the password hash and ends
// every session of the user, all in one transaction.
func (s *AuthService) ResetPassword(ctx context.Context, raw, password, ip string) error {
	token, err := requireToken("token", raw)
	if err != nil {
		return err
	}
	if err := validatePassword(password, s.PasswordMinLength); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	now := clock(s.Now)
	var revoked int64
	userID, err := s.Reset.Consume(ctx, token, func(tx store.Tx, userID string) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash, now); err != nil {
			return err
		}
		n, err := tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID, now, ip)
		revoked = n
		return err
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password reset",
		slog.String("user_id", userID),
		slog.Int64("sessions_revoked", revoked),
	)
	return nil
}

// Me loads the caller's profile. A token for a deleted user is unauthorized.
func (s *AuthService) Me(ctx context.Context, id domain.Identity) (Profile, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, ErrUnauthorized
		}
		return Profile{}, err
	}

	return Profile{
		UserID:          user.ID,
		Email:           user.Email,
		EmailVerifiedAt: user.EmailVerifiedAt,
		TenantID:        id.TenantID,
		Role:            id.Role,
	}, nil
}
