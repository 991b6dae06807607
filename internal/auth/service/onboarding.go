package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/metrics"
	"github.com/docuchat/docuchat/internal/auth/store"
	"github.com/docuchat/docuchat/internal/mail"
	"github.com/docuchat/docuchat/pkg/cryptox"
	"github.com/docuchat/docuchat/pkg/idx"
	"github.com/docuchat/docuchat/pkg/slogx"
)

const (
	DefaultWorkspaceName = "My Workspace"
	defaultSlug          = "workspace"
	slugAttempts         = 3
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases name, collapses every run of characters outside
// [a-z0-9] into a single dash and trims dashes from both ends. An empty
// result becomes "workspace".
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return defaultSlug
	}
	return slug
}

type RegisterInput struct {
	Email       string
	Password    string
	TenantName  string
	InviteToken string
}

type AcceptInviteInput struct {
	Email       string
	Password    string
	InviteToken string
}

// Registration is what onboarding created. Tenant is only set when a new
// workspace was created.
type Registration struct {
	User       domain.User
	Membership domain.Membership
	Tenant     *domain.Tenant
}

// OnboardingService creates accounts. Every path writes the user, its
// membership and either a new tenant or the accepted invitation in one
// transaction.
type OnboardingService struct {
	Store             store.Store
	Verification      *OneTimeTokens
	Mailer            mail.Sender
	Metrics           *metrics.Metrics
	Secret            string // keyed digest secret for invite tokens
	PasswordMinLength int
	AppBaseURL        string
	Now               func() time.Time

	// SlugSuffix picks the numeric suffix for retried slugs. Defaults to a
	// random number in [0, 1000).
	SlugSuffix func() int
}

// Register creates a user. Without an invite token the user becomes the
// owner of a new tenant; with one the user joins the inviting tenant.
func (s *OnboardingService) Register(ctx context.Context, in RegisterInput) (Registration, error) {
	if token := strings.TrimSpace(in.InviteToken); token != "" {
		return s.AcceptInvite(ctx, AcceptInviteInput{Email: in.Email, Password: in.Password, InviteToken: token})
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Registration{}, err
	}
	if err := validatePassword(in.Password, s.PasswordMinLength); err != nil {
		return Registration{}, err
	}

	// Fail fast before paying for the hash; CreateUser enforces it again.
	_, err = s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return Registration{}, ErrEmailTaken
	case !errors.Is(err, store.ErrNotFound):
		return Registration{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return Registration{}, err
	}

	name := strings.TrimSpace(in.TenantName)
	if name == "" {
		name = DefaultWorkspaceName
	}

	now := clock(s.Now)
	var reg Registration

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := createUser(ctx, tx, email, hash, now)
		if err != nil {
			return err
		}

		tenant, err := s.createTenant(ctx, tx, name, now)
		if err != nil {
			return err
		}

		membership := domain.Membership{
			ID:        idx.New().String(),
			TenantID:  tenant.ID,
			UserID:    user.ID,
			Role:      domain.RoleOwner,
			CreatedAt: now,
		}
		if err := tx.Memberships().CreateMembership(ctx, membership); err != nil {
			return err
		}

		reg = Registration{User: user, Membership: membership, Tenant: &tenant}
		return nil
	})
	if err != nil {
		return Registration{}, err
	}

	slogx.FromContext(ctx).Info("registered new workspace",
		slog.String("user_id", reg.User.ID),
		slog.String("tenant_id", reg.Tenant.ID),
		slog.String("slug", reg.Tenant.Slug),
	)
	s.Metrics.Registration("tenant")
	s.sendVerification(ctx, reg.User)
	return reg, nil
}

// AcceptInvite creates a user that joins the tenant named by the invitation.
// The email must match the invitation.
func (s *OnboardingService) AcceptInvite(ctx context.Context, in AcceptInviteInput) (Registration, error) {
	token, err := requireToken("inviteToken", in.InviteToken)
	if err != nil {
		return Registration{}, err
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Registration{}, err
	}
	if err := validatePassword(in.Password, s.PasswordMinLength); err != nil {
		return Registration{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return Registration{}, err
	}

	return s.join(ctx, email, hash, token)
}

// join redeems the invitation before creating the user, so a spent or
// mismatched invitation is reported as ErrInvalidInvite even when the email
// has since been registered.
func (s *OnboardingService) join(ctx context.Context, email, hash, rawInvite string) (Registration, error) {
	now := clock(s.Now)
	inviteHash := cryptox.KeyedFingerprint(rawInvite, s.Secret)

	var reg Registration
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invitations().GetInvitationByHash(ctx, inviteHash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidInvite
			}
			return err
		}
		if !inv.Usable(now) || inv.Email != email {
			return ErrInvalidInvite
		}

		// Claiming the invitation first makes concurrent accepts queue on
		// the invitation row rather than on the users email index.
		ok, err := tx.Invitations().MarkInvitationAccepted(ctx, inv.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidInvite
		}

		user, err := createUser(ctx, tx, email, hash, now)
		if err != nil {
			return err
		}

		membership := domain.Membership{
			ID:        idx.New().String(),
			TenantID:  inv.TenantID,
			UserID:    user.ID,
			Role:      inv.Role,
			CreatedAt: now,
		}
		if err := tx.Memberships().CreateMembership(ctx, membership); err != nil {
			return err
		}

		reg = Registration{User: user, Membership: membership}
		return nil
	})
	if err != nil {
		return Registration{}, err
	}

	slogx.FromContext(ctx).Info("invitation accepted",
		slog.String("user_id", reg.User.ID),
		slog.String("tenant_id", reg.Membership.TenantID),
		slog.String("role", reg.Membership.Role.String()),
	)
	s.Metrics.Registration("invite")
	s.sendVerification(ctx, reg.User)
	return reg, nil
}

func createUser(ctx context.Context, tx store.Tx, email, hash string, now time.Time) (domain.User, error) {
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *OnboardingService) createTenant(ctx context.Context, tx store.Tx, name string, now time.Time) (domain.Tenant, error) {
	base := Slugify(name)
	slug := base

	for attempt := 0; attempt < slugAttempts; attempt++ {
		if attempt > 0 {
			slug = fmt.Sprintf("%s-%d", base, s.slugSuffix())
		}

		tenant := domain.Tenant{
			ID:        idx.New().String(),
			Name:      name,
			Slug:      slug,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := tx.Tenants().CreateTenant(ctx, tenant)
		if err == nil {
			return tenant, nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			return domain.Tenant{}, err
		}
	}

	slogx.FromContext(ctx).Error("tenant slug retries exhausted", slog.String("slug", base))
	return domain.Tenant{}, ErrTenantCreationFailed
}

func (s *OnboardingService) slugSuffix() int {
	if s.SlugSuffix != nil {
		return s.SlugSuffix()
	}
	return rand.IntN(1000)
}

// sendVerification runs after commit. A failure here leaves a registered but
// unverified user and is logged rather than returned.
func (s *OnboardingService) sendVerification(ctx context.Context, user domain.User) {
	if s.Verification == nil {
		return
	}

	token, err := s.Verification.Issue(ctx, user.ID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to issue email verification token",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return
	}

	mail.Dispatch(ctx, s.Mailer, s.Metrics, mail.Message{
		To:      user.Email,
		Subject: mail.SubjectVerifyEmail,
		Text:    "Verify your email by visiting: " + link(s.AppBaseURL, "/verify-email", token),
	})
}
