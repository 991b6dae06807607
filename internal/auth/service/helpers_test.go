package service_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/service"
	"github.com/docuchat/docuchat/internal/auth/store"
	"github.com/docuchat/docuchat/internal/auth/store/drivers/sqlite"
	"github.com/docuchat/docuchat/internal/mail"
	"github.com/docuchat/docuchat/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret-access-secret-0123"
	testRefreshSecret = "refresh-secret-refresh-secret-01"
	testBaseURL       = "https://app.docuchat.test"
	testPassword      = "CorrectHorse9Battery"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type captureSender struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (c *captureSender) Send(_ context.Context, msg mail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

// last returns the newest message sent to to.
func (c *captureSender) last(t *testing.T, to string) mail.Message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.msgs) - 1; i >= 0; i-- {
		if c.msgs[i].To == to {
			return c.msgs[i]
		}
	}
	t.Fatalf("no mail sent to %s", to)
	return mail.Message{}
}

func (c *captureSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

// tokenFrom extracts the raw token from a mailed link.
func tokenFrom(t *testing.T, msg mail.Message) string {
	t.Helper()
	_, token, ok := strings.Cut(msg.Text, "?token=")
	require.True(t, ok, "mail has no token link: %q", msg.Text)
	return token
}

type fixture struct {
	store      store.Store
	clock      *fakeClock
	mailer     *captureSender
	ledger     *service.RefreshLedger
	auth       *service.AuthService
	onboarding *service.OnboardingService
	invites    *service.InvitationService
	verifier   *jwtx.HS256Verifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	clk := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	mailer := &captureSender{}

	signer, err := jwtx.NewHS256Signer(testAccessSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewHS256Verifier(testAccessSecret, "docuchat", []string{"docuchat-api"})
	require.NoError(t, err)

	access := &service.AccessTokens{
		Signer:   signer,
		Issuer:   "docuchat",
		Audience: []string{"docuchat-api"},
		TTL:      15 * time.Minute,
		Now:      clk.Now,
	}
	ledger := &service.RefreshLedger{Store: s, Secret: testRefreshSecret, TTL: 30 * 24 * time.Hour, Now: clk.Now}
	verification := &service.OneTimeTokens{
		Store: s, Purpose: domain.PurposeEmailVerification, Secret: testRefreshSecret,
		TTL: service.DefaultEmailVerificationTTL, Now: clk.Now,
	}
	reset := &service.OneTimeTokens{
		Store: s, Purpose: domain.PurposePasswordReset, Secret: testRefreshSecret,
		TTL: service.DefaultPasswordResetTTL, Now: clk.Now,
	}

	return &fixture{
		store:  s,
		clock:  clk,
		mailer: mailer,
		ledger: ledger,
		auth: &service.AuthService{
			Store: s, Access: access, Ledger: ledger, Verification: verification, Reset: reset,
			Mailer: mailer, PasswordMinLength: 12, AppBaseURL: testBaseURL, Now: clk.Now,
		},
		onboarding: &service.OnboardingService{
			Store: s, Verification: verification, Mailer: mailer, Secret: testRefreshSecret,
			PasswordMinLength: 12, AppBaseURL: testBaseURL, Now: clk.Now,
		},
		invites: &service.InvitationService{
			Store: s, Mailer: mailer, Secret: testRefreshSecret, TTL: service.DefaultInviteTTL,
			AppBaseURL: testBaseURL, Now: clk.Now,
		},
		verifier: verifier.WithClock(clk.Now),
	}
}

// registerVerified creates a workspace owner with a verified email.
func (f *fixture) registerVerified(t *testing.T, email, workspace string) service.Registration {
	t.Helper()
	ctx := context.Background()

	reg, err := f.onboarding.Register(ctx, service.RegisterInput{Email: email, Password: testPassword, TenantName: workspace})
	require.NoError(t, err)
	require.NoError(t, f.auth.VerifyEmail(ctx, tokenFrom(t, f.mailer.last(t, email))))
	return reg
}

func (f *fixture) login(t *testing.T, email string) service.Session {
	t.Helper()
	s, err := f.auth.Login(context.Background(), email, testPassword, domain.RequestMeta{IP: "203.0.113.7", UserAgent: "test"})
	require.NoError(t, err)
	return s
}
