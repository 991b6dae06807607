package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/store"
	"github.com/robfig/cron/v3"
)

const (
	DefaultHousekeepingSchedule = "@every 1h"

	// RefreshTokenRetention keeps expired refresh tokens around long enough
	// for reuse of a recently expired token to still be recognised.
	RefreshTokenRetention = 7 * 24 * time.Hour
)

// CleanupReport counts the rows removed by one housekeeping run.
type CleanupReport struct {
	RefreshTokens      int64
	EmailVerifications int64
	PasswordResets     int64
	Invitations        int64
}

// HousekeepingService periodically deletes expired refresh tokens, one-time
// tokens and unaccepted invitations so the tables do not grow unbounded.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Schedule string
	Now      func() time.Time

	cron *cron.Cron
	wg   sync.WaitGroup
}

// NewHousekeepingService creates the service. An empty schedule defaults to
// hourly.
func NewHousekeepingService(store store.Store, logger *slog.Logger, schedule string) *HousekeepingService {
	if schedule == "" {
		schedule = DefaultHousekeepingSchedule
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Schedule: schedule,
	}
}

// Start registers the cleanup job, runs it once immediately and starts the
// scheduler. It fails only on an invalid schedule.
func (s *HousekeepingService) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.Schedule, func() { s.Cleanup(context.Background()) }); err != nil {
		return err
	}
	s.cron = c

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Cleanup(context.Background())
	}()
	c.Start()

	s.Logger.Info("housekeeping service started", "schedule", s.Schedule)
	return nil
}

// Stop waits for a running cleanup to finish.
func (s *HousekeepingService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.Logger.Info("housekeeping service stopped")
}

// Cleanup performs one pass. Each deletion is independent: a failure in one
// does not stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) CleanupReport {
	now := clock(s.Now)
	s.Logger.Debug("starting housekeeping cleanup")

	var report CleanupReport
	run := func(name string, dst *int64, fn func() (int64, error)) {
		n, err := fn()
		if err != nil {
			s.Logger.Error("housekeeping step failed", "step", name, "error", err)
			return
		}
		*dst = n
	}

	run("refresh_tokens", &report.RefreshTokens, func() (int64, error) {
		return s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now.Add(-RefreshTokenRetention))
	})
	run("email_verification_tokens", &report.EmailVerifications, func() (int64, error) {
		return s.Store.OneTimeTokens(domain.PurposeEmailVerification).DeleteExpiredTokens(ctx, now)
	})
	run("password_reset_tokens", &report.PasswordResets, func() (int64, error) {
		return s.Store.OneTimeTokens(domain.PurposePasswordReset).DeleteExpiredTokens(ctx, now)
	})
	run("invitations", &report.Invitations, func() (int64, error) {
		return s.Store.Invitations().DeleteExpiredInvitations(ctx, now)
	})

	s.Logger.Info("housekeeping cleanup completed",
		"refresh_tokens", report.RefreshTokens,
		"email_verification_tokens", report.EmailVerifications,
		"password_reset_tokens", report.PasswordResets,
		"invitations", report.Invitations,
	)
	return report
}
