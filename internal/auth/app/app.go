package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
	httpapi "github.com/docuchat/docuchat/internal/auth/http"
	"github.com/docuchat/docuchat/internal/auth/metrics"
	"github.com/docuchat/docuchat/internal/auth/service"
	"github.com/docuchat/docuchat/internal/auth/store"
	"github.com/docuchat/docuchat/internal/auth/store/drivers/postgres"
	"github.com/docuchat/docuchat/internal/auth/store/drivers/sqlite"
	"github.com/docuchat/docuchat/internal/mail"
	"github.com/docuchat/docuchat/pkg/jwtx"
	"github.com/docuchat/docuchat/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	metrics  *metrics.Metrics
	mailer   mail.Sender
	queue    *mail.RedisQueue // nil unless REDIS_URL is set
	verifier jwtx.Verifier

	// Services
	authService         *service.AuthService
	onboardingService   *service.OnboardingService
	invitationService   *service.InvitationService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "docuchat-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}
	slog.SetDefault(app.logger)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initMailer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(registry)

	if err := app.initServices(); err != nil {
		app.closeDeps()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if err := app.housekeepingService.Start(); err != nil {
		app.closeDeps()
		return fmt.Errorf("start housekeeping: %w", err)
	}

	app.logger.Info("auth service starting",
		slog.Int("port", app.cfg.Port),
		slog.String("version", BuildVersion),
		slog.String("database", app.cfg.DatabaseDriver),
		slog.Bool("redis_mail_queue", app.queue != nil),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeDeps()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slog.Any("error", err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slog.Any("error", err))
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeDeps(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeDeps() error {
	var errs []error
	if app.queue != nil {
		if err := app.queue.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slog.Any("error", err))
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to reach database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.db = db
	app.logger.Info("database migrations applied successfully", slog.String("driver", app.cfg.DatabaseDriver))
	return nil
}

// initMailer queues mail on Redis when configured and otherwise only logs it.
func (app *Application) initMailer() error {
	if app.cfg.RedisURL == "" {
		app.mailer = mail.LogSender{Logger: app.logger}
		return nil
	}

	q, err := mail.NewRedisQueue(app.cfg.RedisURL, app.cfg.QueueName)
	if err != nil {
		return fmt.Errorf("failed to initialize mail queue: %w", err)
	}
	app.queue = q
	app.mailer = q
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	signer, err := jwtx.NewHS256Signer(app.cfg.AccessTokenSecret)
	if err != nil {
		return fmt.Errorf("access token signer: %w", err)
	}
	audience := []string{app.cfg.Audience}
	verifier, err := jwtx.NewHS256Verifier(app.cfg.AccessTokenSecret, app.cfg.Issuer, audience)
	if err != nil {
		return fmt.Errorf("access token verifier: %w", err)
	}
	app.verifier = verifier

	access := &service.AccessTokens{
		Signer:   signer,
		Issuer:   app.cfg.Issuer,
		Audience: audience,
		TTL:      app.cfg.AccessTokenTTL,
	}
	ledger := &service.RefreshLedger{
		Store:   app.db,
		Secret:  app.cfg.RefreshTokenSecret,
		TTL:     app.cfg.RefreshTokenTTL,
		Metrics: app.metrics,
	}
	verification := &service.OneTimeTokens{
		Store:   app.db,
		Purpose: domain.PurposeEmailVerification,
		Secret:  app.cfg.RefreshTokenSecret,
		TTL:     app.cfg.VerificationTTL,
		Metrics: app.metrics,
	}
	reset := &service.OneTimeTokens{
		Store:   app.db,
		Purpose: domain.PurposePasswordReset,
		Secret:  app.cfg.RefreshTokenSecret,
		TTL:     app.cfg.PasswordResetTTL,
		Metrics: app.metrics,
	}

	app.authService = &service.AuthService{
		Store:             app.db,
		Access:            access,
		Ledger:            ledger,
		Verification:      verification,
		Reset:             reset,
		Mailer:            app.mailer,
		Metrics:           app.metrics,
		PasswordMinLength: app.cfg.PasswordMinLength,
		AppBaseURL:        app.cfg.AppBaseURL,
	}
	app.onboardingService = &service.OnboardingService{
		Store:             app.db,
		Verification:      verification,
		Mailer:            app.mailer,
		Metrics:           app.metrics,
		Secret:            app.cfg.RefreshTokenSecret,
		PasswordMinLength: app.cfg.PasswordMinLength,
		AppBaseURL:        app.cfg.AppBaseURL,
	}
	app.invitationService = &service.InvitationService{
		Store:      app.db,
		Mailer:     app.mailer,
		Metrics:    app.metrics,
		Secret:     app.cfg.RefreshTokenSecret,
		TTL:        app.cfg.InviteTTL,
		AppBaseURL: app.cfg.AppBaseURL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingCron,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	cfg := httpapi.RouterConfig{
		Verifier: app.verifier,
		Cookies: httpapi.SessionCookies{
			AccessName:  app.cfg.AccessCookieName,
			RefreshName: app.cfg.RefreshCookieName,
			CSRFName:    app.cfg.CSRFCookieName,
			Domain:      app.cfg.CookieDomain,
			Secure:      app.cfg.SecureCookies,
		},
		RateLimits:   app.cfg.RateLimits,
		Metrics:      app.metrics,
		Store:        app.db,
		BuildVersion: BuildVersion,
		Logger:       app.logger,
	}
	if app.queue != nil {
		cfg.Redis = app.queue
	}

	router := httpapi.NewRouter(cfg)
	router.AuthService = app.authService
	router.OnboardingService = app.onboardingService
	router.InvitationService = app.invitationService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
