package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/docuchat/docuchat/internal/auth/metrics"
	"github.com/docuchat/docuchat/internal/auth/service"
	"github.com/docuchat/docuchat/internal/auth/store"
	"github.com/docuchat/docuchat/pkg/httpx"
	"github.com/docuchat/docuchat/pkg/jwtx"
	"github.com/docuchat/docuchat/pkg/slogx"

	_ "github.com/docuchat/docuchat/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RouterConfig carries what the router needs besides the services.
type RouterConfig struct {
	Verifier     jwtx.Verifier
	Cookies      SessionCookies
	RateLimits   httpx.RateLimits
	Metrics      *metrics.Metrics
	Store        store.Store
	Redis        Pinger // optional
	BuildVersion string
	Logger       *slog.Logger
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	verifier     jwtx.Verifier
	cookies      SessionCookies
	limits       httpx.RateLimits
	metrics      *metrics.Metrics
	store        store.Store
	redis        Pinger
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	AuthService       *service.AuthService
	OnboardingService *service.OnboardingService
	InvitationService *service.InvitationService
}

func NewRouter(cfg RouterConfig) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     cfg.Verifier,
		cookies:      cfg.Cookies,
		limits:       cfg.RateLimits,
		metrics:      cfg.Metrics,
		store:        cfg.Store,
		redis:        cfg.Redis,
		buildVersion: cfg.BuildVersion,
		startTime:    time.Now(),
		logger:       cfg.Logger,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every route. The services must be set first.
func (r *Router) ApplyRoutes() {
	r.registerOnboarding()
	r.registerSession()
	r.registerAccount()
	r.registerInvitations()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	r.handler = otelhttp.NewHandler(httpx.Chain(r.Mux, r.middlewares...), "docuchat-auth")
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			DocuChat Identity Service API
//	@version		0.1.0
//	@description	Multi-tenant accounts and cookie sessions for DocuChat.
//	@description
//	@description	Sign in sets an httpOnly access cookie, an httpOnly refresh cookie and a readable CSRF cookie.
//	@description	Every state-changing request made with the session must echo the CSRF cookie in the X-CSRF-Token header.
//
//	@host						localhost:3000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						docuchat_access
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.handler == nil {
		httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
		return
	}
	r.handler.ServeHTTP(w, req)
}

// handle registers h under pattern with request metrics outermost.
func (r *Router) handle(pattern string, h http.Handler, mws ...httpx.Middleware) {
	chain := append([]httpx.Middleware{r.metrics.Middleware(pattern)}, mws...)
	r.Mux.Handle(pattern, httpx.Chain(h, chain...))
}

func (r *Router) registerOnboarding() {
	// Public signup endpoints: strict per IP and email.
	r.handle("POST /auth/register",
		&RegisterHandler{OnboardingService: r.OnboardingService},
		httpx.RateLimitByIPAndJSONField(r.limits.Strict, "email"),
	)
	r.handle("POST /auth/accept-invite",
		&AcceptInviteHandler{OnboardingService: r.OnboardingService},
		httpx.RateLimitByIPAndJSONField(r.limits.Strict, "email"),
	)
}

func (r *Router) registerSession() {
	r.handle("POST /auth/login",
		&LoginHandler{AuthService: r.AuthService, Cookies: r.cookies},
		httpx.RateLimitByIPAndJSONField(r.limits.Strict, "email"),
	)

	// Refresh and logout act on the cookie session, so they need CSRF.
	r.handle("POST /auth/refresh",
		&RefreshHandler{AuthService: r.AuthService, Cookies: r.cookies},
		httpx.RateLimitByIP(r.limits.Moderate),
		httpx.RequireCSRF(r.cookies.CSRFName),
	)
	r.handle("POST /auth/logout",
		&LogoutHandler{AuthService: r.AuthService, Cookies: r.cookies},
		httpx.RateLimitByIP(r.limits.Moderate),
		httpx.RequireCSRF(r.cookies.CSRFName),
	)
}

func (r *Router) registerAccount() {
	r.handle("POST /auth/verify-email",
		&VerifyEmailHandler{AuthService: r.AuthService},
		httpx.RateLimitByIP(r.limits.Strict),
	)
	r.handle("POST /auth/forgot-password",
		&ForgotPasswordHandler{AuthService: r.AuthService},
		httpx.RateLimitByIPAndJSONField(r.limits.Strict, "email"),
	)
	r.handle("POST /auth/reset-password",
		&ResetPasswordHandler{AuthService: r.AuthService, Cookies: r.cookies},
		httpx.RateLimitByIP(r.limits.Strict),
	)

	r.handle("GET /auth/me",
		&MeHandler{AuthService: r.AuthService},
		httpx.CookieAuthn(r.verifier, r.cookies.AccessName),
		httpx.RateLimitByUser(r.limits.Lenient),
	)
}

func (r *Router) registerInvitations() {
	r.handle("POST /auth/tenants/{tenantId}/invitations",
		&InvitationHandler{InvitationService: r.InvitationService},
		httpx.CookieAuthn(r.verifier, r.cookies.AccessName),
		httpx.RateLimitByUser(r.limits.Moderate),
		httpx.RequireCSRF(r.cookies.CSRFName),
		requireRole(service.InviteManagers...),
	)
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently.
	r.handle("GET /livez",
		LivezHandler(r.startTime, r.buildVersion),
		httpx.RateLimitByIP(r.limits.Lenient),
	)
	r.handle("GET /readyz",
		ReadyzHandler(r.startTime, r.buildVersion, r.store, r.redis),
		httpx.RateLimitByIP(r.limits.Lenient),
	)

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", httpx.Chain(r.metrics.Handler(),
			httpx.RateLimitByIP(r.limits.Public),
		))
	}
}
