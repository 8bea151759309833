package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/aussiebroadwan/deskauth/internal/auth/service"
	"github.com/aussiebroadwan/deskauth/internal/auth/store"
	"github.com/aussiebroadwan/deskauth/pkg/httpx"
	"github.com/aussiebroadwan/deskauth/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/aussiebroadwan/deskauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:generate swag init --parseDependency -g router.go -o ../../../api/auth --packageName auth --outputTypes go

// RateLimits selects the limiter profile for each class of route.
type RateLimits struct {
	Login  httpx.RateLimitConfig // login and bootstrap, keyed by IP
	Admin  httpx.RateLimitConfig // admin routes, keyed by user
	User   httpx.RateLimitConfig // other authenticated routes, keyed by user
	Public httpx.RateLimitConfig // health and banner, keyed by IP
}

// DefaultRateLimits uses the httpx profiles, including any RATELIMIT_*
// overrides.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Login:  httpx.StrictLimit,
		Admin:  httpx.ModerateLimit,
		User:   httpx.LenientLimit,
		Public: httpx.PublicLimit,
	}
}

// Options are the router settings that are not services.
type Options struct {
	BuildVersion   string
	AllowedOrigins []string
	RateLimits     RateLimits

	// Registry receives the HTTP and login collectors and is served on
	// /metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       RateLimits
	registry     *prometheus.Registry
	metrics      *httpx.Metrics
	loginMetrics *LoginMetrics

	store            store.Store
	TokenService     *service.TokenService
	AuthService      *service.AuthService
	UserService      *service.UserService
	BootstrapService *service.BootstrapService
}

func NewRouter(st store.Store, logger *slog.Logger, opts Options) *Router {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: opts.BuildVersion,
		startTime:    time.Now(),
		logger:       logger,
		limits:       opts.RateLimits,
		registry:     reg,
		metrics:      httpx.NewMetrics("deskauth", reg),
		loginMetrics: NewLoginMetrics("deskauth", reg),
		store:        st,
	}

	if r.limits == (RateLimits{}) {
		r.limits = DefaultRateLimits()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(opts.AllowedOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerBootstrap()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			deskauth API
//	@version		1.0
//	@description	Authentication service for the utility desk. Sessions are HS256-signed JWTs valid for 12 hours, sent as "Authorization: Bearer {token}".
//	@description	Errors are always {"error": "<kind>", "message": "<text>"}.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/deskauth
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:4000
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h under pattern, instrumented with the pattern as its
// metrics route label.
func (r *Router) handle(pattern string, h http.Handler, mws ...httpx.Middleware) {
	r.Mux.Handle(pattern, r.metrics.Instrument(pattern, httpx.Chain(h, mws...)))
}

// admin guards h with authentication, the admin role and a per-user limit.
func (r *Router) admin(pattern string, h http.Handler) {
	r.handle(pattern, h,
		r.authenticate(),
		requireRole(domain.RoleAdmin),
		httpx.RateLimitByUser(r.limits.Admin),
	)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP (brute force prevention)
	r.handle("POST /api/auth/login",
		&LoginHandler{AuthService: r.AuthService, Metrics: r.loginMetrics},
		httpx.RateLimitByIP(r.limits.Login),
	)

	// POST /change-password - any valid session
	r.handle("POST /api/auth/change-password",
		&ChangePasswordHandler{AuthService: r.AuthService},
		r.authenticate(),
		httpx.RateLimitByUser(r.limits.User),
	)

	// POST /register - admin only
	r.admin("POST /api/auth/register", &RegisterHandler{UserService: r.UserService})
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.admin("GET /api/users", http.HandlerFunc(h.HandleList))
	r.admin("DELETE /api/users/{username}", http.HandlerFunc(h.HandleDelete))
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - strict rate limit by IP (one-time setup endpoint)
	r.handle("POST /api/bootstrap",
		&BootstrapHandler{BootstrapService: r.BootstrapService},
		httpx.RateLimitByIP(r.limits.Login),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.handle("GET /livez", LivezHandler(r.startTime, r.buildVersion),
		httpx.RateLimitByIP(r.limits.Public),
	)
	r.handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store),
		httpx.RateLimitByIP(r.limits.Public),
	)
	r.handle("GET /{$}", RootHandler(),
		httpx.RateLimitByIP(r.limits.Public),
	)

	// Scrapers are expected to be on a private network; not rate limited.
	r.Mux.Handle("GET /metrics", httpx.MetricsHandler(r.registry))
}
