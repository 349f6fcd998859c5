package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sunflower/sunflower-api/docs"
	"github.com/sunflower/sunflower-api/internal/api/handler"
	"github.com/sunflower/sunflower-api/internal/api/middleware"
	"github.com/sunflower/sunflower-api/internal/core/ports"
)

// ResendVerificationPrefix namespaces the resend-verification rate limit keys.
const ResendVerificationPrefix = "resend_verification"

// Dependencies is everything the router wires into handlers and middleware.
type Dependencies struct {
	Log          zerolog.Logger
	AuthService  ports.AuthService
	AdminService ports.AdminAuthService
	Gate         *middleware.Gate
	RateLimiter  ports.RateLimiter
	HealthChecks map[string]handler.DependencyCheck

	ResendCooldown time.Duration
	AllowedOrigins []string

	// Metrics receives the HTTP request metrics and backs /metrics.
	// Nil means the default Prometheus registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	if len(deps.AllowedOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     deps.AllowedOrigins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}

	metricsCfg := echoprometheus.MiddlewareConfig{Subsystem: "http"}
	handlerCfg := echoprometheus.HandlerConfig{}
	if deps.Metrics != nil {
		metricsCfg.Registerer = deps.Metrics
		handlerCfg.Gatherer = deps.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsCfg))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	adminHandler := handler.NewAdminHandler(deps.AdminService)
	requireAuth := deps.Gate.RequireAuth()

	v1 := e.Group("/api/v1")

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, requireAuth, middleware.RequireVerified())
	auth.POST("/verify-email", authHandler.VerifyEmail, requireAuth)
	auth.POST("/resend-verification", authHandler.ResendVerification,
		requireAuth,
		middleware.RequireUnverified(),
		middleware.RateLimit(deps.RateLimiter, ResendVerificationPrefix, deps.ResendCooldown, deps.Log),
	)

	// --- User routes ---
	v1.PATCH("/users/me", authHandler.UpdateProfile, requireAuth, middleware.RequireVerified())

	// --- Admin routes ---
	admin := v1.Group("/admin")
	admin.POST("/register", adminHandler.Register)
	admin.POST("/login", adminHandler.Login)
	admin.GET("/me", adminHandler.Me, requireAuth, middleware.RequireSuperuser())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(handlerCfg))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
