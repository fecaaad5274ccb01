package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/invoicehub/internal/config"
	"github.com/geocoder89/invoicehub/internal/http/handlers"
	"github.com/geocoder89/invoicehub/internal/http/middlewares"
	"github.com/geocoder89/invoicehub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "invoicehub-api"

// Dependencies are built and owned by main; the router only wires them.
type Dependencies struct {
	Auth    handlers.AuthService
	Tokens  middlewares.TokenVerifier
	Limiter middlewares.Limiter
	// Ping reports store readiness for /readyz.
	Ping func(ctx context.Context) error

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Dependencies) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(middlewares.RequestID())
	r.Use(middlewares.Recovery(log))
	r.Use(otelgin.Middleware(serviceName))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	}

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middlewares.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	rateLimit := middlewares.RateLimit(limiter, middlewares.KeyByIP, log, deps.Prom)

	// probes and metrics stay outside the limiter
	health := handlers.NewHealthHandler(deps.Ping)
	r.GET("/health", health.Healthz)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if deps.Gatherer != nil {
		r.GET("/metrics", observability.MetricsHandler(deps.Gatherer))
	}

	authMW := middlewares.NewAuthMiddleware(deps.Tokens)
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Prom)

	api := r.Group("/api", rateLimit)
	api.GET("/status", health.Status)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", middlewares.ValidateJSON[handlers.SignUpRequest](), authHandler.Register)
		authGroup.POST("/login", middlewares.ValidateJSON[handlers.LoginRequest](), authHandler.Login)
		authGroup.GET("/profile", authMW.RequireAuth(), authHandler.Profile)
		authGroup.GET("/me", authMW.RequireAuth(), authHandler.Profile)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/health", authHandler.Health)
	}

	// routed and authenticated, behaviour lives elsewhere
	invoices := api.Group("/invoices", authMW.RequireAuth())
	invoices.Any("", handlers.NotImplemented("invoices"))
	invoices.Any("/*path", handlers.NotImplemented("invoices"))

	customers := api.Group("/customers", authMW.RequireAuth())
	customers.Any("", handlers.NotImplemented("customers"))
	customers.Any("/*path", handlers.NotImplemented("customers"))

	r.Any("/auth/quickbooks/*path", rateLimit, handlers.NotImplemented("QuickBooks OAuth"))

	if cfg.StaticDir != "" {
		r.NoRoute(handlers.NewSPA(cfg.StaticDir).NoRoute)
	} else {
		r.NoRoute(handlers.NotFound)
	}

	return r
}
