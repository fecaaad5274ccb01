package main

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

	"github.com/geocoder89/invoicehub/internal/auth"
	"github.com/geocoder89/invoicehub/internal/config"
	"github.com/geocoder89/invoicehub/internal/db"
	httpx "github.com/geocoder89/invoicehub/internal/http"
	"github.com/geocoder89/invoicehub/internal/http/middlewares"
	"github.com/geocoder89/invoicehub/internal/observability"
	"github.com/geocoder89/invoicehub/internal/redisclient"
	"github.com/geocoder89/invoicehub/internal/security"
	"github.com/geocoder89/invoicehub/internal/service"
	"github.com/geocoder89/invoicehub/internal/supervisor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	// a missing JWT secret is fatal, nothing below can work without it
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerOptions{
			ServiceName: "invoicehub-api",
			Env:         cfg.Env,
			Endpoint:    cfg.OTELEndpoint,
			SampleRatio: cfg.OTELSampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracer(sctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	store, err := openStore(ctx, cfg, prom, log)
	if err != nil {
		return err
	}
	defer store.close()

	hasher := security.NewHasher(cfg.BcryptCost)

	seedCtx, cancel := config.WithTimeout(ctx, 10*time.Second)
	created, err := db.EnsureSeedUser(seedCtx, store.users, hasher, db.SeedUser{
		Email:    cfg.SeedUserEmail,
		Password: cfg.SeedUserPassword,
		Name:     cfg.SeedUserName,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	if created {
		log.Info("seed user created", "email", cfg.SeedUserEmail)
	}

	tokens, err := auth.NewManager(auth.Options{
		Secret: cfg.JWTSecret,
		TTL:    cfg.JWTExpiresIn,
		Issuer: cfg.JWTIssuer,
	})
	if err != nil {
		return err
	}

	limiter, closeLimiter, err := openLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	router := httpx.NewRouter(log, cfg, httpx.Dependencies{
		Auth:     service.NewAuthService(store.users, hasher, tokens, log),
		Tokens:   tokens,
		Limiter:  limiter,
		Ping:     store.users.Ping,
		Prom:     prom,
		Gatherer: reg,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sup := supervisor.New(log, supervisor.Policy{ExitOnPanic: cfg.ShouldExitOnPanic()})

	serveErr := make(chan error, 1)
	sup.Go("http-server", func() error {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
			return err
		}
		return nil
	})

	<-ctx.Done()
	log.Info("server shutting down")

	// Graceful shutdown
	sctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	sup.Wait()
	log.Info("shutdown complete")

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	default:
		return nil
	}
}

// openLimiter prefers the shared Redis limiter and falls back to a
// per-process one when REDIS_ADDR is unset.
func openLimiter(ctx context.Context, cfg config.Config, log *slog.Logger) (middlewares.Limiter, func(), error) {
	if cfg.RedisAddr == "" {
		return middlewares.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow), func() {}, nil
	}

	rc, err := redisclient.Connect(ctx, redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}

	log.Info("rate limiter backed by redis", "addr", cfg.RedisAddr)

	return middlewares.NewRedisLimiter(rc.Raw(), cfg.RateLimitMax, cfg.RateLimitWindow), func() { _ = rc.Close() }, nil
}
