package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/geocoder89/intervue/internal/cache"
	"github.com/geocoder89/intervue/internal/config"
	"github.com/geocoder89/intervue/internal/db"
	httpx "github.com/geocoder89/intervue/internal/http"
	"github.com/geocoder89/intervue/internal/http/handlers"
	"github.com/geocoder89/intervue/internal/http/middlewares"
	"github.com/geocoder89/intervue/internal/observability"
	"github.com/geocoder89/intervue/internal/repo/postgres"
	"github.com/geocoder89/intervue/internal/video"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	// Clerk API key for session verification (JWKS fetch)
	if cfg.ClerkSecretKey != "" {
		clerk.SetKey(cfg.ClerkSecretKey)
	} else {
		log.Warn("CLERK_SECRET_KEY not set, session verification will fail")
	}

	// tracing is optional, keyed off the OTLP endpoint
	tracing := cfg.OTLPEndpoint != ""

	if tracing {
		shutdownTracer, err := observability.InitTracer(context.Background(), "intervue", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed, continuing without tracing", "err", err)
			tracing = false
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	// metrics registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	// durable store
	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	{
		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			log.Error("schema bootstrap failed", "err", err)
			os.Exit(1)
		}
	}

	// directory cache, nil when redis is not configured
	directory := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      30 * time.Second,
	})

	if directory != nil {
		ctx, cancel := config.WithTimeout(2 * time.Second)
		err := directory.Ping(ctx)
		cancel()

		if err != nil {
			log.Warn("redis unreachable, continuing without directory cache", "err", err)
			directory = nil
		} else {
			defer directory.Close()
		}
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	meetingsRepo := postgres.NewMeetingsRepo(pool, prom)

	// webhook signature verifier; secret presence was enforced by config.Load
	verifier, err := handlers.NewSvixVerifier(cfg.ClerkWebhookSecret)

	if err != nil {
		log.Error("webhook verifier init failed", "err", err)
		os.Exit(1)
	}

	callTokens := video.NewTokenManager(cfg.StreamAPIKey, cfg.StreamAPISecret, time.Hour)

	// wire up handlers
	webhookHandler := handlers.NewClerkWebhookHandler(usersRepo, verifier, prom, directory.InvalidateUsers)
	usersHandler := handlers.NewUsersHandler(usersRepo, directory)
	meetingsHandler := handlers.NewMeetingsHandler(meetingsRepo, usersRepo)
	callsHandler := handlers.NewCallsHandler(callTokens)

	authMiddleware := middlewares.NewAuthMiddleware(middlewares.ClerkVerifier{})

	ping := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	router := httpx.NewRouter(httpx.Deps{
		Env:            cfg.Env,
		AllowedOrigins: cfg.AllowedOrigins,
		Prom:           prom,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Ping:           ping,
		Tracing:        tracing,
		Auth:           authMiddleware,
		Roles:          usersRepo,
		Webhook:        webhookHandler,
		Users:          usersHandler,
		Meetings:       meetingsHandler,
		Calls:          callsHandler,
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

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
