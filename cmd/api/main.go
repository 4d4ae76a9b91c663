package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tripnest/tripnest-backend/api/routes"
	"github.com/tripnest/tripnest-backend/internal/accounts"
	"github.com/tripnest/tripnest-backend/internal/auth"
	"github.com/tripnest/tripnest-backend/internal/groups"
	"github.com/tripnest/tripnest-backend/internal/members"
	"github.com/tripnest/tripnest-backend/internal/posts"
	"github.com/tripnest/tripnest-backend/internal/sessions"
	"github.com/tripnest/tripnest-backend/pkg/config"
	"github.com/tripnest/tripnest-backend/pkg/db"
	"github.com/tripnest/tripnest-backend/pkg/logger"
	"github.com/tripnest/tripnest-backend/pkg/metrics"
	"github.com/tripnest/tripnest-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := db.MaybeAutoMigrate(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to sync schema", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	sessionManager := sessions.NewManager(dbClient.DB(), cfg.Session)

	accountRepo := accounts.NewRepository(dbClient.DB())
	memberRepo := members.NewRepository(dbClient.DB())
	groupRepo := groups.NewRepository(dbClient.DB())
	postRepo := posts.NewRepository(dbClient.DB())

	resolver := members.NewResolver(sessionManager, memberRepo)
	reconciler := members.NewReconciler(dbClient, memberRepo, groupRepo, sessionManager, resolver)
	gate := members.NewGate(dbClient, memberRepo, resolver)

	authService := auth.NewService(accountRepo, memberRepo, sessionManager, reconciler, cfg.Password)
	groupService := groups.NewService(dbClient, groupRepo, memberRepo, sessionManager, resolver, gate, cfg.Password)
	postService := posts.NewService(dbClient, postRepo, resolver, gate)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Registry:   registry,
			Metrics:    httpMetrics,
			Resolver:   resolver,
			Reconciler: reconciler,
			Gate:       gate,
			Auth:       authService,
			Groups:     groupService,
			Posts:      postService,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			stop()
			os.Exit(1)
		}
	}()

	<-runCtx.Done()
	logg.Info(ctx, "shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}
