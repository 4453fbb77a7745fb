package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/othmanee23/oraxonoptic/internal/app"
	"github.com/othmanee23/oraxonoptic/internal/auth"
	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/contact"
	"github.com/othmanee23/oraxonoptic/internal/dashboard"
	"github.com/othmanee23/oraxonoptic/internal/mail"
	"github.com/othmanee23/oraxonoptic/internal/observability"
	"github.com/othmanee23/oraxonoptic/internal/platform/cache"
	"github.com/othmanee23/oraxonoptic/internal/platform/db"
	"github.com/othmanee23/oraxonoptic/internal/profile"
	"github.com/othmanee23/oraxonoptic/internal/shared"
	"github.com/othmanee23/oraxonoptic/internal/stores"
	"github.com/othmanee23/oraxonoptic/internal/users"
	"github.com/othmanee23/oraxonoptic/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.TokenSecret, cfg.SessionTTL)
	guard := authz.Guard{Logger: logger}
	metrics := observability.NewMetrics()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	mailer := mail.NewQueueMailer(jobClient)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, sessionManager, mailer, cfg.VerifyTTL, cfg.ResetTokenTTL)
	authHandler := auth.NewHandler(logger, authService, cfg.AppBaseURL, metrics)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, sessionManager)
	usersHandler := users.NewHandler(logger, usersService, guard)

	profileRepo := profile.NewRepository(dbpool)
	profileService := profile.NewService(profileRepo)
	profileHandler := profile.NewHandler(logger, profileService, sessionManager, guard)

	dashboardCache := dashboard.NewCache(redisClient, 5*time.Minute)
	storesRepo := stores.NewRepository(dbpool)
	storesService := stores.NewService(storesRepo, sessionManager, dashboardCache)
	storesHandler := stores.NewHandler(logger, storesService, guard)

	dashboardRepo := dashboard.NewRepository(dbpool)
	dashboardService := dashboard.NewService(dashboardRepo, dashboardCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, guard, storesService)

	contactRepo := contact.NewRepository(dbpool)
	contactService := contact.NewService(contactRepo)
	contactHandler := contact.NewHandler(logger, contactService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Sessions:         authService,
		Guard:            guard,
		AuthHandler:      authHandler,
		UsersHandler:     usersHandler,
		ProfileHandler:   profileHandler,
		StoresHandler:    storesHandler,
		DashboardHandler: dashboardHandler,
		ContactHandler:   contactHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
