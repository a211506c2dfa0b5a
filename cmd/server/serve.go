package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	_ "github.com/sunbooking/booking-system/docs"
	"github.com/sunbooking/booking-system/internal/api"
	"github.com/sunbooking/booking-system/internal/api/metrics"
	"github.com/sunbooking/booking-system/internal/api/middleware"
	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/service"
	mongodb "github.com/sunbooking/booking-system/internal/infrastructure/db/mongo"
	redisdb "github.com/sunbooking/booking-system/internal/infrastructure/db/redis"
	"github.com/sunbooking/booking-system/internal/infrastructure/http/handlers"
	"github.com/sunbooking/booking-system/internal/infrastructure/queue"
	"github.com/sunbooking/booking-system/internal/infrastructure/scheduler"
	"github.com/sunbooking/booking-system/internal/pkg/config"
	"github.com/sunbooking/booking-system/internal/pkg/i18n"
	"github.com/sunbooking/booking-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Caller:  !cfg.IsProduction(),
		Service: "booking",
		Env:     cfg.Env,
	})

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "sun-booking",
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.EnsureLoginEventIndexes(ctx, db); err != nil {
		return err
	}

	// --- Core ---
	tokens, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	attempts := service.NewLoginAttemptService(logger.Component("login_attempts"))
	attempts.OnLockout(func(string) { metrics.LockoutsTotal.Inc() })

	audit := queue.NewDispatcher(cfg.Security.AuditWorkers, mongodb.NewLoginEventRepository(db), logger.Component("audit"))
	audit.OnDrop(func(domain.LoginEvent) { metrics.AuditEventsDroppedTotal.Inc() })
	auditCtx, stopAudit := context.WithCancel(context.Background())
	audit.Start(auditCtx)
	defer func() {
		stopAudit()
		audit.Wait()
	}()

	authService := service.NewAuthService(users, tokens, attempts, audit, logger.Component("auth"))
	if cfg.Bootstrap.AdminEmail != "" {
		if _, err := authService.EnsureAdmin(ctx, cfg.Bootstrap.AdminName, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
			return err
		}
	}

	if cfg.Security.SweepSchedule != "" {
		sweeper, err := scheduler.NewAttemptSweeper(cfg.Security.SweepSchedule, attempts, logger.Component("sweeper"))
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	// --- HTTP ---
	bundle, err := i18n.New()
	if err != nil {
		return err
	}
	webLog := logger.Component("http")
	remember := middleware.NewRememberMe(redisdb.NewRememberMeStore(rdb), users, cfg.Session.CookieSecure, webLog)
	sessions := middleware.NewSessions(users, redisdb.NewSessionRegistry(rdb), remember, cfg.Session.MaxAge, webLog)

	readiness := handlers.NewReadinessHandler(map[string]handlers.Check{
		"mongodb": handlers.MongoCheck(db),
		"redis":   handlers.RedisCheck(rdb),
	})

	e, err := api.NewRouter(api.Dependencies{
		AuthService:  authService,
		Tokens:       tokens,
		Users:        users,
		Attempts:     attempts,
		Audit:        audit,
		SessionStore: middleware.NewCookieStore([]byte(cfg.Session.Key), cfg.Session.CookieSecure, cfg.Session.MaxAge),
		Sessions:     sessions,
		RememberMe:   remember,
		Bundle:       bundle,
		CORSOrigins:  cfg.Security.CORSAllowedOrigins,
		Log:          webLog,
		Liveness:     handlers.NewHealthHandler().Liveness,
		Readiness:    readiness.Readiness,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
