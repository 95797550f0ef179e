package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/worksphere/admin-auth/internal/api/http"
	"github.com/worksphere/admin-auth/internal/api/http/handlers"
	"github.com/worksphere/admin-auth/internal/auth"
	"github.com/worksphere/admin-auth/internal/config"
	"github.com/worksphere/admin-auth/internal/events"
	"github.com/worksphere/admin-auth/internal/observability"
	"github.com/worksphere/admin-auth/internal/persistence"
	"github.com/worksphere/admin-auth/internal/repository"
	"github.com/worksphere/admin-auth/internal/service"
	"github.com/worksphere/admin-auth/internal/worker"
	"github.com/worksphere/admin-auth/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingConfig) {
			log.Fatalf("refusing to start: %v", err)
		}
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrations.FS, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	var auditRepo repository.AuditRepository
	if pg.Enabled() {
		auditRepo = repository.NewAuditRepository(pg.PoolHandle())
	}
	auditService := service.NewAuditService(dispatcher, logger, auditRepo)
	worker.StartAuditWorker(auditService)

	var attempts repository.LoginAttemptRepository
	if redis.Enabled() {
		attempts = repository.NewLoginAttemptRepository(redis.Client)
	}

	adminAuth, err := service.NewAdminAuthService(cfg.Auth, service.AdminAuthDependencies{
		Logger:     logger,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Attempts:   attempts,
	})
	if err != nil {
		logger.Fatal("failed to init admin auth", zap.Error(err))
	}
	authMiddleware := auth.NewAuthMiddleware(adminAuth)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout: cfg.App.RequestTimeout(),
		CORS:    cfg.CORS,
	})

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		AdminAuth:      handlers.NewAdminAuthHandler(adminAuth),
		Audit:          handlers.NewAuditHandler(auditService),
		AuthMiddleware: authMiddleware,
	})

	logger.Info("admin auth ready",
		zap.String("addr", cfg.App.Addr()),
		zap.Duration("token_ttl", adminAuth.TokenTTL()),
		zap.Bool("throttle", attempts != nil),
		zap.Bool("audit_persistent", auditService.Persistent()))

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
