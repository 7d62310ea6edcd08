package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/moderation-service/internal/ai"
	httptransport "github.com/spec-kit/moderation-service/internal/api/http"
	"github.com/spec-kit/moderation-service/internal/api/http/handlers"
	"github.com/spec-kit/moderation-service/internal/auth"
	"github.com/spec-kit/moderation-service/internal/config"
	"github.com/spec-kit/moderation-service/internal/events"
	"github.com/spec-kit/moderation-service/internal/observability"
	"github.com/spec-kit/moderation-service/internal/persistence"
	"github.com/spec-kit/moderation-service/internal/repository"
	"github.com/spec-kit/moderation-service/internal/service"
	"github.com/spec-kit/moderation-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongodb", zap.Error(err))
	}
	defer mongo.Close(context.Background())

	auditDB, err := persistence.NewAuditPostgres(ctx, cfg.AuditDB, logger)
	if err != nil {
		logger.Fatal("failed to connect audit postgres", zap.Error(err))
	}
	defer auditDB.Close()

	if cfg.AuditDB.RunMigrations {
		if err := persistence.RunMigrations(ctx, auditDB.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run audit migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	events.RegisterLogging(dispatcher, logger)

	cacheTTL := cfg.Moderation.CacheTTL()
	playerRepo := repository.NewPlayerRepository(mongo.Collection("players"))
	catalogRepo := repository.NewCatalogRepository(mongo.Collection("punishment_types"), redis.Handle(), cacheTTL)
	settingsRepo := repository.NewSettingsRepository(mongo.Collection("moderation_settings"), redis.Handle(), cacheTTL)
	ticketRepo := repository.NewTicketRepository(mongo.Collection("tickets"))
	staffRepo := repository.NewStaffRepository(mongo.Collection("staff"))
	auditRepo := repository.NewAuditLogRepository(auditDB.PoolHandle())

	punishmentService := service.NewPunishmentService(service.PunishmentDependencies{
		PlayerRepo:  playerRepo,
		CatalogRepo: catalogRepo,
		Settings:    settingsRepo,
		AuditRepo:   auditRepo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})

	queue := worker.NewAnalysisQueue(cfg.Moderation.QueueSize, cfg.Moderation.Workers, logger)
	defer queue.Close()

	moderationService := service.NewModerationService(service.ModerationDependencies{
		TicketRepo: ticketRepo,
		Settings:   settingsRepo,
		Assembler:  ai.NewPromptAssembler(catalogRepo, settingsRepo),
		Client:     ai.NewCompletionClient(cfg.AI, logger),
		Applier:    punishmentService,
		Queue:      queue,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	ticketService := service.NewTicketService(ticketRepo, moderationService, dispatcher)
	authService := service.NewAuthService(cfg.Auth, staffRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), staffRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(mongo, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Punishments:    handlers.NewPunishmentsHandler(punishmentService),
		Moderation:     handlers.NewModerationHandler(settingsRepo, catalogRepo),
		AuthMiddleware: authMiddleware,
	})

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
