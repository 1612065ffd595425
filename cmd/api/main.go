package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/condoops/incident-service/internal/api/http"
	"github.com/condoops/incident-service/internal/api/http/handlers"
	"github.com/condoops/incident-service/internal/auth"
	"github.com/condoops/incident-service/internal/cache"
	"github.com/condoops/incident-service/internal/config"
	"github.com/condoops/incident-service/internal/events"
	"github.com/condoops/incident-service/internal/observability"
	"github.com/condoops/incident-service/internal/persistence"
	"github.com/condoops/incident-service/internal/repository"
	"github.com/condoops/incident-service/internal/service"
	"github.com/condoops/incident-service/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	buildingRepo := repository.NewBuildingRepository(pool)
	companyRepo := repository.NewCompanyRepository(pool)
	incidentRepo := repository.NewIncidentRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	visitRepo := repository.NewVisitRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	movementRepo := repository.NewStockMovementRepository(pool)
	txManager := repository.NewTxManager(pool)

	dispatcher := events.NewAsyncDispatcher(cfg.Notification.QueueSize, logger)
	defer dispatcher.Close()

	authService := service.NewAuthService(*cfg, userRepo)
	incidentService := service.NewIncidentService(service.IncidentDependencies{
		IncidentRepo: incidentRepo,
		CommentRepo:  commentRepo,
		UserRepo:     userRepo,
		BuildingRepo: buildingRepo,
		Dispatcher:   dispatcher,
	})
	visitService := service.NewVisitService(service.VisitDependencies{
		VisitRepo:    visitRepo,
		IncidentRepo: incidentRepo,
		CompanyRepo:  companyRepo,
		CommentRepo:  commentRepo,
		TxManager:    txManager,
	})
	statsCache := cache.NewRedisCache(redis.Client, "stats")
	statsService := service.NewStatsService(incidentRepo, statsCache, cfg.Stats.TTL())
	inventoryService := service.NewInventoryService(productRepo, movementRepo, txManager)
	emailSender := &service.LogEmailSender{From: cfg.Notification.EmailFrom, Logger: logger}
	notificationService := service.NewNotificationService(notificationRepo, userRepo, emailSender, dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, cfg.Auth.SessionCookieName)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService, cfg.Auth.SessionCookieName),
		Incidents:      handlers.NewIncidentsHandler(incidentService),
		Visits:         handlers.NewVisitsHandler(visitService),
		Buildings:      handlers.NewBuildingsHandler(buildingRepo, statsService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Inventory:      handlers.NewInventoryHandler(inventoryService),
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
