package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/service-crm/internal/api/http"
	"github.com/spec-kit/service-crm/internal/api/http/handlers"
	"github.com/spec-kit/service-crm/internal/auth"
	"github.com/spec-kit/service-crm/internal/config"
	"github.com/spec-kit/service-crm/internal/events"
	"github.com/spec-kit/service-crm/internal/observability"
	"github.com/spec-kit/service-crm/internal/persistence"
	"github.com/spec-kit/service-crm/internal/repository"
	"github.com/spec-kit/service-crm/internal/service"
	"github.com/spec-kit/service-crm/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.Schedule.Timezone, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	pool := pg.PoolHandle()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	appCache := redis.Cache(logger)

	dispatcher := events.NewInMemoryDispatcher(logger)
	bridge, err := events.ConnectNats(cfg.Nats.URL, cfg.Nats.SubjectPrefix, logger)
	if err != nil {
		logger.Warn("nats bridge disabled", zap.Error(err))
	}
	defer bridge.Close()

	ticketRepo := repository.NewTicketRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	technicianRepo := repository.NewTechnicianRepository(pool)
	timeEntryRepo := repository.NewTimeEntryRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	location := cfg.Schedule.Location()
	cacheTTL := cfg.Redis.CacheTTL()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{TechnicianRepo: technicianRepo})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		AssignmentRepo: assignmentRepo,
		ContactRepo:    contactRepo,
		CategoryRepo:   categoryRepo,
		Cache:          appCache,
		StatsTTL:       cacheTTL,
		Location:       location,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:     ticketRepo,
		TechnicianRepo: technicianRepo,
		AssignmentRepo: assignmentRepo,
		Cache:          appCache,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	contactService := service.NewContactService(service.ContactDependencies{
		ContactRepo:   contactRepo,
		Cache:         appCache,
		SearchTTL:     cfg.Lookup.SearchTTL(),
		MinQueryChars: cfg.Lookup.MinQueryChars,
		MaxResults:    cfg.Lookup.MaxResults,
		Logger:        logger,
	})
	categoryService := service.NewCategoryService(categoryRepo, appCache, cacheTTL, logger)
	technicianService := service.NewTechnicianService(service.TechnicianDependencies{
		TechnicianRepo: technicianRepo,
		CategoryRepo:   categoryRepo,
		BcryptCost:     cfg.Auth.BcryptCost,
		Logger:         logger,
	})
	timeService := service.NewTimeService(service.TimeDependencies{
		TicketRepo:     ticketRepo,
		TechnicianRepo: technicianRepo,
		TimeEntryRepo:  timeEntryRepo,
		Cache:          appCache,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	scheduleService := service.NewScheduleService(service.ScheduleDependencies{
		ScheduleRepo:   scheduleRepo,
		TicketRepo:     ticketRepo,
		TechnicianRepo: technicianRepo,
		Cache:          appCache,
		Buffer:         cfg.Schedule.Buffer(),
		Location:       location,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	activityService := service.NewActivityService(activityRepo, ticketRepo, location, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartEventWorkers(dispatcher, worker.EventSubscribers{
		Activity:      activityService,
		Notifications: notificationService,
		Bridge:        bridge,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, assignmentService, activityService),
		TimeEntries:    handlers.NewTimeEntriesHandler(timeService),
		Contacts:       handlers.NewContactsHandler(contactService),
		Technicians:    handlers.NewTechniciansHandler(technicianService, categoryService),
		Schedule:       handlers.NewScheduleHandler(scheduleService, location),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), technicianRepo),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
