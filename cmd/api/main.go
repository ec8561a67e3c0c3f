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

	"github.com/pulse-crm/crm-api/internal/auth"
	"github.com/pulse-crm/crm-api/internal/config"
	"github.com/pulse-crm/crm-api/internal/database"
	"github.com/pulse-crm/crm-api/internal/http/handler"
	"github.com/pulse-crm/crm-api/internal/http/middleware"
	"github.com/pulse-crm/crm-api/internal/http/router"
	"github.com/pulse-crm/crm-api/internal/jobs"
	"github.com/pulse-crm/crm-api/internal/logger"
	"github.com/pulse-crm/crm-api/internal/repository"
	"github.com/pulse-crm/crm-api/internal/service"
	"github.com/pulse-crm/crm-api/internal/storage"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// In staging/production secrets may come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Warn("Schema built from models; use cmd/migrate outside development")
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	loc := cfg.Jobs.Location()

	// Repositories
	scope := repository.NewScopeResolver(db)
	companyRepo := repository.NewCompanyRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	contactRepo := repository.NewContactRepository(db, scope)
	dealRepo := repository.NewDealRepository(db, scope)
	productRepo := repository.NewProductRepository(db, scope)
	taskRepo := repository.NewTaskRepository(db, scope)
	interactionRepo := repository.NewInteractionRepository(db, scope)
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	viewRepo := repository.NewViewRepository(db)
	fileRepo := repository.NewFileRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	companyService := service.NewCompanyService(companyRepo, log)
	profileService := service.NewProfileService(profileRepo, dealRepo, taskRepo, interactionRepo, log)
	contactService := service.NewContactService(contactRepo, scope, log)
	transferService := service.NewContactTransferService(contactRepo, fileStorage, log)
	dealService := service.NewDealService(dealRepo, scope, log)
	productService := service.NewProductService(productRepo, dealRepo, scope, log)
	taskService := service.NewTaskService(taskRepo, scope, log)
	interactionService := service.NewInteractionService(interactionRepo, dealRepo, scope, loc, log)
	messageService := service.NewMessageService(messageRepo, viewRepo, roomRepo, fileRepo, log)
	roomService := service.NewRoomService(roomRepo, messageRepo, messageService, scope, log)
	discussionService := service.NewDiscussionService(discussionRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	fileService := service.NewFileService(fileRepo, fileStorage, log)
	dashboardService := service.NewDashboardService(profileRepo, contactRepo, dealRepo, taskRepo, interactionRepo, messageRepo, roomService, log)
	analyticsService := service.NewAnalyticsService(companyRepo, contactRepo, dealRepo, interactionRepo, productRepo, taskRepo, profileRepo, messageService, loc, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(&cfg.Auth, profileRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, router.Handlers{
		Company:      handler.NewCompanyHandler(companyService, log),
		Profile:      handler.NewProfileHandler(profileService, log),
		Contact:      handler.NewContactHandler(contactService, transferService, log),
		Deal:         handler.NewDealHandler(dealService, interactionService, log),
		Product:      handler.NewProductHandler(productService, log),
		Task:         handler.NewTaskHandler(taskService, log),
		Interaction:  handler.NewInteractionHandler(interactionService, log),
		Room:         handler.NewRoomHandler(roomService, messageService, log),
		Discussion:   handler.NewDiscussionHandler(discussionService, log),
		Notification: handler.NewNotificationHandler(notificationService, log),
		File:         handler.NewFileHandler(fileService, cfg.Storage.MaxUploadSizeMB, log),
		Dashboard:    handler.NewDashboardHandler(dashboardService, analyticsService, log),
	})

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log, loc)
		reminder := jobs.NewTaskReminderJob(taskRepo, notificationRepo, notificationService, loc, log, 5*time.Minute)
		if err := jobs.RegisterTaskReminderJob(scheduler, reminder, cfg.Jobs.TaskReminderSchedule); err != nil {
			return fmt.Errorf("failed to register task reminder job: %w", err)
		}
		scheduler.Start()
		log.Info("Scheduler started",
			zap.String("cron_expr", cfg.Jobs.TaskReminderSchedule),
			zap.String("timezone", loc.String()),
		)
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		log.Info("Server stopped gracefully")
	}

	return nil
}
