package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"croptask-service/internal/config"
	"croptask-service/internal/database/minio"
	"croptask-service/internal/database/postgres"
	"croptask-service/internal/database/redis"
	"croptask-service/internal/event"
	"croptask-service/internal/handlers"
	"croptask-service/internal/models"
	"croptask-service/internal/repository"
	"croptask-service/internal/services"
	"croptask-service/internal/worker"

	"github.com/gofiber/fiber/v3"
	goredis "github.com/redis/go-redis/v9"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/agrisa", "log", "croptask_service")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		// Fall back to stdout-only logging.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))
		return nil, nil
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, file), nil)
	slog.SetDefault(slog.New(handler))
	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		fmt.Printf("Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	cfg := config.New()

	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		slog.Error("Failed to connect to database, retrying in background", "error", err)
		go postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	var redisClient *goredis.Client
	redisWrapper, err := redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		// Catalog reads fall back to the database without the cache.
		slog.Warn("Redis unavailable, catalog caching disabled", "error", err)
	} else {
		redisClient = redisWrapper.GetClient()
		defer redisWrapper.Close()
	}

	var publisher services.AlertPublisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Warn("RabbitMQ unavailable, alert fan-out disabled", "error", err)
	} else {
		publisher = event.NewAlertEventPublisher(rabbitConn)
		defer rabbitConn.Close()
	}

	var archiver *services.RunReportArchiver
	minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		slog.Warn("MinIO unavailable, run report archiving disabled", "error", err)
		archiver = services.NewRunReportArchiver(nil)
	} else {
		archiver = services.NewRunReportArchiver(minioClient)
	}

	// Repositories
	growthStageRepo := repository.NewGrowthStageRepository(db, redisClient)
	templateRepo := repository.NewTaskTemplateRepository(db)
	fieldRepo := repository.NewFieldRepository(db)
	plantingRepo := repository.NewPlantingRepository(db)
	plantingStageRepo := repository.NewPlantingStageRepository(db)
	taskRepo := repository.NewAutomatedTaskRepository(db)
	farmTaskRepo := repository.NewFarmTaskRepository(db)
	observationRepo := repository.NewWeatherObservationRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)

	// Seed and validate the catalog before anything schedules against it.
	catalog, err := services.LoadCatalogFile(cfg.AutomationCfg.CatalogPath)
	if err != nil {
		slog.Error("Failed to load catalog seed file", "path", cfg.AutomationCfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	if err := services.SeedCatalog(context.Background(), catalog, growthStageRepo, templateRepo); err != nil {
		slog.Error("Catalog seeding failed", "error", err)
		os.Exit(1)
	}

	// Services
	taskGenService := services.NewTaskGenerationService(
		templateRepo, taskRepo, farmTaskRepo, plantingRepo, fieldRepo, observationRepo,
		models.TaskPriority(cfg.AutomationCfg.AutoSpawnMinPriority),
	)
	stageService := services.NewStageProgressionService(plantingStageRepo, growthStageRepo, taskGenService)
	plantingService := services.NewPlantingService(plantingRepo, plantingStageRepo, growthStageRepo, fieldRepo)
	weatherAlertService := services.NewWeatherAlertService(
		fieldRepo, plantingRepo, plantingStageRepo, growthStageRepo, observationRepo, alertRepo, publisher,
	)
	inventoryAlertService := services.NewInventoryAlertService(inventoryRepo, alertRepo, publisher)

	// Background automation: one pool, one scheduler per cadence.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := worker.NewWorkingPool(cfg.SchedulerCfg.PoolWorkers, 16)
	var poolWg sync.WaitGroup
	poolWg.Add(1)
	go pool.Start(ctx, &poolWg)

	taskScheduler := worker.NewJobScheduler("task-tick", cfg.SchedulerCfg.TaskTickInterval, pool)
	taskScheduler.AddJob(func(ctx context.Context) error {
		result, err := taskGenService.ProcessScheduledTasks(ctx)
		if err != nil {
			return err
		}
		archiver.ArchiveTaskTick(ctx, result)
		return nil
	})
	go taskScheduler.Run(ctx)

	weatherScheduler := worker.NewJobScheduler("weather-alerts", cfg.SchedulerCfg.WeatherAlertInterval, pool)
	weatherScheduler.AddJob(func(ctx context.Context) error {
		result, err := weatherAlertService.GenerateAlertsForAllFields(ctx)
		if err != nil {
			return err
		}
		archiver.ArchiveAlertSweep(ctx, "weather-sweeps", result)
		return nil
	})
	go weatherScheduler.Run(ctx)

	inventoryScheduler := worker.NewJobScheduler("inventory-alerts", cfg.SchedulerCfg.InventoryAlertInterval, pool)
	inventoryScheduler.AddJob(func(ctx context.Context) error {
		result, err := inventoryAlertService.CheckAllItems(ctx)
		if err != nil {
			return err
		}
		archiver.ArchiveAlertSweep(ctx, "inventory-sweeps", result)
		return nil
	})
	go inventoryScheduler.Run(ctx)

	// HTTP surface
	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Croptask service is healthy")
	})

	handlers.NewCatalogHandler(growthStageRepo, templateRepo).RegisterRoutes(app)
	handlers.NewFieldHandler(fieldRepo).RegisterRoutes(app)
	handlers.NewPlantingHandler(plantingService, stageService).RegisterRoutes(app)
	handlers.NewAutomationHandler(taskGenService, taskRepo, farmTaskRepo, archiver).RegisterRoutes(app)
	handlers.NewWeatherHandler(observationRepo, alertRepo, weatherAlertService).RegisterRoutes(app)
	handlers.NewInventoryHandler(inventoryRepo, alertRepo, inventoryAlertService).RegisterRoutes(app)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("HTTP server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutdown signaled, stopping")
	if err := app.Shutdown(); err != nil {
		slog.Error("Failed to shut down HTTP server", "error", err)
	}
	poolWg.Wait()
	slog.Info("Croptask service stopped")
}
