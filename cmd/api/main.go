package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/brunovinte3/controlsst/api/swagger"
	"github.com/brunovinte3/controlsst/internal/catalog"
	"github.com/brunovinte3/controlsst/internal/handler"
	"github.com/brunovinte3/controlsst/internal/middleware"
	"github.com/brunovinte3/controlsst/internal/normalize"
	"github.com/brunovinte3/controlsst/internal/repository"
	"github.com/brunovinte3/controlsst/internal/service"
	"github.com/brunovinte3/controlsst/internal/source"
	"github.com/brunovinte3/controlsst/pkg/cache"
	"github.com/brunovinte3/controlsst/pkg/config"
	"github.com/brunovinte3/controlsst/pkg/database"
	"github.com/brunovinte3/controlsst/pkg/jobs"
	"github.com/brunovinte3/controlsst/pkg/logger"
	corsmiddleware "github.com/brunovinte3/controlsst/pkg/middleware/cors"
	reqidmiddleware "github.com/brunovinte3/controlsst/pkg/middleware/requestid"
	"github.com/brunovinte3/controlsst/pkg/storage"
)

// @title ControlSST API
// @version 1.0.0
// @description Occupational safety training compliance service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	employeeRepo := repository.NewEmployeeRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	settingsSvc := service.NewSettingsService(settingsRepo, validate, logr)
	if err := settingsSvc.EnsureDefaults(ctx, cfg.AdminInitialPassword); err != nil {
		logr.Sugar().Fatalw("failed to seed settings", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(settingsSvc, validate, logr, cfg.JWT)
	employeeSvc := service.NewEmployeeService(employeeRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(employeeRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)
	photoSvc := service.NewPhotoService(photoRepo, validate, logr)

	normalizer := normalize.New(catalog.Courses)
	sheetClient := source.NewClient(cfg.Sync.FetchTimeout)
	syncSvc := service.NewSyncService(sheetClient, employeeRepo, settingsRepo, normalizer, cfg.Sync, logr, metricsSvc, dashboardSvc)

	reportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	reportSvc := service.NewReportService(employeeRepo, settingsSvc, reportStore, signer, logr)

	reportQueue := jobs.NewQueue("reports", reportSvc.Process, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportQueue.Start(ctx)
	defer reportQueue.Stop()
	reportSvc.Bind(reportQueue)

	if cfg.Sync.AutoEnabled {
		go syncSvc.RunPeriodic(ctx, cfg.Sync.AutoInterval)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handler.Register(r, cfg.APIPrefix, handler.Deps{
		Auth:      authSvc,
		Employees: employeeSvc,
		Sync:      syncSvc,
		Dashboard: dashboardSvc,
		Settings:  settingsSvc,
		Photos:    photoSvc,
		Reports:   reportSvc,
		Metrics:   metricsSvc,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
