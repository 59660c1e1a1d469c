package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/naykakashima/timetable-api/api/swagger"
	"github.com/naykakashima/timetable-api/internal/handler"
	"github.com/naykakashima/timetable-api/internal/middleware"
	"github.com/naykakashima/timetable-api/internal/repository"
	"github.com/naykakashima/timetable-api/internal/scraper"
	"github.com/naykakashima/timetable-api/internal/service"
	"github.com/naykakashima/timetable-api/pkg/cache"
	"github.com/naykakashima/timetable-api/pkg/config"
	"github.com/naykakashima/timetable-api/pkg/database"
	"github.com/naykakashima/timetable-api/pkg/jobs"
	"github.com/naykakashima/timetable-api/pkg/logger"
	corsmiddleware "github.com/naykakashima/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/naykakashima/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 0.1.0
// @description Imports university timetables and serves them as calendar events
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	eventRepo := repository.NewEventRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	timetableScraper := scraper.New(cfg.Scraper.Timeout, cfg.Scraper.UserAgent, logr)
	timetableSvc := service.NewTimetableService(eventRepo, userRepo, cacheRepo, timetableScraper, cfg.Scraper, logr).
		WithMetrics(metricsSvc)
	authSvc := service.NewAuthService(userRepo, cfg.JWT, logr)
	userSvc := service.NewUserService(userRepo, logr)
	exportSvc := service.NewExportService(timetableSvc, nil, nil, nil, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, exportSvc, userSvc)
	userHandler := handler.NewUserHandler(userSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		timetable := api.Group("/timetable", middleware.JWT(authSvc))
		timetable.POST("/import", timetableHandler.Import)
		timetable.GET("/events", timetableHandler.ListEvents)
		timetable.POST("/events", timetableHandler.CreateEvent)
		timetable.GET("/events/export", timetableHandler.ExportEvents)

		users := api.Group("/users", middleware.JWT(authSvc))
		users.GET("/:id", userHandler.Get)
	}

	scheduler := jobs.NewScheduler(logr)
	if cfg.Refresh.Enabled {
		if err := scheduler.Register(jobs.Task{
			Name: "timetable-refresh",
			Spec: cfg.Refresh.Cron,
			Run:  timetableSvc.RefreshAll,
		}); err != nil {
			logr.Sugar().Fatalw("invalid refresh schedule", "cron", cfg.Refresh.Cron, "error", err)
		}
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
