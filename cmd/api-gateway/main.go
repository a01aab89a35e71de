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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/campus-attend-api/api/swagger"
	"github.com/noah-isme/campus-attend-api/internal/docstore"
	"github.com/noah-isme/campus-attend-api/internal/handler"
	"github.com/noah-isme/campus-attend-api/internal/middleware"
	"github.com/noah-isme/campus-attend-api/internal/repository"
	"github.com/noah-isme/campus-attend-api/internal/scheduler"
	"github.com/noah-isme/campus-attend-api/internal/service"
	"github.com/noah-isme/campus-attend-api/pkg/cache"
	"github.com/noah-isme/campus-attend-api/pkg/config"
	"github.com/noah-isme/campus-attend-api/pkg/database"
	"github.com/noah-isme/campus-attend-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-attend-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-attend-api/pkg/middleware/requestid"
)

// @title Campus Attend API
// @version 1.0.0
// @description Automated attendance tracking: geofence presence, timetable matching and attendance records.
// @BasePath /api/v1
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
	defer db.Close()
	store := docstore.NewPostgresStore(db)

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	userRepo := repository.NewUserRepository(store)
	timetableRepo := repository.NewTimetableRepository(store)
	attendanceRepo := repository.NewAttendanceRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	dispatcher := service.NewNotificationDispatcher(notificationRepo, logr,
		cfg.Notifications.DispatchWorkers, cfg.Notifications.DispatchBuffer)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	statsSvc := service.NewStatsService(service.StatsServiceParams{
		Attendance: attendanceRepo,
		Cache:      cacheSvc,
		Logger:     logr,
		Config: service.StatsServiceConfig{
			CacheTTL:           cfg.Dashboard.CacheTTL,
			RequiredPercentage: cfg.Notifications.LowAttendanceThreshold,
		},
	})

	inferenceSvc := service.NewInferenceService(service.InferenceServiceParams{
		Users:      userRepo,
		Timetables: timetableRepo,
		Attendance: attendanceRepo,
		Events:     dispatcher,
		Stats:      statsSvc,
		Metrics:    metrics,
		Logger:     logr,
		Config: service.InferenceServiceConfig{
			DefaultRadiusMeters: cfg.Geofence.DefaultRadiusMeters,
		},
	})

	var locationSvc *service.LocationService
	if cfg.Poller.Enabled {
		manager := scheduler.NewManager(ctx, scheduler.ManagerParams{
			Checker: inferenceSvc,
			Metrics: metrics,
			Logger:  logr,
			Config:  scheduler.Config{Interval: cfg.Poller.Interval},
		})
		defer manager.Stop()
		locationSvc = service.NewLocationService(userRepo, inferenceSvc, manager, validate, logr)
	} else {
		locationSvc = service.NewLocationService(userRepo, inferenceSvc, nil, validate, logr)
	}

	notificationSvc := service.NewNotificationService(service.NotificationServiceParams{
		Settings:   userRepo,
		List:       notificationRepo,
		Timetables: timetableRepo,
		Stats:      statsSvc,
		Events:     dispatcher,
		Logger:     logr,
		Config: service.NotificationServiceConfig{
			ReminderLead:           cfg.Notifications.ReminderLead,
			LowAttendanceThreshold: cfg.Notifications.LowAttendanceThreshold,
		},
	})
	defer notificationSvc.Close()

	timetableSvc := service.NewTimetableService(timetableRepo, notificationSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(service.AttendanceServiceParams{
		Repo:      attendanceRepo,
		Stats:     statsSvc,
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr,
	})
	authSvc := service.NewAuthService(service.AuthConfig{
		JWTSecret:   cfg.Auth.JWTSecret,
		AllowGuest:  cfg.Auth.AllowGuest,
		GuestUserID: cfg.Auth.GuestUserID,
	}, logr)

	profileSvc := service.NewProfileService(userRepo, validate, logr)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	locationHandler := handler.NewLocationHandler(locationSvc)
	dashboardHandler := handler.NewDashboardHandler(statsSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	api.Use(middleware.DailySchedule(notificationSvc, logr))
	{
		api.GET("/timetable", timetableHandler.Get)
		api.PUT("/timetable", timetableHandler.Save)
		api.GET("/timetable/today", timetableHandler.Today)

		api.GET("/attendance", attendanceHandler.List)
		api.POST("/attendance/manual", attendanceHandler.ManualMark)
		api.GET("/attendance/export", attendanceHandler.Export)

		api.POST("/location/check", locationHandler.Check)
		api.GET("/location/campus", locationHandler.Campus)
		api.PUT("/location/campus", locationHandler.SaveCampus)
		api.GET("/location/presence", locationHandler.Presence)

		api.GET("/dashboard", dashboardHandler.Stats)

		api.GET("/profile", profileHandler.Profile)
		api.PUT("/profile", profileHandler.Save)

		api.GET("/notifications", notificationHandler.List)
		api.GET("/notifications/settings", notificationHandler.Settings)
		api.PUT("/notifications/settings", notificationHandler.SaveSettings)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
