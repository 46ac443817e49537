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
	"go.uber.org/zap"

	_ "github.com/campusops/classtrack-api/api/swagger"
	"github.com/campusops/classtrack-api/internal/handler"
	"github.com/campusops/classtrack-api/internal/middleware"
	"github.com/campusops/classtrack-api/internal/models"
	"github.com/campusops/classtrack-api/internal/repository"
	"github.com/campusops/classtrack-api/internal/service"
	"github.com/campusops/classtrack-api/pkg/cache"
	"github.com/campusops/classtrack-api/pkg/config"
	"github.com/campusops/classtrack-api/pkg/database"
	"github.com/campusops/classtrack-api/pkg/logger"
	corsmiddleware "github.com/campusops/classtrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusops/classtrack-api/pkg/middleware/requestid"
	"github.com/campusops/classtrack-api/pkg/storage"
)

// @title ClassTrack API
// @version 1.0.0
// @description Campus classroom availability and booking service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}
	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	roomRepo := repository.NewClassroomRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	userRepo := repository.NewUserRepository(db)

	timeCtxSvc, err := service.NewTimeContextService(slotRepo, cfg.Campus.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid campus timezone", "timezone", cfg.Campus.Timezone, "error", err)
	}

	statusSvc := service.NewStatusService(service.StatusServiceParams{
		Rooms:        roomRepo,
		Timetable:    timetableRepo,
		Reservations: reservationRepo,
		Slots:        slotRepo,
		TimeContext:  timeCtxSvc,
		Cache:        cacheSvc,
		Logger:       logr,
		CacheTTL:     cfg.Dashboard.CacheTTL,
	})

	classroomSvc := service.NewClassroomService(service.ClassroomServiceParams{
		Rooms:        roomRepo,
		Status:       statusSvc,
		Timetable:    timetableRepo,
		Reservations: reservationRepo,
		TimeContext:  timeCtxSvc,
		Cache:        cacheSvc,
		Logger:       logr,
	})

	reservationSvc := service.NewReservationService(reservationRepo, roomRepo, timeCtxSvc, nil, cacheSvc, logr)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})

	var archive *storage.ExportArchive
	if cfg.Exports.ArchiveDir != "" {
		archive, err = storage.NewExportArchive(cfg.Exports.ArchiveDir)
		if err != nil {
			logr.Warn("export archive unavailable", zap.Error(err))
		} else if removed, err := archive.CleanupOlderThan(cfg.Exports.ArchiveRetention); err != nil {
			logr.Warn("export archive cleanup failed", zap.Error(err))
		} else if len(removed) > 0 {
			logr.Info("pruned archived exports", zap.Int("count", len(removed)))
		}
	}

	exportParams := service.ExportServiceParams{
		Reservations: reservationRepo,
		Timetable:    timetableRepo,
		Rooms:        roomRepo,
		Logger:       logr,
	}
	if archive != nil {
		exportParams.Archive = archive
	}
	exportSvc := service.NewExportService(exportParams)

	sweeper := service.NewSweeperService(roomRepo, timeCtxSvc, metricsSvc, logr, cfg.Sweeper.Interval)

	classroomHandler := handler.NewClassroomHandler(statusSvc, classroomSvc)
	reservationHandler := handler.NewReservationHandler(reservationSvc, statusSvc)
	timeSlotHandler := handler.NewTimeSlotHandler(slotRepo, timeCtxSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	exportHandler := handler.NewExportHandler(exportSvc, timeCtxSvc)
	qrHandler := handler.NewQRHandler(roomRepo, cfg.BaseURL)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/verify", middleware.JWT(authSvc), authHandler.Verify)

		api.GET("/rooms", classroomHandler.List)
		api.GET("/rooms/:id", classroomHandler.Get)
		api.GET("/rooms/:id/slots", classroomHandler.AvailableSlots)
		api.GET("/rooms/:id/qr", qrHandler.Room)

		api.GET("/slots", timeSlotHandler.List)
		api.GET("/slots/current", timeSlotHandler.Current)

		api.GET("/reservations", reservationHandler.List)
		api.GET("/reservations/check", reservationHandler.Check)

		protected := api.Group("", middleware.JWT(authSvc))
		{
			protected.POST("/reservations", reservationHandler.Create)
			protected.DELETE("/reservations/:id", reservationHandler.Delete)

			admin := protected.Group("", middleware.RequireRoles(models.RoleAdmin))
			{
				admin.PUT("/rooms/:id/override", classroomHandler.SetOverride)
				admin.DELETE("/rooms/:id/override", classroomHandler.ClearOverride)
			}

			if cfg.Exports.Enabled {
				protected.GET("/exports/reservations", exportHandler.Reservations)
				protected.GET("/exports/rooms/:id/schedule", exportHandler.RoomSchedule)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sweeper.Enabled {
		sweeper.Start(ctx)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
