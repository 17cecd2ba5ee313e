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

	_ "github.com/noah-isme/course-pulse-api/api/swagger"
	"github.com/noah-isme/course-pulse-api/internal/handler"
	"github.com/noah-isme/course-pulse-api/internal/middleware"
	"github.com/noah-isme/course-pulse-api/internal/mirror"
	"github.com/noah-isme/course-pulse-api/internal/service"
	"github.com/noah-isme/course-pulse-api/internal/store"
	"github.com/noah-isme/course-pulse-api/pkg/cache"
	"github.com/noah-isme/course-pulse-api/pkg/config"
	"github.com/noah-isme/course-pulse-api/pkg/export"
	"github.com/noah-isme/course-pulse-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-pulse-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-pulse-api/pkg/middleware/requestid"
)

// @title Course Pulse API
// @version 0.1.0
// @description Course health dashboard backend for professors
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New()
	metricsSvc := service.NewMetricsService()
	st.Subscribe(func(kind store.Kind) {
		metricsSvc.RecordStoreMutation(string(kind))
	})

	var cacheSvc *service.CacheService
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, pulse cache disabled", "error", err)
		} else {
			cacheSvc = service.NewCacheService(service.NewRedisCacheRepository(client), metricsSvc, cfg.Pulse.CacheTTL, logr, true)
		}
	}

	var mirrorDB *mirror.Postgres
	if cfg.Mirror.Enabled {
		mirrorDB, err = mirror.Connect(cfg.Mirror)
		if err != nil {
			logr.Sugar().Warnw("mirror unreachable, running local-only", "error", err)
			mirrorDB = nil
		}
	}

	var syncSvc *service.SyncService
	var bootSvc *service.BootstrapService
	if mirrorDB != nil {
		syncSvc = service.NewSyncService(mirrorDB, cfg.Sync, cfg.Mirror.CallTimeout, metricsSvc, logr)
		bootSvc = service.NewBootstrapService(st, mirrorDB, cfg.Mirror.LoadTimeout, logr)
	} else {
		syncSvc = service.NewSyncService(nil, cfg.Sync, cfg.Mirror.CallTimeout, metricsSvc, logr)
		bootSvc = service.NewBootstrapService(st, nil, cfg.Mirror.LoadTimeout, logr)
	}
	syncSvc.Start(ctx)
	defer syncSvc.Stop()

	bootSvc.Load(ctx)

	validate := validator.New()
	courseSvc := service.NewCourseService(service.CourseServiceParams{
		Store:           st,
		Sync:            syncSvc,
		Logger:          logr,
		DefaultPageSize: cfg.Query.DefaultPageSize,
		MaxPageSize:     cfg.Query.MaxPageSize,
	})
	studentSvc := service.NewStudentService(st, cfg.Query.DefaultPageSize, cfg.Query.MaxPageSize, logr)
	pulseSvc := service.NewPulseService(st, cacheSvc, cfg.Pulse.CacheTTL, logr)
	lectureSvc := service.NewLectureService(st, logr)
	feedbackSvc := service.NewFeedbackService(st, logr)
	assessmentSvc := service.NewAssessmentService(st, logr)
	gradeSvc := service.NewGradeService(st, syncSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(st, syncSvc, validate, logr)
	bulkSvc := service.NewBulkService(st, syncSvc, logr)
	exportSvc := service.NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registry := handler.Registry{
		Courses:     handler.NewCourseHandler(courseSvc, pulseSvc),
		Students:    handler.NewStudentHandler(studentSvc),
		Lectures:    handler.NewLectureHandler(lectureSvc, feedbackSvc),
		Assessments: handler.NewAssessmentHandler(assessmentSvc, gradeSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Bulk:        handler.NewBulkHandler(bulkSvc, studentSvc, courseSvc, exportSvc),
	}
	registry.Register(r.Group(cfg.APIPrefix))

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
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("shutdown incomplete", "error", err)
	}
}
