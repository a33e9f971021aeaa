package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-registrar-api/api/swagger"
	"github.com/noah-isme/sma-registrar-api/internal/dto"
	"github.com/noah-isme/sma-registrar-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-registrar-api/internal/middleware"
	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/repository"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	"github.com/noah-isme/sma-registrar-api/internal/service"
	"github.com/noah-isme/sma-registrar-api/pkg/cache"
	"github.com/noah-isme/sma-registrar-api/pkg/config"
	"github.com/noah-isme/sma-registrar-api/pkg/database"
	"github.com/noah-isme/sma-registrar-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-registrar-api/pkg/middleware/requestid"
)

// @title SMA Registrar API
// @version 1.0.0
// @description Class scheduling, timetables and academic calendar for the registrar office.
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 15 * time.Second

type handlers struct {
	schedules   *handler.ScheduleHandler
	timetables  *handler.TimetableHandler
	eligibility *handler.EligibilityHandler
	periods     *handler.AcademicPeriodHandler
	metrics     *handler.MetricsHandler
}

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

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Timetable.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, timetable cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	metrics := service.NewMetricsService()
	timetableSvc, h := wire(cfg, logr, db, redisClient, metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	registerRoutes(r.Group(cfg.APIPrefix), h)

	warmCtx, stopWarm := context.WithCancel(ctx)
	timetableSvc.StartWarmer(warmCtx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		serverErrors <- srv.ListenAndServe()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
		}
	case sig := <-signals:
		logr.Info("shutdown requested", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
		_ = srv.Close()
	}
	stopWarm()
	timetableSvc.StopWarmer()
	logr.Info("server stopped")
}

func wire(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client, metrics *service.MetricsService) (*service.TimetableService, handlers) {
	scheduleRepo := repository.NewScheduleRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	schoolYearRepo := repository.NewSchoolYearRepository(db)
	periodRepo := repository.NewAcademicPeriodRepository(db)

	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}

	// A typed nil *CacheRepository would defeat the service's nil check.
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		checks["redis"] = func(ctx context.Context) error { return cache.Ping(ctx, redisClient) }
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Timetable.CacheTTL, logr, cacheRepo != nil)

	slots, err := scheduling.NewTimeSlots(cfg.Scheduling.DayStart, cfg.Scheduling.DayEnd, cfg.Scheduling.SlotMinutes)
	if err != nil {
		logr.Warn("invalid timetable window, using defaults", zap.Error(err))
		slots = scheduling.DefaultTimeSlots()
	}

	timetableSvc := service.NewTimetableService(scheduleRepo, service.TimetableReaders{
		Sections:    sectionRepo,
		Subjects:    subjectRepo,
		Faculty:     facultyRepo,
		SchoolYears: schoolYearRepo,
	}, cacheSvc, metrics, logr, service.TimetableConfig{
		Slots:         slots,
		Days:          schoolDays(cfg.Scheduling.SchoolDays, logr),
		CacheTTL:      cfg.Timetable.CacheTTL,
		WarmerWorkers: cfg.Timetable.WarmerWorkers,
		WarmerRetries: cfg.Timetable.WarmerRetries,
		WarmerQueue:   cfg.Timetable.WarmerQueueLen,
	})

	validate := dto.NewValidator()
	scheduleSvc := service.NewScheduleService(scheduleRepo, db, validate, metrics, timetableSvc, logr, service.ScheduleServiceConfig{
		LoadCap: cfg.Scheduling.FacultyLoadCap,
	})
	periodSvc := service.NewAcademicPeriodService(periodRepo, schoolYearRepo, db, validate, logr)
	eligibilitySvc := service.NewEligibilityService(sectionRepo, subjectRepo, facultyRepo, scheduleRepo, logr)

	return timetableSvc, handlers{
		schedules:   handler.NewScheduleHandler(scheduleSvc),
		timetables:  handler.NewTimetableHandler(timetableSvc),
		eligibility: handler.NewEligibilityHandler(eligibilitySvc),
		periods:     handler.NewAcademicPeriodHandler(periodSvc),
		metrics:     handler.NewMetricsHandler(metrics, checks),
	}
}

func registerRoutes(api *gin.RouterGroup, h handlers) {
	schedules := api.Group("/schedules")
	schedules.GET("", h.schedules.List)
	schedules.POST("", h.schedules.Create)
	schedules.POST("/validate", h.schedules.Validate)
	schedules.POST("/bulk", h.schedules.BulkCreate)
	schedules.POST("/duration", h.schedules.Duration)
	schedules.GET("/:id", h.schedules.Get)
	schedules.PUT("/:id", h.schedules.Update)
	schedules.DELETE("/:id", h.schedules.Delete)

	sections := api.Group("/sections/:id")
	sections.GET("/schedules", h.schedules.ListBySection)
	sections.GET("/timetable", h.timetables.Section)
	sections.GET("/timetable/export", h.timetables.Export)
	sections.GET("/eligibility", h.eligibility.ForSection)

	faculty := api.Group("/faculty/:id")
	faculty.GET("/schedules", h.schedules.ListByFaculty)
	faculty.GET("/timetable", h.timetables.Faculty)

	periods := api.Group("/academic-periods")
	periods.GET("", h.periods.List)
	periods.POST("", h.periods.Create)
	periods.GET("/derive", h.periods.Derive)
	periods.GET("/:id", h.periods.Get)
	periods.PUT("/:id", h.periods.Update)
	periods.DELETE("/:id", h.periods.Delete)
	periods.POST("/:id/activate", h.periods.Activate)
	periods.POST("/:id/enrollment", h.periods.Enrollment)
}

func schoolDays(labels []string, logr *zap.Logger) []models.Weekday {
	days := make([]models.Weekday, 0, len(labels))
	for _, label := range labels {
		day, err := models.ParseWeekday(label)
		if err != nil {
			logr.Warn("ignoring school day", zap.String("day", label), zap.Error(err))
			continue
		}
		days = append(days, day)
	}
	return days
}
