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

	_ "github.com/salvaalejos/ceitm-web/api/swagger"
	"github.com/salvaalejos/ceitm-web/internal/handler"
	"github.com/salvaalejos/ceitm-web/internal/repository"
	"github.com/salvaalejos/ceitm-web/internal/service"
	"github.com/salvaalejos/ceitm-web/pkg/cache"
	"github.com/salvaalejos/ceitm-web/pkg/config"
	"github.com/salvaalejos/ceitm-web/pkg/database"
	"github.com/salvaalejos/ceitm-web/pkg/logger"
	"github.com/salvaalejos/ceitm-web/pkg/mailer"
	corsmiddleware "github.com/salvaalejos/ceitm-web/pkg/middleware/cors"
	reqidmiddleware "github.com/salvaalejos/ceitm-web/pkg/middleware/requestid"
	"github.com/salvaalejos/ceitm-web/pkg/storage"
)

// @title CEITM Web API
// @version 1.0.0
// @description Portal administrativo del Consejo Estudiantil del ITM
// @BasePath /api/v1
// @schemes http https
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	cacheEnabled := err == nil
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, cache and rate limiting disabled", "error", err)
	}

	mailr, err := mailer.New(cfg.Mail)
	if err != nil {
		logr.Sugar().Fatalw("failed to init mailer", "error", err)
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.Domain)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload store", "error", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if cacheEnabled {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close()
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, 10*time.Minute, logr, cacheEnabled)

	notifications := service.NewNotificationService(mailr, cfg.Notifications, metrics, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifications.Start(ctx)
	defer notifications.Stop()

	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	careerRepo := repository.NewCareerRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	scholarshipRepo := repository.NewScholarshipRepository(db)
	applicationRepo := repository.NewApplicationRepository(db, auditRepo)
	complaintRepo := repository.NewComplaintRepository(db)
	mapRepo := repository.NewMapRepository(db)
	newsRepo := repository.NewNewsRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	convenioRepo := repository.NewConvenioRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	sanctionRepo := repository.NewSanctionRepository(db)

	authSvc := service.NewAuthService(userRepo, tokenRepo, auditRepo, validate, logr, cfg.JWT)
	userSvc := service.NewUserService(userRepo, tokenRepo, auditRepo, validate, logr)
	careerSvc := service.NewCareerService(careerRepo, auditRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, auditRepo, logr)
	scholarshipSvc := service.NewScholarshipService(scholarshipRepo, careerRepo, auditRepo, validate, logr)
	applicationSvc := service.NewApplicationService(applicationRepo, scholarshipRepo, studentRepo, notifications, validate, logr)
	complaintSvc := service.NewComplaintService(complaintRepo, notifications, auditRepo, validate, logr, cfg.Complaints.TrackingPrefix)
	mapSvc := service.NewMapService(mapRepo, auditRepo, validate, logr)
	newsSvc := service.NewNewsService(newsRepo, auditRepo, validate, logr)
	documentSvc := service.NewDocumentService(documentRepo, auditRepo, validate, logr)
	convenioSvc := service.NewConvenioService(convenioRepo, auditRepo, validate, logr)
	shiftSvc := service.NewShiftService(shiftRepo, auditRepo, validate, logr)
	sanctionSvc := service.NewSanctionService(sanctionRepo, userRepo, auditRepo, validate, logr)
	auditSvc := service.NewAuditService(auditRepo, logr)

	handlers := &handlerSet{
		auth:         handler.NewAuthHandler(authSvc),
		users:        handler.NewUserHandler(userSvc),
		careers:      handler.NewCareerHandler(careerSvc),
		students:     handler.NewStudentHandler(studentSvc),
		scholarships: handler.NewScholarshipHandler(scholarshipSvc, cacheSvc),
		applications: handler.NewApplicationHandler(applicationSvc, metrics),
		complaints:   handler.NewComplaintHandler(complaintSvc),
		campusMap:    handler.NewMapHandler(mapSvc, cacheSvc),
		news:         handler.NewNewsHandler(newsSvc, cacheSvc),
		documents:    handler.NewDocumentHandler(documentSvc),
		convenios:    handler.NewConvenioHandler(convenioSvc),
		shifts:       handler.NewShiftHandler(shiftSvc),
		sanctions:    handler.NewSanctionHandler(sanctionSvc),
		audit:        handler.NewAuditHandler(auditSvc),
		uploads:      handler.NewUploadHandler(store, cfg.Uploads.MaxFileSizeBytes),
		metrics:      handler.NewMetricsHandler(metrics),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", handlers.metrics.Expose)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.Static("/static", store.Dir())

	registerRoutes(r, cfg, handlers, authSvc, metrics, cacheRepo, logr)

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
