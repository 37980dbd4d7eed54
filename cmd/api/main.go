package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/config"
	"github.com/noah-isme/cubis-academy-api/internal/database"
	"github.com/noah-isme/cubis-academy-api/internal/handler"
	"github.com/noah-isme/cubis-academy-api/internal/middleware"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/internal/router"
	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
	"github.com/noah-isme/cubis-academy-api/pkg/events"
	"github.com/noah-isme/cubis-academy-api/pkg/mailer"
	"github.com/noah-isme/cubis-academy-api/pkg/storage"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level).With().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, level <= zerolog.DebugLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Redis is optional; without it every cache call falls through to the database.
	var cacheStore *cache.Cache
	if cfg.RedisURL == "" {
		logger.Warn().Msg("redis url not configured, caching disabled")
		cacheStore = cache.New(nil, logger)
	} else if redisClient, err := database.ConnectRedis(cfg.RedisURL); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, caching disabled")
		cacheStore = cache.New(nil, logger)
	} else {
		defer redisClient.Close()
		cacheStore = cache.New(redisClient, logger)
	}

	provider, err := storage.Default(cfg.Storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Storage.Provider).Msg("failed to configure storage")
	}

	mail, err := mailer.New(cfg.Email, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Email.Provider).Msg("failed to configure mailer")
	}

	natsConn, err := events.Connect(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, events disabled")
	}
	if natsConn != nil {
		defer natsConn.Close()
	}
	publisher := events.NewPublisher(natsConn, cfg.EventsPrefix, logger)

	validate := utils.NewValidator()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	fileRepo := repository.NewFileRecordRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	searchRepo := repository.NewSearchRepository(db)

	notifier := service.NewNotifier(mail, publisher, logger)
	activityService := service.NewActivityService(activityRepo, logger)
	uploadService := service.NewUploadService(provider, fileRepo, cfg.Storage.MaxUploadMB, logger)
	authService := service.NewAuthService(userRepo, studentRepo, teacherRepo, sessionRepo, cacheStore, notifier, validate, service.AuthConfig{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.JWTTTL,
		SessionTTL: cfg.SessionTTL,
	}, logger)
	catalogService := service.NewCatalogService(courseRepo, categoryRepo, cacheStore, logger)
	searchService := service.NewSearchService(searchRepo, cacheStore, cfg.SearchMode, cfg.SearchLanguage, logger)
	categoryService := service.NewCategoryService(categoryRepo, activityService, cacheStore, validate, logger)
	courseService := service.NewCourseService(courseRepo, categoryRepo, teacherRepo, uploadService, activityService, cacheStore, validate, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, studentRepo, activityService, notifier, cacheStore, validate, logger)
	paymentService := service.NewPaymentService(paymentRepo, studentRepo, uploadService, activityService, notifier, cacheStore, validate, logger)
	userAdminService := service.NewUserAdminService(userRepo, studentRepo, teacherRepo, sessionRepo, activityService, cacheStore, validate, logger)
	studentService := service.NewStudentService(userRepo, studentRepo, teacherRepo, enrollmentRepo, scoreRepo, attendanceRepo, uploadService, cacheStore, validate, logger)
	teacherService := service.NewTeacherService(teacherRepo, courseRepo, enrollmentRepo, scoreRepo, attendanceRepo, activityService, notifier, cacheStore, validate, logger)
	dashboardService := service.NewDashboardService(service.DashboardRepositories{
		Users:       userRepo,
		Students:    studentRepo,
		Teachers:    teacherRepo,
		Courses:     courseRepo,
		Enrollments: enrollmentRepo,
		Payments:    paymentRepo,
		Scores:      scoreRepo,
		Attendance:  attendanceRepo,
	}, cacheStore, cfg.DashboardCacheTTL, logger)
	reportService := service.NewReportService(enrollmentRepo, paymentRepo, userRepo, studentRepo, activityService, logger)

	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.Storage.MaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: errorHandler(logger),
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})

	deps := router.Dependencies{
		Health: handler.HealthStatus{
			CacheEnabled:    cacheStore.Enabled,
			StorageProvider: provider.Name(),
		},
		AuthHandler:            handler.NewAuthHandler(authService, logger),
		SessionHandler:         handler.NewSessionHandler(authService, logger),
		CatalogHandler:         handler.NewCatalogHandler(catalogService, logger),
		SearchHandler:          handler.NewSearchHandler(searchService, logger),
		UploadHandler:          handler.NewUploadHandler(uploadService, logger),
		StudentHandler:         handler.NewStudentHandler(studentService, enrollmentService, paymentService, dashboardHandler, logger),
		TeacherHandler:         handler.NewTeacherHandler(teacherService, dashboardHandler, logger),
		DashboardHandler:       dashboardHandler,
		AdminCourseHandler:     handler.NewAdminCourseHandler(courseService, logger),
		AdminCategoryHandler:   handler.NewAdminCategoryHandler(categoryService, logger),
		AdminUserHandler:       handler.NewAdminUserHandler(userAdminService, logger),
		AdminEnrollmentHandler: handler.NewAdminEnrollmentHandler(enrollmentService, logger),
		AdminPaymentHandler:    handler.NewAdminPaymentHandler(paymentService, logger),
		ReportHandler:          handler.NewReportHandler(reportService, logger),
		ActivityHandler:        handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:          middleware.JWTProtected(cfg.JWTSecret, authService),
		AuthRateLimit:          middleware.RateLimit("auth", 10, time.Minute),
	}
	if cfg.Storage.Provider == config.StorageLocal {
		deps.StaticUploads = cfg.Storage.LocalDir
		deps.UploadsPrefix = cfg.Storage.PublicURL
	}
	router.Register(app, cfg, deps)

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("starting http server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

// errorHandler renders errors that escape handlers, such as unknown routes, in the API envelope.
func errorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		} else {
			reqLogger := middleware.RequestLogger(c, logger)
			reqLogger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		}
		return utils.SendError(c, status, message)
	}
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
