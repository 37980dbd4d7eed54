package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/cubis-academy-api/internal/config"
	"github.com/noah-isme/cubis-academy-api/internal/handler"
	"github.com/noah-isme/cubis-academy-api/internal/middleware"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	Health handler.HealthStatus

	AuthHandler      *handler.AuthHandler
	SessionHandler   *handler.SessionHandler
	CatalogHandler   *handler.CatalogHandler
	SearchHandler    *handler.SearchHandler
	UploadHandler    *handler.UploadHandler
	StudentHandler   *handler.StudentHandler
	TeacherHandler   *handler.TeacherHandler
	DashboardHandler *handler.DashboardHandler

	AdminCourseHandler     *handler.AdminCourseHandler
	AdminCategoryHandler   *handler.AdminCategoryHandler
	AdminUserHandler       *handler.AdminUserHandler
	AdminEnrollmentHandler *handler.AdminEnrollmentHandler
	AdminPaymentHandler    *handler.AdminPaymentHandler
	ReportHandler          *handler.ReportHandler
	ActivityHandler        *handler.ActivityHandler

	JWTMiddleware fiber.Handler
	AuthRateLimit fiber.Handler
	StaticUploads string
	UploadsPrefix string
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())
	if deps.StaticUploads != "" && deps.UploadsPrefix != "" {
		app.Static(deps.UploadsPrefix, deps.StaticUploads)
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Health))

	protect := deps.JWTMiddleware
	if protect == nil {
		protect = func(c *fiber.Ctx) error { return c.Next() }
	}
	limit := deps.AuthRateLimit
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public catalog & search
	if deps.CatalogHandler != nil {
		deps.CatalogHandler.Register(api)
	}
	if deps.SearchHandler != nil {
		deps.SearchHandler.Register(api.Group("/search"))
	}

	// Auth & sessions
	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), protect, limit)
	}
	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(api.Group("/sessions", protect))
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(api.Group("/uploads", protect))
	}

	// Student area
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/student", protect, middleware.RequireRole(models.RoleStudent)))
	}

	// Teacher area
	if deps.TeacherHandler != nil {
		deps.TeacherHandler.Register(api.Group("/teacher", protect, middleware.RequireRole(models.RoleTeacher)))
	}

	// Admin area
	admin := api.Group("/admin", protect, middleware.RequireRole(models.RoleAdmin))
	if deps.DashboardHandler != nil {
		admin.Get("/dashboard", deps.DashboardHandler.Admin)
	}
	if deps.AdminCourseHandler != nil {
		deps.AdminCourseHandler.Register(admin.Group("/courses"))
	}
	if deps.AdminCategoryHandler != nil {
		deps.AdminCategoryHandler.Register(admin.Group("/categories"))
	}
	if deps.AdminUserHandler != nil {
		deps.AdminUserHandler.Register(admin.Group("/users"))
	}
	if deps.AdminEnrollmentHandler != nil {
		deps.AdminEnrollmentHandler.Register(admin.Group("/enrollments"))
	}
	if deps.AdminPaymentHandler != nil {
		deps.AdminPaymentHandler.Register(admin.Group("/payments"))
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(admin.Group("/reports"))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(admin.Group("/activity"))
	}
}
