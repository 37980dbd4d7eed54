package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/middleware"
	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

// DashboardHandler serves the role dashboards.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Student returns the calling student's dashboard.
func (h *DashboardHandler) Student(c *fiber.Ctx) error {
	result, err := h.service.Student(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load dashboard")
	}
	setCacheHeader(c, result.CacheHit)
	return utils.SendSuccess(c, "dashboard retrieved", result)
}

// Teacher returns the calling teacher's dashboard.
func (h *DashboardHandler) Teacher(c *fiber.Ctx) error {
	result, err := h.service.Teacher(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load dashboard")
	}
	setCacheHeader(c, result.CacheHit)
	return utils.SendSuccess(c, "dashboard retrieved", result)
}

// Admin returns platform-wide totals.
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	result, err := h.service.Admin(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to load dashboard")
	}
	setCacheHeader(c, result.CacheHit)
	return utils.SendSuccess(c, "dashboard retrieved", result)
}
