package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

// AdminEnrollmentHandler lists enrollments and applies status transitions.
type AdminEnrollmentHandler struct {
	service service.EnrollmentService
	logger  zerolog.Logger
}

// NewAdminEnrollmentHandler constructs the handler.
func NewAdminEnrollmentHandler(service service.EnrollmentService, logger zerolog.Logger) *AdminEnrollmentHandler {
	return &AdminEnrollmentHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_enrollment_handler").Logger(),
	}
}

// Register attaches enrollment admin routes to the router group.
func (h *AdminEnrollmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Patch("/:id/status", h.updateStatus)
}

func (h *AdminEnrollmentHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePage(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}
	courseID, err := parseQueryUint(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}
	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	result, err := h.service.List(c.UserContext(), dto.EnrollmentListRequest{
		Page:      page,
		PageSize:  pageSize,
		Status:    strings.ToLower(strings.TrimSpace(c.Query("status"))),
		CourseID:  courseID,
		StudentID: studentID,
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list enrollments")
	}
	return sendList(c, "enrollments retrieved", result)
}

func (h *AdminEnrollmentHandler) updateStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid enrollment id")
	}
	var req dto.EnrollmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	enrollment, err := h.service.UpdateStatus(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update enrollment")
	}
	return utils.SendSuccess(c, "enrollment updated", enrollment)
}
