package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/middleware"
	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

// TeacherHandler serves the teacher area.
type TeacherHandler struct {
	service   service.TeacherService
	dashboard *DashboardHandler
	logger    zerolog.Logger
}

// NewTeacherHandler constructs the handler.
func NewTeacherHandler(service service.TeacherService, dashboard *DashboardHandler, logger zerolog.Logger) *TeacherHandler {
	return &TeacherHandler{
		service:   service,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "teacher_handler").Logger(),
	}
}

// Register attaches teacher routes to a group already restricted to teachers.
func (h *TeacherHandler) Register(router fiber.Router) {
	if h.dashboard != nil {
		router.Get("/dashboard", h.dashboard.Teacher)
	}
	router.Get("/courses", h.courses)
	router.Get("/courses/:id/students", h.courseStudents)
	router.Post("/scores", h.recordScore)
	router.Post("/attendance", h.recordAttendance)
	router.Patch("/enrollments/:id/progress", h.updateProgress)
}

func (h *TeacherHandler) courses(c *fiber.Ctx) error {
	courses, err := h.service.Courses(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list courses")
	}
	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *TeacherHandler) courseStudents(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	students, err := h.service.CourseStudents(c.UserContext(), middleware.UserID(c), courseID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list students")
	}
	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *TeacherHandler) recordScore(c *fiber.Ctx) error {
	var req dto.ScoreCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	score, err := h.service.RecordScore(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to record score")
	}
	return utils.SendCreated(c, "score recorded", score)
}

func (h *TeacherHandler) recordAttendance(c *fiber.Ctx) error {
	var req dto.AttendanceBulkRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	records, err := h.service.RecordAttendance(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to record attendance")
	}
	return utils.SendSuccess(c, "attendance recorded", records)
}

func (h *TeacherHandler) updateProgress(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid enrollment id")
	}
	var req dto.ProgressUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	enrollment, err := h.service.UpdateProgress(c.UserContext(), middleware.UserID(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update progress")
	}
	return utils.SendSuccess(c, "progress updated", enrollment)
}
