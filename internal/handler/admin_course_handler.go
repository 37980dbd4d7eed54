package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

// AdminCourseHandler manages courses, their thumbnails and class schedules.
type AdminCourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewAdminCourseHandler constructs the handler.
func NewAdminCourseHandler(service service.CourseService, logger zerolog.Logger) *AdminCourseHandler {
	return &AdminCourseHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_course_handler").Logger(),
	}
}

// Register attaches course admin routes to the router group.
func (h *AdminCourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/thumbnail", h.uploadThumbnail)
	router.Post("/:id/schedules", h.addSchedule)
	router.Delete("/:id/schedules/:scheduleId", h.deleteSchedule)
}

func (h *AdminCourseHandler) list(c *fiber.Ctx) error {
	req, err := courseListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list courses")
	}
	return sendList(c, "courses retrieved", result)
}

func (h *AdminCourseHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	course, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load course")
	}
	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *AdminCourseHandler) create(c *fiber.Ctx) error {
	var req dto.CourseCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Create(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create course")
	}
	return utils.SendCreated(c, "course created", course)
}

func (h *AdminCourseHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}
	var req dto.CourseUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Update(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update course")
	}
	return utils.SendSuccess(c, "course updated", course)
}

func (h *AdminCourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete course")
	}
	return utils.SendSuccess(c, "course deleted", nil)
}

func (h *AdminCourseHandler) uploadThumbnail(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	course, err := h.service.UploadThumbnail(c.UserContext(), actorFromContext(c), id, file)
	if err != nil {
		return respondError(c, h.logger, err, "failed to upload thumbnail")
	}
	return utils.SendSuccess(c, "thumbnail updated", course)
}

func (h *AdminCourseHandler) addSchedule(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}
	var req dto.ScheduleCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	schedule, err := h.service.AddSchedule(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to add schedule")
	}
	return utils.SendCreated(c, "schedule created", schedule)
}

func (h *AdminCourseHandler) deleteSchedule(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}
	scheduleID, err := parseIDParam(c, "scheduleId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid schedule id")
	}

	if err := h.service.DeleteSchedule(c.UserContext(), actorFromContext(c), id, scheduleID); err != nil {
		return respondError(c, h.logger, err, "failed to delete schedule")
	}
	return utils.SendSuccess(c, "schedule deleted", nil)
}
