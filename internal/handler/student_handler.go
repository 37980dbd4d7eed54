package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/middleware"
	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

// StudentHandler serves the student area.
type StudentHandler struct {
	students    service.StudentService
	enrollments service.EnrollmentService
	payments    service.PaymentService
	dashboard   *DashboardHandler
	logger      zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(
	students service.StudentService,
	enrollments service.EnrollmentService,
	payments service.PaymentService,
	dashboard *DashboardHandler,
	logger zerolog.Logger,
) *StudentHandler {
	return &StudentHandler{
		students:    students,
		enrollments: enrollments,
		payments:    payments,
		dashboard:   dashboard,
		logger:      logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student routes to a group already restricted to students.
func (h *StudentHandler) Register(router fiber.Router) {
	if h.dashboard != nil {
		router.Get("/dashboard", h.dashboard.Student)
	}
	router.Post("/enrollments", h.enroll)
	router.Get("/enrollments", h.listEnrollments)
	router.Get("/scores", h.scores)
	router.Get("/attendance", h.attendance)
	router.Get("/schedule", h.schedule)
	router.Get("/payments", h.listPayments)
	router.Post("/payments/:id/proof", h.uploadProof)
	router.Patch("/profile", h.updateProfile)
	router.Post("/profile/avatar", h.uploadAvatar)
}

func (h *StudentHandler) enroll(c *fiber.Ctx) error {
	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.enrollments.Enroll(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to enroll")
	}
	return utils.SendCreated(c, "enrollment created", result)
}

func (h *StudentHandler) listEnrollments(c *fiber.Ctx) error {
	enrollments, hit, err := h.enrollments.ListForStudent(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list enrollments")
	}
	setCacheHeader(c, hit)
	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}

func (h *StudentHandler) scores(c *fiber.Ctx) error {
	scores, err := h.students.Scores(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list scores")
	}
	return utils.SendSuccess(c, "scores retrieved", scores)
}

func (h *StudentHandler) attendance(c *fiber.Ctx) error {
	report, err := h.students.Attendance(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load attendance")
	}
	return utils.SendSuccess(c, "attendance retrieved", report)
}

func (h *StudentHandler) schedule(c *fiber.Ctx) error {
	entries, err := h.students.Schedule(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load schedule")
	}
	return utils.SendSuccess(c, "schedule retrieved", entries)
}

func (h *StudentHandler) listPayments(c *fiber.Ctx) error {
	payments, hit, err := h.payments.ListForStudent(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list payments")
	}
	setCacheHeader(c, hit)
	return utils.SendSuccess(c, "payments retrieved", payments)
}

func (h *StudentHandler) uploadProof(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payment id")
	}
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	payment, err := h.payments.UploadProof(c.UserContext(), middleware.UserID(c), id, file)
	if err != nil {
		return respondError(c, h.logger, err, "failed to upload payment proof")
	}
	return utils.SendSuccess(c, "payment proof uploaded", payment)
}

// updateProfile accepts JSON, or multipart with an optional avatar file.
func (h *StudentHandler) updateProfile(c *fiber.Ctx) error {
	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	ctx := c.UserContext()
	userID := middleware.UserID(c)
	user, err := h.students.UpdateProfile(ctx, userID, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update profile")
	}

	if file, fileErr := c.FormFile("avatar"); fileErr == nil {
		user, err = h.students.UploadAvatar(ctx, userID, file)
		if err != nil {
			return respondError(c, h.logger, err, "failed to upload avatar")
		}
	}
	return utils.SendSuccess(c, "profile updated", user)
}

func (h *StudentHandler) uploadAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	user, err := h.students.UploadAvatar(c.UserContext(), middleware.UserID(c), file)
	if err != nil {
		return respondError(c, h.logger, err, "failed to upload avatar")
	}
	return utils.SendSuccess(c, "avatar updated", user)
}
