package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

// AdminPaymentHandler lists payments and applies status transitions.
type AdminPaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewAdminPaymentHandler constructs the handler.
func NewAdminPaymentHandler(service service.PaymentService, logger zerolog.Logger) *AdminPaymentHandler {
	return &AdminPaymentHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_payment_handler").Logger(),
	}
}

// Register attaches payment admin routes to the router group.
func (h *AdminPaymentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Patch("/:id/status", h.updateStatus)
}

func (h *AdminPaymentHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePage(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}
	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}
	courseID, err := parseQueryUint(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	result, err := h.service.List(c.UserContext(), dto.PaymentListRequest{
		Page:      page,
		PageSize:  pageSize,
		Status:    strings.TrimSpace(c.Query("status")),
		Method:    strings.ToLower(strings.TrimSpace(c.Query("method"))),
		StudentID: studentID,
		CourseID:  courseID,
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list payments")
	}
	return sendList(c, "payments retrieved", result)
}

func (h *AdminPaymentHandler) updateStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payment id")
	}
	var req dto.PaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	payment, err := h.service.UpdateStatus(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update payment")
	}
	return utils.SendSuccess(c, "payment updated", payment)
}
