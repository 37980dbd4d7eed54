package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
	"github.com/noah-isme/cubis-academy-api/pkg/storage"
)

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{service.ErrInvalidToken, fiber.StatusUnauthorized},
	{service.ErrSessionRevoked, fiber.StatusUnauthorized},
	{service.ErrAccountInactive, fiber.StatusForbidden},
	{service.ErrForbidden, fiber.StatusForbidden},

	{service.ErrUserNotFound, fiber.StatusNotFound},
	{service.ErrProfileNotFound, fiber.StatusNotFound},
	{service.ErrSessionNotFound, fiber.StatusNotFound},
	{service.ErrCourseNotFound, fiber.StatusNotFound},
	{service.ErrCategoryNotFound, fiber.StatusNotFound},
	{service.ErrScheduleNotFound, fiber.StatusNotFound},
	{service.ErrTeacherNotFound, fiber.StatusNotFound},
	{service.ErrEnrollmentNotFound, fiber.StatusNotFound},
	{service.ErrPaymentNotFound, fiber.StatusNotFound},

	{service.ErrEmailTaken, fiber.StatusConflict},
	{service.ErrAlreadyEnrolled, fiber.StatusConflict},
	{service.ErrCategoryInUse, fiber.StatusConflict},
	{service.ErrCourseFull, fiber.StatusConflict},
	{service.ErrInvalidTransition, fiber.StatusConflict},
	{service.ErrEnrollmentClosed, fiber.StatusConflict},
	{service.ErrPaymentNotPending, fiber.StatusConflict},

	{service.ErrCourseUnavailable, fiber.StatusUnprocessableEntity},
	{service.ErrInvalidSchedule, fiber.StatusUnprocessableEntity},
	{service.ErrInvalidScore, fiber.StatusUnprocessableEntity},

	{service.ErrInvalidDate, fiber.StatusBadRequest},
	{service.ErrFileRequired, fiber.StatusBadRequest},
	{service.ErrUnsupportedReport, fiber.StatusBadRequest},
	{storage.ErrTypeNotAllowed, fiber.StatusBadRequest},
	{storage.ErrEmptyFile, fiber.StatusBadRequest},
	{storage.ErrInvalidKey, fiber.StatusBadRequest},
	{storage.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge},
}

// statusFor maps a service error to its HTTP status, or 500 when unknown.
func statusFor(err error) int {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return fiber.StatusBadRequest
	}
	for _, candidate := range errorStatuses {
		if errors.Is(err, candidate.err) {
			return candidate.status
		}
	}
	return fiber.StatusInternalServerError
}

// respondError writes the error envelope. Unknown errors are logged and hidden behind fallback.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", fieldErrors(validationErrors))
	}

	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		reqLogger := requestLogger(logger, c)
		reqLogger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, status, fallback)
	}
	return utils.SendError(c, status, err.Error())
}

func fieldErrors(errs validator.ValidationErrors) []FieldError {
	details := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		details = append(details, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return details
}
