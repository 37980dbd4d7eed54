package handler

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/service"
)

// ReportHandler streams CSV, XLSX and PDF exports.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches report routes to the router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/:kind", h.export)
}

func (h *ReportHandler) export(c *fiber.Ctx) error {
	format := strings.ToLower(strings.TrimSpace(c.Query("format", "csv")))
	file, err := h.service.Export(c.UserContext(), actorFromContext(c), c.Params("kind"), format, c.Query("status"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to export report")
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.FileName))
	return c.Status(fiber.StatusOK).Send(file.Content)
}
