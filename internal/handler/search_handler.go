package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

// SearchHandler serves course search and typeahead suggestions.
type SearchHandler struct {
	service service.SearchService
	logger  zerolog.Logger
}

// NewSearchHandler constructs the handler.
func NewSearchHandler(service service.SearchService, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		logger:  logger.With().Str("component", "search_handler").Logger(),
	}
}

// Register wires search routes.
func (h *SearchHandler) Register(router fiber.Router) {
	router.Get("/courses", h.courses)
	router.Get("/suggestions", h.suggestions)
}

func searchQuery(c *fiber.Ctx) string {
	query := c.Query("q")
	if query == "" {
		query = c.Query("query")
	}
	return strings.TrimSpace(query)
}

func (h *SearchHandler) courses(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil || offset < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}
	categoryID, err := parseQueryUint(c, "category_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid category id")
	}

	result, err := h.service.SearchCourses(c.UserContext(), dto.SearchRequest{
		Query:      searchQuery(c),
		CategoryID: categoryID,
		Level:      c.Query("level"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return respondError(c, h.logger, err, "search failed")
	}
	return utils.SendSuccess(c, "search results", result)
}

func (h *SearchHandler) suggestions(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	result, err := h.service.Suggestions(c.UserContext(), searchQuery(c), limit)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load suggestions")
	}
	setCacheHeader(c, result.CacheHit)
	return utils.SendSuccess(c, "suggestions", result)
}
