package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

// CatalogHandler serves the public course catalog.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// Register wires catalog routes.
func (h *CatalogHandler) Register(router fiber.Router) {
	router.Get("/courses", h.listCourses)
	router.Get("/courses/:id", h.getCourse)
	router.Get("/categories", h.listCategories)
}

func (h *CatalogHandler) listCourses(c *fiber.Ctx) error {
	req, err := courseListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, hit, err := h.service.ListCourses(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list courses")
	}
	setCacheHeader(c, hit)
	return sendList(c, "courses retrieved", result)
}

func (h *CatalogHandler) getCourse(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	course, hit, err := h.service.GetCourse(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load course")
	}
	setCacheHeader(c, hit)
	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CatalogHandler) listCategories(c *fiber.Ctx) error {
	categories, hit, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list categories")
	}
	setCacheHeader(c, hit)
	return utils.SendSuccess(c, "categories retrieved", categories)
}

type queryError string

func (e queryError) Error() string { return string(e) }

// courseListRequest reads the filters shared by the public and admin course listings.
func courseListRequest(c *fiber.Ctx) (dto.CourseListRequest, error) {
	page, pageSize, err := parsePage(c)
	if err != nil {
		return dto.CourseListRequest{}, queryError("invalid pagination")
	}
	categoryID, err := parseQueryUint(c, "category_id")
	if err != nil {
		return dto.CourseListRequest{}, queryError("invalid category id")
	}
	teacherID, err := parseQueryUint(c, "teacher_id")
	if err != nil {
		return dto.CourseListRequest{}, queryError("invalid teacher id")
	}

	return dto.CourseListRequest{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: categoryID,
		Category:   strings.TrimSpace(c.Query("category")),
		Level:      strings.ToLower(strings.TrimSpace(c.Query("level"))),
		Search:     strings.TrimSpace(c.Query("search")),
		Sort:       strings.TrimSpace(c.Query("sort")),
		Status:     strings.ToLower(strings.TrimSpace(c.Query("status"))),
		TeacherID:  teacherID,
	}, nil
}
