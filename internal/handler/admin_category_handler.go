package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

// AdminCategoryHandler manages course categories.
type AdminCategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewAdminCategoryHandler constructs the handler.
func NewAdminCategoryHandler(service service.CategoryService, logger zerolog.Logger) *AdminCategoryHandler {
	return &AdminCategoryHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_category_handler").Logger(),
	}
}

// Register attaches category admin routes to the router group.
func (h *AdminCategoryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AdminCategoryHandler) list(c *fiber.Ctx) error {
	categories, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list categories")
	}
	return utils.SendSuccess(c, "categories retrieved", categories)
}

func (h *AdminCategoryHandler) create(c *fiber.Ctx) error {
	var req dto.CategoryCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	category, err := h.service.Create(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create category")
	}
	return utils.SendCreated(c, "category created", category)
}

func (h *AdminCategoryHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid category id")
	}
	var req dto.CategoryUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	category, err := h.service.Update(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update category")
	}
	return utils.SendSuccess(c, "category updated", category)
}

func (h *AdminCategoryHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid category id")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete category")
	}
	return utils.SendSuccess(c, "category deleted", nil)
}
