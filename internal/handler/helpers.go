package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/middleware"
	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

var errInvalidID = errors.New("invalid id")

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseQueryUint(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

func parseQueryBool(c *fiber.Ctx, key string) (*bool, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parsePage reads page and page_size (pageSize is accepted too).
func parsePage(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, err
	}
	key := "page_size"
	if c.Query(key) == "" {
		key = "pageSize"
	}
	pageSize, err := parseQueryInt(c, key)
	if err != nil {
		return 0, 0, err
	}
	page, pageSize = dto.NormalizePage(page, pageSize)
	return page, pageSize, nil
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errInvalidID
	}
	return uint(parsed), nil
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:   middleware.UserID(c),
		Role: middleware.UserRole(c),
	}
}

func sessionMeta(c *fiber.Ctx) dto.SessionMeta {
	return dto.SessionMeta{
		UserAgent: c.Get(fiber.HeaderUserAgent),
		IPAddress: c.IP(),
	}
}

func setCacheHeader(c *fiber.Ctx, hit bool) {
	c.Set("X-Cache-Hit", strconv.FormatBool(hit))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) zerolog.Logger {
	return middleware.RequestLogger(c, base)
}

func sendList[T any](c *fiber.Ctx, message string, result dto.ListResponse[T]) error {
	items := result.Items
	if items == nil {
		items = []T{}
	}
	return utils.OK(c, items, message, result.Pagination)
}
