package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/middleware"
	"github.com/noah-isme/cubis-academy-api/internal/service"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

// AuthHandler exposes registration, login and account endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes. Credential endpoints go through limit; account endpoints through protect.
func (h *AuthHandler) Register(router fiber.Router, protect, limit fiber.Handler) {
	router.Post("/register", limit, h.register)
	router.Post("/login", limit, h.login)
	router.Post("/logout", protect, h.logout)
	router.Get("/me", protect, h.me)
	router.Patch("/password", protect, h.changePassword)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Register(c.UserContext(), req, sessionMeta(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to register")
	}
	return utils.SendCreated(c, "registration successful", result)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Login(c.UserContext(), req, sessionMeta(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to login")
	}
	return utils.SendSuccess(c, "login successful", result)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.UserContext(), middleware.UserID(c), middleware.SessionID(c)); err != nil {
		return respondError(c, h.logger, err, "failed to logout")
	}
	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load account")
	}
	return utils.SendSuccess(c, "account retrieved", user)
}

func (h *AuthHandler) changePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.ChangePassword(c.UserContext(), middleware.UserID(c), middleware.SessionID(c), req); err != nil {
		return respondError(c, h.logger, err, "failed to change password")
	}
	return utils.SendSuccess(c, "password updated", nil)
}

// SessionHandler lets users inspect and revoke their login sessions.
type SessionHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service service.AuthService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register wires session routes on an authenticated group.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/revoke-others", h.revokeOthers)
	router.Post("/:id/revoke", h.revoke)
}

func (h *SessionHandler) list(c *fiber.Ctx) error {
	sessions, err := h.service.ListSessions(c.UserContext(), middleware.UserID(c), middleware.SessionID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list sessions")
	}
	return utils.SendSuccess(c, "sessions retrieved", sessions)
}

func (h *SessionHandler) revoke(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}
	if err := h.service.RevokeSession(c.UserContext(), middleware.UserID(c), sessionID); err != nil {
		return respondError(c, h.logger, err, "failed to revoke session")
	}
	return utils.SendSuccess(c, "session revoked", nil)
}

func (h *SessionHandler) revokeOthers(c *fiber.Ctx) error {
	count, err := h.service.RevokeOtherSessions(c.UserContext(), middleware.UserID(c), middleware.SessionID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to revoke sessions")
	}
	return utils.SendSuccess(c, "sessions revoked", fiber.Map{"revoked": count})
}
