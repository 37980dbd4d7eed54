package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

// Locals keys populated by JWTProtected.
const (
	LocalUserID    = "user_id"
	LocalUserRole  = "user_role"
	LocalSessionID = "session_id"
)

// SessionValidator confirms that the session behind a token is still open.
type SessionValidator interface {
	ValidateSession(ctx context.Context, userID uint, sessionID string) error
}

// JWTProtected validates HS256 bearer tokens and, when sessions is set, rejects
// tokens whose session was revoked or expired.
func JWTProtected(secret string, sessions SessionValidator) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := subjectID(claims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}
		role, _ := claims["role"].(string)
		sessionID, _ := claims["sid"].(string)

		if sessions != nil {
			if err := sessions.ValidateSession(c.UserContext(), userID, sessionID); err != nil {
				return utils.SendError(c, fiber.StatusUnauthorized, "session is no longer valid")
			}
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalUserRole, strings.ToLower(strings.TrimSpace(role)))
		c.Locals(LocalSessionID, sessionID)
		return c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header missing")
	}
	const bearer = "bearer "
	if len(header) <= len(bearer) || !strings.EqualFold(header[:len(bearer)], bearer) {
		return "", errors.New("invalid authorization header")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("invalid token")
	}
	return token, nil
}

func subjectID(claims jwt.MapClaims) (uint, error) {
	switch v := claims["sub"].(type) {
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil || parsed == 0 {
			return 0, fmt.Errorf("invalid subject %q", v)
		}
		return uint(parsed), nil
	case float64:
		if v <= 0 {
			return 0, errors.New("invalid subject")
		}
		return uint(v), nil
	default:
		return 0, errors.New("subject missing")
	}
}

// UserID returns the authenticated user id, or zero for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(LocalUserID).(uint); ok {
		return id
	}
	return 0
}

// UserRole returns the authenticated user's role.
func UserRole(c *fiber.Ctx) string {
	return normalizeRoleValue(c.Locals(LocalUserRole))
}

// SessionID returns the session id carried by the request token.
func SessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalSessionID).(string); ok {
		return id
	}
	return ""
}
