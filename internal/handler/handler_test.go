package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var body envelope
	decodeResponse(t, resp, &body)
	return body
}

// asUser injects the identity JWTProtected would normally set.
func asUser(id uint, role, sessionID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, id)
		c.Locals(middleware.LocalUserRole, role)
		c.Locals(middleware.LocalSessionID, sessionID)
		return c.Next()
	}
}
