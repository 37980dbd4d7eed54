package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func roleApp(role string, authenticated bool) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if authenticated {
			c.Locals(LocalUserID, uint(7))
		}
		c.Locals(LocalUserRole, role)
		return c.Next()
	})
	app.Use(RequireRole("admin", "Teacher"))
	app.Get("/staff", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRoleAllowsAuthorizedRoles(t *testing.T) {
	for _, role := range []string{"admin", "TEACHER"} {
		resp, err := roleApp(role, true).Test(httptest.NewRequest(http.MethodGet, "/staff", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, role)
	}
}

func TestRequireRoleRejectsUnauthorizedRoles(t *testing.T) {
	resp, err := roleApp("student", true).Test(httptest.NewRequest(http.MethodGet, "/staff", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleRequiresAuthentication(t *testing.T) {
	resp, err := roleApp("admin", false).Test(httptest.NewRequest(http.MethodGet, "/staff", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
