package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/config"
	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/handler"
	"github.com/noah-isme/cubis-academy-api/internal/middleware"
	"github.com/noah-isme/cubis-academy-api/internal/router"
)

type fixedDashboards struct{}

func (fixedDashboards) Student(context.Context, uint) (dto.StudentDashboardResponse, error) {
	return dto.StudentDashboardResponse{}, nil
}

func (fixedDashboards) Teacher(context.Context, uint) (dto.TeacherDashboardResponse, error) {
	return dto.TeacherDashboardResponse{}, nil
}

func (fixedDashboards) Admin(context.Context) (dto.AdminDashboardResponse, error) {
	return dto.AdminDashboardResponse{Revenue: 10}, nil
}

func newApp(role string) *fiber.App {
	app := fiber.New()
	deps := router.Dependencies{
		Health:           handler.HealthStatus{StorageProvider: "local"},
		DashboardHandler: handler.NewDashboardHandler(fixedDashboards{}, zerolog.Nop()),
	}
	if role != "" {
		deps.JWTMiddleware = func(c *fiber.Ctx) error {
			c.Locals(middleware.LocalUserID, uint(1))
			c.Locals(middleware.LocalUserRole, role)
			return c.Next()
		}
	}
	router.Register(app, config.Config{AppName: "CUBIS Academy API", AppEnv: "test"}, deps)
	return app
}

func status(t *testing.T, app *fiber.App, path string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRegisterServesHealthAndMetrics(t *testing.T) {
	app := newApp("")
	require.Equal(t, fiber.StatusOK, status(t, app, "/api/v1/health"))
	require.Equal(t, fiber.StatusOK, status(t, app, "/metrics"))
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	require.Equal(t, fiber.StatusUnauthorized, status(t, newApp(""), "/api/v1/admin/dashboard"))
	require.Equal(t, fiber.StatusForbidden, status(t, newApp("teacher"), "/api/v1/admin/dashboard"))
	require.Equal(t, fiber.StatusOK, status(t, newApp("admin"), "/api/v1/admin/dashboard"))
}
