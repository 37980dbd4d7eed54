package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/handler"
	"github.com/noah-isme/cubis-academy-api/internal/service"
)

type stubActivityService struct {
	lastReq dto.ActivityListRequest
	err     error
}

func (s *stubActivityService) Record(context.Context, service.ActivityEntry) {}

func (s *stubActivityService) List(_ context.Context, req dto.ActivityListRequest) (dto.ListResponse[dto.ActivityResponse], error) {
	s.lastReq = req
	if s.err != nil {
		return dto.ListResponse[dto.ActivityResponse]{}, s.err
	}
	return dto.ListResponse[dto.ActivityResponse]{
		Items:      []dto.ActivityResponse{{ID: 1, ActorRole: "admin", Action: "payment.refunded", EntityType: "payment"}},
		Pagination: dto.NewPaginationMeta(1, 20, 1),
	}, nil
}

func activityApp(svc service.ActivityService) *fiber.App {
	app := fiber.New()
	handler.NewActivityHandler(svc, zerolog.Nop()).Register(app.Group("/admin/activity"))
	return app
}

func TestActivityHandler_ForwardsFilters(t *testing.T) {
	svc := &stubActivityService{}
	app := activityApp(svc)

	resp := get(t, app, "/admin/activity?actor_role=teacher&action=score.&entity_type=enrollment&entity_id=12&from=2026-03-01&to=2026-03-31&page=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, "teacher", svc.lastReq.ActorRole)
	require.Equal(t, "score.", svc.lastReq.Action)
	require.Equal(t, "enrollment", svc.lastReq.EntityType)
	require.Equal(t, uint(12), svc.lastReq.EntityID)
	require.Equal(t, "2026-03-01", svc.lastReq.From)
	require.Equal(t, "2026-03-31", svc.lastReq.To)
	require.Equal(t, 2, svc.lastReq.Page)
}

func TestActivityHandler_RejectsBadInput(t *testing.T) {
	app := activityApp(&stubActivityService{})
	resp := get(t, app, "/admin/activity?entity_id=abc")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	app = activityApp(&stubActivityService{err: service.ErrInvalidDate})
	resp = get(t, app, "/admin/activity?from=yesterday")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
