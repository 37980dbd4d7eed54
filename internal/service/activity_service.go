package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
)

// Actor identifies the authenticated user performing a mutation.
type Actor struct {
	ID   uint
	Role string
}

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	Actor      Actor
	Action     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// ActivityRecorder defines behaviour for recording activity logs.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
}

// ActivityService exposes methods to query and persist activity logs.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ListResponse[dto.ActivityResponse], error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

// Record persists an audit entry. Failures are logged and never surface to the caller.
func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	if err := s.record(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("action", entry.Action).Msg("failed to persist activity log")
	}
}

func (s *activityService) record(ctx context.Context, entry ActivityEntry) error {
	if strings.TrimSpace(entry.Action) == "" {
		return fmt.Errorf("action is required")
	}
	if strings.TrimSpace(entry.EntityType) == "" {
		return fmt.Errorf("entity type is required")
	}

	model := models.ActivityLog{
		ActorID:    entry.Actor.ID,
		ActorRole:  normalizeRole(entry.Actor.Role),
		Action:     strings.ToLower(strings.TrimSpace(entry.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(entry.EntityType)),
		EntityID:   entry.EntityID,
		Metadata:   sanitizeMetadata(entry.Metadata),
	}
	return s.repo.Create(ctx, &model)
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ListResponse[dto.ActivityResponse], error) {
	page, pageSize := dto.NormalizePage(req.Page, req.PageSize)
	filter := repository.ActivityLogFilter{
		Page:       page,
		PageSize:   pageSize,
		Action:     strings.ToLower(strings.TrimSpace(req.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(req.EntityType)),
	}
	if req.ActorID > 0 {
		filter.ActorID = &req.ActorID
	}
	if role := strings.TrimSpace(req.ActorRole); role != "" {
		filter.ActorRole = normalizeRole(role)
	}
	if req.EntityID > 0 && filter.EntityType != "" {
		filter.EntityID = &req.EntityID
	}

	from, err := parseDay(req.From)
	if err != nil {
		return dto.ListResponse[dto.ActivityResponse]{}, err
	}
	to, err := parseDay(req.To)
	if err != nil {
		return dto.ListResponse[dto.ActivityResponse]{}, err
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		to = &end
	}
	if from != nil && to != nil && !from.Before(*to) {
		return dto.ListResponse[dto.ActivityResponse]{}, ErrInvalidDate
	}
	filter.From, filter.To = from, to

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ListResponse[dto.ActivityResponse]{}, err
	}

	items := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewActivityResponse(entry))
	}
	return dto.ListResponse[dto.ActivityResponse]{Items: items, Pagination: dto.NewPaginationMeta(page, pageSize, total)}, nil
}

var sensitiveMetadataKeys = []string{"email", "token", "password", "secret"}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		masked := false
		for _, sensitive := range sensitiveMetadataKeys {
			if strings.Contains(lower, sensitive) {
				masked = true
				break
			}
		}
		if masked {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func normalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == "" {
		return "system"
	}
	return r
}

func uintPtr(v uint) *uint {
	return &v
}

// parseDay reads a YYYY-MM-DD value as midnight UTC. Blank input yields nil.
func parseDay(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &day, nil
}
