package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// ActivityLogFilter narrows the audit trail. Action matches exactly unless it ends
// with a dot, in which case it selects the whole action family ("payment.").
// EntityID applies only together with EntityType.
type ActivityLogFilter struct {
	Page       int
	PageSize   int
	ActorID    *uint
	ActorRole  string
	Action     string
	EntityType string
	EntityID   *uint
	From       *time.Time
	To         *time.Time
}

// ActivityLogRepository persists audit trail events.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.ActorRole != "" {
		query = query.Where("actor_role = ?", filter.ActorRole)
	}

	if family, ok := strings.CutSuffix(filter.Action, "."); ok && family != "" {
		query = query.Where("action LIKE ?", family+".%")
	} else if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
		if filter.EntityID != nil {
			query = query.Where("entity_id = ?", *filter.EntityID)
		}
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	return countAndFind[models.ActivityLog](query, "created_at DESC, id DESC", filter.Page, filter.PageSize)
}
