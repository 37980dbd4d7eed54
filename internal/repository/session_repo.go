package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// SessionRepository persists login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]models.Session, error)
	Revoke(ctx context.Context, userID uint, id string, at time.Time) error
	RevokeAllExcept(ctx context.Context, userID uint, keepID string, at time.Time) ([]string, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	return session, err
}

func (r *sessionRepository) ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now).
		Order("last_seen_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) Revoke(ctx context.Context, userID uint, id string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", id, userID).
		Update("revoked_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RevokeAllExcept revokes every open session of the user other than keepID and returns the revoked IDs.
func (r *sessionRepository) RevokeAllExcept(ctx context.Context, userID uint, keepID string, at time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Session{}).
			Where("user_id = ? AND id <> ? AND revoked_at IS NULL", userID, keepID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&models.Session{}).Where("id IN ?", ids).Update("revoked_at", at).Error
	})
	return ids, err
}

func (r *sessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		UpdateColumn("last_seen_at", at).Error
}
