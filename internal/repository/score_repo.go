package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// ScoreRepository persists graded assessments.
type ScoreRepository interface {
	Create(ctx context.Context, score *models.Score) error
	ListByEnrollments(ctx context.Context, enrollmentIDs []uint) ([]models.Score, error)
	AverageByEnrollments(ctx context.Context, enrollmentIDs []uint) (float64, error)
}

type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository constructs a score repository.
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) Create(ctx context.Context, score *models.Score) error {
	return r.db.WithContext(ctx).Omit("Enrollment").Create(score).Error
}

func (r *scoreRepository) ListByEnrollments(ctx context.Context, enrollmentIDs []uint) ([]models.Score, error) {
	if len(enrollmentIDs) == 0 {
		return nil, nil
	}
	var scores []models.Score
	err := r.db.WithContext(ctx).
		Preload("Enrollment.Course").
		Preload("Enrollment.Student.User").
		Where("enrollment_id IN ?", enrollmentIDs).
		Order("created_at DESC, id DESC").
		Find(&scores).Error
	return scores, err
}

// AverageByEnrollments returns the mean percentage across the enrollments' scores.
func (r *scoreRepository) AverageByEnrollments(ctx context.Context, enrollmentIDs []uint) (float64, error) {
	if len(enrollmentIDs) == 0 {
		return 0, nil
	}
	var avg float64
	err := r.db.WithContext(ctx).Model(&models.Score{}).
		Select("COALESCE(AVG(value * 100.0 / max_value), 0)").
		Where("enrollment_id IN ? AND max_value > 0", enrollmentIDs).
		Scan(&avg).Error
	return avg, err
}
