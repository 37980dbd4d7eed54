package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// FileRecordRepository persists metadata about stored uploads.
type FileRecordRepository interface {
	Create(ctx context.Context, record *models.FileRecord) error
	GetByKey(ctx context.Context, key string) (models.FileRecord, error)
	DeleteByKey(ctx context.Context, key string) error
}

type fileRecordRepository struct {
	db *gorm.DB
}

// NewFileRecordRepository constructs a repository for upload records.
func NewFileRecordRepository(db *gorm.DB) FileRecordRepository {
	return &fileRecordRepository{db: db}
}

func (r *fileRecordRepository) Create(ctx context.Context, record *models.FileRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *fileRecordRepository) GetByKey(ctx context.Context, key string) (models.FileRecord, error) {
	var record models.FileRecord
	err := r.db.WithContext(ctx).Where("file_key = ?", key).First(&record).Error
	return record, err
}

func (r *fileRecordRepository) DeleteByKey(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("file_key = ?", key).Delete(&models.FileRecord{}).Error
}
