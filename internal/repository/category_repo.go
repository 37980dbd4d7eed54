package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// CategoryRepository persists course categories.
type CategoryRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.CourseCategory, error)
	GetByID(ctx context.Context, id uint) (models.CourseCategory, error)
	Create(ctx context.Context, category *models.CourseCategory) error
	Save(ctx context.Context, category *models.CourseCategory) error
	Delete(ctx context.Context, id uint) error
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	CountCourses(ctx context.Context, id uint) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository constructs a category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context, activeOnly bool) ([]models.CourseCategory, error) {
	query := r.db.WithContext(ctx).Model(&models.CourseCategory{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var categories []models.CourseCategory
	err := query.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (models.CourseCategory, error) {
	var category models.CourseCategory
	err := r.db.WithContext(ctx).First(&category, id).Error
	return category, err
}

// Create inserts the category. is_active carries a column default, so an inactive
// category is written back explicitly after the insert.
func (r *categoryRepository) Create(ctx context.Context, category *models.CourseCategory) error {
	active := category.IsActive
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(category).Error; err != nil {
			return err
		}
		if active {
			return nil
		}
		if err := tx.Model(category).Update("is_active", false).Error; err != nil {
			return err
		}
		category.IsActive = false
		return nil
	})
}

func (r *categoryRepository) Save(ctx context.Context, category *models.CourseCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CourseCategory{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoryRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.CourseCategory{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *categoryRepository) CountCourses(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Course{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}
