package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

var courseSorts = map[string]string{
	"":           "courses.created_at DESC, courses.id DESC",
	"newest":     "courses.created_at DESC, courses.id DESC",
	"oldest":     "courses.created_at ASC, courses.id ASC",
	"title":      "courses.title ASC",
	"price_asc":  "courses.price ASC, courses.id ASC",
	"price_desc": "courses.price DESC, courses.id DESC",
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	Status       string
	CategoryID   uint
	CategorySlug string
	Level        string
	TeacherID    uint
	Search       string
	Sort         string
	Page         int
	PageSize     int
}

// CourseRepository persists courses and their schedules.
type CourseRepository interface {
	List(ctx context.Context, filter CourseFilter) ([]models.Course, int64, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Save(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Course, error)
	Count(ctx context.Context, status string) (int64, error)
	CreateSchedule(ctx context.Context, schedule *models.ClassSchedule) error
	DeleteSchedule(ctx context.Context, courseID, scheduleID uint) error
	ListSchedules(ctx context.Context, courseIDs []uint) ([]models.ClassSchedule, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs a course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func withCourseAssociations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Category").
		Preload("Teacher.User").
		Preload("Schedules", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week ASC, start_time ASC")
		})
}

func (r *courseRepository) List(ctx context.Context, filter CourseFilter) ([]models.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})

	if filter.Status != "" {
		query = query.Where("courses.status = ?", filter.Status)
	}
	if filter.CategoryID > 0 {
		query = query.Where("courses.category_id = ?", filter.CategoryID)
	}
	if filter.CategorySlug != "" {
		query = query.Where("courses.category_id IN (?)",
			r.db.Model(&models.CourseCategory{}).Select("id").Where("slug = ?", filter.CategorySlug))
	}
	if filter.Level != "" {
		query = query.Where("courses.level = ?", filter.Level)
	}
	if filter.TeacherID > 0 {
		query = query.Where("courses.teacher_id = ?", filter.TeacherID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(courses.title) LIKE ? OR LOWER(courses.description) LIKE ?", like, like)
	}

	order, ok := courseSorts[filter.Sort]
	if !ok {
		order = courseSorts[""]
	}

	return countAndFind[models.Course](query, order, filter.Page, filter.PageSize, withCourseAssociations)
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	err := withCourseAssociations(r.db.WithContext(ctx)).First(&course, id).Error
	return course, err
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Omit("Category", "Teacher", "Schedules").Create(course).Error
}

func (r *courseRepository) Save(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Omit("Category", "Teacher", "Schedules").Save(course).Error
}

func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Unscoped().Model(&models.Course{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *courseRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Course, error) {
	var courses []models.Course
	err := withCourseAssociations(r.db.WithContext(ctx)).
		Where("teacher_id = ?", teacherID).
		Order("title ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepository) Count(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *courseRepository) CreateSchedule(ctx context.Context, schedule *models.ClassSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *courseRepository) DeleteSchedule(ctx context.Context, courseID, scheduleID uint) error {
	result := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&models.ClassSchedule{}, scheduleID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseRepository) ListSchedules(ctx context.Context, courseIDs []uint) ([]models.ClassSchedule, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	var schedules []models.ClassSchedule
	err := r.db.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Order("day_of_week ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}
