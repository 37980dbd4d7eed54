package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	StudentID uint
	CourseID  uint
	TeacherID uint
	Status    string
	Page      int
	PageSize  int
}

// EnrollmentRepository persists enrollments.
type EnrollmentRepository interface {
	CreateWithPayment(ctx context.Context, enrollment *models.Enrollment, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (models.Enrollment, error)
	FindOpen(ctx context.Context, studentID, courseID uint) (models.Enrollment, error)
	List(ctx context.Context, filter EnrollmentFilter) ([]models.Enrollment, int64, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID uint, statuses ...string) ([]models.Enrollment, error)
	Save(ctx context.Context, enrollment *models.Enrollment) error
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountActiveByCourse(ctx context.Context, courseID uint) (int64, error)
	CountByCourses(ctx context.Context, courseIDs []uint) (map[uint]int64, error)
	Recent(ctx context.Context, limit int) ([]models.Enrollment, error)
}

type courseCount struct {
	CourseID uint
	Total    int64
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs an enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func withEnrollmentAssociations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Student.User").
		Preload("Course.Category").
		Preload("Course.Teacher.User")
}

func (r *enrollmentRepository) CreateWithPayment(ctx context.Context, enrollment *models.Enrollment, payment *models.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Student", "Course").Create(enrollment).Error; err != nil {
			return err
		}
		if payment == nil {
			return nil
		}
		payment.EnrollmentID = enrollment.ID
		return tx.Omit("Enrollment").Create(payment).Error
	})
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := withEnrollmentAssociations(r.db.WithContext(ctx)).First(&enrollment, id).Error
	return enrollment, err
}

func (r *enrollmentRepository) FindOpen(ctx context.Context, studentID, courseID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND status <> ?", studentID, courseID, models.EnrollmentStatusDropped).
		Order("id DESC").
		First(&enrollment).Error
	return enrollment, err
}

func (r *enrollmentRepository) List(ctx context.Context, filter EnrollmentFilter) ([]models.Enrollment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Enrollment{})
	if filter.StudentID > 0 {
		query = query.Where("enrollments.student_id = ?", filter.StudentID)
	}
	if filter.CourseID > 0 {
		query = query.Where("enrollments.course_id = ?", filter.CourseID)
	}
	if filter.TeacherID > 0 {
		query = query.Where("enrollments.course_id IN (?)",
			r.db.Model(&models.Course{}).Select("id").Where("teacher_id = ?", filter.TeacherID))
	}
	if filter.Status != "" {
		query = query.Where("enrollments.status = ?", filter.Status)
	}

	return countAndFind[models.Enrollment](query, "enrollments.enrolled_at DESC, enrollments.id DESC",
		filter.Page, filter.PageSize, withEnrollmentAssociations)
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := withEnrollmentAssociations(r.db.WithContext(ctx)).
		Preload("Course.Schedules", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week ASC, start_time ASC")
		}).
		Where("student_id = ?", studentID).
		Order("enrolled_at DESC, id DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) ListByCourse(ctx context.Context, courseID uint, statuses ...string) ([]models.Enrollment, error) {
	query := r.db.WithContext(ctx).Preload("Student.User").Where("course_id = ?", courseID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var enrollments []models.Enrollment
	err := query.Order("id ASC").Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) Save(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Omit("Student", "Course").Save(enrollment).Error
}

func (r *enrollmentRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Enrollment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *enrollmentRepository) CountActiveByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, models.EnrollmentStatusActive).
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepository) CountByCourses(ctx context.Context, courseIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []courseCount
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ? AND status IN ?", courseIDs,
			[]string{models.EnrollmentStatusActive, models.EnrollmentStatusCompleted}).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CourseID] = row.Total
	}
	return counts, nil
}

func (r *enrollmentRepository) Recent(ctx context.Context, limit int) ([]models.Enrollment, error) {
	if limit <= 0 {
		limit = 5
	}
	var enrollments []models.Enrollment
	err := withEnrollmentAssociations(r.db.WithContext(ctx)).
		Order("enrolled_at DESC, id DESC").
		Limit(limit).
		Find(&enrollments).Error
	return enrollments, err
}
