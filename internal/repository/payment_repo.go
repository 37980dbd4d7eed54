package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	Status    string
	Method    string
	StudentID uint
	CourseID  uint
	Page      int
	PageSize  int
}

// PaymentRepository persists enrollment payments.
type PaymentRepository interface {
	List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error)
	GetByID(ctx context.Context, id uint) (models.Payment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Payment, error)
	Save(ctx context.Context, payment *models.Payment) error
	CountByStatus(ctx context.Context, status string) (int64, error)
	SumCompleted(ctx context.Context) (float64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository constructs a payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func withPaymentAssociations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Enrollment.Student.User").
		Preload("Enrollment.Course")
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if filter.StudentID > 0 || filter.CourseID > 0 {
		query = query.Joins("JOIN enrollments ON enrollments.id = payments.enrollment_id")
		if filter.StudentID > 0 {
			query = query.Where("enrollments.student_id = ?", filter.StudentID)
		}
		if filter.CourseID > 0 {
			query = query.Where("enrollments.course_id = ?", filter.CourseID)
		}
	}
	if filter.Status != "" {
		query = query.Where("payments.status = ?", filter.Status)
	}
	if filter.Method != "" {
		query = query.Where("payments.method = ?", filter.Method)
	}

	return countAndFind[models.Payment](query, "payments.created_at DESC, payments.id DESC",
		filter.Page, filter.PageSize, withPaymentAssociations)
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (models.Payment, error) {
	var payment models.Payment
	err := withPaymentAssociations(r.db.WithContext(ctx)).First(&payment, id).Error
	return payment, err
}

func (r *paymentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := withPaymentAssociations(r.db.WithContext(ctx)).
		Joins("JOIN enrollments ON enrollments.id = payments.enrollment_id").
		Where("enrollments.student_id = ?", studentID).
		Order("payments.created_at DESC, payments.id DESC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Save(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Omit("Enrollment").Save(payment).Error
}

func (r *paymentRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *paymentRepository) SumCompleted(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", models.PaymentStatusCompleted).
		Scan(&total).Error
	return total, err
}
