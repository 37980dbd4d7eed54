package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// StudentRepository reads and updates student profiles.
type StudentRepository interface {
	GetByUserID(ctx context.Context, userID uint) (models.Student, error)
	GetByID(ctx context.Context, id uint) (models.Student, error)
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error
}

// TeacherRepository reads and updates teacher profiles.
type TeacherRepository interface {
	GetByUserID(ctx context.Context, userID uint) (models.Teacher, error)
	GetByID(ctx context.Context, id uint) (models.Teacher, error)
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student profile repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByUserID(ctx context.Context, userID uint) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&student).Error
	return student, err
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Preload("User").First(&student, id).Error
	return student, err
}

func (r *studentRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Updates(updates).Error
}

type teacherRepository struct {
	db *gorm.DB
}

// NewTeacherRepository constructs a teacher profile repository.
func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) GetByUserID(ctx context.Context, userID uint) (models.Teacher, error) {
	var teacher models.Teacher
	err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&teacher).Error
	return teacher, err
}

func (r *teacherRepository) GetByID(ctx context.Context, id uint) (models.Teacher, error) {
	var teacher models.Teacher
	err := r.db.WithContext(ctx).Preload("User").First(&teacher, id).Error
	return teacher, err
}

func (r *teacherRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Teacher{}).Where("id = ?", id).Updates(updates).Error
}
