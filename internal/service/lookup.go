package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
)

func studentForUser(ctx context.Context, students repository.StudentRepository, userID uint) (models.Student, error) {
	student, err := students.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrProfileNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func teacherForUser(ctx context.Context, teachers repository.TeacherRepository, userID uint) (models.Teacher, error) {
	teacher, err := teachers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Teacher{}, ErrProfileNotFound
		}
		return models.Teacher{}, err
	}
	return teacher, nil
}

func loadEnrollment(ctx context.Context, enrollments repository.EnrollmentRepository, id uint) (models.Enrollment, error) {
	enrollment, err := enrollments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Enrollment{}, ErrEnrollmentNotFound
		}
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func enrollmentIDs(enrollments []models.Enrollment) []uint {
	ids := make([]uint, 0, len(enrollments))
	for _, enrollment := range enrollments {
		ids = append(ids, enrollment.ID)
	}
	return ids
}
