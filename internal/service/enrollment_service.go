package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
	"github.com/noah-isme/cubis-academy-api/pkg/events"
	"github.com/noah-isme/cubis-academy-api/pkg/mailer"
)

// EnrollmentService enrolls students and manages enrollment status.
type EnrollmentService interface {
	Enroll(ctx context.Context, userID uint, req dto.EnrollRequest) (dto.EnrollResult, error)
	ListForStudent(ctx context.Context, userID uint) ([]dto.EnrollmentResponse, bool, error)
	List(ctx context.Context, req dto.EnrollmentListRequest) (dto.ListResponse[dto.EnrollmentResponse], error)
	UpdateStatus(ctx context.Context, actor Actor, id uint, req dto.EnrollmentStatusRequest) (dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	students    repository.StudentRepository
	activity    ActivityRecorder
	notifier    *Notifier
	cache       *cache.Cache
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(
	enrollments repository.EnrollmentRepository,
	courses repository.CourseRepository,
	students repository.StudentRepository,
	activity ActivityRecorder,
	notifier *Notifier,
	cacheStore *cache.Cache,
	validate *validator.Validate,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		enrollments: enrollments,
		courses:     courses,
		students:    students,
		activity:    activity,
		notifier:    notifier,
		cache:       cacheStore,
		validator:   validate,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
		now:         time.Now,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, userID uint, req dto.EnrollRequest) (dto.EnrollResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EnrollResult{}, err
	}

	student, err := studentForUser(ctx, s.students, userID)
	if err != nil {
		return dto.EnrollResult{}, err
	}

	course, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollResult{}, ErrCourseNotFound
		}
		return dto.EnrollResult{}, err
	}
	if !course.IsPublished() {
		return dto.EnrollResult{}, ErrCourseUnavailable
	}

	if _, err := s.enrollments.FindOpen(ctx, student.ID, course.ID); err == nil {
		return dto.EnrollResult{}, ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.EnrollResult{}, err
	}

	active, err := s.enrollments.CountActiveByCourse(ctx, course.ID)
	if err != nil {
		return dto.EnrollResult{}, err
	}
	if !course.HasCapacity(active) {
		return dto.EnrollResult{}, ErrCourseFull
	}

	now := s.now()
	enrollment := models.Enrollment{
		StudentID:  student.ID,
		CourseID:   course.ID,
		Status:     models.EnrollmentStatusActive,
		EnrolledAt: now,
	}

	var payment *models.Payment
	if course.Price > 0 {
		payment = &models.Payment{
			Reference: newPaymentReference(now),
			Amount:    course.Price,
			Method:    models.PaymentMethodTransfer,
			Status:    models.PaymentStatusPending,
		}
	}

	if err := s.enrollments.CreateWithPayment(ctx, &enrollment, payment); err != nil {
		return dto.EnrollResult{}, fmt.Errorf("create enrollment: %w", err)
	}

	stored, err := s.enrollments.GetByID(ctx, enrollment.ID)
	if err != nil {
		return dto.EnrollResult{}, err
	}

	result := dto.EnrollResult{Enrollment: dto.NewEnrollmentResponse(stored)}
	emailData := mailer.EnrollmentData{
		Name:        student.User.Name,
		CourseTitle: course.Title,
		EnrolledAt:  enrollment.EnrolledAt,
	}
	if payment != nil {
		payment.Enrollment = stored
		paymentResponse := dto.NewPaymentResponse(*payment)
		result.Payment = &paymentResponse
		emailData.Amount = payment.Amount
		emailData.Reference = payment.Reference
	}

	s.invalidate(ctx, stored)
	s.notifier.Email(ctx, student.User.Email, mailer.TemplateEnrollmentConfirmation, emailData)
	s.notifier.Publish(ctx, events.EnrollmentCreated, map[string]interface{}{
		"enrollment_id": stored.ID,
		"student_id":    stored.StudentID,
		"course_id":     stored.CourseID,
		"amount":        course.Price,
	})
	s.activity.Record(ctx, ActivityEntry{
		Actor:      Actor{ID: userID, Role: models.RoleStudent},
		Action:     "enrollment.created",
		EntityType: "enrollment",
		EntityID:   uintPtr(stored.ID),
		Metadata:   map[string]interface{}{"course_id": course.ID, "paid_course": payment != nil},
	})

	s.logger.Info().
		Uint("enrollment_id", stored.ID).
		Uint("student_id", stored.StudentID).
		Uint("course_id", stored.CourseID).
		Msg("student enrolled")

	return result, nil
}

func (s *enrollmentService) ListForStudent(ctx context.Context, userID uint) ([]dto.EnrollmentResponse, bool, error) {
	student, err := studentForUser(ctx, s.students, userID)
	if err != nil {
		return nil, false, err
	}

	return cache.Remember(ctx, s.cache, cache.StudentEnrollments(student.ID), cache.TTLMedium, func(ctx context.Context) ([]dto.EnrollmentResponse, error) {
		enrollments, err := s.enrollments.ListByStudent(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		items := make([]dto.EnrollmentResponse, 0, len(enrollments))
		for _, enrollment := range enrollments {
			items = append(items, dto.NewEnrollmentResponse(enrollment))
		}
		return items, nil
	})
}

func (s *enrollmentService) List(ctx context.Context, req dto.EnrollmentListRequest) (dto.ListResponse[dto.EnrollmentResponse], error) {
	page, pageSize := dto.NormalizePage(req.Page, req.PageSize)
	enrollments, total, err := s.enrollments.List(ctx, repository.EnrollmentFilter{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Status:    strings.ToLower(strings.TrimSpace(req.Status)),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return dto.ListResponse[dto.EnrollmentResponse]{}, err
	}

	items := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		items = append(items, dto.NewEnrollmentResponse(enrollment))
	}
	return dto.ListResponse[dto.EnrollmentResponse]{Items: items, Pagination: dto.NewPaginationMeta(page, pageSize, total)}, nil
}

func (s *enrollmentService) UpdateStatus(ctx context.Context, actor Actor, id uint, req dto.EnrollmentStatusRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	enrollment, err := loadEnrollment(ctx, s.enrollments, id)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	target := strings.ToLower(req.Status)
	if enrollment.Status == target {
		return dto.NewEnrollmentResponse(enrollment), nil
	}
	if !enrollment.CanTransitionTo(target) {
		return dto.EnrollmentResponse{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, enrollment.Status, target)
	}

	previous := enrollment.Status
	applyEnrollmentStatus(&enrollment, target, s.now())
	if err := s.enrollments.Save(ctx, &enrollment); err != nil {
		return dto.EnrollmentResponse{}, fmt.Errorf("update enrollment: %w", err)
	}

	s.invalidate(ctx, enrollment)
	s.notifier.Publish(ctx, events.EnrollmentStatusChanged, map[string]interface{}{
		"enrollment_id": enrollment.ID,
		"student_id":    enrollment.StudentID,
		"course_id":     enrollment.CourseID,
		"from":          previous,
		"to":            target,
		"reason":        req.Reason,
	})
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "enrollment.status_changed",
		EntityType: "enrollment",
		EntityID:   uintPtr(enrollment.ID),
		Metadata:   map[string]interface{}{"from": previous, "to": target, "reason": req.Reason},
	})

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) invalidate(ctx context.Context, enrollment models.Enrollment) {
	s.cache.InvalidateStudent(ctx, enrollment.StudentID)
	s.cache.Del(ctx, cache.CourseStats(enrollment.CourseID))
	s.cache.InvalidateAdminDashboard(ctx)
	if enrollment.Course.TeacherID != nil {
		s.cache.InvalidateTeacher(ctx, *enrollment.Course.TeacherID)
	}
}

// applyEnrollmentStatus moves the enrollment to status and maintains the completion stamp.
func applyEnrollmentStatus(enrollment *models.Enrollment, status string, at time.Time) {
	enrollment.Status = status
	switch status {
	case models.EnrollmentStatusCompleted:
		enrollment.Progress = 100
		if enrollment.CompletedAt == nil {
			completed := at
			enrollment.CompletedAt = &completed
		}
	case models.EnrollmentStatusActive:
		enrollment.CompletedAt = nil
	}
}

func newPaymentReference(at time.Time) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("CUBIS-%s-%s", at.Format("20060102"), token[:10])
}
