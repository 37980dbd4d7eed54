package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
	"github.com/noah-isme/cubis-academy-api/pkg/mailer"
)

func TestEnrollmentServiceEnrollCreatesPendingPayment(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := env.enrollmentService()
	ctx := context.Background()

	result, err := svc.Enroll(ctx, data.studentUser.ID, dto.EnrollRequest{CourseID: data.course.ID})
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusActive, result.Enrollment.Status)
	require.Equal(t, "Go Fundamentals", result.Enrollment.CourseTitle)
	require.NotNil(t, result.Payment)
	require.Equal(t, models.PaymentStatusPending, result.Payment.Status)
	require.Equal(t, float64(150), result.Payment.Amount)
	require.Regexp(t, `^CUBIS-\d{8}-[0-9A-F]{10}$`, result.Payment.Reference)
	require.Equal(t, []string{mailer.TemplateEnrollmentConfirmation}, env.mailer.templates())

	_, err = svc.Enroll(ctx, data.studentUser.ID, dto.EnrollRequest{CourseID: data.course.ID})
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestEnrollmentServiceFreeCourseSkipsPayment(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	ctx := context.Background()

	free := models.Course{Title: "Intro", Slug: "intro", Level: models.CourseLevelBeginner, Status: models.CourseStatusPublished}
	require.NoError(t, env.courses.Create(ctx, &free))

	result, err := env.enrollmentService().Enroll(ctx, data.studentUser.ID, dto.EnrollRequest{CourseID: free.ID})
	require.NoError(t, err)
	require.Nil(t, result.Payment)
}

func TestEnrollmentServiceRejectsUnavailableCourses(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := env.enrollmentService()
	ctx := context.Background()

	_, err := svc.Enroll(ctx, data.studentUser.ID, dto.EnrollRequest{CourseID: 9999})
	require.ErrorIs(t, err, ErrCourseNotFound)

	draft := models.Course{Title: "Draft", Slug: "draft", Level: models.CourseLevelBeginner, Status: models.CourseStatusDraft}
	require.NoError(t, env.courses.Create(ctx, &draft))
	_, err = svc.Enroll(ctx, data.studentUser.ID, dto.EnrollRequest{CourseID: draft.ID})
	require.ErrorIs(t, err, ErrCourseUnavailable)

	_, err = svc.Enroll(ctx, data.teacherUser.ID, dto.EnrollRequest{CourseID: data.course.ID})
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestEnrollmentServiceEnforcesCapacity(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := env.enrollmentService()
	ctx := context.Background()

	second := env.addStudent(t, "Rina", "rina@example.com")
	third := env.addStudent(t, "Joko", "joko@example.com")

	_, err := svc.Enroll(ctx, data.studentUser.ID, dto.EnrollRequest{CourseID: data.course.ID})
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, second.ID, dto.EnrollRequest{CourseID: data.course.ID})
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, third.ID, dto.EnrollRequest{CourseID: data.course.ID})
	require.ErrorIs(t, err, ErrCourseFull)
}

func TestEnrollmentServiceUpdateStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := env.enrollmentService()
	ctx := context.Background()
	admin := Actor{ID: data.adminUser.ID, Role: models.RoleAdmin}

	result, err := svc.Enroll(ctx, data.studentUser.ID, dto.EnrollRequest{CourseID: data.course.ID})
	require.NoError(t, err)
	id := result.Enrollment.ID

	suspended, err := svc.UpdateStatus(ctx, admin, id, dto.EnrollmentStatusRequest{Status: models.EnrollmentStatusSuspended})
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusSuspended, suspended.Status)

	unchanged, err := svc.UpdateStatus(ctx, admin, id, dto.EnrollmentStatusRequest{Status: models.EnrollmentStatusSuspended})
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusSuspended, unchanged.Status)

	_, err = svc.UpdateStatus(ctx, admin, id, dto.EnrollmentStatusRequest{Status: models.EnrollmentStatusCompleted})
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, admin, id, dto.EnrollmentStatusRequest{Status: models.EnrollmentStatusActive})
	require.NoError(t, err)

	completed, err := svc.UpdateStatus(ctx, admin, id, dto.EnrollmentStatusRequest{Status: models.EnrollmentStatusCompleted})
	require.NoError(t, err)
	require.Equal(t, float64(100), completed.Progress)
	require.NotNil(t, completed.CompletedAt)

	_, err = svc.UpdateStatus(ctx, admin, id, dto.EnrollmentStatusRequest{Status: models.EnrollmentStatusActive})
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, admin, 9999, dto.EnrollmentStatusRequest{Status: models.EnrollmentStatusDropped})
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestEnrollmentServiceListForStudentCachesAndInvalidates(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := env.enrollmentService()
	ctx := context.Background()

	items, hit, err := svc.ListForStudent(ctx, data.studentUser.ID)
	require.NoError(t, err)
	require.False(t, hit)
	require.Empty(t, items)

	_, hit, err = svc.ListForStudent(ctx, data.studentUser.ID)
	require.NoError(t, err)
	require.True(t, hit)

	_, err = svc.Enroll(ctx, data.studentUser.ID, dto.EnrollRequest{CourseID: data.course.ID})
	require.NoError(t, err)
	require.False(t, env.redis.Exists(cache.StudentEnrollments(data.student.ID)))

	items, hit, err = svc.ListForStudent(ctx, data.studentUser.ID)
	require.NoError(t, err)
	require.False(t, hit)
	require.Len(t, items, 1)
}

func TestNewPaymentReferenceFormat(t *testing.T) {
	ref := newPaymentReference(mustDate(t, "2026-03-04"))
	require.Regexp(t, `^CUBIS-20260304-[0-9A-F]{10}$`, ref)
	require.NotEqual(t, ref, newPaymentReference(mustDate(t, "2026-03-04")))
}
