package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
)

func (e *testEnv) dashboardService() DashboardService {
	return NewDashboardService(DashboardRepositories{
		Users:       e.users,
		Students:    e.students,
		Teachers:    e.teachers,
		Courses:     e.courses,
		Enrollments: e.enrollments,
		Payments:    e.payments,
		Scores:      e.scores,
		Attendance:  e.attendance,
	}, e.cache, time.Minute, testLogger())
}

func TestDashboardServiceStudentCachesUntilEnrollmentChanges(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := env.dashboardService()
	ctx := context.Background()

	first, err := svc.Student(ctx, data.studentUser.ID)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Empty(t, first.Enrollments)

	second, err := svc.Student(ctx, data.studentUser.ID)
	require.NoError(t, err)
	require.True(t, second.CacheHit)

	enrollSeeded(t, env, data)

	third, err := svc.Student(ctx, data.studentUser.ID)
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Len(t, third.Enrollments, 1)
	require.Equal(t, 1, third.ActiveCourses)
	require.Len(t, third.OutstandingPayments, 1)
	require.Equal(t, float64(150), third.OutstandingAmount)
}

func TestDashboardServiceTeacherSummarisesCourses(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	enrollment := enrollSeeded(t, env, data)
	ctx := context.Background()

	_, err := env.teacherService().RecordAttendance(ctx, data.teacherUser.ID, dto.AttendanceBulkRequest{
		CourseID: data.course.ID,
		Date:     "2026-03-02",
		Records:  []dto.AttendanceRecordInput{{EnrollmentID: enrollment.ID, Status: models.AttendancePresent}},
	})
	require.NoError(t, err)

	dashboard, err := env.dashboardService().Teacher(ctx, data.teacherUser.ID)
	require.NoError(t, err)
	require.Len(t, dashboard.Courses, 1)
	require.Equal(t, int64(1), dashboard.TotalActiveStudents)
	require.InDelta(t, 100, dashboard.Courses[0].AttendanceRate, 0.001)

	_, err = env.dashboardService().Teacher(ctx, data.studentUser.ID)
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDashboardServiceAdminTotals(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	enrollSeeded(t, env, data)
	svc := env.dashboardService()
	ctx := context.Background()

	dashboard, err := svc.Admin(ctx)
	require.NoError(t, err)
	require.False(t, dashboard.CacheHit)
	require.Equal(t, int64(1), dashboard.Totals.Students)
	require.Equal(t, int64(1), dashboard.Totals.Teachers)
	require.Equal(t, int64(1), dashboard.Totals.Courses)
	require.Equal(t, int64(1), dashboard.Totals.ActiveEnrollments)
	require.Equal(t, int64(1), dashboard.Totals.PendingPayments)
	require.Len(t, dashboard.RecentEnrollments, 1)

	cached, err := svc.Admin(ctx)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
}
