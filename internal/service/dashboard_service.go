package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
)

const (
	recentScoreLimit      = 10
	recentEnrollmentLimit = 10
)

// DashboardService produces cached role dashboards.
type DashboardService interface {
	Student(ctx context.Context, userID uint) (dto.StudentDashboardResponse, error)
	Teacher(ctx context.Context, userID uint) (dto.TeacherDashboardResponse, error)
	Admin(ctx context.Context) (dto.AdminDashboardResponse, error)
}

// DashboardRepositories groups the data sources the dashboards aggregate.
type DashboardRepositories struct {
	Users       repository.UserRepository
	Students    repository.StudentRepository
	Teachers    repository.TeacherRepository
	Courses     repository.CourseRepository
	Enrollments repository.EnrollmentRepository
	Payments    repository.PaymentRepository
	Scores      repository.ScoreRepository
	Attendance  repository.AttendanceRepository
}

type dashboardService struct {
	repos    DashboardRepositories
	cache    *cache.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(repos DashboardRepositories, cacheStore *cache.Cache, ttl time.Duration, logger zerolog.Logger) DashboardService {
	if ttl <= 0 {
		ttl = cache.TTLMedium
	}
	return &dashboardService{
		repos:    repos,
		cache:    cacheStore,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *dashboardService) Student(ctx context.Context, userID uint) (dto.StudentDashboardResponse, error) {
	student, err := studentForUser(ctx, s.repos.Students, userID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response, hit, err := cache.Remember(ctx, s.cache, cache.StudentDashboard(student.ID), s.cacheTTL, func(ctx context.Context) (dto.StudentDashboardResponse, error) {
		return s.buildStudent(ctx, student)
	})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	if hit {
		s.logger.Debug().Uint("student_id", student.ID).Msg("dashboard cache hit")
	}
	response.CacheHit = hit
	return response, nil
}

func (s *dashboardService) buildStudent(ctx context.Context, student models.Student) (dto.StudentDashboardResponse, error) {
	enrollments, err := s.repos.Enrollments.ListByStudent(ctx, student.ID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	profile := dto.NewUserResponse(student.User)
	profile.Student = dto.NewStudentProfile(student)
	response := dto.StudentDashboardResponse{
		Profile:             profile,
		Enrollments:         make([]dto.EnrollmentResponse, 0, len(enrollments)),
		OutstandingPayments: []dto.PaymentResponse{},
		RecentScores:        []dto.ScoreResponse{},
		Schedule:            weeklySchedule(enrollments),
		GeneratedAt:         s.now().UTC(),
	}
	for _, enrollment := range enrollments {
		response.Enrollments = append(response.Enrollments, dto.NewEnrollmentResponse(enrollment))
		switch enrollment.Status {
		case models.EnrollmentStatusActive:
			response.ActiveCourses++
		case models.EnrollmentStatusCompleted:
			response.CompletedCourses++
		}
	}

	if ids := enrollmentIDs(enrollments); len(ids) > 0 {
		if response.AverageScore, err = s.repos.Scores.AverageByEnrollments(ctx, ids); err != nil {
			return dto.StudentDashboardResponse{}, err
		}
		scores, err := s.repos.Scores.ListByEnrollments(ctx, ids)
		if err != nil {
			return dto.StudentDashboardResponse{}, err
		}
		for i, score := range scores {
			if i == recentScoreLimit {
				break
			}
			response.RecentScores = append(response.RecentScores, dto.NewScoreResponse(score))
		}
		records, err := s.repos.Attendance.ListByEnrollments(ctx, ids)
		if err != nil {
			return dto.StudentDashboardResponse{}, err
		}
		response.Attendance = dto.SummarizeAttendance(records)
	}

	payments, err := s.repos.Payments.ListByStudent(ctx, student.ID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	for _, payment := range payments {
		if payment.Status != models.PaymentStatusPending {
			continue
		}
		response.OutstandingPayments = append(response.OutstandingPayments, dto.NewPaymentResponse(payment))
		response.OutstandingAmount += payment.Amount
	}

	return response, nil
}

func (s *dashboardService) Teacher(ctx context.Context, userID uint) (dto.TeacherDashboardResponse, error) {
	teacher, err := teacherForUser(ctx, s.repos.Teachers, userID)
	if err != nil {
		return dto.TeacherDashboardResponse{}, err
	}

	response, hit, err := cache.Remember(ctx, s.cache, cache.TeacherDashboard(teacher.ID), s.cacheTTL, func(ctx context.Context) (dto.TeacherDashboardResponse, error) {
		return s.buildTeacher(ctx, teacher)
	})
	if err != nil {
		return dto.TeacherDashboardResponse{}, err
	}
	if hit {
		s.logger.Debug().Uint("teacher_id", teacher.ID).Msg("dashboard cache hit")
	}
	response.CacheHit = hit
	return response, nil
}

func (s *dashboardService) buildTeacher(ctx context.Context, teacher models.Teacher) (dto.TeacherDashboardResponse, error) {
	courses, err := s.repos.Courses.ListByTeacher(ctx, teacher.ID)
	if err != nil {
		return dto.TeacherDashboardResponse{}, err
	}

	response := dto.TeacherDashboardResponse{
		Courses:      make([]dto.TeacherCourseSummary, 0, len(courses)),
		RecentScores: []dto.ScoreResponse{},
		GeneratedAt:  s.now().UTC(),
	}

	var allEnrollmentIDs []uint
	var rates []float64
	for _, course := range courses {
		enrollments, err := s.repos.Enrollments.ListByCourse(ctx, course.ID)
		if err != nil {
			return dto.TeacherDashboardResponse{}, err
		}
		summary := dto.TeacherCourseSummary{Course: dto.NewCourseResponse(course)}
		for _, enrollment := range enrollments {
			if enrollment.Status == models.EnrollmentStatusActive {
				summary.ActiveStudents++
			}
		}

		ids := enrollmentIDs(enrollments)
		if len(ids) > 0 {
			records, err := s.repos.Attendance.ListByEnrollments(ctx, ids)
			if err != nil {
				return dto.TeacherDashboardResponse{}, err
			}
			if len(records) > 0 {
				summary.AttendanceRate = dto.SummarizeAttendance(records).Rate
				rates = append(rates, summary.AttendanceRate)
			}
			allEnrollmentIDs = append(allEnrollmentIDs, ids...)
		}

		response.TotalActiveStudents += summary.ActiveStudents
		response.Courses = append(response.Courses, summary)
	}
	response.AverageAttendanceRate = average(rates)

	if len(allEnrollmentIDs) > 0 {
		scores, err := s.repos.Scores.ListByEnrollments(ctx, allEnrollmentIDs)
		if err != nil {
			return dto.TeacherDashboardResponse{}, err
		}
		for i, score := range scores {
			if i == recentScoreLimit {
				break
			}
			response.RecentScores = append(response.RecentScores, dto.NewScoreResponse(score))
		}
	}

	return response, nil
}

func (s *dashboardService) Admin(ctx context.Context) (dto.AdminDashboardResponse, error) {
	response, hit, err := cache.Remember(ctx, s.cache, cache.KeyAdminDashboard, s.cacheTTL, s.buildAdmin)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	response.CacheHit = hit
	return response, nil
}

func (s *dashboardService) buildAdmin(ctx context.Context) (dto.AdminDashboardResponse, error) {
	var (
		totals dto.AdminTotals
		err    error
	)
	if totals.Students, err = s.repos.Users.CountByRole(ctx, models.RoleStudent); err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	if totals.Teachers, err = s.repos.Users.CountByRole(ctx, models.RoleTeacher); err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	if totals.Courses, err = s.repos.Courses.Count(ctx, ""); err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	if totals.PublishedCourses, err = s.repos.Courses.Count(ctx, models.CourseStatusPublished); err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	if totals.ActiveEnrollments, err = s.repos.Enrollments.CountByStatus(ctx, models.EnrollmentStatusActive); err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	if totals.PendingPayments, err = s.repos.Payments.CountByStatus(ctx, models.PaymentStatusPending); err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	revenue, err := s.repos.Payments.SumCompleted(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	recent, err := s.repos.Enrollments.Recent(ctx, recentEnrollmentLimit)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	items := make([]dto.EnrollmentResponse, 0, len(recent))
	for _, enrollment := range recent {
		items = append(items, dto.NewEnrollmentResponse(enrollment))
	}

	return dto.AdminDashboardResponse{
		Totals:            totals,
		Revenue:           revenue,
		RecentEnrollments: items,
		GeneratedAt:       s.now().UTC(),
	}, nil
}
