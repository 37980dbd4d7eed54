package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
	"github.com/noah-isme/cubis-academy-api/pkg/events"
)

const defaultMaxScore = 100

// TeacherService covers grading, attendance and progress for a teacher's own courses.
type TeacherService interface {
	Courses(ctx context.Context, userID uint) ([]dto.CourseResponse, error)
	CourseStudents(ctx context.Context, userID, courseID uint) ([]dto.CourseStudentResponse, error)
	RecordScore(ctx context.Context, userID uint, req dto.ScoreCreateRequest) (dto.ScoreResponse, error)
	RecordAttendance(ctx context.Context, userID uint, req dto.AttendanceBulkRequest) ([]dto.AttendanceResponse, error)
	UpdateProgress(ctx context.Context, userID, enrollmentID uint, req dto.ProgressUpdateRequest) (dto.EnrollmentResponse, error)
}

type teacherService struct {
	teachers    repository.TeacherRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	scores      repository.ScoreRepository
	attendance  repository.AttendanceRepository
	activity    ActivityRecorder
	notifier    *Notifier
	cache       *cache.Cache
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(
	teachers repository.TeacherRepository,
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	scores repository.ScoreRepository,
	attendance repository.AttendanceRepository,
	activity ActivityRecorder,
	notifier *Notifier,
	cacheStore *cache.Cache,
	validate *validator.Validate,
	logger zerolog.Logger,
) TeacherService {
	return &teacherService{
		teachers:    teachers,
		courses:     courses,
		enrollments: enrollments,
		scores:      scores,
		attendance:  attendance,
		activity:    activity,
		notifier:    notifier,
		cache:       cacheStore,
		validator:   validate,
		logger:      logger.With().Str("component", "teacher_service").Logger(),
		now:         time.Now,
	}
}

func (s *teacherService) Courses(ctx context.Context, userID uint) ([]dto.CourseResponse, error) {
	teacher, err := teacherForUser(ctx, s.teachers, userID)
	if err != nil {
		return nil, err
	}
	courses, err := s.courses.ListByTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		items = append(items, dto.NewCourseResponse(course))
	}
	return items, nil
}

// ownedCourse loads a course and confirms the teacher is assigned to it.
func (s *teacherService) ownedCourse(ctx context.Context, teacher models.Teacher, courseID uint) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	if course.TeacherID == nil || *course.TeacherID != teacher.ID {
		return models.Course{}, ErrForbidden
	}
	return course, nil
}

// ownedEnrollment loads an enrollment and confirms it belongs to one of the teacher's courses.
func (s *teacherService) ownedEnrollment(ctx context.Context, teacher models.Teacher, enrollmentID uint) (models.Enrollment, error) {
	enrollment, err := loadEnrollment(ctx, s.enrollments, enrollmentID)
	if err != nil {
		return models.Enrollment{}, err
	}
	if enrollment.Course.TeacherID == nil || *enrollment.Course.TeacherID != teacher.ID {
		return models.Enrollment{}, ErrForbidden
	}
	return enrollment, nil
}

func (s *teacherService) CourseStudents(ctx context.Context, userID, courseID uint) ([]dto.CourseStudentResponse, error) {
	teacher, err := teacherForUser(ctx, s.teachers, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCourse(ctx, teacher, courseID); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	roster := make([]dto.CourseStudentResponse, 0, len(enrollments))
	if len(enrollments) == 0 {
		return roster, nil
	}

	ids := enrollmentIDs(enrollments)
	scores, err := s.scores.ListByEnrollments(ctx, ids)
	if err != nil {
		return nil, err
	}
	records, err := s.attendance.ListByEnrollments(ctx, ids)
	if err != nil {
		return nil, err
	}

	scoresByEnrollment := make(map[uint][]float64)
	for _, score := range scores {
		scoresByEnrollment[score.EnrollmentID] = append(scoresByEnrollment[score.EnrollmentID], score.Percentage())
	}
	attendanceByEnrollment := make(map[uint][]models.Attendance)
	for _, record := range records {
		attendanceByEnrollment[record.EnrollmentID] = append(attendanceByEnrollment[record.EnrollmentID], record)
	}

	for _, enrollment := range enrollments {
		roster = append(roster, dto.CourseStudentResponse{
			EnrollmentID:   enrollment.ID,
			StudentID:      enrollment.StudentID,
			Name:           enrollment.Student.User.Name,
			Email:          enrollment.Student.User.Email,
			StudentNumber:  enrollment.Student.StudentNumber,
			Status:         enrollment.Status,
			Progress:       enrollment.Progress,
			AverageScore:   average(scoresByEnrollment[enrollment.ID]),
			AttendanceRate: dto.SummarizeAttendance(attendanceByEnrollment[enrollment.ID]).Rate,
		})
	}
	return roster, nil
}

func (s *teacherService) RecordScore(ctx context.Context, userID uint, req dto.ScoreCreateRequest) (dto.ScoreResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ScoreResponse{}, err
	}
	teacher, err := teacherForUser(ctx, s.teachers, userID)
	if err != nil {
		return dto.ScoreResponse{}, err
	}
	enrollment, err := s.ownedEnrollment(ctx, teacher, req.EnrollmentID)
	if err != nil {
		return dto.ScoreResponse{}, err
	}
	if !enrollment.AcceptsRecords() {
		return dto.ScoreResponse{}, ErrEnrollmentClosed
	}

	maxValue := req.MaxValue
	if maxValue <= 0 {
		maxValue = defaultMaxScore
	}
	if req.Value < 0 || req.Value > maxValue {
		return dto.ScoreResponse{}, ErrInvalidScore
	}

	score := models.Score{
		EnrollmentID: enrollment.ID,
		Title:        strings.TrimSpace(req.Title),
		Type:         req.Type,
		Value:        req.Value,
		MaxValue:     maxValue,
		Feedback:     strings.TrimSpace(req.Feedback),
		GradedBy:     userID,
	}
	if err := s.scores.Create(ctx, &score); err != nil {
		return dto.ScoreResponse{}, fmt.Errorf("record score: %w", err)
	}
	score.Enrollment = enrollment

	s.cache.InvalidateStudent(ctx, enrollment.StudentID)
	s.cache.InvalidateTeacher(ctx, teacher.ID)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      Actor{ID: userID, Role: models.RoleTeacher},
		Action:     "score.recorded",
		EntityType: "enrollment",
		EntityID:   uintPtr(enrollment.ID),
		Metadata:   map[string]interface{}{"score_id": score.ID, "type": score.Type, "percentage": score.Percentage()},
	})

	return dto.NewScoreResponse(score), nil
}

func (s *teacherService) RecordAttendance(ctx context.Context, userID uint, req dto.AttendanceBulkRequest) ([]dto.AttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	teacher, err := teacherForUser(ctx, s.teachers, userID)
	if err != nil {
		return nil, err
	}
	course, err := s.ownedCourse(ctx, teacher, req.CourseID)
	if err != nil {
		return nil, err
	}

	if req.ScheduleID != nil {
		found := false
		for _, slot := range course.Schedules {
			if slot.ID == *req.ScheduleID {
				found = true
				break
			}
		}
		if !found {
			return nil, ErrScheduleNotFound
		}
	}

	enrollments, err := s.enrollments.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Enrollment, len(enrollments))
	for _, enrollment := range enrollments {
		byID[enrollment.ID] = enrollment
	}

	records := make([]models.Attendance, 0, len(req.Records))
	for _, input := range req.Records {
		enrollment, ok := byID[input.EnrollmentID]
		if !ok {
			return nil, fmt.Errorf("%w: enrollment %d is not in course %d", ErrEnrollmentNotFound, input.EnrollmentID, course.ID)
		}
		if !enrollment.AcceptsRecords() {
			return nil, fmt.Errorf("%w: enrollment %d is %s", ErrEnrollmentClosed, enrollment.ID, enrollment.Status)
		}
		records = append(records, models.Attendance{
			EnrollmentID: enrollment.ID,
			ScheduleID:   req.ScheduleID,
			Date:         date,
			Status:       input.Status,
			Notes:        strings.TrimSpace(input.Notes),
			RecordedBy:   userID,
		})
	}

	if err := s.attendance.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("record attendance: %w", err)
	}

	responses := make([]dto.AttendanceResponse, 0, len(records))
	for _, record := range records {
		s.cache.InvalidateStudent(ctx, byID[record.EnrollmentID].StudentID)
		record.Enrollment = byID[record.EnrollmentID]
		record.Enrollment.Course = course
		responses = append(responses, dto.NewAttendanceResponse(record))
	}
	s.cache.InvalidateTeacher(ctx, teacher.ID)
	s.cache.Del(ctx, cache.CourseStats(course.ID))

	s.logger.Info().
		Uint("course_id", course.ID).
		Str("date", req.Date).
		Int("records", len(records)).
		Msg("attendance recorded")

	return responses, nil
}

func (s *teacherService) UpdateProgress(ctx context.Context, userID, enrollmentID uint, req dto.ProgressUpdateRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EnrollmentResponse{}, err
	}
	teacher, err := teacherForUser(ctx, s.teachers, userID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	enrollment, err := s.ownedEnrollment(ctx, teacher, enrollmentID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return dto.EnrollmentResponse{}, fmt.Errorf("%w: progress cannot change while %s", ErrInvalidTransition, enrollment.Status)
	}

	enrollment.Progress = *req.Progress
	completed := enrollment.Progress >= 100
	if completed {
		applyEnrollmentStatus(&enrollment, models.EnrollmentStatusCompleted, s.now())
	}
	if err := s.enrollments.Save(ctx, &enrollment); err != nil {
		return dto.EnrollmentResponse{}, fmt.Errorf("update progress: %w", err)
	}

	s.cache.InvalidateStudent(ctx, enrollment.StudentID)
	s.cache.InvalidateTeacher(ctx, teacher.ID)
	if completed {
		s.cache.InvalidateAdminDashboard(ctx)
		s.notifier.Publish(ctx, events.EnrollmentStatusChanged, map[string]interface{}{
			"enrollment_id": enrollment.ID,
			"student_id":    enrollment.StudentID,
			"course_id":     enrollment.CourseID,
			"from":          models.EnrollmentStatusActive,
			"to":            models.EnrollmentStatusCompleted,
			"reason":        "progress reached 100",
		})
	}

	return dto.NewEnrollmentResponse(enrollment), nil
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
