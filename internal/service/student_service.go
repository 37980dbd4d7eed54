package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
	"github.com/noah-isme/cubis-academy-api/pkg/storage"
)

const avatarSize = 256

// StudentService exposes a student's own academic records and profile.
type StudentService interface {
	Scores(ctx context.Context, userID uint) ([]dto.ScoreResponse, error)
	Attendance(ctx context.Context, userID uint) (dto.AttendanceReport, error)
	Schedule(ctx context.Context, userID uint) ([]dto.ScheduleEntry, error)
	UpdateProfile(ctx context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.UserResponse, error)
	UploadAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (dto.UserResponse, error)
}

type studentService struct {
	users       repository.UserRepository
	students    repository.StudentRepository
	teachers    repository.TeacherRepository
	enrollments repository.EnrollmentRepository
	scores      repository.ScoreRepository
	attendance  repository.AttendanceRepository
	uploads     UploadService
	cache       *cache.Cache
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewStudentService constructs the student self-service.
func NewStudentService(
	users repository.UserRepository,
	students repository.StudentRepository,
	teachers repository.TeacherRepository,
	enrollments repository.EnrollmentRepository,
	scores repository.ScoreRepository,
	attendance repository.AttendanceRepository,
	uploads UploadService,
	cacheStore *cache.Cache,
	validate *validator.Validate,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		users:       users,
		students:    students,
		teachers:    teachers,
		enrollments: enrollments,
		scores:      scores,
		attendance:  attendance,
		uploads:     uploads,
		cache:       cacheStore,
		validator:   validate,
		logger:      logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) enrollmentsFor(ctx context.Context, userID uint) (models.Student, []models.Enrollment, error) {
	student, err := studentForUser(ctx, s.students, userID)
	if err != nil {
		return models.Student{}, nil, err
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, student.ID)
	if err != nil {
		return models.Student{}, nil, err
	}
	return student, enrollments, nil
}

func (s *studentService) Scores(ctx context.Context, userID uint) ([]dto.ScoreResponse, error) {
	_, enrollments, err := s.enrollmentsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return []dto.ScoreResponse{}, nil
	}

	scores, err := s.scores.ListByEnrollments(ctx, enrollmentIDs(enrollments))
	if err != nil {
		return nil, err
	}
	items := make([]dto.ScoreResponse, 0, len(scores))
	for _, score := range scores {
		items = append(items, dto.NewScoreResponse(score))
	}
	return items, nil
}

func (s *studentService) Attendance(ctx context.Context, userID uint) (dto.AttendanceReport, error) {
	_, enrollments, err := s.enrollmentsFor(ctx, userID)
	if err != nil {
		return dto.AttendanceReport{}, err
	}
	report := dto.AttendanceReport{Records: []dto.AttendanceResponse{}}
	if len(enrollments) == 0 {
		return report, nil
	}

	records, err := s.attendance.ListByEnrollments(ctx, enrollmentIDs(enrollments))
	if err != nil {
		return dto.AttendanceReport{}, err
	}
	report.Summary = dto.SummarizeAttendance(records)
	for _, record := range records {
		report.Records = append(report.Records, dto.NewAttendanceResponse(record))
	}
	return report, nil
}

func (s *studentService) Schedule(ctx context.Context, userID uint) ([]dto.ScheduleEntry, error) {
	_, enrollments, err := s.enrollmentsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return weeklySchedule(enrollments), nil
}

func (s *studentService) UpdateProfile(ctx context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}
	student, err := studentForUser(ctx, s.students, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if err := s.users.UpdateFields(ctx, userID, updates); err != nil {
		return dto.UserResponse{}, fmt.Errorf("update profile: %w", err)
	}
	if req.Address != nil {
		if err := s.students.UpdateFields(ctx, student.ID, map[string]interface{}{"address": strings.TrimSpace(*req.Address)}); err != nil {
			return dto.UserResponse{}, fmt.Errorf("update profile: %w", err)
		}
	}

	s.cache.InvalidateStudent(ctx, student.ID)
	return s.profile(ctx, userID)
}

func (s *studentService) UploadAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (dto.UserResponse, error) {
	student, err := studentForUser(ctx, s.students, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	record, err := s.uploads.Store(ctx, file, &userID, storage.UploadOptions{
		Category:     UploadCategoryAvatars,
		AllowedTypes: storage.ImageTypes,
		ResizeWidth:  avatarSize,
		ResizeHeight: avatarSize,
	})
	if err != nil {
		return dto.UserResponse{}, err
	}
	if err := s.users.UpdateFields(ctx, userID, map[string]interface{}{"avatar_url": record.URL}); err != nil {
		s.uploads.Remove(ctx, record.FileKey)
		return dto.UserResponse{}, fmt.Errorf("update avatar: %w", err)
	}

	s.cache.InvalidateStudent(ctx, student.ID)
	return s.profile(ctx, userID)
}

func (s *studentService) profile(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return buildUserResponse(ctx, s.students, s.teachers, user)
}

// weeklySchedule lists the class slots of active enrollments ordered by weekday and start time.
func weeklySchedule(enrollments []models.Enrollment) []dto.ScheduleEntry {
	entries := []dto.ScheduleEntry{}
	for _, enrollment := range enrollments {
		if enrollment.Status != models.EnrollmentStatusActive {
			continue
		}
		for _, slot := range enrollment.Course.Schedules {
			entries = append(entries, dto.ScheduleEntry{
				CourseID:    enrollment.CourseID,
				CourseTitle: enrollment.Course.Title,
				DayOfWeek:   slot.DayOfWeek,
				StartTime:   slot.StartTime,
				EndTime:     slot.EndTime,
				Room:        slot.Room,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].DayOfWeek != entries[j].DayOfWeek {
			return entries[i].DayOfWeek < entries[j].DayOfWeek
		}
		return entries[i].StartTime < entries[j].StartTime
	})
	return entries
}
