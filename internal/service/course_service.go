package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
	"github.com/noah-isme/cubis-academy-api/pkg/storage"
)

const (
	thumbnailWidth  = 1280
	thumbnailHeight = 720
	maxSlugAttempts = 50
)

// CourseService manages courses and their schedules for administrators.
type CourseService interface {
	List(ctx context.Context, req dto.CourseListRequest) (dto.ListResponse[dto.CourseResponse], error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, actor Actor, req dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	UploadThumbnail(ctx context.Context, actor Actor, id uint, file *multipart.FileHeader) (dto.CourseResponse, error)
	AddSchedule(ctx context.Context, actor Actor, courseID uint, req dto.ScheduleCreateRequest) (dto.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, actor Actor, courseID, scheduleID uint) error
}

type courseService struct {
	courses    repository.CourseRepository
	categories repository.CategoryRepository
	teachers   repository.TeacherRepository
	uploads    UploadService
	activity   ActivityRecorder
	cache      *cache.Cache
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewCourseService constructs the course administration service.
func NewCourseService(
	courses repository.CourseRepository,
	categories repository.CategoryRepository,
	teachers repository.TeacherRepository,
	uploads UploadService,
	activity ActivityRecorder,
	cacheStore *cache.Cache,
	validate *validator.Validate,
	logger zerolog.Logger,
) CourseService {
	return &courseService{
		courses:    courses,
		categories: categories,
		teachers:   teachers,
		uploads:    uploads,
		activity:   activity,
		cache:      cacheStore,
		validator:  validate,
		sanitizer:  bluemonday.UGCPolicy(),
		logger:     logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context, req dto.CourseListRequest) (dto.ListResponse[dto.CourseResponse], error) {
	page, pageSize := dto.NormalizePage(req.Page, req.PageSize)
	courses, total, err := s.courses.List(ctx, repository.CourseFilter{
		Status:       strings.ToLower(strings.TrimSpace(req.Status)),
		CategoryID:   req.CategoryID,
		CategorySlug: strings.ToLower(strings.TrimSpace(req.Category)),
		Level:        strings.ToLower(strings.TrimSpace(req.Level)),
		TeacherID:    req.TeacherID,
		Search:       strings.TrimSpace(req.Search),
		Sort:         strings.ToLower(strings.TrimSpace(req.Sort)),
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		return dto.ListResponse[dto.CourseResponse]{}, err
	}

	items := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		items = append(items, dto.NewCourseResponse(course))
	}
	return dto.ListResponse[dto.CourseResponse]{Items: items, Pagination: dto.NewPaginationMeta(page, pageSize, total)}, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.load(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) load(ctx context.Context, id uint) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

func (s *courseService) Create(ctx context.Context, actor Actor, req dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CourseResponse{}, err
	}
	if err := s.checkReferences(ctx, req.CategoryID, req.TeacherID); err != nil {
		return dto.CourseResponse{}, err
	}

	title := strings.TrimSpace(req.Title)
	slug, err := s.uniqueSlug(ctx, title, 0)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	status := req.Status
	if status == "" {
		status = models.CourseStatusDraft
	}
	course := models.Course{
		Title:         title,
		Slug:          slug,
		Description:   s.sanitizer.Sanitize(req.Description),
		CategoryID:    req.CategoryID,
		TeacherID:     req.TeacherID,
		Level:         req.Level,
		Price:         req.Price,
		Capacity:      req.Capacity,
		DurationWeeks: req.DurationWeeks,
		Syllabus:      datatypes.JSONMap(req.Syllabus),
		Status:        status,
	}
	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, fmt.Errorf("create course: %w", err)
	}

	s.afterChange(ctx, course)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "course.created",
		EntityType: "course",
		EntityID:   uintPtr(course.ID),
		Metadata:   map[string]interface{}{"title": course.Title, "status": course.Status},
	})

	return s.Get(ctx, course.ID)
}

func (s *courseService) Update(ctx context.Context, actor Actor, id uint, req dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.load(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if err := s.checkReferences(ctx, req.CategoryID, req.TeacherID); err != nil {
		return dto.CourseResponse{}, err
	}
	previousTeacher := course.TeacherID

	changes := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title != course.Title {
			slug, err := s.uniqueSlug(ctx, title, course.ID)
			if err != nil {
				return dto.CourseResponse{}, err
			}
			course.Title = title
			course.Slug = slug
			changes["title"] = title
		}
	}
	if req.Description != nil {
		course.Description = s.sanitizer.Sanitize(*req.Description)
		changes["description"] = true
	}
	if req.CategoryID != nil {
		course.CategoryID = req.CategoryID
		changes["category_id"] = *req.CategoryID
	}
	if req.TeacherID != nil {
		course.TeacherID = req.TeacherID
		changes["teacher_id"] = *req.TeacherID
	}
	if req.Level != nil {
		course.Level = *req.Level
		changes["level"] = *req.Level
	}
	if req.Price != nil {
		course.Price = *req.Price
		changes["price"] = *req.Price
	}
	if req.Capacity != nil {
		course.Capacity = *req.Capacity
		changes["capacity"] = *req.Capacity
	}
	if req.DurationWeeks != nil {
		course.DurationWeeks = *req.DurationWeeks
		changes["duration_weeks"] = *req.DurationWeeks
	}
	if req.Syllabus != nil {
		course.Syllabus = datatypes.JSONMap(req.Syllabus)
		changes["syllabus"] = true
	}
	if req.Status != nil {
		course.Status = *req.Status
		changes["status"] = *req.Status
	}

	course.Category = nil
	course.Teacher = nil
	course.Schedules = nil
	if err := s.courses.Save(ctx, &course); err != nil {
		return dto.CourseResponse{}, fmt.Errorf("update course: %w", err)
	}

	s.afterChange(ctx, course)
	if previousTeacher != nil && (course.TeacherID == nil || *previousTeacher != *course.TeacherID) {
		s.cache.InvalidateTeacher(ctx, *previousTeacher)
	}
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "course.updated",
		EntityType: "course",
		EntityID:   uintPtr(course.ID),
		Metadata:   changes,
	})

	return s.Get(ctx, course.ID)
}

func (s *courseService) Delete(ctx context.Context, actor Actor, id uint) error {
	course, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	s.uploads.Remove(ctx, course.ThumbnailKey)
	s.afterChange(ctx, course)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "course.deleted",
		EntityType: "course",
		EntityID:   uintPtr(course.ID),
		Metadata:   map[string]interface{}{"title": course.Title},
	})
	return nil
}

func (s *courseService) UploadThumbnail(ctx context.Context, actor Actor, id uint, file *multipart.FileHeader) (dto.CourseResponse, error) {
	course, err := s.load(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	record, err := s.uploads.Store(ctx, file, &actor.ID, storage.UploadOptions{
		Category:     UploadCategoryCourses,
		AllowedTypes: storage.ImageTypes,
		ResizeWidth:  thumbnailWidth,
		ResizeHeight: thumbnailHeight,
	})
	if err != nil {
		return dto.CourseResponse{}, err
	}

	previousKey := course.ThumbnailKey
	course.ThumbnailURL = record.URL
	course.ThumbnailKey = record.FileKey
	course.Category = nil
	course.Teacher = nil
	course.Schedules = nil
	if err := s.courses.Save(ctx, &course); err != nil {
		s.uploads.Remove(ctx, record.FileKey)
		return dto.CourseResponse{}, fmt.Errorf("update course thumbnail: %w", err)
	}
	s.uploads.Remove(ctx, previousKey)

	s.afterChange(ctx, course)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "course.thumbnail_uploaded",
		EntityType: "course",
		EntityID:   uintPtr(course.ID),
		Metadata:   map[string]interface{}{"file_key": record.FileKey},
	})

	return s.Get(ctx, course.ID)
}

func (s *courseService) AddSchedule(ctx context.Context, actor Actor, courseID uint, req dto.ScheduleCreateRequest) (dto.ScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ScheduleResponse{}, err
	}
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return dto.ScheduleResponse{}, err
	}

	course, err := s.load(ctx, courseID)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	schedule := models.ClassSchedule{
		CourseID:  course.ID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Room:      strings.TrimSpace(req.Room),
	}
	if err := s.courses.CreateSchedule(ctx, &schedule); err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("create schedule: %w", err)
	}

	s.afterChange(ctx, course)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "schedule.created",
		EntityType: "course",
		EntityID:   uintPtr(course.ID),
		Metadata:   map[string]interface{}{"schedule_id": schedule.ID, "day_of_week": schedule.DayOfWeek},
	})
	return dto.NewScheduleResponse(schedule), nil
}

func (s *courseService) DeleteSchedule(ctx context.Context, actor Actor, courseID, scheduleID uint) error {
	course, err := s.load(ctx, courseID)
	if err != nil {
		return err
	}
	if err := s.courses.DeleteSchedule(ctx, courseID, scheduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}

	s.afterChange(ctx, course)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "schedule.deleted",
		EntityType: "course",
		EntityID:   uintPtr(course.ID),
		Metadata:   map[string]interface{}{"schedule_id": scheduleID},
	})
	return nil
}

func (s *courseService) checkReferences(ctx context.Context, categoryID, teacherID *uint) error {
	if categoryID != nil {
		if _, err := s.categories.GetByID(ctx, *categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
	}
	if teacherID != nil {
		if _, err := s.teachers.GetByID(ctx, *teacherID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeacherNotFound
			}
			return err
		}
	}
	return nil
}

func (s *courseService) uniqueSlug(ctx context.Context, title string, excludeID uint) (string, error) {
	base := utils.Slugify(title)
	if base == "" {
		base = "course"
	}
	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts; attempt++ {
		taken, err := s.courses.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return fmt.Sprintf("%s-%d", base, time.Now().UnixNano()), nil
}

func (s *courseService) afterChange(ctx context.Context, course models.Course) {
	s.cache.InvalidateCourse(ctx, course.ID)
	s.cache.InvalidateAdminDashboard(ctx)
	if course.TeacherID != nil {
		s.cache.InvalidateTeacher(ctx, *course.TeacherID)
	}
}

func validateTimeRange(start, end string) error {
	startAt, err := time.Parse("15:04", start)
	if err != nil {
		return ErrInvalidSchedule
	}
	endAt, err := time.Parse("15:04", end)
	if err != nil {
		return ErrInvalidSchedule
	}
	if !endAt.After(startAt) {
		return ErrInvalidSchedule
	}
	return nil
}
