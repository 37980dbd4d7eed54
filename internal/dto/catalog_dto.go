package dto

import (
	"time"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// CourseListRequest filters course listings.
type CourseListRequest struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	CategoryID uint   `json:"category_id"`
	Category   string `json:"category"`
	Level      string `json:"level"`
	Search     string `json:"search"`
	Sort       string `json:"sort"`
	Status     string `json:"status"`
	TeacherID  uint   `json:"teacher_id"`
}

// CategoryResponse serializes a course category.
type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// TeacherSummary is the public view of a course's teacher.
type TeacherSummary struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Expertise string `json:"expertise"`
	AvatarURL string `json:"avatar_url"`
}

// ScheduleResponse serializes a weekly class slot.
type ScheduleResponse struct {
	ID        uint   `json:"id"`
	CourseID  uint   `json:"course_id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Room      string `json:"room"`
}

// CourseResponse serializes a course.
type CourseResponse struct {
	ID            uint                   `json:"id"`
	Title         string                 `json:"title"`
	Slug          string                 `json:"slug"`
	Description   string                 `json:"description"`
	Level         string                 `json:"level"`
	Price         float64                `json:"price"`
	Capacity      int                    `json:"capacity"`
	DurationWeeks int                    `json:"duration_weeks"`
	Syllabus      map[string]interface{} `json:"syllabus,omitempty"`
	ThumbnailURL  string                 `json:"thumbnail_url"`
	Status        string                 `json:"status"`
	Category      *CategoryResponse      `json:"category,omitempty"`
	Teacher       *TeacherSummary        `json:"teacher,omitempty"`
	Schedules     []ScheduleResponse     `json:"schedules,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// CourseCreateRequest creates a course.
type CourseCreateRequest struct {
	Title         string                 `json:"title" validate:"required,min=3,max=255"`
	Description   string                 `json:"description" validate:"omitempty,max=20000"`
	CategoryID    *uint                  `json:"category_id" validate:"omitempty,gt=0"`
	TeacherID     *uint                  `json:"teacher_id" validate:"omitempty,gt=0"`
	Level         string                 `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Price         float64                `json:"price" validate:"gte=0"`
	Capacity      int                    `json:"capacity" validate:"gte=0"`
	DurationWeeks int                    `json:"duration_weeks" validate:"gte=0,lte=104"`
	Syllabus      map[string]interface{} `json:"syllabus"`
	Status        string                 `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// CourseUpdateRequest partially updates a course.
type CourseUpdateRequest struct {
	Title         *string                `json:"title" validate:"omitempty,min=3,max=255"`
	Description   *string                `json:"description" validate:"omitempty,max=20000"`
	CategoryID    *uint                  `json:"category_id" validate:"omitempty,gt=0"`
	TeacherID     *uint                  `json:"teacher_id" validate:"omitempty,gt=0"`
	Level         *string                `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price         *float64               `json:"price" validate:"omitempty,gte=0"`
	Capacity      *int                   `json:"capacity" validate:"omitempty,gte=0"`
	DurationWeeks *int                   `json:"duration_weeks" validate:"omitempty,gte=0,lte=104"`
	Syllabus      map[string]interface{} `json:"syllabus"`
	Status        *string                `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// CategoryCreateRequest creates a category.
type CategoryCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	IsActive    *bool  `json:"is_active"`
}

// CategoryUpdateRequest partially updates a category.
type CategoryUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active"`
}

// ScheduleCreateRequest adds a weekly slot to a course.
type ScheduleCreateRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime string `json:"start_time" validate:"required,len=5"`
	EndTime   string `json:"end_time" validate:"required,len=5"`
	Room      string `json:"room" validate:"omitempty,max=120"`
}

// NewCategoryResponse converts a category model.
func NewCategoryResponse(category models.CourseCategory) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		IsActive:    category.IsActive,
	}
}

// NewScheduleResponse converts a schedule model.
func NewScheduleResponse(schedule models.ClassSchedule) ScheduleResponse {
	return ScheduleResponse{
		ID:        schedule.ID,
		CourseID:  schedule.CourseID,
		DayOfWeek: schedule.DayOfWeek,
		StartTime: schedule.StartTime,
		EndTime:   schedule.EndTime,
		Room:      schedule.Room,
	}
}

// NewCourseResponse converts a course model including any preloaded associations.
func NewCourseResponse(course models.Course) CourseResponse {
	resp := CourseResponse{
		ID:            course.ID,
		Title:         course.Title,
		Slug:          course.Slug,
		Description:   course.Description,
		Level:         course.Level,
		Price:         course.Price,
		Capacity:      course.Capacity,
		DurationWeeks: course.DurationWeeks,
		ThumbnailURL:  course.ThumbnailURL,
		Status:        course.Status,
		CreatedAt:     course.CreatedAt,
		UpdatedAt:     course.UpdatedAt,
	}
	if len(course.Syllabus) > 0 {
		resp.Syllabus = map[string]interface{}(course.Syllabus)
	}
	if course.Category != nil && course.Category.ID != 0 {
		category := NewCategoryResponse(*course.Category)
		resp.Category = &category
	}
	if course.Teacher != nil && course.Teacher.ID != 0 {
		resp.Teacher = &TeacherSummary{
			ID:        course.Teacher.ID,
			Name:      course.Teacher.User.Name,
			Expertise: course.Teacher.Expertise,
			AvatarURL: course.Teacher.User.AvatarURL,
		}
	}
	if len(course.Schedules) > 0 {
		resp.Schedules = make([]ScheduleResponse, 0, len(course.Schedules))
		for _, schedule := range course.Schedules {
			resp.Schedules = append(resp.Schedules, NewScheduleResponse(schedule))
		}
	}
	return resp
}
