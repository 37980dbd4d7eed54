package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course status values.
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

// Course level values.
const (
	CourseLevelBeginner     = "beginner"
	CourseLevelIntermediate = "intermediate"
	CourseLevelAdvanced     = "advanced"
)

// CourseCategory groups courses in the catalog.
type CourseCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Slug        string    `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Course is a catalog offering taught by a teacher.
type Course struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	Title         string            `gorm:"size:255;not null" json:"title"`
	Slug          string            `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Description   string            `gorm:"type:text" json:"description"`
	CategoryID    *uint             `gorm:"index" json:"category_id"`
	TeacherID     *uint             `gorm:"index" json:"teacher_id"`
	Level         string            `gorm:"size:32;index;not null;default:beginner" json:"level"`
	Price         float64           `gorm:"not null;default:0" json:"price"`
	Capacity      int               `gorm:"not null;default:0" json:"capacity"`
	DurationWeeks int               `gorm:"not null;default:0" json:"duration_weeks"`
	Syllabus      datatypes.JSONMap `gorm:"type:json" json:"syllabus"`
	ThumbnailURL  string            `gorm:"size:512" json:"thumbnail_url"`
	ThumbnailKey  string            `gorm:"size:512" json:"-"`
	Status        string            `gorm:"size:32;index;not null;default:draft" json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"-"`
	Category      *CourseCategory   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	Teacher       *Teacher          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"teacher,omitempty"`
	Schedules     []ClassSchedule   `json:"schedules,omitempty"`
}

// IsPublished reports whether the course is visible in the public catalog.
func (c Course) IsPublished() bool {
	return c.Status == CourseStatusPublished
}

// HasCapacity reports whether another student can join given the current active count.
func (c Course) HasCapacity(active int64) bool {
	if c.Capacity <= 0 {
		return true
	}
	return active < int64(c.Capacity)
}

// IsValidCourseLevel reports whether level is a known course level.
func IsValidCourseLevel(level string) bool {
	switch level {
	case CourseLevelBeginner, CourseLevelIntermediate, CourseLevelAdvanced:
		return true
	default:
		return false
	}
}
