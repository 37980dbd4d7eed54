package dto

import (
	"time"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// EnrollmentListRequest filters enrollment listings.
type EnrollmentListRequest struct {
	Page      int
	PageSize  int
	Status    string
	CourseID  uint
	StudentID uint
}

// EnrollmentResponse serializes an enrollment with its course and student labels.
type EnrollmentResponse struct {
	ID            uint       `json:"id"`
	StudentID     uint       `json:"student_id"`
	StudentName   string     `json:"student_name,omitempty"`
	StudentNumber string     `json:"student_number,omitempty"`
	CourseID      uint       `json:"course_id"`
	CourseTitle   string     `json:"course_title,omitempty"`
	CourseSlug    string     `json:"course_slug,omitempty"`
	Status        string     `json:"status"`
	Progress      float64    `json:"progress"`
	EnrolledAt    time.Time  `json:"enrolled_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// EnrollRequest enrolls the caller in a course.
type EnrollRequest struct {
	CourseID uint `json:"course_id" validate:"required,gt=0"`
}

// EnrollmentStatusRequest changes an enrollment's status.
type EnrollmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active completed dropped suspended"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// ProgressUpdateRequest sets an enrollment's completion percentage.
type ProgressUpdateRequest struct {
	Progress *float64 `json:"progress" validate:"required,gte=0,lte=100"`
}

// EnrollResult is returned after a successful enrollment.
type EnrollResult struct {
	Enrollment EnrollmentResponse `json:"enrollment"`
	Payment    *PaymentResponse   `json:"payment,omitempty"`
}

// NewEnrollmentResponse converts an enrollment model including preloaded associations.
func NewEnrollmentResponse(enrollment models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:            enrollment.ID,
		StudentID:     enrollment.StudentID,
		StudentName:   enrollment.Student.User.Name,
		StudentNumber: enrollment.Student.StudentNumber,
		CourseID:      enrollment.CourseID,
		CourseTitle:   enrollment.Course.Title,
		CourseSlug:    enrollment.Course.Slug,
		Status:        enrollment.Status,
		Progress:      enrollment.Progress,
		EnrolledAt:    enrollment.EnrolledAt,
		CompletedAt:   enrollment.CompletedAt,
	}
}
