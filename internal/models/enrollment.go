package models

import "time"

// Enrollment status values.
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusDropped   = "dropped"
	EnrollmentStatusSuspended = "suspended"
)

var enrollmentTransitions = map[string][]string{
	EnrollmentStatusActive:    {EnrollmentStatusCompleted, EnrollmentStatusDropped, EnrollmentStatusSuspended},
	EnrollmentStatusSuspended: {EnrollmentStatusActive, EnrollmentStatusDropped},
}

// Enrollment links a student to a course with a status and progress percentage.
type Enrollment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StudentID   uint       `gorm:"index;not null" json:"student_id"`
	CourseID    uint       `gorm:"index;not null" json:"course_id"`
	Status      string     `gorm:"size:32;index;not null" json:"status"`
	Progress    float64    `gorm:"not null;default:0" json:"progress"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Student     Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Course      Course     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
}

// CanTransitionTo reports whether the enrollment may move to the target status.
func (e Enrollment) CanTransitionTo(target string) bool {
	for _, allowed := range enrollmentTransitions[e.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AcceptsRecords reports whether scores and attendance may still be recorded.
func (e Enrollment) AcceptsRecords() bool {
	return e.Status == EnrollmentStatusActive || e.Status == EnrollmentStatusCompleted
}

// IsTerminal reports whether no further transitions are possible.
func (e Enrollment) IsTerminal() bool {
	return len(enrollmentTransitions[e.Status]) == 0
}

// IsValidEnrollmentStatus reports whether status is a known enrollment status.
func IsValidEnrollmentStatus(status string) bool {
	switch status {
	case EnrollmentStatusActive, EnrollmentStatusCompleted, EnrollmentStatusDropped, EnrollmentStatusSuspended:
		return true
	default:
		return false
	}
}
