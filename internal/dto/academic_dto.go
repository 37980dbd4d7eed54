package dto

import (
	"time"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// ScoreCreateRequest records a graded assessment.
type ScoreCreateRequest struct {
	EnrollmentID uint    `json:"enrollment_id" validate:"required,gt=0"`
	Title        string  `json:"title" validate:"required,min=2,max=255"`
	Type         string  `json:"type" validate:"required,oneof=quiz assignment midterm final"`
	Value        float64 `json:"value" validate:"gte=0"`
	MaxValue     float64 `json:"max_value" validate:"omitempty,gt=0"`
	Feedback     string  `json:"feedback" validate:"omitempty,max=5000"`
}

// ScoreResponse serializes a score.
type ScoreResponse struct {
	ID           uint      `json:"id"`
	EnrollmentID uint      `json:"enrollment_id"`
	CourseID     uint      `json:"course_id,omitempty"`
	CourseTitle  string    `json:"course_title,omitempty"`
	StudentName  string    `json:"student_name,omitempty"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	Value        float64   `json:"value"`
	MaxValue     float64   `json:"max_value"`
	Percentage   float64   `json:"percentage"`
	Feedback     string    `json:"feedback"`
	CreatedAt    time.Time `json:"created_at"`
}

// AttendanceRecordInput is one student's attendance within a bulk submission.
type AttendanceRecordInput struct {
	EnrollmentID uint   `json:"enrollment_id" validate:"required,gt=0"`
	Status       string `json:"status" validate:"required,oneof=present absent late excused"`
	Notes        string `json:"notes" validate:"omitempty,max=512"`
}

// AttendanceBulkRequest records attendance for a course meeting.
type AttendanceBulkRequest struct {
	CourseID   uint                    `json:"course_id" validate:"required,gt=0"`
	Date       string                  `json:"date" validate:"required,datetime=2006-01-02"`
	ScheduleID *uint                   `json:"schedule_id" validate:"omitempty,gt=0"`
	Records    []AttendanceRecordInput `json:"records" validate:"required,min=1,unique=EnrollmentID,dive"`
}

// AttendanceResponse serializes an attendance record.
type AttendanceResponse struct {
	ID           uint      `json:"id"`
	EnrollmentID uint      `json:"enrollment_id"`
	CourseID     uint      `json:"course_id,omitempty"`
	CourseTitle  string    `json:"course_title,omitempty"`
	Date         time.Time `json:"date"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
}

// AttendanceSummary aggregates attendance counts.
type AttendanceSummary struct {
	Total   int     `json:"total"`
	Present int     `json:"present"`
	Late    int     `json:"late"`
	Absent  int     `json:"absent"`
	Excused int     `json:"excused"`
	Rate    float64 `json:"rate"`
}

// AttendanceReport pairs a student's attendance history with its summary.
type AttendanceReport struct {
	Summary AttendanceSummary    `json:"summary"`
	Records []AttendanceResponse `json:"records"`
}

// ScheduleEntry is a weekly slot annotated with its course.
type ScheduleEntry struct {
	CourseID    uint   `json:"course_id"`
	CourseTitle string `json:"course_title"`
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Room        string `json:"room"`
}

// NewScoreResponse converts a score model including preloaded associations.
func NewScoreResponse(score models.Score) ScoreResponse {
	return ScoreResponse{
		ID:           score.ID,
		EnrollmentID: score.EnrollmentID,
		CourseID:     score.Enrollment.CourseID,
		CourseTitle:  score.Enrollment.Course.Title,
		StudentName:  score.Enrollment.Student.User.Name,
		Title:        score.Title,
		Type:         score.Type,
		Value:        score.Value,
		MaxValue:     score.MaxValue,
		Percentage:   score.Percentage(),
		Feedback:     score.Feedback,
		CreatedAt:    score.CreatedAt,
	}
}

// NewAttendanceResponse converts an attendance model.
func NewAttendanceResponse(record models.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:           record.ID,
		EnrollmentID: record.EnrollmentID,
		CourseID:     record.Enrollment.CourseID,
		CourseTitle:  record.Enrollment.Course.Title,
		Date:         record.Date,
		Status:       record.Status,
		Notes:        record.Notes,
	}
}

// SummarizeAttendance counts statuses and computes the present-or-late rate.
func SummarizeAttendance(records []models.Attendance) AttendanceSummary {
	summary := AttendanceSummary{Total: len(records)}
	for _, record := range records {
		switch record.Status {
		case models.AttendancePresent:
			summary.Present++
		case models.AttendanceLate:
			summary.Late++
		case models.AttendanceAbsent:
			summary.Absent++
		case models.AttendanceExcused:
			summary.Excused++
		}
	}
	if summary.Total > 0 {
		summary.Rate = float64(summary.Present+summary.Late) / float64(summary.Total) * 100
	}
	return summary
}
