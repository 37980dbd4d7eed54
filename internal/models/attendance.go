package models

import "time"

// Attendance status values.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

// Attendance records a student's presence for one course meeting date.
type Attendance struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	EnrollmentID uint       `gorm:"uniqueIndex:idx_attendance_enrollment_date;not null" json:"enrollment_id"`
	ScheduleID   *uint      `gorm:"index" json:"schedule_id"`
	Date         time.Time  `gorm:"uniqueIndex:idx_attendance_enrollment_date;not null" json:"date"`
	Status       string     `gorm:"size:16;not null" json:"status"`
	Notes        string     `gorm:"size:512" json:"notes"`
	RecordedBy   uint       `gorm:"index" json:"recorded_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Enrollment   Enrollment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// CountsAsPresent reports whether the status contributes to the attendance rate.
func (a Attendance) CountsAsPresent() bool {
	return a.Status == AttendancePresent || a.Status == AttendanceLate
}
