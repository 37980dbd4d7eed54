package dto

import "time"

// StudentDashboardResponse aggregates a student's learning overview.
type StudentDashboardResponse struct {
	Profile             UserResponse         `json:"profile"`
	Enrollments         []EnrollmentResponse `json:"enrollments"`
	ActiveCourses       int                  `json:"active_courses"`
	CompletedCourses    int                  `json:"completed_courses"`
	AverageScore        float64              `json:"average_score"`
	Attendance          AttendanceSummary    `json:"attendance"`
	OutstandingPayments []PaymentResponse    `json:"outstanding_payments"`
	OutstandingAmount   float64              `json:"outstanding_amount"`
	Schedule            []ScheduleEntry      `json:"schedule"`
	RecentScores        []ScoreResponse      `json:"recent_scores"`
	GeneratedAt         time.Time            `json:"generated_at"`
	CacheHit            bool                 `json:"cache_hit"`
}

// TeacherCourseSummary describes one of a teacher's courses.
type TeacherCourseSummary struct {
	Course         CourseResponse `json:"course"`
	ActiveStudents int64          `json:"active_students"`
	AttendanceRate float64        `json:"attendance_rate"`
}

// TeacherDashboardResponse aggregates a teacher's teaching overview.
type TeacherDashboardResponse struct {
	Courses               []TeacherCourseSummary `json:"courses"`
	TotalActiveStudents   int64                  `json:"total_active_students"`
	AverageAttendanceRate float64                `json:"average_attendance_rate"`
	RecentScores          []ScoreResponse        `json:"recent_scores"`
	GeneratedAt           time.Time              `json:"generated_at"`
	CacheHit              bool                   `json:"cache_hit"`
}

// CourseStudentResponse is a roster row for a teacher's course.
type CourseStudentResponse struct {
	EnrollmentID   uint    `json:"enrollment_id"`
	StudentID      uint    `json:"student_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	StudentNumber  string  `json:"student_number"`
	Status         string  `json:"status"`
	Progress       float64 `json:"progress"`
	AverageScore   float64 `json:"average_score"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// AdminTotals are headline counts for the admin dashboard.
type AdminTotals struct {
	Students          int64 `json:"students"`
	Teachers          int64 `json:"teachers"`
	Courses           int64 `json:"courses"`
	PublishedCourses  int64 `json:"published_courses"`
	ActiveEnrollments int64 `json:"active_enrollments"`
	PendingPayments   int64 `json:"pending_payments"`
}

// AdminDashboardResponse aggregates platform-wide metrics.
type AdminDashboardResponse struct {
	Totals            AdminTotals          `json:"totals"`
	Revenue           float64              `json:"revenue"`
	RecentEnrollments []EnrollmentResponse `json:"recent_enrollments"`
	GeneratedAt       time.Time            `json:"generated_at"`
	CacheHit          bool                 `json:"cache_hit"`
}
