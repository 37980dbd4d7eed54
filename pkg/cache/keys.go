package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// Static key prefixes.
const (
	KeyAdminDashboard = "dashboard:admin"
	KeyCategoriesAll  = "categories:all"
)

// StudentDashboard is the cache key of a student's dashboard payload.
func StudentDashboard(studentID uint) string {
	return fmt.Sprintf("dashboard:student:%d", studentID)
}

// TeacherDashboard is the cache key of a teacher's dashboard payload.
func TeacherDashboard(teacherID uint) string {
	return fmt.Sprintf("dashboard:teacher:%d", teacherID)
}

// Course is the cache key of a single course detail.
func Course(courseID uint) string {
	return fmt.Sprintf("course:%d", courseID)
}

// CourseStats is the cache key of a course's aggregate statistics.
func CourseStats(courseID uint) string {
	return fmt.Sprintf("course:%d:stats", courseID)
}

// CourseList is the cache key of a catalog listing identified by its query parameters.
func CourseList(params string) string {
	sum := sha1.Sum([]byte(params))
	return "courses:list:" + hex.EncodeToString(sum[:8])
}

// StudentEnrollments is the cache key of a student's enrollment list.
func StudentEnrollments(studentID uint) string {
	return fmt.Sprintf("student:%d:enrollments", studentID)
}

// StudentPayments is the cache key of a student's payment list.
func StudentPayments(studentID uint) string {
	return fmt.Sprintf("student:%d:payments", studentID)
}

// SearchSuggestions is the cache key of a suggestion lookup.
func SearchSuggestions(query string, limit int) string {
	return fmt.Sprintf("search:suggestions:%s:%d", strings.ToLower(strings.TrimSpace(query)), limit)
}

// SessionRevoked is the cache key flagging a revoked session.
func SessionRevoked(sessionID string) string {
	return fmt.Sprintf("session:%s:revoked", sessionID)
}
