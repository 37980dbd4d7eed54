package cache

import "context"

// InvalidateStudent drops every entry derived from a student's data.
func (c *Cache) InvalidateStudent(ctx context.Context, studentID uint) {
	c.Del(ctx, StudentDashboard(studentID), StudentEnrollments(studentID), StudentPayments(studentID))
}

// InvalidateTeacher drops the teacher dashboard.
func (c *Cache) InvalidateTeacher(ctx context.Context, teacherID uint) {
	c.Del(ctx, TeacherDashboard(teacherID))
}

// InvalidateCourse drops the course detail, its statistics and every catalog listing.
func (c *Cache) InvalidateCourse(ctx context.Context, courseID uint) {
	c.Del(ctx, Course(courseID), CourseStats(courseID))
	c.DelPattern(ctx, "courses:list:*")
	c.DelPattern(ctx, "search:suggestions:*")
}

// InvalidateCatalog drops categories, listings and suggestions.
func (c *Cache) InvalidateCatalog(ctx context.Context) {
	c.Del(ctx, KeyCategoriesAll)
	c.DelPattern(ctx, "courses:list:*")
	c.DelPattern(ctx, "search:suggestions:*")
}

// InvalidateAdminDashboard drops the admin dashboard.
func (c *Cache) InvalidateAdminDashboard(ctx context.Context) {
	c.Del(ctx, KeyAdminDashboard)
}

// InvalidatePayments drops payment-derived entries for a student and the admin dashboard.
func (c *Cache) InvalidatePayments(ctx context.Context, studentID uint) {
	c.Del(ctx, StudentPayments(studentID), StudentDashboard(studentID), KeyAdminDashboard)
}
