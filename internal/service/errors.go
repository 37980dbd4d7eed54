package service

import "errors"

var (
	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrProfileNotFound indicates the account has no profile for its role.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrEmailTaken indicates another account already uses the email address.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountInactive indicates a deactivated account attempted to sign in.
	ErrAccountInactive = errors.New("account is inactive")
	// ErrInvalidToken indicates a malformed, expired or wrongly signed token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrSessionNotFound indicates the session does not exist for the caller.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionRevoked indicates the token's session was revoked or expired.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrCourseNotFound indicates the course does not exist or is not visible.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCategoryNotFound indicates the category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryInUse indicates the category still has courses.
	ErrCategoryInUse = errors.New("category still has courses")
	// ErrScheduleNotFound indicates the schedule does not exist on the course.
	ErrScheduleNotFound = errors.New("schedule not found")
	// ErrTeacherNotFound indicates the referenced teacher profile does not exist.
	ErrTeacherNotFound = errors.New("teacher not found")
	// ErrInvalidSchedule indicates malformed or inverted schedule times.
	ErrInvalidSchedule = errors.New("invalid schedule time range")

	// ErrEnrollmentNotFound indicates the enrollment does not exist for the caller.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	// ErrAlreadyEnrolled indicates an open enrollment already exists.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	// ErrCourseUnavailable indicates the course is not open for enrollment.
	ErrCourseUnavailable = errors.New("course is not open for enrollment")
	// ErrCourseFull indicates the course reached its capacity.
	ErrCourseFull = errors.New("course capacity reached")
	// ErrEnrollmentClosed indicates a dropped or suspended enrollment that takes no new records.
	ErrEnrollmentClosed = errors.New("enrollment does not accept scores or attendance")
	// ErrInvalidTransition indicates a status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPaymentNotFound indicates the payment does not exist for the caller.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentNotPending indicates proof can only be attached to pending payments.
	ErrPaymentNotPending = errors.New("payment is not pending")

	// ErrForbidden indicates the caller does not own the resource.
	ErrForbidden = errors.New("not allowed to access this resource")
	// ErrInvalidScore indicates a value outside zero and the maximum.
	ErrInvalidScore = errors.New("score value out of range")
	// ErrInvalidDate indicates an unparseable date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrFileRequired indicates a missing multipart file.
	ErrFileRequired = errors.New("file is required")
	// ErrUnsupportedReport indicates an unknown report kind or format.
	ErrUnsupportedReport = errors.New("unsupported report")
)
