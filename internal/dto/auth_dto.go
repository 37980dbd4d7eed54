package dto

import (
	"time"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// RegisterRequest is the student self-registration payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest updates the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

// SessionMeta describes the client opening a session.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

// AuthResponse is returned after a successful login or registration.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	SessionID string       `json:"session_id"`
	User      UserResponse `json:"user"`
}

// StudentProfile is the student part of a user payload.
type StudentProfile struct {
	ID            uint       `json:"id"`
	StudentNumber string     `json:"student_number"`
	Status        string     `json:"status"`
	Address       string     `json:"address"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	JoinedAt      time.Time  `json:"joined_at"`
}

// TeacherProfile is the teacher part of a user payload.
type TeacherProfile struct {
	ID        uint   `json:"id"`
	Bio       string `json:"bio"`
	Expertise string `json:"expertise"`
}

// UserResponse serializes a user account.
type UserResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        string          `json:"role"`
	Phone       string          `json:"phone"`
	AvatarURL   string          `json:"avatar_url"`
	IsActive    bool            `json:"is_active"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Student     *StudentProfile `json:"student,omitempty"`
	Teacher     *TeacherProfile `json:"teacher,omitempty"`
}

// SessionResponse serializes a login session.
type SessionResponse struct {
	ID         string     `json:"id"`
	UserAgent  string     `json:"user_agent"`
	IPAddress  string     `json:"ip_address"`
	CreatedAt  time.Time  `json:"created_at"`
	LastSeenAt time.Time  `json:"last_seen_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	Current    bool       `json:"current"`
}

// NewUserResponse converts a user model.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Phone:       user.Phone,
		AvatarURL:   user.AvatarURL,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// NewStudentProfile converts a student model.
func NewStudentProfile(student models.Student) *StudentProfile {
	return &StudentProfile{
		ID:            student.ID,
		StudentNumber: student.StudentNumber,
		Status:        student.Status,
		Address:       student.Address,
		DateOfBirth:   student.DateOfBirth,
		JoinedAt:      student.JoinedAt,
	}
}

// NewTeacherProfile converts a teacher model.
func NewTeacherProfile(teacher models.Teacher) *TeacherProfile {
	return &TeacherProfile{ID: teacher.ID, Bio: teacher.Bio, Expertise: teacher.Expertise}
}

// NewSessionResponse converts a session model, flagging the caller's own session.
func NewSessionResponse(session models.Session, currentID string) SessionResponse {
	return SessionResponse{
		ID:         session.ID,
		UserAgent:  session.UserAgent,
		IPAddress:  session.IPAddress,
		CreatedAt:  session.CreatedAt,
		LastSeenAt: session.LastSeenAt,
		ExpiresAt:  session.ExpiresAt,
		RevokedAt:  session.RevokedAt,
		Current:    session.ID == currentID,
	}
}
