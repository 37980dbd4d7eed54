package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
	"github.com/noah-isme/cubis-academy-api/pkg/mailer"
)

const sessionTouchInterval = 5 * time.Minute

// AuthConfig tunes token and session lifetimes.
type AuthConfig struct {
	Secret     string
	TokenTTL   time.Duration
	SessionTTL time.Duration
}

// AuthService manages accounts, credentials and login sessions.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest, meta dto.SessionMeta) (dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest, meta dto.SessionMeta) (dto.AuthResponse, error)
	Logout(ctx context.Context, userID uint, sessionID string) error
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uint, sessionID string, req dto.ChangePasswordRequest) error
	ListSessions(ctx context.Context, userID uint, currentID string) ([]dto.SessionResponse, error)
	RevokeSession(ctx context.Context, userID uint, sessionID string) error
	RevokeOtherSessions(ctx context.Context, userID uint, currentID string) (int, error)
	ValidateSession(ctx context.Context, userID uint, sessionID string) error
}

type authService struct {
	users     repository.UserRepository
	students  repository.StudentRepository
	teachers  repository.TeacherRepository
	sessions  repository.SessionRepository
	cache     *cache.Cache
	notifier  *Notifier
	validator *validator.Validate
	cfg       AuthConfig
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(
	users repository.UserRepository,
	students repository.StudentRepository,
	teachers repository.TeacherRepository,
	sessions repository.SessionRepository,
	cacheStore *cache.Cache,
	notifier *Notifier,
	validate *validator.Validate,
	cfg AuthConfig,
	logger zerolog.Logger,
) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	return &authService{
		users:     users,
		students:  students,
		teachers:  teachers,
		sessions:  sessions,
		cache:     cacheStore,
		notifier:  notifier,
		validator: validate,
		cfg:       cfg,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest, meta dto.SessionMeta) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	if exists {
		return dto.AuthResponse{}, ErrEmailTaken
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	now := s.now()
	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleStudent,
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
		LastLoginAt:  &now,
	}
	student := models.Student{Status: models.StudentStatusActive, JoinedAt: now}
	if err := s.users.CreateWithProfile(ctx, &user, &student, nil); err != nil {
		return dto.AuthResponse{}, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Str("student_number", student.StudentNumber).Msg("student registered")
	s.cache.InvalidateAdminDashboard(ctx)
	s.notifier.Email(ctx, user.Email, mailer.TemplateWelcome, mailer.WelcomeData{
		Name:          user.Name,
		Email:         user.Email,
		StudentNumber: student.StudentNumber,
	})

	student.User = user
	profile := dto.NewUserResponse(user)
	profile.Student = dto.NewStudentProfile(student)
	return s.openSession(ctx, user, profile, meta)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest, meta dto.SessionMeta) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return dto.AuthResponse{}, ErrAccountInactive
	}

	now := s.now()
	if err := s.users.UpdateFields(ctx, user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to record last login")
	}
	user.LastLoginAt = &now

	profile, err := s.userResponse(ctx, user)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	return s.openSession(ctx, user, profile, meta)
}

func (s *authService) openSession(ctx context.Context, user models.User, profile dto.UserResponse, meta dto.SessionMeta) (dto.AuthResponse, error) {
	now := s.now()
	session := models.Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		UserAgent:  truncateString(meta.UserAgent, 512),
		IPAddress:  truncateString(meta.IPAddress, 64),
		ExpiresAt:  now.Add(s.cfg.SessionTTL),
		LastSeenAt: now,
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.AuthResponse{}, fmt.Errorf("create session: %w", err)
	}

	expiresAt := now.Add(s.cfg.TokenTTL)
	if expiresAt.After(session.ExpiresAt) {
		expiresAt = session.ExpiresAt
	}
	token, err := SignToken(s.cfg.Secret, user.ID, user.Role, session.ID, now, expiresAt)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{Token: token, ExpiresAt: expiresAt, SessionID: session.ID, User: profile}, nil
}

func (s *authService) Logout(ctx context.Context, userID uint, sessionID string) error {
	return s.RevokeSession(ctx, userID, sessionID)
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return s.userResponse(ctx, user)
}

func (s *authService) userResponse(ctx context.Context, user models.User) (dto.UserResponse, error) {
	return buildUserResponse(ctx, s.students, s.teachers, user)
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, sessionID string, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdateFields(ctx, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		return err
	}

	revoked, err := s.sessions.RevokeAllExcept(ctx, userID, sessionID, s.now())
	if err != nil {
		return err
	}
	s.markRevoked(ctx, revoked...)
	s.logger.Info().Uint("user_id", userID).Int("revoked_sessions", len(revoked)).Msg("password changed")
	return nil
}

func (s *authService) ListSessions(ctx context.Context, userID uint, currentID string) ([]dto.SessionResponse, error) {
	sessions, err := s.sessions.ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	responses := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, dto.NewSessionResponse(session, currentID))
	}
	return responses, nil
}

func (s *authService) RevokeSession(ctx context.Context, userID uint, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionNotFound
	}
	if err := s.sessions.Revoke(ctx, userID, sessionID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	s.markRevoked(ctx, sessionID)
	return nil
}

func (s *authService) RevokeOtherSessions(ctx context.Context, userID uint, currentID string) (int, error) {
	revoked, err := s.sessions.RevokeAllExcept(ctx, userID, currentID, s.now())
	if err != nil {
		return 0, err
	}
	s.markRevoked(ctx, revoked...)
	return len(revoked), nil
}

// ValidateSession confirms the session behind a token is still open. Revocations
// are remembered in the cache so repeated requests skip the database.
func (s *authService) ValidateSession(ctx context.Context, userID uint, sessionID string) error {
	if sessionID == "" {
		return ErrSessionRevoked
	}
	if s.cache.Exists(ctx, cache.SessionRevoked(sessionID)) {
		return ErrSessionRevoked
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionRevoked
		}
		return err
	}

	now := s.now()
	if session.UserID != userID || !session.Active(now) {
		s.markRevoked(ctx, sessionID)
		return ErrSessionRevoked
	}

	if now.Sub(session.LastSeenAt) > sessionTouchInterval {
		if err := s.sessions.Touch(ctx, sessionID, now); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to touch session")
		}
	}
	return nil
}

func (s *authService) markRevoked(ctx context.Context, sessionIDs ...string) {
	for _, id := range sessionIDs {
		s.cache.Set(ctx, cache.SessionRevoked(id), "1", s.cfg.SessionTTL)
	}
}

// SignToken issues an HS256 access token carrying the user, role and session.
func SignToken(secret string, userID uint, role, sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", userID),
		"role": role,
		"sid":  sessionID,
		"iat":  issuedAt.Unix(),
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func buildUserResponse(ctx context.Context, students repository.StudentRepository, teachers repository.TeacherRepository, user models.User) (dto.UserResponse, error) {
	response := dto.NewUserResponse(user)
	switch user.Role {
	case models.RoleStudent:
		student, err := students.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, err
		}
		if err == nil {
			response.Student = dto.NewStudentProfile(student)
		}
	case models.RoleTeacher:
		teacher, err := teachers.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, err
		}
		if err == nil {
			response.Teacher = dto.NewTeacherProfile(teacher)
		}
	}
	return response, nil
}

func truncateString(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
