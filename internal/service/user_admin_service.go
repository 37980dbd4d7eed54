package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
)

// UserAdminService manages accounts on behalf of administrators.
type UserAdminService interface {
	List(ctx context.Context, req dto.UserListRequest) (dto.ListResponse[dto.UserResponse], error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	Create(ctx context.Context, actor Actor, req dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type userAdminService struct {
	users     repository.UserRepository
	students  repository.StudentRepository
	teachers  repository.TeacherRepository
	sessions  repository.SessionRepository
	activity  ActivityRecorder
	cache     *cache.Cache
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewUserAdminService constructs the user administration service.
func NewUserAdminService(
	users repository.UserRepository,
	students repository.StudentRepository,
	teachers repository.TeacherRepository,
	sessions repository.SessionRepository,
	activity ActivityRecorder,
	cacheStore *cache.Cache,
	validate *validator.Validate,
	logger zerolog.Logger,
) UserAdminService {
	return &userAdminService{
		users:     users,
		students:  students,
		teachers:  teachers,
		sessions:  sessions,
		activity:  activity,
		cache:     cacheStore,
		validator: validate,
		logger:    logger.With().Str("component", "user_admin_service").Logger(),
		now:       time.Now,
	}
}

func (s *userAdminService) List(ctx context.Context, req dto.UserListRequest) (dto.ListResponse[dto.UserResponse], error) {
	page, pageSize := dto.NormalizePage(req.Page, req.PageSize)
	users, total, err := s.users.List(ctx, repository.UserFilter{
		Role:     strings.ToLower(strings.TrimSpace(req.Role)),
		Search:   req.Search,
		IsActive: req.IsActive,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return dto.ListResponse[dto.UserResponse]{}, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}
	return dto.ListResponse[dto.UserResponse]{Items: items, Pagination: dto.NewPaginationMeta(page, pageSize, total)}, nil
}

func (s *userAdminService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return buildUserResponse(ctx, s.students, s.teachers, user)
}

func (s *userAdminService) load(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *userAdminService) Create(ctx context.Context, actor Actor, req dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if exists {
		return dto.UserResponse{}, ErrEmailTaken
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
	}

	var (
		student *models.Student
		teacher *models.Teacher
	)
	switch req.Role {
	case models.RoleStudent:
		student = &models.Student{
			StudentNumber: strings.TrimSpace(req.StudentNumber),
			Status:        models.StudentStatusActive,
			JoinedAt:      s.now(),
		}
	case models.RoleTeacher:
		teacher = &models.Teacher{
			Bio:       strings.TrimSpace(req.Bio),
			Expertise: strings.TrimSpace(req.Expertise),
		}
	}

	if err := s.users.CreateWithProfile(ctx, &user, student, teacher); err != nil {
		return dto.UserResponse{}, fmt.Errorf("create user: %w", err)
	}

	s.cache.InvalidateAdminDashboard(ctx)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "user.created",
		EntityType: "user",
		EntityID:   uintPtr(user.ID),
		Metadata:   map[string]interface{}{"role": user.Role, "email": user.Email},
	})

	response := dto.NewUserResponse(user)
	if student != nil {
		response.Student = dto.NewStudentProfile(*student)
	}
	if teacher != nil {
		response.Teacher = dto.NewTeacherProfile(*teacher)
	}
	return response, nil
}

func (s *userAdminService) Update(ctx context.Context, actor Actor, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if req.IsActive != nil && !*req.IsActive && user.ID == actor.ID {
		return dto.UserResponse{}, ErrForbidden
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := s.users.UpdateFields(ctx, user.ID, updates); err != nil {
		return dto.UserResponse{}, fmt.Errorf("update user: %w", err)
	}

	if user.Role == models.RoleTeacher && (req.Bio != nil || req.Expertise != nil) {
		teacher, err := teacherForUser(ctx, s.teachers, user.ID)
		if err != nil {
			return dto.UserResponse{}, err
		}
		profile := map[string]interface{}{}
		if req.Bio != nil {
			profile["bio"] = strings.TrimSpace(*req.Bio)
		}
		if req.Expertise != nil {
			profile["expertise"] = strings.TrimSpace(*req.Expertise)
		}
		if err := s.teachers.UpdateFields(ctx, teacher.ID, profile); err != nil {
			return dto.UserResponse{}, fmt.Errorf("update teacher profile: %w", err)
		}
		s.cache.InvalidateTeacher(ctx, teacher.ID)
	}

	if req.IsActive != nil && !*req.IsActive {
		s.closeSessions(ctx, user.ID)
	}

	s.cache.InvalidateAdminDashboard(ctx)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "user.updated",
		EntityType: "user",
		EntityID:   uintPtr(user.ID),
		Metadata:   updates,
	})

	return s.Get(ctx, user.ID)
}

func (s *userAdminService) Delete(ctx context.Context, actor Actor, id uint) error {
	if id == actor.ID {
		return ErrForbidden
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.SoftDelete(ctx, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.closeSessions(ctx, user.ID)
	s.cache.InvalidateAdminDashboard(ctx)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "user.deleted",
		EntityType: "user",
		EntityID:   uintPtr(user.ID),
		Metadata:   map[string]interface{}{"role": user.Role, "email": user.Email},
	})
	return nil
}

func (s *userAdminService) closeSessions(ctx context.Context, userID uint) {
	revoked, err := s.sessions.RevokeAllExcept(ctx, userID, "", s.now())
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to revoke sessions")
		return
	}
	for _, id := range revoked {
		s.cache.Set(ctx, cache.SessionRevoked(id), "1", cache.TTLDay)
	}
}
