package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
)

// CategoryService manages course categories for administrators.
type CategoryService interface {
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Create(ctx context.Context, actor Actor, req dto.CategoryCreateRequest) (dto.CategoryResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.CategoryUpdateRequest) (dto.CategoryResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type categoryService struct {
	repo      repository.CategoryRepository
	activity  ActivityRecorder
	cache     *cache.Cache
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCategoryService constructs the category service.
func NewCategoryService(repo repository.CategoryRepository, activity ActivityRecorder, cacheStore *cache.Cache, validate *validator.Validate, logger zerolog.Logger) CategoryService {
	return &categoryService{
		repo:      repo,
		activity:  activity,
		cache:     cacheStore,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "category_service").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, dto.NewCategoryResponse(category))
	}
	return items, nil
}

func (s *categoryService) Create(ctx context.Context, actor Actor, req dto.CategoryCreateRequest) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CategoryResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	slug, err := s.uniqueSlug(ctx, name, 0)
	if err != nil {
		return dto.CategoryResponse{}, err
	}
	category := models.CourseCategory{
		Name:        name,
		Slug:        slug,
		Description: s.sanitizer.Sanitize(req.Description),
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := s.repo.Create(ctx, &category); err != nil {
		return dto.CategoryResponse{}, fmt.Errorf("create category: %w", err)
	}

	s.cache.InvalidateCatalog(ctx)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "category.created",
		EntityType: "category",
		EntityID:   uintPtr(category.ID),
		Metadata:   map[string]interface{}{"name": category.Name},
	})
	return dto.NewCategoryResponse(category), nil
}

func (s *categoryService) Update(ctx context.Context, actor Actor, id uint, req dto.CategoryUpdateRequest) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CategoryResponse{}, err
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CategoryResponse{}, ErrCategoryNotFound
		}
		return dto.CategoryResponse{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != category.Name {
			slug, err := s.uniqueSlug(ctx, name, category.ID)
			if err != nil {
				return dto.CategoryResponse{}, err
			}
			category.Name = name
			category.Slug = slug
		}
	}
	if req.Description != nil {
		category.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.repo.Save(ctx, &category); err != nil {
		return dto.CategoryResponse{}, fmt.Errorf("update category: %w", err)
	}

	s.cache.InvalidateCatalog(ctx)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "category.updated",
		EntityType: "category",
		EntityID:   uintPtr(category.ID),
		Metadata:   map[string]interface{}{"name": category.Name, "is_active": category.IsActive},
	})
	return dto.NewCategoryResponse(category), nil
}

func (s *categoryService) Delete(ctx context.Context, actor Actor, id uint) error {
	inUse, err := s.repo.CountCourses(ctx, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return ErrCategoryInUse
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	s.cache.InvalidateCatalog(ctx)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "category.deleted",
		EntityType: "category",
		EntityID:   uintPtr(id),
	})
	return nil
}

func (s *categoryService) uniqueSlug(ctx context.Context, name string, excludeID uint) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "category"
	}
	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts; attempt++ {
		taken, err := s.repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", fmt.Errorf("could not allocate slug for %q", name)
}
