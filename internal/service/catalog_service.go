package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
)

// CatalogService serves the public course catalog.
type CatalogService interface {
	ListCourses(ctx context.Context, req dto.CourseListRequest) (dto.ListResponse[dto.CourseResponse], bool, error)
	GetCourse(ctx context.Context, id uint) (dto.CourseResponse, bool, error)
	ListCategories(ctx context.Context) ([]dto.CategoryResponse, bool, error)
}

type catalogService struct {
	courses    repository.CourseRepository
	categories repository.CategoryRepository
	cache      *cache.Cache
	listTTL    time.Duration
	logger     zerolog.Logger
}

// NewCatalogService constructs the public catalog service.
func NewCatalogService(courses repository.CourseRepository, categories repository.CategoryRepository, cacheStore *cache.Cache, logger zerolog.Logger) CatalogService {
	return &catalogService{
		courses:    courses,
		categories: categories,
		cache:      cacheStore,
		listTTL:    cache.TTLMedium,
		logger:     logger.With().Str("component", "catalog_service").Logger(),
	}
}

func (s *catalogService) ListCourses(ctx context.Context, req dto.CourseListRequest) (dto.ListResponse[dto.CourseResponse], bool, error) {
	page, pageSize := dto.NormalizePage(req.Page, req.PageSize)
	filter := repository.CourseFilter{
		Status:       models.CourseStatusPublished,
		CategoryID:   req.CategoryID,
		CategorySlug: strings.ToLower(strings.TrimSpace(req.Category)),
		Level:        strings.ToLower(strings.TrimSpace(req.Level)),
		Search:       strings.TrimSpace(req.Search),
		Sort:         strings.ToLower(strings.TrimSpace(req.Sort)),
		Page:         page,
		PageSize:     pageSize,
	}

	key := cache.CourseList(fmt.Sprintf("page=%d&size=%d&cat=%d&category=%s&level=%s&q=%s&sort=%s",
		filter.Page, filter.PageSize, filter.CategoryID, filter.CategorySlug, filter.Level, strings.ToLower(filter.Search), filter.Sort))

	return cache.Remember(ctx, s.cache, key, s.listTTL, func(ctx context.Context) (dto.ListResponse[dto.CourseResponse], error) {
		courses, total, err := s.courses.List(ctx, filter)
		if err != nil {
			return dto.ListResponse[dto.CourseResponse]{}, err
		}
		items := make([]dto.CourseResponse, 0, len(courses))
		for _, course := range courses {
			items = append(items, dto.NewCourseResponse(course))
		}
		return dto.ListResponse[dto.CourseResponse]{Items: items, Pagination: dto.NewPaginationMeta(page, pageSize, total)}, nil
	})
}

func (s *catalogService) GetCourse(ctx context.Context, id uint) (dto.CourseResponse, bool, error) {
	return cache.Remember(ctx, s.cache, cache.Course(id), cache.TTLLong, func(ctx context.Context) (dto.CourseResponse, error) {
		course, err := s.courses.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.CourseResponse{}, ErrCourseNotFound
			}
			return dto.CourseResponse{}, err
		}
		if !course.IsPublished() {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.NewCourseResponse(course), nil
	})
}

func (s *catalogService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, bool, error) {
	return cache.Remember(ctx, s.cache, cache.KeyCategoriesAll, cache.TTLLong, func(ctx context.Context) ([]dto.CategoryResponse, error) {
		categories, err := s.categories.List(ctx, true)
		if err != nil {
			return nil, err
		}
		items := make([]dto.CategoryResponse, 0, len(categories))
		for _, category := range categories {
			items = append(items, dto.NewCategoryResponse(category))
		}
		return items, nil
	})
}
