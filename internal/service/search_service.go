package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/cubis-academy-api/internal/config"
	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/observability"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
)

const (
	defaultSearchLimit     = 20
	maxSearchLimit         = 100
	defaultSuggestionLimit = 5
	maxSuggestionLimit     = 20
)

var suggestionTypeOrder = map[string]int{
	repository.SuggestionCourse:   0,
	repository.SuggestionTeacher:  1,
	repository.SuggestionCategory: 2,
}

// SearchService ranks published courses and produces typeahead suggestions.
type SearchService interface {
	SearchCourses(ctx context.Context, req dto.SearchRequest) (dto.SearchResponse, error)
	Suggestions(ctx context.Context, query string, limit int) (dto.SuggestionResponse, error)
}

type searchService struct {
	repo     repository.SearchRepository
	cache    *cache.Cache
	mode     string
	language string
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewSearchService constructs the search service. mode selects full-text or simple matching.
func NewSearchService(repo repository.SearchRepository, cacheStore *cache.Cache, mode, language string, logger zerolog.Logger) SearchService {
	if mode != config.SearchSimple {
		mode = config.SearchFullText
	}
	return &searchService{
		repo:     repo,
		cache:    cacheStore,
		mode:     mode,
		language: repository.SearchLanguage(language),
		logger:   logger.With().Str("component", "search_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/cubis-academy-api/internal/service/search"),
	}
}

func (s *searchService) SearchCourses(ctx context.Context, req dto.SearchRequest) (dto.SearchResponse, error) {
	ctx, span := s.tracer.Start(ctx, "search.courses")
	defer span.End()

	query := strings.TrimSpace(req.Query)
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	response := dto.SearchResponse{
		Query:   query,
		Mode:    s.mode,
		Results: []dto.SearchResult{},
		Limit:   limit,
		Offset:  offset,
	}
	if query == "" {
		return response, nil
	}

	filter := repository.SearchFilter{
		Query:      query,
		CategoryID: req.CategoryID,
		Level:      strings.ToLower(strings.TrimSpace(req.Level)),
		Limit:      limit,
		Offset:     offset,
	}

	var (
		rows  []repository.SearchRow
		total int64
		err   error
	)
	mode := config.SearchSimple
	if s.mode == config.SearchFullText && s.repo.SupportsFullText() {
		mode = config.SearchFullText
		rows, total, err = s.timed(mode, func() ([]repository.SearchRow, int64, error) {
			return s.repo.FullText(ctx, filter, s.language)
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("query", query).Msg("full-text search failed, falling back to simple search")
			span.RecordError(err)
			mode = config.SearchSimple
		}
	}
	if mode == config.SearchSimple {
		rows, total, err = s.timed(mode, func() ([]repository.SearchRow, int64, error) {
			return s.repo.Simple(ctx, filter)
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search failed")
			return dto.SearchResponse{}, err
		}
	}

	span.SetAttributes(
		attribute.String("search.mode", mode),
		attribute.Int64("search.total", total),
		attribute.Int("search.returned", len(rows)),
	)
	span.SetStatus(codes.Ok, "ok")

	response.Mode = mode
	response.Total = total
	for _, row := range rows {
		response.Results = append(response.Results, dto.SearchResult{
			ID:           row.ID,
			Title:        row.Title,
			Slug:         row.Slug,
			Description:  row.Description,
			Level:        row.Level,
			Price:        row.Price,
			ThumbnailURL: row.ThumbnailURL,
			CategoryName: row.CategoryName,
			TeacherName:  row.TeacherName,
			Rank:         row.Rank,
		})
	}
	return response, nil
}

func (s *searchService) timed(mode string, run func() ([]repository.SearchRow, int64, error)) ([]repository.SearchRow, int64, error) {
	started := time.Now()
	rows, total, err := run()
	observability.SearchRequests().WithLabelValues(mode).Inc()
	observability.SearchLatency().WithLabelValues(mode).Observe(time.Since(started).Seconds())
	return rows, total, err
}

func (s *searchService) Suggestions(ctx context.Context, query string, limit int) (dto.SuggestionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "search.suggestions")
	defer span.End()

	query = strings.TrimSpace(query)
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	if limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}
	if query == "" {
		return dto.SuggestionResponse{Query: query, Suggestions: []dto.Suggestion{}}, nil
	}

	suggestions, hit, err := cache.Remember(ctx, s.cache, cache.SearchSuggestions(query, limit), cache.TTLShort, func(ctx context.Context) ([]dto.Suggestion, error) {
		rows, err := s.repo.Suggestions(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return rankSuggestions(rows, query, limit), nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "suggestions failed")
		return dto.SuggestionResponse{}, err
	}

	span.SetAttributes(attribute.Bool("cache.hit", hit), attribute.Int("search.returned", len(suggestions)))
	return dto.SuggestionResponse{Query: query, Suggestions: suggestions, CacheHit: hit}, nil
}

// rankSuggestions scores each label by how often the query occurs in it and keeps the top limit.
func rankSuggestions(rows []repository.SuggestionRow, query string, limit int) []dto.Suggestion {
	needle := strings.ToLower(query)
	suggestions := make([]dto.Suggestion, 0, len(rows))
	for _, row := range rows {
		suggestions = append(suggestions, dto.Suggestion{
			Type:  row.Type,
			ID:    row.ID,
			Label: row.Label,
			Score: strings.Count(strings.ToLower(row.Label), needle),
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		if suggestionTypeOrder[suggestions[i].Type] != suggestionTypeOrder[suggestions[j].Type] {
			return suggestionTypeOrder[suggestions[i].Type] < suggestionTypeOrder[suggestions[j].Type]
		}
		return suggestions[i].Label < suggestions[j].Label
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
