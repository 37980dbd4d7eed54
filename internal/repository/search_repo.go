package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

const defaultSearchLanguage = "english"

var searchLanguagePattern = regexp.MustCompile(`^[a-z_]+$`)

// Suggestion sources.
const (
	SuggestionCourse   = "course"
	SuggestionTeacher  = "teacher"
	SuggestionCategory = "category"
)

// SearchFilter narrows course search.
type SearchFilter struct {
	Query      string
	CategoryID uint
	Level      string
	Limit      int
	Offset     int
}

// SearchRow is one ranked course match.
type SearchRow struct {
	ID           uint
	Title        string
	Slug         string
	Description  string
	Level        string
	Price        float64
	ThumbnailURL string
	CategoryName string
	TeacherName  string
	Rank         float64 `gorm:"column:relevance"`
}

// SuggestionRow is a candidate label for autocomplete.
type SuggestionRow struct {
	Type  string
	ID    uint
	Label string
}

// SearchRepository runs course search queries.
type SearchRepository interface {
	SupportsFullText() bool
	FullText(ctx context.Context, filter SearchFilter, language string) ([]SearchRow, int64, error)
	Simple(ctx context.Context, filter SearchFilter) ([]SearchRow, int64, error)
	Suggestions(ctx context.Context, query string, limit int) ([]SuggestionRow, error)
}

type searchRepository struct {
	db *gorm.DB
}

// NewSearchRepository constructs a search repository.
func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

func (r *searchRepository) SupportsFullText() bool {
	return r.db.Dialector.Name() == "postgres"
}

// SearchLanguage normalises a text search configuration name. Unknown or
// unsafe names fall back to english.
func SearchLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if !searchLanguagePattern.MatchString(language) {
		return defaultSearchLanguage
	}
	return language
}

// FullTextExpressions returns the match predicate and ranking expression for a
// text search configuration. Both take the raw query as their single argument.
func FullTextExpressions(language string) (match string, rank string) {
	language = SearchLanguage(language)
	vector := fmt.Sprintf("to_tsvector('%s', coalesce(courses.title, '') || ' ' || coalesce(courses.description, ''))", language)
	tsquery := fmt.Sprintf("plainto_tsquery('%s', ?)", language)
	return vector + " @@ " + tsquery, fmt.Sprintf("ts_rank(%s, %s)", vector, tsquery)
}

func (r *searchRepository) base(ctx context.Context, filter SearchFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Course{}).
		Joins("LEFT JOIN course_categories ON course_categories.id = courses.category_id").
		Joins("LEFT JOIN teachers ON teachers.id = courses.teacher_id").
		Joins("LEFT JOIN users ON users.id = teachers.user_id").
		Where("courses.status = ?", models.CourseStatusPublished)

	if filter.CategoryID > 0 {
		query = query.Where("courses.category_id = ?", filter.CategoryID)
	}
	if filter.Level != "" {
		query = query.Where("courses.level = ?", filter.Level)
	}
	return query
}

const searchColumns = "courses.id, courses.title, courses.slug, courses.description, courses.level, courses.price, " +
	"courses.thumbnail_url, COALESCE(course_categories.name, '') AS category_name, COALESCE(users.name, '') AS teacher_name"

func (r *searchRepository) run(query *gorm.DB, selectExpr string, selectArgs []interface{}, order string, filter SearchFilter) ([]SearchRow, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := query.Session(&gorm.Session{}).Select(selectExpr, selectArgs...).Order(order)
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}

	var rows []SearchRow
	if err := page.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *searchRepository) FullText(ctx context.Context, filter SearchFilter, language string) ([]SearchRow, int64, error) {
	match, rank := FullTextExpressions(language)
	query := r.base(ctx, filter).Where(match, filter.Query)

	return r.run(query, searchColumns+", "+rank+" AS relevance", []interface{}{filter.Query},
		"relevance DESC, courses.title ASC", filter)
}

func (r *searchRepository) Simple(ctx context.Context, filter SearchFilter) ([]SearchRow, int64, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(filter.Query)) + "%"
	query := r.base(ctx, filter)
	if r.SupportsFullText() {
		query = query.Where(`(courses.title ILIKE ? ESCAPE '\' OR courses.description ILIKE ? ESCAPE '\')`, pattern, pattern)
	} else {
		lowered := strings.ToLower(pattern)
		query = query.Where(`(LOWER(courses.title) LIKE ? ESCAPE '\' OR LOWER(courses.description) LIKE ? ESCAPE '\')`, lowered, lowered)
	}

	return r.run(query, searchColumns+", 1.0 AS relevance", nil, "courses.title ASC, courses.id ASC", filter)
}

func (r *searchRepository) Suggestions(ctx context.Context, query string, limit int) ([]SuggestionRow, error) {
	if limit <= 0 {
		limit = 5
	}
	pattern := "%" + strings.ToLower(escapeLike(strings.TrimSpace(query))) + "%"
	db := r.db.WithContext(ctx)

	var courses []SuggestionRow
	if err := db.Model(&models.Course{}).
		Select("id, title AS label").
		Where(`status = ? AND LOWER(title) LIKE ? ESCAPE '\'`, models.CourseStatusPublished, pattern).
		Order("title ASC").
		Limit(limit).
		Scan(&courses).Error; err != nil {
		return nil, err
	}

	var teachers []SuggestionRow
	if err := db.Model(&models.Teacher{}).
		Select("teachers.id, users.name AS label").
		Joins("JOIN users ON users.id = teachers.user_id AND users.deleted_at IS NULL").
		Where(`users.is_active = ? AND LOWER(users.name) LIKE ? ESCAPE '\'`, true, pattern).
		Order("users.name ASC").
		Limit(limit).
		Scan(&teachers).Error; err != nil {
		return nil, err
	}

	var categories []SuggestionRow
	if err := db.Model(&models.CourseCategory{}).
		Select("id, name AS label").
		Where(`is_active = ? AND LOWER(name) LIKE ? ESCAPE '\'`, true, pattern).
		Order("name ASC").
		Limit(limit).
		Scan(&categories).Error; err != nil {
		return nil, err
	}

	rows := make([]SuggestionRow, 0, len(courses)+len(teachers)+len(categories))
	for _, row := range courses {
		row.Type = SuggestionCourse
		rows = append(rows, row)
	}
	for _, row := range teachers {
		row.Type = SuggestionTeacher
		rows = append(rows, row)
	}
	for _, row := range categories {
		row.Type = SuggestionCategory
		rows = append(rows, row)
	}
	return rows, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
