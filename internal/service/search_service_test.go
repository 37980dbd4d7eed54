package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/config"
	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
)

type fakeSearchRepo struct {
	fullText     bool
	fullTextErr  error
	fullTextRuns int
	simpleRuns   int
	lastFilter   repository.SearchFilter
	rows         []repository.SearchRow
	suggestions  []repository.SuggestionRow
	suggestCalls int
}

func (f *fakeSearchRepo) SupportsFullText() bool { return f.fullText }

func (f *fakeSearchRepo) FullText(ctx context.Context, filter repository.SearchFilter, language string) ([]repository.SearchRow, int64, error) {
	f.fullTextRuns++
	f.lastFilter = filter
	if f.fullTextErr != nil {
		return nil, 0, f.fullTextErr
	}
	return f.rows, int64(len(f.rows)), nil
}

func (f *fakeSearchRepo) Simple(ctx context.Context, filter repository.SearchFilter) ([]repository.SearchRow, int64, error) {
	f.simpleRuns++
	f.lastFilter = filter
	return f.rows, int64(len(f.rows)), nil
}

func (f *fakeSearchRepo) Suggestions(ctx context.Context, query string, limit int) ([]repository.SuggestionRow, error) {
	f.suggestCalls++
	return f.suggestions, nil
}

func TestSearchServiceUsesFullTextWhenAvailable(t *testing.T) {
	env := newTestEnv(t)
	repo := &fakeSearchRepo{fullText: true, rows: []repository.SearchRow{{ID: 1, Title: "Go Fundamentals", Rank: 0.8}}}
	svc := NewSearchService(repo, env.cache, config.SearchFullText, "english", testLogger())

	resp, err := svc.SearchCourses(context.Background(), dto.SearchRequest{Query: "  golang ", Limit: 500, Level: "Beginner"})
	require.NoError(t, err)
	require.Equal(t, config.SearchFullText, resp.Mode)
	require.Equal(t, "golang", resp.Query)
	require.Equal(t, 100, resp.Limit)
	require.Len(t, resp.Results, 1)
	require.Equal(t, 0.8, resp.Results[0].Rank)
	require.Equal(t, 1, repo.fullTextRuns)
	require.Equal(t, 0, repo.simpleRuns)
	require.Equal(t, "beginner", repo.lastFilter.Level)
}

func TestSearchServiceFallsBackToSimple(t *testing.T) {
	env := newTestEnv(t)
	repo := &fakeSearchRepo{fullText: true, fullTextErr: errors.New("syntax error in tsquery"), rows: []repository.SearchRow{{ID: 2}}}
	svc := NewSearchService(repo, env.cache, config.SearchFullText, "english", testLogger())

	resp, err := svc.SearchCourses(context.Background(), dto.SearchRequest{Query: "go"})
	require.NoError(t, err)
	require.Equal(t, config.SearchSimple, resp.Mode)
	require.Equal(t, 20, resp.Limit)
	require.Equal(t, 1, repo.fullTextRuns)
	require.Equal(t, 1, repo.simpleRuns)
	require.Len(t, resp.Results, 1)
}

func TestSearchServiceEmptyQueryReturnsNothing(t *testing.T) {
	env := newTestEnv(t)
	repo := &fakeSearchRepo{}
	svc := NewSearchService(repo, env.cache, config.SearchSimple, "english", testLogger())

	resp, err := svc.SearchCourses(context.Background(), dto.SearchRequest{Query: "   "})
	require.NoError(t, err)
	require.Empty(t, resp.Results)
	require.Equal(t, 0, repo.simpleRuns)
}

func TestSearchServiceSuggestionsAreCached(t *testing.T) {
	env := newTestEnv(t)
	repo := &fakeSearchRepo{suggestions: []repository.SuggestionRow{
		{Type: repository.SuggestionCategory, ID: 1, Label: "Go"},
		{Type: repository.SuggestionCourse, ID: 2, Label: "Go Go Gadget"},
		{Type: repository.SuggestionTeacher, ID: 3, Label: "Gordon"},
	}}
	svc := NewSearchService(repo, env.cache, config.SearchSimple, "english", testLogger())
	ctx := context.Background()

	first, err := svc.Suggestions(ctx, "go", 0)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Len(t, first.Suggestions, 3)
	require.Equal(t, "Go Go Gadget", first.Suggestions[0].Label)
	require.Equal(t, 2, first.Suggestions[0].Score)
	require.Equal(t, repository.SuggestionTeacher, first.Suggestions[1].Type)

	second, err := svc.Suggestions(ctx, "go", 0)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, 1, repo.suggestCalls)
}

func TestRankSuggestionsTruncates(t *testing.T) {
	rows := []repository.SuggestionRow{
		{Type: repository.SuggestionCourse, ID: 1, Label: "Data Science"},
		{Type: repository.SuggestionCourse, ID: 2, Label: "Data Data"},
		{Type: repository.SuggestionCategory, ID: 3, Label: "Big Data"},
	}
	ranked := rankSuggestions(rows, "DATA", 2)
	require.Len(t, ranked, 2)
	require.Equal(t, uint(2), ranked[0].ID)
	require.Equal(t, uint(1), ranked[1].ID)
}

func TestSearchServiceSimpleAgainstDatabase(t *testing.T) {
	env := newTestEnv(t)
	data := env.seed(t)
	svc := NewSearchService(repository.NewSearchRepository(env.db), env.cache, config.SearchFullText, "english", testLogger())
	ctx := context.Background()

	resp, err := svc.SearchCourses(ctx, dto.SearchRequest{Query: "CONCURRENCY"})
	require.NoError(t, err)
	require.Equal(t, config.SearchSimple, resp.Mode)
	require.Len(t, resp.Results, 1)
	require.Equal(t, data.course.ID, resp.Results[0].ID)
	require.Equal(t, "Programming", resp.Results[0].CategoryName)
	require.Equal(t, "Tono Teacher", resp.Results[0].TeacherName)

	suggestions, err := svc.Suggestions(ctx, "to", 5)
	require.NoError(t, err)
	require.Len(t, suggestions.Suggestions, 1)
	require.Equal(t, repository.SuggestionTeacher, suggestions.Suggestions[0].Type)
}
