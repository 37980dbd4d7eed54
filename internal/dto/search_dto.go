package dto

// SearchRequest describes a course search.
type SearchRequest struct {
	Query      string `json:"query"`
	CategoryID uint   `json:"category_id"`
	Level      string `json:"level"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

// SearchResult is a single ranked course match.
type SearchResult struct {
	ID           uint    `json:"id"`
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Description  string  `json:"description"`
	Level        string  `json:"level"`
	Price        float64 `json:"price"`
	ThumbnailURL string  `json:"thumbnail_url"`
	CategoryName string  `json:"category_name"`
	TeacherName  string  `json:"teacher_name"`
	Rank         float64 `json:"rank"`
}

// SearchResponse wraps ranked results with the mode that produced them.
type SearchResponse struct {
	Query   string         `json:"query"`
	Mode    string         `json:"mode"`
	Results []SearchResult `json:"results"`
	Total   int64          `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// Suggestion is a typeahead entry drawn from courses, teachers or categories.
type Suggestion struct {
	Type  string `json:"type"`
	ID    uint   `json:"id"`
	Label string `json:"label"`
	Score int    `json:"score"`
}

// SuggestionResponse wraps suggestions.
type SuggestionResponse struct {
	Query       string       `json:"query"`
	Suggestions []Suggestion `json:"suggestions"`
	CacheHit    bool         `json:"cache_hit"`
}
