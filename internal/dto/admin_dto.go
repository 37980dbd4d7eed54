package dto

import (
	"time"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// UserListRequest filters user listings.
type UserListRequest struct {
	Page     int
	PageSize int
	Role     string
	Search   string
	IsActive *bool
}

// UserCreateRequest creates an account with its role profile.
type UserCreateRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=120"`
	Email         string `json:"email" validate:"required,email,max=255"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	Role          string `json:"role" validate:"required,oneof=student teacher admin"`
	Phone         string `json:"phone" validate:"omitempty,max=32"`
	Bio           string `json:"bio" validate:"omitempty,max=5000"`
	Expertise     string `json:"expertise" validate:"omitempty,max=255"`
	StudentNumber string `json:"student_number" validate:"omitempty,max=32"`
}

// UserUpdateRequest partially updates an account.
type UserUpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=120"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	IsActive  *bool   `json:"is_active"`
	Bio       *string `json:"bio" validate:"omitempty,max=5000"`
	Expertise *string `json:"expertise" validate:"omitempty,max=255"`
}

// ProfileUpdateRequest updates the caller's own profile.
type ProfileUpdateRequest struct {
	Name    *string `json:"name" form:"name" validate:"omitempty,min=2,max=120"`
	Phone   *string `json:"phone" form:"phone" validate:"omitempty,max=32"`
	Address *string `json:"address" form:"address" validate:"omitempty,max=500"`
}

// ActivityListRequest defines filters for retrieving activity logs.
type ActivityListRequest struct {
	Page       int
	PageSize   int
	ActorID    uint
	ActorRole  string
	Action     string
	EntityType string
	EntityID   uint
	From       string
	To         string
}

// ActivityResponse serializes activity log entries.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// UploadResponse describes a stored upload.
type UploadResponse struct {
	ID        uint   `json:"id"`
	URL       string `json:"url"`
	FileKey   string `json:"file_key"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
	Provider  string `json:"provider"`
}

// NewActivityResponse converts a model into an activity DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	metadata := map[string]interface{}{}
	for key, value := range entry.Metadata {
		metadata[key] = value
	}
	return ActivityResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

// NewUploadResponse converts a file record.
func NewUploadResponse(record models.FileRecord) UploadResponse {
	return UploadResponse{
		ID:        record.ID,
		URL:       record.URL,
		FileKey:   record.FileKey,
		FileName:  record.FileName,
		MimeType:  record.MimeType,
		SizeBytes: record.SizeBytes,
		Checksum:  record.Checksum,
		Provider:  record.Provider,
	}
}
