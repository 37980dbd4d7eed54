package models

import "time"

// FileRecord stores metadata about a stored upload.
type FileRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Category  string    `gorm:"size:64;index;not null" json:"category"`
	FileKey   string    `gorm:"size:512;uniqueIndex;not null" json:"file_key"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	URL       string    `gorm:"size:1024;not null" json:"url"`
	MimeType  string    `gorm:"size:128;not null" json:"mime_type"`
	SizeBytes int64     `gorm:"not null" json:"size_bytes"`
	Checksum  string    `gorm:"size:128;index" json:"checksum"`
	Provider  string    `gorm:"size:32;not null" json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}
