package models

import "time"

// Session is a login session bound to issued access tokens.
type Session struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	UserAgent  string     `gorm:"size:512" json:"user_agent"`
	IPAddress  string     `gorm:"size:64" json:"ip_address"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at"`
	LastSeenAt time.Time  `json:"last_seen_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Active reports whether the session is neither revoked nor expired.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
