package models

import (
	"fmt"
	"time"
)

// Student status values.
const (
	StudentStatusActive    = "active"
	StudentStatusInactive  = "inactive"
	StudentStatusGraduated = "graduated"
)

// Student holds the learner profile attached to a student user.
type Student struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	StudentNumber string     `gorm:"size:32;uniqueIndex;not null" json:"student_number"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	Address       string     `gorm:"type:text" json:"address"`
	Status        string     `gorm:"size:32;not null;default:active" json:"status"`
	JoinedAt      time.Time  `json:"joined_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	User          User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}

// StudentNumberFor derives the enrollment number issued to a student account.
func StudentNumberFor(joined time.Time, userID uint) string {
	return fmt.Sprintf("STU%d%06d", joined.Year(), userID)
}
