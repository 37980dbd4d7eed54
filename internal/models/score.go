package models

import "time"

// Score assessment types.
const (
	ScoreTypeQuiz       = "quiz"
	ScoreTypeAssignment = "assignment"
	ScoreTypeMidterm    = "midterm"
	ScoreTypeFinal      = "final"
)

// Score is a graded assessment result for an enrollment.
type Score struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	EnrollmentID uint       `gorm:"index;not null" json:"enrollment_id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Type         string     `gorm:"size:32;not null" json:"type"`
	Value        float64    `gorm:"not null" json:"value"`
	MaxValue     float64    `gorm:"not null;default:100" json:"max_value"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	GradedBy     uint       `gorm:"index" json:"graded_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Enrollment   Enrollment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"enrollment"`
}

// Percentage normalises the score to a 0-100 scale.
func (s Score) Percentage() float64 {
	if s.MaxValue <= 0 {
		return 0
	}
	return (s.Value / s.MaxValue) * 100
}
