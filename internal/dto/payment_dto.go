package dto

import (
	"time"

	"github.com/noah-isme/cubis-academy-api/internal/models"
)

// PaymentListRequest filters payment listings.
type PaymentListRequest struct {
	Page      int
	PageSize  int
	Status    string
	Method    string
	StudentID uint
	CourseID  uint
}

// PaymentResponse serializes a payment.
type PaymentResponse struct {
	ID           uint       `json:"id"`
	EnrollmentID uint       `json:"enrollment_id"`
	Reference    string     `json:"reference"`
	Amount       float64    `json:"amount"`
	Method       string     `json:"method"`
	Status       string     `json:"status"`
	ProofURL     string     `json:"proof_url"`
	Notes        string     `json:"notes"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	CourseID     uint       `json:"course_id,omitempty"`
	CourseTitle  string     `json:"course_title,omitempty"`
	StudentName  string     `json:"student_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PaymentStatusRequest changes a payment's status.
type PaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed failed refunded"`
	Method string `json:"method" validate:"omitempty,oneof=transfer cash card ewallet"`
	Notes  string `json:"notes" validate:"omitempty,max=1000"`
}

// NewPaymentResponse converts a payment model including preloaded associations.
func NewPaymentResponse(payment models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           payment.ID,
		EnrollmentID: payment.EnrollmentID,
		Reference:    payment.Reference,
		Amount:       payment.Amount,
		Method:       payment.Method,
		Status:       payment.Status,
		ProofURL:     payment.ProofURL,
		Notes:        payment.Notes,
		PaidAt:       payment.PaidAt,
		CourseID:     payment.Enrollment.CourseID,
		CourseTitle:  payment.Enrollment.Course.Title,
		StudentName:  payment.Enrollment.Student.User.Name,
		CreatedAt:    payment.CreatedAt,
		UpdatedAt:    payment.UpdatedAt,
	}
}
