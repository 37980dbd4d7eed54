package models

import "time"

// Payment status values.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment method values.
const (
	PaymentMethodTransfer = "transfer"
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodEWallet  = "ewallet"
)

var paymentTransitions = map[string][]string{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusFailed:    {PaymentStatusPending},
	PaymentStatusCompleted: {PaymentStatusRefunded},
}

// Payment records money owed or received for an enrollment.
type Payment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	EnrollmentID uint       `gorm:"index;not null" json:"enrollment_id"`
	Reference    string     `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	Amount       float64    `gorm:"not null" json:"amount"`
	Method       string     `gorm:"size:32;not null;default:transfer" json:"method"`
	Status       string     `gorm:"size:32;index;not null" json:"status"`
	ProofURL     string     `gorm:"size:512" json:"proof_url"`
	ProofKey     string     `gorm:"size:512" json:"-"`
	Notes        string     `gorm:"type:text" json:"notes"`
	PaidAt       *time.Time `json:"paid_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Enrollment   Enrollment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"enrollment"`
}

// CanTransitionTo reports whether the payment may move to the target status.
func (p Payment) CanTransitionTo(target string) bool {
	for _, allowed := range paymentTransitions[p.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsValidPaymentStatus reports whether status is a known payment status.
func IsValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}
