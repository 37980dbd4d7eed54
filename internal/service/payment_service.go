package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/pkg/cache"
	"github.com/noah-isme/cubis-academy-api/pkg/events"
	"github.com/noah-isme/cubis-academy-api/pkg/mailer"
	"github.com/noah-isme/cubis-academy-api/pkg/storage"
)

// PaymentService tracks enrollment payments.
type PaymentService interface {
	List(ctx context.Context, req dto.PaymentListRequest) (dto.ListResponse[dto.PaymentResponse], error)
	UpdateStatus(ctx context.Context, actor Actor, id uint, req dto.PaymentStatusRequest) (dto.PaymentResponse, error)
	ListForStudent(ctx context.Context, userID uint) ([]dto.PaymentResponse, bool, error)
	UploadProof(ctx context.Context, userID, paymentID uint, file *multipart.FileHeader) (dto.PaymentResponse, error)
}

type paymentService struct {
	payments  repository.PaymentRepository
	students  repository.StudentRepository
	uploads   UploadService
	activity  ActivityRecorder
	notifier  *Notifier
	cache     *cache.Cache
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPaymentService constructs the payment service.
func NewPaymentService(
	payments repository.PaymentRepository,
	students repository.StudentRepository,
	uploads UploadService,
	activity ActivityRecorder,
	notifier *Notifier,
	cacheStore *cache.Cache,
	validate *validator.Validate,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		payments:  payments,
		students:  students,
		uploads:   uploads,
		activity:  activity,
		notifier:  notifier,
		cache:     cacheStore,
		validator: validate,
		logger:    logger.With().Str("component", "payment_service").Logger(),
		now:       time.Now,
	}
}

func (s *paymentService) List(ctx context.Context, req dto.PaymentListRequest) (dto.ListResponse[dto.PaymentResponse], error) {
	page, pageSize := dto.NormalizePage(req.Page, req.PageSize)
	payments, total, err := s.payments.List(ctx, repository.PaymentFilter{
		Status:    strings.ToLower(strings.TrimSpace(req.Status)),
		Method:    strings.ToLower(strings.TrimSpace(req.Method)),
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return dto.ListResponse[dto.PaymentResponse]{}, err
	}

	items := make([]dto.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		items = append(items, dto.NewPaymentResponse(payment))
	}
	return dto.ListResponse[dto.PaymentResponse]{Items: items, Pagination: dto.NewPaginationMeta(page, pageSize, total)}, nil
}

func (s *paymentService) load(ctx context.Context, id uint) (models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Payment{}, ErrPaymentNotFound
		}
		return models.Payment{}, err
	}
	return payment, nil
}

func (s *paymentService) UpdateStatus(ctx context.Context, actor Actor, id uint, req dto.PaymentStatusRequest) (dto.PaymentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PaymentResponse{}, err
	}

	payment, err := s.load(ctx, id)
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	target := strings.ToLower(req.Status)
	if !payment.CanTransitionTo(target) {
		return dto.PaymentResponse{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, payment.Status, target)
	}

	previous := payment.Status
	payment.Status = target
	if req.Method != "" {
		payment.Method = req.Method
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		payment.Notes = notes
	}
	switch target {
	case models.PaymentStatusCompleted:
		paidAt := s.now()
		payment.PaidAt = &paidAt
	case models.PaymentStatusPending:
		payment.PaidAt = nil
	}

	if err := s.payments.Save(ctx, &payment); err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("update payment: %w", err)
	}

	studentID := payment.Enrollment.StudentID
	s.cache.InvalidatePayments(ctx, studentID)

	template := mailer.TemplatePaymentStatus
	if target == models.PaymentStatusCompleted {
		template = mailer.TemplatePaymentReceipt
	}
	data := mailer.PaymentData{
		Name:        payment.Enrollment.Student.User.Name,
		CourseTitle: payment.Enrollment.Course.Title,
		Reference:   payment.Reference,
		Amount:      payment.Amount,
		Status:      payment.Status,
		Method:      payment.Method,
		Notes:       payment.Notes,
	}
	if payment.PaidAt != nil {
		data.PaidAt = *payment.PaidAt
	}
	s.notifier.Email(ctx, payment.Enrollment.Student.User.Email, template, data)
	s.notifier.Publish(ctx, events.PaymentStatusChanged, map[string]interface{}{
		"payment_id":    payment.ID,
		"enrollment_id": payment.EnrollmentID,
		"student_id":    studentID,
		"reference":     payment.Reference,
		"amount":        payment.Amount,
		"from":          previous,
		"to":            target,
	})
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "payment.status_changed",
		EntityType: "payment",
		EntityID:   uintPtr(payment.ID),
		Metadata:   map[string]interface{}{"from": previous, "to": target, "reference": payment.Reference},
	})

	return dto.NewPaymentResponse(payment), nil
}

func (s *paymentService) ListForStudent(ctx context.Context, userID uint) ([]dto.PaymentResponse, bool, error) {
	student, err := studentForUser(ctx, s.students, userID)
	if err != nil {
		return nil, false, err
	}

	return cache.Remember(ctx, s.cache, cache.StudentPayments(student.ID), cache.TTLMedium, func(ctx context.Context) ([]dto.PaymentResponse, error) {
		payments, err := s.payments.ListByStudent(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		items := make([]dto.PaymentResponse, 0, len(payments))
		for _, payment := range payments {
			items = append(items, dto.NewPaymentResponse(payment))
		}
		return items, nil
	})
}

func (s *paymentService) UploadProof(ctx context.Context, userID, paymentID uint, file *multipart.FileHeader) (dto.PaymentResponse, error) {
	student, err := studentForUser(ctx, s.students, userID)
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	payment, err := s.load(ctx, paymentID)
	if err != nil {
		return dto.PaymentResponse{}, err
	}
	if payment.Enrollment.StudentID != student.ID {
		return dto.PaymentResponse{}, ErrForbidden
	}
	if payment.Status != models.PaymentStatusPending {
		return dto.PaymentResponse{}, ErrPaymentNotPending
	}

	record, err := s.uploads.Store(ctx, file, &userID, storage.UploadOptions{
		Category:     UploadCategoryPayments,
		AllowedTypes: storage.DefaultAllowedTypes,
	})
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	previousKey := payment.ProofKey
	payment.ProofURL = record.URL
	payment.ProofKey = record.FileKey
	if err := s.payments.Save(ctx, &payment); err != nil {
		s.uploads.Remove(ctx, record.FileKey)
		return dto.PaymentResponse{}, fmt.Errorf("attach payment proof: %w", err)
	}
	s.uploads.Remove(ctx, previousKey)

	s.cache.InvalidatePayments(ctx, student.ID)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      Actor{ID: userID, Role: models.RoleStudent},
		Action:     "payment.proof_uploaded",
		EntityType: "payment",
		EntityID:   uintPtr(payment.ID),
		Metadata:   map[string]interface{}{"file_key": record.FileKey},
	})

	return dto.NewPaymentResponse(payment), nil
}
