package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/internal/repository"
	"github.com/noah-isme/cubis-academy-api/pkg/storage"
)

// Upload categories used as the first key segment.
const (
	UploadCategoryGeneral  = "uploads"
	UploadCategoryCourses  = "courses"
	UploadCategoryAvatars  = "avatars"
	UploadCategoryPayments = "payments"
)

var uploadCategories = map[string]struct{}{
	UploadCategoryGeneral:  {},
	UploadCategoryCourses:  {},
	UploadCategoryAvatars:  {},
	UploadCategoryPayments: {},
}

// UploadService validates files, stores them on the configured provider and records their metadata.
type UploadService interface {
	Upload(ctx context.Context, file *multipart.FileHeader, userID *uint, category string) (dto.UploadResponse, error)
	Store(ctx context.Context, file *multipart.FileHeader, userID *uint, opts storage.UploadOptions) (models.FileRecord, error)
	Remove(ctx context.Context, fileKey string)
}

type uploadService struct {
	storage storage.Provider
	repo    repository.FileRecordRepository
	maxSize int64
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service.
func NewUploadService(provider storage.Provider, repo repository.FileRecordRepository, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &uploadService{
		storage: provider,
		repo:    repo,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/cubis-academy-api/internal/service/upload"),
	}
}

func (s *uploadService) Upload(ctx context.Context, file *multipart.FileHeader, userID *uint, category string) (dto.UploadResponse, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if _, ok := uploadCategories[category]; !ok {
		category = UploadCategoryGeneral
	}

	record, err := s.Store(ctx, file, userID, storage.UploadOptions{
		Category:     category,
		AllowedTypes: storage.DefaultAllowedTypes,
	})
	if err != nil {
		return dto.UploadResponse{}, err
	}
	return dto.NewUploadResponse(record), nil
}

func (s *uploadService) Store(ctx context.Context, file *multipart.FileHeader, userID *uint, opts storage.UploadOptions) (models.FileRecord, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	if file == nil {
		span.RecordError(ErrFileRequired)
		span.SetStatus(codes.Error, "validation failed")
		return models.FileRecord{}, ErrFileRequired
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
		attribute.String("upload.category", opts.Category),
	)

	if opts.MaxBytes <= 0 {
		opts.MaxBytes = s.maxSize
	}
	if file.Size > opts.MaxBytes {
		span.RecordError(storage.ErrFileTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return models.FileRecord{}, storage.ErrFileTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return models.FileRecord{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, opts.MaxBytes+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return models.FileRecord{}, err
	}
	checksum := sha256.Sum256(buf.Bytes())

	result, err := s.storage.Upload(ctx, storage.FileInput{Name: file.Filename, Reader: bytes.NewReader(buf.Bytes())}, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return models.FileRecord{}, err
	}

	record := models.FileRecord{
		UserID:    userID,
		Category:  opts.Category,
		FileKey:   result.FileKey,
		FileName:  sanitizeFileName(file.Filename),
		URL:       result.FileURL,
		MimeType:  result.MimeType,
		SizeBytes: result.FileSize,
		Checksum:  hex.EncodeToString(checksum[:]),
		Provider:  s.storage.Name(),
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		s.Remove(ctx, result.FileKey)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return models.FileRecord{}, err
	}

	span.SetStatus(codes.Ok, "stored")
	return record, nil
}

// Remove deletes a stored object and its record. Failures are logged only.
func (s *uploadService) Remove(ctx context.Context, fileKey string) {
	if fileKey == "" {
		return
	}
	if err := s.storage.Delete(ctx, fileKey); err != nil {
		s.logger.Warn().Err(err).Str("file_key", fileKey).Msg("failed to delete stored file")
	}
	if err := s.repo.DeleteByKey(ctx, fileKey); err != nil {
		s.logger.Warn().Err(err).Str("file_key", fileKey).Msg("failed to delete file record")
	}
}

func sanitizeFileName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "file"
	}
	return truncateString(base, 255)
}

