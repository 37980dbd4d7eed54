// Package storage stores uploaded files on the configured backend: local disk,
// Amazon S3, Cloudflare R2 or Cloudinary.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/cubis-academy-api/internal/config"
	"github.com/noah-isme/cubis-academy-api/internal/observability"
)

var (
	// ErrFileTooLarge indicates the payload exceeded the permitted size.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrTypeNotAllowed indicates the detected MIME type is not permitted.
	ErrTypeNotAllowed = errors.New("file type not allowed")
	// ErrEmptyFile indicates no bytes were supplied.
	ErrEmptyFile = errors.New("file is empty")
	// ErrMissingConfig indicates the selected backend lacks required settings.
	ErrMissingConfig = errors.New("storage configuration incomplete")
	// ErrInvalidKey indicates a file key that escapes the storage namespace.
	ErrInvalidKey = errors.New("invalid file key")
)

// FileInput is a file submitted for storage.
type FileInput struct {
	Name   string
	Reader io.Reader
}

// UploadOptions tune validation and processing for a single upload.
type UploadOptions struct {
	Category     string
	MaxBytes     int64
	AllowedTypes []string
	ResizeWidth  int
	ResizeHeight int
}

// UploadResult describes a stored file.
type UploadResult struct {
	ID       string `json:"id"`
	FileURL  string `json:"file_url"`
	FileKey  string `json:"file_key"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// Provider is implemented by every storage backend.
type Provider interface {
	Name() string
	Upload(ctx context.Context, file FileInput, opts UploadOptions) (UploadResult, error)
	Delete(ctx context.Context, fileKey string) error
	GetURL(fileKey string) string
}

// backend performs the raw object operations for a provider.
type backend interface {
	name() string
	put(ctx context.Context, key string, body []byte, contentType string) error
	remove(ctx context.Context, key string) error
	url(key string) string
}

type store struct {
	backend  backend
	maxBytes int64
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

var (
	defaultOnce     sync.Once
	defaultProvider Provider
	defaultErr      error
)

// Default returns the process-wide provider, building it on first use.
func Default(cfg config.StorageConfig, logger zerolog.Logger) (Provider, error) {
	defaultOnce.Do(func() {
		defaultProvider, defaultErr = New(cfg, logger)
	})
	return defaultProvider, defaultErr
}

// New builds the provider selected by cfg.Provider. Missing settings fail immediately.
func New(cfg config.StorageConfig, logger zerolog.Logger) (Provider, error) {
	var (
		b   backend
		err error
	)

	switch cfg.Provider {
	case config.StorageLocal, "":
		b, err = newLocalBackend(cfg.LocalDir, cfg.PublicURL)
	case config.StorageS3:
		b, err = newS3Backend(cfg)
	case config.StorageR2:
		b, err = newR2Backend(cfg)
	case config.StorageCloudinary:
		b, err = newCloudinaryBackend(cfg, logger)
	default:
		err = fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return newStore(b, int64(cfg.MaxUploadMB)*1024*1024, logger), nil
}

func newStore(b backend, maxBytes int64, logger zerolog.Logger) *store {
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &store{
		backend:  b,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "storage").Str("provider", b.name()).Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/cubis-academy-api/pkg/storage"),
		now:      time.Now,
	}
}

func (s *store) Name() string {
	return s.backend.name()
}

func (s *store) Upload(ctx context.Context, file FileInput, opts UploadOptions) (UploadResult, error) {
	ctx, span := s.tracer.Start(ctx, "storage.upload", trace.WithAttributes(
		attribute.String("storage.provider", s.backend.name()),
		attribute.String("storage.category", opts.Category),
		attribute.String("storage.original_name", file.Name),
	))
	defer span.End()

	if opts.MaxBytes <= 0 || opts.MaxBytes > s.maxBytes {
		opts.MaxBytes = s.maxBytes
	}

	prepared, err := prepare(file, opts, s.now())
	if err != nil {
		observability.StorageUploads().WithLabelValues(s.backend.name(), "rejected").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return UploadResult{}, err
	}
	span.SetAttributes(
		attribute.String("storage.key", prepared.key),
		attribute.String("storage.mime", prepared.mime),
		attribute.Int("storage.size_bytes", len(prepared.data)),
	)

	if err := s.backend.put(ctx, prepared.key, prepared.data, prepared.mime); err != nil {
		observability.StorageUploads().WithLabelValues(s.backend.name(), "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "put failed")
		return UploadResult{}, fmt.Errorf("store %s: %w", prepared.key, err)
	}

	size := int64(len(prepared.data))
	observability.StorageUploads().WithLabelValues(s.backend.name(), "ok").Inc()
	observability.StorageUploadBytes().WithLabelValues(s.backend.name()).Observe(float64(size))
	span.SetStatus(codes.Ok, "stored")

	s.logger.Info().
		Str("key", prepared.key).
		Str("mime", prepared.mime).
		Int64("size_bytes", size).
		Msg("file stored")

	return UploadResult{
		ID:       uuid.NewString(),
		FileURL:  s.backend.url(prepared.key),
		FileKey:  prepared.key,
		FileSize: size,
		MimeType: prepared.mime,
	}, nil
}

func (s *store) Delete(ctx context.Context, fileKey string) error {
	if fileKey == "" {
		return nil
	}
	if err := validateKey(fileKey); err != nil {
		return err
	}
	if err := s.backend.remove(ctx, fileKey); err != nil {
		return fmt.Errorf("delete %s: %w", fileKey, err)
	}
	s.logger.Info().Str("key", fileKey).Msg("file deleted")
	return nil
}

func (s *store) GetURL(fileKey string) string {
	if fileKey == "" {
		return ""
	}
	return s.backend.url(fileKey)
}
