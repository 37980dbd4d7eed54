package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/config"
)

// mediaAPI is the subset of the Cloudinary upload API used by the backend.
type mediaAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type cloudinaryBackend struct {
	client    mediaAPI
	cloudName string
	folder    string
	logger    zerolog.Logger
}

func newCloudinaryBackend(cfg config.StorageConfig, logger zerolog.Logger) (*cloudinaryBackend, error) {
	if cfg.CloudinaryName == "" || cfg.CloudinaryKey == "" || cfg.CloudinarySecret == "" {
		return nil, fmt.Errorf("%w: cloudinary credentials must be provided", ErrMissingConfig)
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryName, cfg.CloudinaryKey, cfg.CloudinarySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &cloudinaryBackend{
		client:    &cld.Upload,
		cloudName: cfg.CloudinaryName,
		folder:    strings.Trim(cfg.CloudinaryFolder, "/"),
		logger:    logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

func (b *cloudinaryBackend) name() string { return config.StorageCloudinary }

func (b *cloudinaryBackend) put(ctx context.Context, key string, body []byte, contentType string) error {
	resourceType := resourceTypeFor(key)
	result, err := b.client.Upload(ctx, bytes.NewReader(body), uploader.UploadParams{
		PublicID:     b.publicID(key, resourceType),
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload asset: %w", err)
	}

	publicID := ""
	if result != nil {
		publicID = result.PublicID
	}
	b.logger.Debug().Str("public_id", publicID).Str("content_type", contentType).Msg("asset uploaded to cloudinary")
	return nil
}

func (b *cloudinaryBackend) remove(ctx context.Context, key string) error {
	resourceType := resourceTypeFor(key)
	_, err := b.client.Destroy(ctx, uploader.DestroyParams{
		PublicID:     b.publicID(key, resourceType),
		ResourceType: resourceType,
	})
	return err
}

func (b *cloudinaryBackend) url(key string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/%s/upload/%s", b.cloudName, resourceTypeFor(key), b.qualified(key))
}

func (b *cloudinaryBackend) qualified(key string) string {
	if b.folder == "" {
		return key
	}
	return b.folder + "/" + key
}

// publicID strips the extension for images; raw assets keep it as part of the identifier.
func (b *cloudinaryBackend) publicID(key, resourceType string) string {
	id := b.qualified(key)
	if resourceType == "image" {
		id = strings.TrimSuffix(id, path.Ext(id))
	}
	return id
}

func resourceTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "image"
	default:
		return "raw"
	}
}
