package storage

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultAllowedTypes accepts common images and PDF documents.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif", "application/pdf"}

// ImageTypes accepts images only.
var ImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

const resizeQuality = 85

type preparedFile struct {
	key  string
	data []byte
	mime string
}

func prepare(file FileInput, opts UploadOptions, now time.Time) (preparedFile, error) {
	if file.Reader == nil {
		return preparedFile{}, ErrEmptyFile
	}

	data, err := io.ReadAll(io.LimitReader(file.Reader, opts.MaxBytes+1))
	if err != nil {
		return preparedFile{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return preparedFile{}, ErrEmptyFile
	}
	if int64(len(data)) > opts.MaxBytes {
		return preparedFile{}, ErrFileTooLarge
	}

	detected := mimetype.Detect(data)
	mime := baseMime(detected.String())
	allowed := opts.AllowedTypes
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}
	if !containsType(allowed, mime) {
		return preparedFile{}, fmt.Errorf("%w: %s", ErrTypeNotAllowed, mime)
	}

	ext := detected.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(file.Name))
	}

	if opts.ResizeWidth > 0 && opts.ResizeHeight > 0 && isResizable(mime) {
		resized, err := resizeImage(data, opts.ResizeWidth, opts.ResizeHeight)
		if err != nil {
			return preparedFile{}, err
		}
		data = resized
		mime = "image/jpeg"
		ext = ".jpg"
	}

	return preparedFile{
		key:  buildKey(opts.Category, file.Name, ext, now),
		data: data,
		mime: mime,
	}, nil
}

func resizeImage(data []byte, width, height int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	fitted := imaging.Fit(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(resizeQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// buildKey produces category/sanitized-name-timestamp-random.ext.
func buildKey(category, name, ext string, now time.Time) string {
	category = sanitizeSegment(category)
	if category == "" {
		category = "misc"
	}

	base := sanitizeSegment(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	if base == "" {
		base = "file"
	}
	if len(base) > 64 {
		base = strings.Trim(base[:64], "-")
	}

	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return path.Join(category, fmt.Sprintf("%s-%d-%s%s", base, now.UnixMilli(), random, ext))
}

func sanitizeSegment(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '-'
	}, value)
	for strings.Contains(value, "--") {
		value = strings.ReplaceAll(value, "--", "-")
	}
	return strings.Trim(value, "-")
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." || segment == "." || segment == "" {
			return ErrInvalidKey
		}
	}
	return nil
}

func baseMime(value string) string {
	if idx := strings.Index(value, ";"); idx >= 0 {
		value = value[:idx]
	}
	return strings.ToLower(strings.TrimSpace(value))
}

func containsType(allowed []string, mime string) bool {
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, mime) {
			return true
		}
	}
	return false
}

func isResizable(mime string) bool {
	return mime == "image/jpeg" || mime == "image/png"
}
