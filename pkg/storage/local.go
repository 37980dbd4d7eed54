package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type localBackend struct {
	dir       string
	publicURL string
}

func newLocalBackend(dir, publicURL string) (*localBackend, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: local directory is required", ErrMissingConfig)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare upload directory: %w", err)
	}
	if publicURL == "" {
		publicURL = "/uploads"
	}
	return &localBackend{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (b *localBackend) name() string { return "local" }

func (b *localBackend) path(key string) string {
	return filepath.Join(b.dir, filepath.FromSlash(key))
}

func (b *localBackend) put(_ context.Context, key string, body []byte, _ string) error {
	target := b.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, body, 0o644)
}

func (b *localBackend) remove(_ context.Context, key string) error {
	err := os.Remove(b.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (b *localBackend) url(key string) string {
	return b.publicURL + "/" + key
}
