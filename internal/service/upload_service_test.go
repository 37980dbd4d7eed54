package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/pkg/storage"
)

func TestUploadServiceStoresFileAndRecord(t *testing.T) {
	env := newTestEnv(t)
	svc := env.uploadService(t)
	ctx := context.Background()

	userID := uint(7)
	resp, err := svc.Upload(ctx, buildFileHeader(t, "../../diagram.png", pngBytes(t, 8, 8)), &userID, "Courses")
	require.NoError(t, err)
	require.Equal(t, "image/png", resp.MimeType)
	require.Equal(t, "diagram.png", resp.FileName)
	require.Equal(t, "local", resp.Provider)
	require.Len(t, resp.Checksum, 64)
	require.Contains(t, resp.FileKey, "courses/")

	record, err := env.files.GetByKey(ctx, resp.FileKey)
	require.NoError(t, err)
	require.Equal(t, "courses", record.Category)
	require.Equal(t, userID, *record.UserID)

	svc.Remove(ctx, resp.FileKey)
	_, err = env.files.GetByKey(ctx, resp.FileKey)
	require.Error(t, err)
}

func TestUploadServiceUnknownCategoryFallsBack(t *testing.T) {
	env := newTestEnv(t)
	svc := env.uploadService(t)

	resp, err := svc.Upload(context.Background(), buildFileHeader(t, "photo.png", pngBytes(t, 4, 4)), nil, "../secrets")
	require.NoError(t, err)
	require.Contains(t, resp.FileKey, UploadCategoryGeneral+"/")
}

func TestUploadServiceRejectsInvalidFiles(t *testing.T) {
	env := newTestEnv(t)
	svc := env.uploadService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, nil, nil, UploadCategoryGeneral)
	require.ErrorIs(t, err, ErrFileRequired)

	large := bytes.Repeat([]byte("a"), 3*1024*1024)
	_, err = svc.Upload(ctx, buildFileHeader(t, "large.png", large), nil, UploadCategoryGeneral)
	require.ErrorIs(t, err, storage.ErrFileTooLarge)

	_, err = svc.Upload(ctx, buildFileHeader(t, "script.png", []byte("#!/bin/sh\necho hi\n")), nil, UploadCategoryGeneral)
	require.ErrorIs(t, err, storage.ErrTypeNotAllowed)
}
