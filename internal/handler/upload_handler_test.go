package handler_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/handler"
	"github.com/noah-isme/cubis-academy-api/internal/models"
	"github.com/noah-isme/cubis-academy-api/pkg/storage"
)

type mockUploadService struct {
	lastUserID   *uint
	lastCategory string
	response     dto.UploadResponse
	err          error
}

func (m *mockUploadService) Upload(_ context.Context, file *multipart.FileHeader, userID *uint, category string) (dto.UploadResponse, error) {
	if file != nil {
		if _, err := file.Open(); err != nil {
			return dto.UploadResponse{}, err
		}
	}
	m.lastUserID = userID
	m.lastCategory = category
	if m.err != nil {
		return dto.UploadResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockUploadService) Store(context.Context, *multipart.FileHeader, *uint, storage.UploadOptions) (models.FileRecord, error) {
	return models.FileRecord{}, nil
}

func (m *mockUploadService) Remove(context.Context, string) {}

func multipartBody(t *testing.T, field, filename string, content []byte, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range values {
		require.NoError(t, writer.WriteField(key, value))
	}
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func uploadApp(svc *mockUploadService, authenticated bool) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/uploads")
	if authenticated {
		group.Use(asUser(7, "teacher", "s-1"))
	}
	handler.NewUploadHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func TestUploadHandler_Success(t *testing.T) {
	svc := &mockUploadService{response: dto.UploadResponse{URL: "/uploads/courses/2026/03/file.png", SizeBytes: 123, MimeType: "image/png", FileName: "file.png"}}
	body, contentType := multipartBody(t, "file", "photo.png", []byte("png"), map[string]string{"category": "courses"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set(fiber.HeaderContentType, contentType)
	resp, err := uploadApp(svc, true).Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool               `json:"success"`
		Data    dto.UploadResponse `json:"data"`
		Message string             `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "upload successful", response.Message)
	require.NotNil(t, svc.lastUserID)
	require.Equal(t, uint(7), *svc.lastUserID)
	require.Equal(t, "courses", svc.lastCategory)
	require.Equal(t, svc.response.URL, response.Data.URL)
}

func TestUploadHandler_RequiresUser(t *testing.T) {
	body, contentType := multipartBody(t, "file", "photo.png", []byte("png"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set(fiber.HeaderContentType, contentType)

	resp, err := uploadApp(&mockUploadService{}, false).Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUploadHandler_MissingFile(t *testing.T) {
	body, contentType := multipartBody(t, "", "", nil, map[string]string{"category": "courses"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set(fiber.HeaderContentType, contentType)

	resp, err := uploadApp(&mockUploadService{}, true).Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadHandler_MapsStorageErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{storage.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge},
		{storage.ErrTypeNotAllowed, fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		body, contentType := multipartBody(t, "file", "script.sh", []byte("#!/bin/sh"), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
		req.Header.Set(fiber.HeaderContentType, contentType)

		resp, err := uploadApp(&mockUploadService{err: tc.err}, true).Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, tc.status, resp.StatusCode)
		payload := decodeEnvelope(t, resp)
		require.False(t, payload.Success)
		require.Equal(t, tc.err.Error(), payload.Message)
	}
}
