package handler_test

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/dto"
	"github.com/noah-isme/cubis-academy-api/internal/handler"
	"github.com/noah-isme/cubis-academy-api/internal/service"
)

type stubStudentService struct {
	service.StudentService

	lastProfile dto.ProfileUpdateRequest
	avatarName  string
}

func (s *stubStudentService) UpdateProfile(_ context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	s.lastProfile = req
	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	return dto.UserResponse{ID: userID, Name: name}, nil
}

func (s *stubStudentService) UploadAvatar(_ context.Context, userID uint, file *multipart.FileHeader) (dto.UserResponse, error) {
	s.avatarName = file.Filename
	return dto.UserResponse{ID: userID, AvatarURL: "/uploads/avatars/" + file.Filename}, nil
}

type stubPaymentService struct {
	service.PaymentService
}

func (s *stubPaymentService) UploadProof(_ context.Context, _ uint, paymentID uint, _ *multipart.FileHeader) (dto.PaymentResponse, error) {
	if paymentID == 2 {
		return dto.PaymentResponse{}, service.ErrPaymentNotPending
	}
	return dto.PaymentResponse{ID: paymentID, ProofURL: "/uploads/payments/proof.png"}, nil
}

func studentApp(enrollments *stubEnrollmentService, students *stubStudentService) *fiber.App {
	app := fiber.New()
	dashboards := handler.NewDashboardHandler(&stubDashboardService{}, zerolog.Nop())
	h := handler.NewStudentHandler(students, enrollments, &stubPaymentService{}, dashboards, zerolog.Nop())
	h.Register(app.Group("/api/v1/student", asUser(21, "student", "s")))
	return app
}

func TestStudentHandler_Enroll(t *testing.T) {
	enrollments := &stubEnrollmentService{}
	app := studentApp(enrollments, &stubStudentService{})

	resp := postJSON(t, app, "/api/v1/student/enrollments", `{"course_id":4}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(21), enrollments.lastEnroll)

	for err, status := range map[error]int{
		service.ErrAlreadyEnrolled:   fiber.StatusConflict,
		service.ErrCourseFull:        fiber.StatusConflict,
		service.ErrCourseUnavailable: fiber.StatusUnprocessableEntity,
	} {
		enrollments.enrollErr = err
		resp = postJSON(t, app, "/api/v1/student/enrollments", `{"course_id":4}`)
		require.Equal(t, status, resp.StatusCode, err.Error())
	}
}

func TestStudentHandler_DashboardCacheHeader(t *testing.T) {
	resp := get(t, studentApp(&stubEnrollmentService{}, &stubStudentService{}), "/api/v1/student/dashboard")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "true", resp.Header.Get("X-Cache-Hit"))
}

func TestStudentHandler_ProfileMultipartWithAvatar(t *testing.T) {
	students := &stubStudentService{}
	app := studentApp(&stubEnrollmentService{}, students)

	body, contentType := multipartBody(t, "avatar", "me.png", []byte("png"), map[string]string{"name": "Sari Lestari", "address": "Bandung"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/student/profile", body)
	req.Header.Set(fiber.HeaderContentType, contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, students.lastProfile.Name)
	require.Equal(t, "Sari Lestari", *students.lastProfile.Name)
	require.NotNil(t, students.lastProfile.Address)
	require.Equal(t, "me.png", students.avatarName)
	require.Contains(t, string(decodeEnvelope(t, resp).Data), "/uploads/avatars/me.png")
}

func TestStudentHandler_ProfileJSON(t *testing.T) {
	students := &stubStudentService{}
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/student/profile", strings.NewReader(`{"phone":"0812"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := studentApp(&stubEnrollmentService{}, students).Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, students.lastProfile.Phone)
	require.Equal(t, "0812", *students.lastProfile.Phone)
	require.Empty(t, students.avatarName)
}

func TestStudentHandler_UploadProof(t *testing.T) {
	app := studentApp(&stubEnrollmentService{}, &stubStudentService{})

	body, contentType := multipartBody(t, "file", "proof.png", []byte("png"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/student/payments/1/proof", body)
	req.Header.Set(fiber.HeaderContentType, contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, contentType = multipartBody(t, "file", "proof.png", []byte("png"), nil)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/student/payments/2/proof", body)
	req.Header.Set(fiber.HeaderContentType, contentType)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
