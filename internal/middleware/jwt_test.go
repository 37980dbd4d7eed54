package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const jwtTestSecret = "middleware-secret"

type stubSessions struct {
	revoked map[string]bool
	calls   int
}

func (s *stubSessions) ValidateSession(_ context.Context, _ uint, sessionID string) error {
	s.calls++
	if sessionID == "" || s.revoked[sessionID] {
		return errors.New("revoked")
	}
	return nil
}

func signed(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(jwtTestSecret))
	require.NoError(t, err)
	return token
}

func validClaims(sid string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  "42",
		"role": "Teacher",
		"sid":  sid,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
}

func jwtApp(sessions SessionValidator) *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTProtected(jwtTestSecret, sessions), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"id":   UserID(c),
			"role": UserRole(c),
			"sid":  SessionID(c),
		})
	})
	return app
}

func call(t *testing.T, app *fiber.App, header string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set(fiber.HeaderAuthorization, header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedPopulatesIdentity(t *testing.T) {
	sessions := &stubSessions{}
	resp := call(t, jwtApp(sessions), "Bearer "+signed(t, jwt.SigningMethodHS256, validClaims("s-1")))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 1, sessions.calls)

	var body struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
		SID  string `json:"sid"`
	}
	require.NoError(t, decodeJSON(resp, &body))
	require.Equal(t, uint(42), body.ID)
	require.Equal(t, "teacher", body.Role)
	require.Equal(t, "s-1", body.SID)
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	app := jwtApp(nil)

	expired := validClaims("s-1")
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noExp := validClaims("s-1")
	delete(noExp, "exp")

	badSubject := validClaims("s-1")
	badSubject["sub"] = "abc"

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"garbage":        "Bearer not-a-token",
		"expired":        "Bearer " + signed(t, jwt.SigningMethodHS256, expired),
		"no expiry":      "Bearer " + signed(t, jwt.SigningMethodHS256, noExp),
		"other alg":      "Bearer " + signed(t, jwt.SigningMethodHS512, validClaims("s-1")),
		"bad subject":    "Bearer " + signed(t, jwt.SigningMethodHS256, badSubject),
	}
	for name, header := range cases {
		resp := call(t, app, header)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
	}
}

func TestJWTProtectedRejectsRevokedSession(t *testing.T) {
	sessions := &stubSessions{revoked: map[string]bool{"gone": true}}
	resp := call(t, jwtApp(sessions), "Bearer "+signed(t, jwt.SigningMethodHS256, validClaims("gone")))
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
