package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/config"
)

type recordingTransport struct {
	from     string
	messages []Message
}

func (r *recordingTransport) name() string { return "recording" }

func (r *recordingTransport) deliver(_ context.Context, from string, msg Message) error {
	r.from = from
	r.messages = append(r.messages, msg)
	return nil
}

func newRecordingMailer(t *testing.T) (*mailer, *recordingTransport) {
	t.Helper()
	templates, err := LoadTemplates()
	require.NoError(t, err)
	rec := &recordingTransport{}
	return newMailer(rec, formatFrom("CUBIS Academy", "no-reply@cubis.academy"), templates, zerolog.Nop()), rec
}

func TestRenderEnrollmentConfirmation(t *testing.T) {
	templates, err := LoadTemplates()
	require.NoError(t, err)

	msg, err := templates.Render(TemplateEnrollmentConfirmation, EnrollmentData{
		Name:        "Ayu <script>",
		CourseTitle: "Go Fundamentals",
		EnrolledAt:  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Amount:      150000,
		Reference:   "PAY-123",
	})
	require.NoError(t, err)
	require.Equal(t, "You are enrolled in Go Fundamentals", msg.Subject)
	require.Contains(t, msg.HTML, "Ayu &lt;script&gt;")
	require.Contains(t, msg.HTML, "05 Mar 2024")
	require.Contains(t, msg.Text, "Rp 150000.00")
	require.Contains(t, msg.Text, "PAY-123")
	require.Contains(t, msg.Text, "CUBIS Academy")
	require.Equal(t, TemplateEnrollmentConfirmation, msg.Tags["template"])
}

func TestRenderUnknownTemplate(t *testing.T) {
	templates, err := LoadTemplates()
	require.NoError(t, err)

	_, err = templates.Render("missing", nil)
	require.Error(t, err)
}

func TestSendTemplateUsesTransport(t *testing.T) {
	m, rec := newRecordingMailer(t)

	err := m.SendTemplate(context.Background(), []string{"student@example.com"}, TemplateWelcome, WelcomeData{
		Name:  "Budi",
		Email: "student@example.com",
	})
	require.NoError(t, err)
	require.Len(t, rec.messages, 1)
	require.Equal(t, "CUBIS Academy <no-reply@cubis.academy>", rec.from)
	require.Equal(t, []string{"student@example.com"}, rec.messages[0].To)
	require.Equal(t, "Welcome to CUBIS Academy, Budi", rec.messages[0].Subject)
}

func TestSendDerivesPlainText(t *testing.T) {
	m, rec := newRecordingMailer(t)

	err := m.Send(context.Background(), Message{
		To:      []string{"a@example.com"},
		Subject: "Hi",
		HTML:    "<p>Hello <b>there</b></p>\n<p>Bye</p>",
	})
	require.NoError(t, err)
	require.Equal(t, "Hello there\nBye", rec.messages[0].Text)

	require.ErrorIs(t, m.Send(context.Background(), Message{Subject: "x"}), ErrNoRecipients)
}

func TestResendTransport(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer server.Close()

	transport := newResendTransport("re_test", server.URL+"/")
	err := transport.deliver(context.Background(), "CUBIS <no-reply@cubis.academy>", Message{
		To:      []string{"student@example.com"},
		Subject: "Hello",
		HTML:    "<p>Hello</p>",
		Text:    "Hello",
		Tags:    map[string]string{"template": "welcome"},
	})
	require.NoError(t, err)
	require.Equal(t, "Hello", payload["subject"])
	require.Equal(t, "CUBIS <no-reply@cubis.academy>", payload["from"])
}

func TestSendgridTransport(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/mail/send", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	transport := newSendgridTransport("SG.test", server.URL)
	err := transport.deliver(context.Background(), "CUBIS Academy <no-reply@cubis.academy>", Message{
		To:      []string{"student@example.com"},
		Subject: "Receipt",
		HTML:    "<p>Paid</p>",
		Text:    "Paid",
	})
	require.NoError(t, err)
	require.True(t, strings.Contains(body, "student@example.com"))
	require.True(t, strings.Contains(body, "Receipt"))
}

func TestSendgridTransportReportsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	transport := newSendgridTransport("SG.bad", server.URL)
	err := transport.deliver(context.Background(), "no-reply@cubis.academy", Message{To: []string{"x@example.com"}})
	require.Error(t, err)
}

func TestNewSelectsProvider(t *testing.T) {
	m, err := New(config.EmailConfig{Provider: config.EmailLog, From: "no-reply@cubis.academy"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "log", m.Provider())
	require.NoError(t, m.SendTemplate(context.Background(), []string{"a@example.com"}, TemplatePaymentStatus, PaymentData{
		Name: "Ayu", Reference: "PAY-1", Status: "failed", CourseTitle: "Go",
	}))

	_, err = New(config.EmailConfig{Provider: config.EmailResend}, zerolog.Nop())
	require.Error(t, err)

	_, err = New(config.EmailConfig{Provider: "pigeon"}, zerolog.Nop())
	require.Error(t, err)
}
