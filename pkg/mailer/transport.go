package mailer

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"sort"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type resendTransport struct {
	client *resend.Client
}

func newResendTransport(apiKey, baseURL string) *resendTransport {
	client := resend.NewClient(apiKey)
	if baseURL != "" {
		if parsed, err := url.Parse(baseURL); err == nil {
			client.BaseURL = parsed
		}
	}
	return &resendTransport{client: client}
}

func (t *resendTransport) name() string { return "resend" }

func (t *resendTransport) deliver(ctx context.Context, from string, msg Message) error {
	request := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	for _, key := range sortedKeys(msg.Tags) {
		request.Tags = append(request.Tags, resend.Tag{Name: key, Value: msg.Tags[key]})
	}

	_, err := t.client.Emails.SendWithContext(ctx, request)
	return err
}

type sendgridTransport struct {
	key  string
	host string
}

func newSendgridTransport(key, host string) *sendgridTransport {
	if host == "" {
		host = sendgridHost
	}
	return &sendgridTransport{key: key, host: host}
}

func (t *sendgridTransport) name() string { return "sendgrid" }

func (t *sendgridTransport) deliver(ctx context.Context, from string, msg Message) error {
	sender, err := mail.ParseAddress(from)
	if err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}

	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail("", to))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(sender.Name, sender.Address))
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.Text),
		sgmail.NewContent("text/html", msg.HTML),
	)
	for _, key := range sortedKeys(msg.Tags) {
		m.AddCategories(key + ":" + msg.Tags[key])
	}

	req := sendgrid.GetRequest(t.key, sendgridEndpoint, t.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded with status %d", res.StatusCode)
	}
	return nil
}

// logTransport writes messages to the log instead of delivering them.
type logTransport struct {
	logger zerolog.Logger
}

func (t *logTransport) name() string { return "log" }

func (t *logTransport) deliver(_ context.Context, from string, msg Message) error {
	t.logger.Info().
		Str("from", from).
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTML)).
		Msg("email delivery skipped, log provider active")
	return nil
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
