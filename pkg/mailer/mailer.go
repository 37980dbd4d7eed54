// Package mailer renders transactional templates and delivers them through
// Resend, SendGrid or the application log.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/cubis-academy-api/internal/config"
	"github.com/noah-isme/cubis-academy-api/internal/observability"
)

// ErrNoRecipients indicates a message without any destination address.
var ErrNoRecipients = errors.New("email has no recipients")

// Message is a rendered email ready for delivery.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	Tags    map[string]string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	SendTemplate(ctx context.Context, to []string, name string, data interface{}) error
	Provider() string
}

// transport performs the provider-specific delivery.
type transport interface {
	name() string
	deliver(ctx context.Context, from string, msg Message) error
}

type mailer struct {
	transport transport
	from      string
	templates *Templates
	plain     *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// New builds the mailer for the configured provider.
func New(cfg config.EmailConfig, logger zerolog.Logger) (Mailer, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	logger = logger.With().Str("component", "mailer").Logger()

	var t transport
	switch cfg.Provider {
	case config.EmailResend:
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend api key must be provided")
		}
		t = newResendTransport(cfg.ResendAPIKey, "")
	case config.EmailSendgrid:
		if cfg.SendgridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid api key must be provided")
		}
		t = newSendgridTransport(cfg.SendgridAPIKey, "")
	case config.EmailLog, "":
		t = &logTransport{logger: logger}
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Provider)
	}

	return newMailer(t, formatFrom(cfg.FromName, cfg.From), templates, logger), nil
}

func newMailer(t transport, from string, templates *Templates, logger zerolog.Logger) *mailer {
	return &mailer{
		transport: t,
		from:      from,
		templates: templates,
		plain:     bluemonday.StrictPolicy(),
		logger:    logger,
		tracer:    otel.Tracer("github.com/noah-isme/cubis-academy-api/pkg/mailer"),
	}
}

func (m *mailer) Provider() string {
	return m.transport.name()
}

func (m *mailer) Send(ctx context.Context, msg Message) error {
	ctx, span := m.tracer.Start(ctx, "email.send", trace.WithAttributes(
		attribute.String("email.provider", m.transport.name()),
		attribute.Int("email.recipients", len(msg.To)),
	))
	defer span.End()

	if len(msg.To) == 0 {
		span.SetStatus(codes.Error, "no recipients")
		return ErrNoRecipients
	}
	if msg.Text == "" && msg.HTML != "" {
		msg.Text = m.toPlainText(msg.HTML)
	}

	if err := m.transport.deliver(ctx, m.from, msg); err != nil {
		observability.EmailDeliveries().WithLabelValues(m.transport.name(), "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		return fmt.Errorf("deliver email via %s: %w", m.transport.name(), err)
	}

	observability.EmailDeliveries().WithLabelValues(m.transport.name(), "ok").Inc()
	span.SetStatus(codes.Ok, "delivered")
	return nil
}

func (m *mailer) SendTemplate(ctx context.Context, to []string, name string, data interface{}) error {
	rendered, err := m.templates.Render(name, data)
	if err != nil {
		return err
	}
	rendered.To = to
	return m.Send(ctx, rendered)
}

func (m *mailer) toPlainText(html string) string {
	text := m.plain.Sanitize(html)
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

func formatFrom(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
