package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/pkg/events"
	"github.com/noah-isme/cubis-academy-api/pkg/mailer"
)

// Notifier delivers transactional email and domain events. Delivery problems
// are logged and never fail the request that triggered them.
type Notifier struct {
	mailer    mailer.Mailer
	publisher *events.Publisher
	logger    zerolog.Logger
}

// NewNotifier builds a notifier. Either dependency may be nil.
func NewNotifier(m mailer.Mailer, publisher *events.Publisher, logger zerolog.Logger) *Notifier {
	return &Notifier{
		mailer:    m,
		publisher: publisher,
		logger:    logger.With().Str("component", "notifier").Logger(),
	}
}

// Email renders and sends a template to a single recipient.
func (n *Notifier) Email(ctx context.Context, to, template string, data interface{}) {
	if n == nil || n.mailer == nil || to == "" {
		return
	}
	if err := n.mailer.SendTemplate(ctx, []string{to}, template, data); err != nil {
		n.logger.Warn().Err(err).Str("template", template).Msg("email delivery failed")
	}
}

// Publish emits a domain event.
func (n *Notifier) Publish(ctx context.Context, event string, payload interface{}) {
	if n == nil || n.publisher == nil {
		return
	}
	if err := n.publisher.Publish(ctx, event, payload); err != nil {
		n.logger.Warn().Err(err).Str("event", event).Msg("event publish failed")
	}
}
