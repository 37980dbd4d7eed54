// Package events publishes domain events as JSON over NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/observability"
)

// Event names appended to the configured subject prefix.
const (
	EnrollmentCreated       = "enrollment.created"
	EnrollmentStatusChanged = "enrollment.status_changed"
	PaymentStatusChanged    = "payment.status_changed"
)

// Envelope wraps every published payload.
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Publisher emits domain events. A nil Publisher or one without a connection drops events.
type Publisher struct {
	conn   publisherConn
	prefix string
	logger zerolog.Logger
	now    func() time.Time
}

type publisherConn interface {
	Publish(subject string, data []byte) error
}

// Connect dials NATS at url. An empty url returns a nil connection and no error.
func Connect(url, name string) (*nats.Conn, error) {
	if strings.TrimSpace(url) == "" {
		return nil, nil
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return conn, nil
}

// NewPublisher builds a publisher on top of conn. A nil conn disables publishing.
func NewPublisher(conn *nats.Conn, prefix string, logger zerolog.Logger) *Publisher {
	p := &Publisher{
		prefix: strings.Trim(prefix, "."),
		logger: logger.With().Str("component", "events").Logger(),
		now:    time.Now,
	}
	if conn != nil {
		p.conn = conn
	}
	return p
}

// Enabled reports whether events leave the process.
func (p *Publisher) Enabled() bool {
	return p != nil && p.conn != nil
}

// Subject returns the fully qualified subject for an event name.
func (p *Publisher) Subject(event string) string {
	if p == nil || p.prefix == "" {
		return event
	}
	return p.prefix + "." + event
}

// Publish sends payload under the event's subject. Failures are logged and returned.
func (p *Publisher) Publish(ctx context.Context, event string, payload interface{}) error {
	if !p.Enabled() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := p.Subject(event)
	body, err := json.Marshal(Envelope{
		ID:         uuid.NewString(),
		Type:       event,
		OccurredAt: p.now().UTC(),
		Data:       payload,
	})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event, err)
	}

	if err := p.conn.Publish(subject, body); err != nil {
		observability.EventsPublished().WithLabelValues(event, "error").Inc()
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
		return err
	}

	observability.EventsPublished().WithLabelValues(event, "ok").Inc()
	p.logger.Debug().Str("subject", subject).Msg("event published")
	return nil
}
