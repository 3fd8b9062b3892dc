package eventstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"starsbot/events"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// DefaultPrefix is prepended to every subject
const DefaultPrefix = "starsbot"

// Publisher is the part of a NATS connection the mirror needs. *nats.Conn
// satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Envelope wraps every mirrored event
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// Mirror republishes committed domain events on NATS for consumers outside
// the bot, such as analytics or an audit log
type Mirror struct {
	publisher Publisher
	prefix    string
	now       func() time.Time
}

func NewMirror(publisher Publisher, prefix string) *Mirror {
	return &Mirror{
		publisher: publisher,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Subscribe mirrors every known event type from bus
func (m *Mirror) Subscribe(bus *events.Bus) {
	for _, eventType := range EventTypes() {
		bus.Subscribe(eventType, m.handle)
	}
}

func (m *Mirror) handle(_ context.Context, event events.Event) {
	if err := m.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to mirror event")
	}
}

// Publish sends one event. Delivery is at most once; the ledger in Postgres
// stays the source of truth.
func (m *Mirror) Publish(event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := Envelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     m.now().UTC(),
		SourceService: "starsbot",
		Payload:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := Subject(m.prefix, event.Type())
	if err := m.publisher.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Mirrored event to NATS")
	return nil
}

// Connect opens a NATS connection that reconnects on its own
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("starsbot"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.WithField("url", url).Info("Connected to NATS")
	return nc, nil
}
