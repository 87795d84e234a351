// Package realtime pushes matched alerts to connected observers, such as
// live admin dashboards. Delivery is at-most-once, no acknowledgment.
package realtime

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/peacewatch/peacewatch/config"
	"github.com/peacewatch/peacewatch/internal/logger"
	"github.com/peacewatch/peacewatch/internal/models"
)

// Publisher broadcasts alerts to any connected observers
type Publisher interface {
	PublishAlert(alert models.Alert) error
	Close()
}

// AlertMessage is the wire envelope for a pushed alert
type AlertMessage struct {
	Alert     models.Alert `json:"alert"`
	Timestamp time.Time    `json:"timestamp"`
	Source    string       `json:"source"`
}

// NATSPublisher publishes alerts on a NATS subject
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// New connects to NATS when configured, and falls back to a no-op publisher
// otherwise so the pipeline never depends on the push channel being up.
func New(cfg config.RealtimeConfig) (Publisher, error) {
	if cfg.NATSURL == "" {
		logger.Info("NATS_URL not set; realtime push disabled")
		return &NoopPublisher{}, nil
	}
	return NewNATSPublisher(cfg.NATSURL, cfg.Subject)
}

// NewNATSPublisher creates a publisher on the given subject
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: nc, subject: subject}, nil
}

// PublishAlert broadcasts one matched alert
func (p *NATSPublisher) PublishAlert(alert models.Alert) error {
	msg := AlertMessage{
		Alert:     alert,
		Timestamp: time.Now().UTC(),
		Source:    "peacewatch",
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.conn.Publish(p.subject, data)
}

// Close closes the NATS connection
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// NoopPublisher drops all alerts
type NoopPublisher struct{}

func (p *NoopPublisher) PublishAlert(alert models.Alert) error { return nil }
func (p *NoopPublisher) Close()                                {}
