package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"football-app-go/logging"

	"github.com/nats-io/nats.go"
)

// Subjects published by the application, relative to the configured prefix
const (
	SubjectMatchScored     = "matches.scored"
	SubjectPredictionSaved = "predictions.saved"
	SubjectMemberJoined    = "groups.member_joined"
	SubjectSeasonCurrent   = "seasons.current_changed"
)

// Publisher delivers domain events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
	Close() error
}

// Envelope wraps every published payload
type Envelope struct {
	Subject    string      `json:"subject"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Config holds NATS connection settings
type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// NATSPublisher publishes JSON envelopes on core NATS subjects
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *logging.Logger
}

// NewNATSPublisher connects to NATS and returns a publisher
func NewNATSPublisher(config Config) (*NATSPublisher, error) {
	logger := logging.WithPrefix("Events")

	if config.MaxReconnects == 0 {
		config.MaxReconnects = -1
	}
	if config.ReconnectWait == 0 {
		config.ReconnectWait = 2 * time.Second
	}

	opts := []nats.Option{
		nats.Name("football-app-go"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warnf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Errorf("NATS error: %v", err)
		}),
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Infof("Connected to NATS at %s", conn.ConnectedUrl())

	return &NATSPublisher{
		conn:   conn,
		prefix: config.SubjectPrefix,
		logger: logger,
	}, nil
}

// Publish marshals the payload into an envelope and publishes it
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full := FullSubject(p.prefix, subject)
	data, err := json.Marshal(Envelope{Subject: full, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", full, err)
	}
	if err := p.conn.Publish(full, data); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", full, err)
	}

	p.logger.Debugf("Published %s (%d bytes)", full, len(data))
	return nil
}

// Close drains the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// FullSubject joins the prefix and subject with a dot
func FullSubject(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}

// NopPublisher discards every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                      { return nil }

var (
	_ Publisher = (*NATSPublisher)(nil)
	_ Publisher = NopPublisher{}
)
