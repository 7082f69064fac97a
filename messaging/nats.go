package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// SubjectCheckinCompleted carries one message per successful check-in.
const SubjectCheckinCompleted = "museum.checkin.completed"

// KindEventParticipant is the Kind of check-ins made against an event
// registration. Visitor check-ins use the visitor type.
const KindEventParticipant = "event_participant"

type CheckinMessage struct {
	VisitorID      string    `json:"visitor_id"`
	RegistrationID string    `json:"registration_id,omitempty"`
	Kind           string    `json:"kind"`
	CheckedInAt    time.Time `json:"checked_in_at"`
}

type Publisher interface {
	PublishCheckin(ctx context.Context, msg CheckinMessage) error
	Close()
}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
	Close()
}

type natsPublisher struct {
	conn   conn
	logger *zap.Logger
}

func NewNATSPublisher(url string, logger *zap.Logger) (Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("museum-backend"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("disconnected from NATS", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("reconnected to NATS", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("connected to NATS", zap.String("url", url))
	return newPublisher(nc, logger), nil
}

func newPublisher(c conn, logger *zap.Logger) *natsPublisher {
	return &natsPublisher{
		conn:   c,
		logger: logger,
	}
}

func (p *natsPublisher) PublishCheckin(ctx context.Context, msg CheckinMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("failed to marshal check-in message", zap.Error(err))
		return fmt.Errorf("failed to marshal check-in message: %w", err)
	}

	if err := p.conn.Publish(SubjectCheckinCompleted, data); err != nil {
		p.logger.Error("failed to publish check-in", zap.Error(err), zap.String("visitor_id", msg.VisitorID))
		return fmt.Errorf("failed to publish check-in: %w", err)
	}

	p.logger.Debug("check-in published", zap.String("visitor_id", msg.VisitorID), zap.String("kind", msg.Kind))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
		p.logger.Info("NATS connection closed")
	}
}

// NoopPublisher drops every message. Used when no NATS server is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishCheckin(context.Context, CheckinMessage) error { return nil }

func (NoopPublisher) Close() {}
