package events

import (
	"buzzer/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// SubjectPrefix roots every lifecycle subject: buzzer.rooms.{code}.{kind}
const SubjectPrefix = "buzzer.rooms"

// Kind names a room lifecycle transition
type Kind string

const (
	KindCreated Kind = "created"
	KindEnded   Kind = "ended"
	KindEvicted Kind = "evicted"
)

// RoomEvent is the JSON payload published for a lifecycle transition
type RoomEvent struct {
	Kind     Kind              `json:"kind"`
	RoomCode model.RoomCode    `json:"roomCode"`
	At       time.Time         `json:"at"`
	Result   *model.GameResult `json:"result,omitempty"` // ended only
}

// Subject is where ev is published
func Subject(code model.RoomCode, kind Kind) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, code, kind)
}

// Publisher emits room lifecycle events. Implementations must not block on
// slow consumers.
type Publisher interface {
	Publish(ctx context.Context, ev RoomEvent) error
	Close() error
}

// NATSPublisher publishes on core NATS subjects
type NATSPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewNATSPublisher connects to url and keeps reconnecting for the life of
// the process
func NewNATSPublisher(url string, logger *zap.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := nats.Connect(url,
		nats.Name("buzzer"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, ev RoomEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	subject := Subject(ev.RoomCode, ev.Kind)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	p.logger.Debug("Published room event", zap.String("subject", subject))
	return nil
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NopPublisher discards every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RoomEvent) error { return nil }
func (NopPublisher) Close() error                             { return nil }
