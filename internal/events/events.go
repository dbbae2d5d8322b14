// Package events publishes engagement changes to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event types, also the last subject token.
const (
	TypeFavourite   = "favourite"
	TypeUnfavourite = "unfavourite"
	TypeRating      = "rating"
	TypeHighlight   = "highlight"
	TypeBookmark    = "bookmark"
	TypeComment     = "comment"
)

// Event is the JSON message sent for one engagement change.
type Event struct {
	Type      string    `json:"type"`
	ArticleID string    `json:"article_id"`
	UserID    int64     `json:"user_id"`
	State     string    `json:"state,omitempty"`
	Value     *int      `json:"value,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Noop drops every event. It is used when NATS is not configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

type conn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes events on "<prefix>.<type>".
type NATSPublisher struct {
	conn   conn
	nc     *nats.Conn
	prefix string
	logger *zap.SugaredLogger
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url, prefix string, logger *zap.SugaredLogger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("speaksfer"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warnw("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Infow("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &NATSPublisher{conn: nc, nc: nc, prefix: prefix, logger: logger}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(e.Type), data); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Type, err)
	}
	p.logger.Debugw("published event", "type", e.Type, "article", e.ArticleID, "user", e.UserID)

	return nil
}

// Subject returns the subject events of type t are published on.
func (p *NATSPublisher) Subject(t string) string {
	if p.prefix == "" {
		return t
	}

	return p.prefix + "." + t
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

// Emit publishes e and logs a failure instead of returning it. Handlers use
// it after the change is already committed.
func Emit(ctx context.Context, p Publisher, logger *zap.SugaredLogger, e Event) {
	if err := p.Publish(ctx, e); err != nil {
		logger.Warnw("event not published", "type", e.Type, "article", e.ArticleID, "error", err)
	}
}

// IntValue returns a pointer to v for Event.Value.
func IntValue(v int) *int {
	return &v
}
