// Package emitter publishes the responses of committed operations so the host
// can execute the planned messages and index the attributes.
package emitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/elys-network/lockdrop/internal/logger"
	"github.com/elys-network/lockdrop/internal/types"
)

const (
	DefaultSubjectPrefix = "lockdrop"
	flushTimeout         = 2 * time.Second
)

var ErrClosed = errors.New("emitter is closed")

// Event is one committed operation.
type Event struct {
	ID       string          `json:"id"`
	Height   uint64          `json:"height"`
	Time     time.Time       `json:"time"`
	Sender   string          `json:"sender"`
	Response *types.Response `json:"response"`
}

type Emitter interface {
	Emit(ctx context.Context, ev Event) error
	Close() error
}

// NATS publishes each event as JSON on <prefix>.<action>.
type NATS struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger
}

func NewNATS(url, prefix string) (*NATS, error) {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	conn, err := nats.Connect(url,
		nats.Name("lockdrop"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	n := &NATS{conn: conn, prefix: strings.TrimSuffix(prefix, "."), logger: logger.GetForComponent("emitter")}
	n.logger.Info().Str("url", conn.ConnectedUrl()).Str("prefix", n.prefix).Msg("NATS emitter connected")
	return n, nil
}

// Subject is the subject events of action are published on.
func (n *NATS) Subject(action string) string {
	return n.prefix + "." + action
}

func (n *NATS) Emit(ctx context.Context, ev Event) error {
	if n.conn.IsClosed() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", ev.ID, err)
	}
	subject := n.Subject(ev.Response.Action)
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	if err := n.conn.FlushTimeout(flushTimeout); err != nil {
		return fmt.Errorf("failed to flush %s: %w", subject, err)
	}
	n.logger.Debug().Str("subject", subject).Str("eventId", ev.ID).Int("messages", len(ev.Response.Messages)).Msg("Event published")
	return nil
}

func (n *NATS) Close() error {
	if n.conn.IsClosed() {
		return nil
	}
	return n.conn.Drain()
}

// Log writes events to the component logger. It is used when no broker is configured.
type Log struct {
	logger zerolog.Logger
}

func NewLog() *Log {
	return &Log{logger: logger.GetForComponent("emitter")}
}

func (l *Log) Emit(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev.Response)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", ev.ID, err)
	}
	l.logger.Info().
		Str("eventId", ev.ID).
		Uint64("height", ev.Height).
		Str("sender", ev.Sender).
		RawJSON("response", data).
		Msg("Operation committed")
	return nil
}

func (l *Log) Close() error { return nil }
