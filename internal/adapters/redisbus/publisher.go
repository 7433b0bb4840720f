// Package redisbus mirrors job events onto Redis pub/sub so that processes
// other than the one running the job can follow it.
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultPrefix is prepended to every channel name.
const DefaultPrefix = "automat:events"

// Message is the published form of one event.
type Message struct {
	Session string    `json:"session,omitempty"`
	Event   string    `json:"event"`
	Data    any       `json:"data,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher implements ports.EventSink on top of Redis PUBLISH.
type Publisher struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	logger  logrus.FieldLogger
}

// NewPublisher connects to the Redis server at url (redis://...).
func NewPublisher(url string, logger logrus.FieldLogger) (*Publisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Publisher{
		client:  redis.NewClient(opts),
		prefix:  DefaultPrefix,
		timeout: 2 * time.Second,
		logger:  logger.WithField("component", "redisbus"),
	}, nil
}

// Ping checks connectivity.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Channel is the channel an event for session is published on.
func (p *Publisher) Channel(session string) string {
	if session == "" {
		return p.prefix + ":broadcast"
	}
	return p.prefix + ":" + session
}

// Emit publishes the event. Failures are logged and never reach the job.
func (p *Publisher) Emit(session, event string, payload any) {
	body, err := json.Marshal(Message{Session: session, Event: event, Data: payload, At: time.Now().UTC()})
	if err != nil {
		p.logger.WithError(err).WithField("event", event).Error("failed to marshal event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.Channel(session), body).Err(); err != nil {
		p.logger.WithError(err).WithField("event", event).Warn("failed to publish event")
	}
}

// Close releases the connection pool.
func (p *Publisher) Close() error {
	return p.client.Close()
}
