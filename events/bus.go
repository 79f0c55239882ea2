package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ErrBusClosed is returned when publishing to or consuming from a closed bus.
var ErrBusClosed = errors.New("event bus closed")

// Bus is an in-process Publisher backed by a watermill go channel.
type Bus struct {
	pubSub      *gochannel.GoChannel
	maxAttempts int
	logger      *slog.Logger
}

var _ Publisher = (*Bus)(nil)

// BusOption configures a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	buffer      int64
	maxAttempts int
	logger      *slog.Logger
}

// WithBuffer sets the per-subscriber output buffer. Default is 64.
func WithBuffer(size int64) BusOption {
	return func(c *busConfig) {
		c.buffer = size
	}
}

// WithMaxAttempts sets how many times a handler sees one event before it is dropped.
// Default is 3.
func WithMaxAttempts(n int) BusOption {
	return func(c *busConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BusOption {
	return func(c *busConfig) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewBus creates an in-process event bus.
func NewBus(opts ...BusOption) *Bus {
	cfg := &busConfig{buffer: 64, maxAttempts: 3, logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: cfg.buffer},
		watermill.NewSlogLogger(cfg.logger),
	)
	return &Bus{
		pubSub:      pubSub,
		maxAttempts: cfg.maxAttempts,
		logger:      cfg.logger.With("component", "events"),
	}
}

// Publish encodes event as JSON and sends it on Topic.
func (b *Bus) Publish(_ context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", string(event.Type))
	if err := b.pubSub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrBusClosed, err)
	}
	return nil
}

// Consume delivers every event published after the call to handle until ctx is done.
// A handler error nacks the message so it is redelivered, up to the bus's
// attempt limit; after that the event is logged and dropped.
func (b *Bus) Consume(ctx context.Context, handle func(Event) error) error {
	messages, err := b.pubSub.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBusClosed, err)
	}

	go func() {
		attempts := make(map[string]int)
		for msg := range messages {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.logger.Error("dropping malformed event", "uuid", msg.UUID, "err", err)
				msg.Ack()
				continue
			}
			if err := handle(event); err != nil {
				attempts[msg.UUID]++
				if attempts[msg.UUID] < b.maxAttempts {
					b.logger.Warn("event handler failed", "type", event.Type, "attempt", attempts[msg.UUID], "err", err)
					msg.Nack()
					continue
				}
				b.logger.Error("dropping event after repeated handler failures",
					"type", event.Type, "uuid", msg.UUID, "attempts", attempts[msg.UUID], "err", err)
			}
			delete(attempts, msg.UUID)
			msg.Ack()
		}
	}()
	return nil
}

// Close stops the bus and closes every subscription.
func (b *Bus) Close() error {
	return b.pubSub.Close()
}

// LogEvents logs every event on the bus at info level until ctx is done.
func LogEvents(ctx context.Context, bus *Bus, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	return bus.Consume(ctx, func(e Event) error {
		logger.Info("session event", "type", e.Type, "session", e.SessionId, "fields", e.Fields)
		return nil
	})
}
