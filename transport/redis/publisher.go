package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/memoicons-backend/internal/entity"
)

const defaultBuffer = 256

type envelope struct {
	channel string
	event   entity.Event
}

// Publisher forwards engine events to redis pub/sub, one channel per session,
// so out-of-process listeners can follow a game without touching the engine.
type Publisher struct {
	logger *slog.Logger
	client *redis.Client
	prefix string
	queue  chan envelope
}

func NewPublisher(logger *slog.Logger, client *redis.Client, prefix string, buffer int) *Publisher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	return &Publisher{
		logger: logger.With("component", "redis-publisher"),
		client: client,
		prefix: prefix,
		queue:  make(chan envelope, buffer),
	}
}

// Channel - pub/sub channel carrying the events of sessionID.
func (that *Publisher) Channel(sessionID string) string {
	return that.prefix + ":" + sessionID
}

// Publish queues the event without blocking; it is dropped when the queue is full.
func (that *Publisher) Publish(sessionID string, event entity.Event) {
	select {
	case that.queue <- envelope{channel: that.Channel(sessionID), event: event}:
	default:
		that.logger.Warn("event queue full, dropping event", "sessionID", sessionID, "event", event.EventType())
	}
}

// Run drains the queue into redis until ctx is cancelled.
func (that *Publisher) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	for {
		select {
		case <-ctx.Done():
			log.Info("publisher stopped", "pending", len(that.queue))
			return
		case item := <-that.queue:
			if err := that.publish(ctx, item); err != nil {
				log.Error("failed to publish event", "channel", item.channel, "error", err)
			}
		}
	}
}

func (that *Publisher) publish(ctx context.Context, item envelope) error {
	message, err := entity.MarshalEvent(item.event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err = that.client.Publish(ctx, item.channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", item.channel, err)
	}

	return nil
}
