package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisForwarder republishes domain events on a Redis pub/sub channel so
// out-of-process consumers (alerting, reporting) see the same stream.
type RedisForwarder struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisForwarder constructs the forwarder.
func NewRedisForwarder(client *redis.Client, channel string, logger *zap.Logger) *RedisForwarder {
	return &RedisForwarder{client: client, channel: channel, logger: logger}
}

// Register subscribes the forwarder to every event type.
func (f *RedisForwarder) Register(dispatcher Dispatcher) {
	if f.client == nil || dispatcher == nil {
		return
	}
	for _, eventType := range AllEventTypes() {
		dispatcher.Subscribe(eventType, f.handle)
	}
}

func (f *RedisForwarder) handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := f.client.Publish(ctx, f.channel, body).Err(); err != nil {
		f.logger.Warn("failed to forward event to redis",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}
