package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avolkov/blogpulse/internal/logging"
	"github.com/redis/go-redis/v9"
)

// defaultBridgeChannel is the shared Redis channel for cross-instance
// notification events.
const defaultBridgeChannel = "blogpulse:notification:push"

// envelope is the message shape published to Redis so that every instance
// can replay the event into its own local registry.
type envelope struct {
	UserID            string    `json:"user_id"`
	NotificationCount int       `json:"notification_count"`
	SentAt            time.Time `json:"sent_at"`
}

// Bridge connects the local registry to a Redis pub/sub channel. With more
// than one server instance, a user's connections can land on any of them;
// publishing through the bridge reaches them all. Without Redis the gateway
// works in single-instance mode.
type Bridge struct {
	client  *redis.Client
	channel string
	gateway *Gateway
	logger  logging.Logger
}

func NewBridge(client *redis.Client, channel string, gateway *Gateway, logger logging.Logger) *Bridge {
	if channel == "" {
		channel = defaultBridgeChannel
	}
	return &Bridge{
		client:  client,
		channel: channel,
		gateway: gateway,
		logger:  logger.With("module", "realtime_bridge"),
	}
}

// Publish sends the unread-count event to the shared channel. Delivery to
// connections happens when each instance's subscriber replays it locally.
func (b *Bridge) Publish(userID string, count int) {
	payload, err := json.Marshal(envelope{
		UserID:            userID,
		NotificationCount: count,
		SentAt:            time.Now(),
	})
	if err != nil {
		return
	}
	if err := b.client.Publish(context.Background(), b.channel, payload).Err(); err != nil {
		b.logger.Warn(context.Background(), "bridge publish failed", "error", err.Error())
		// Fall back to process-local delivery so a Redis outage does not
		// silence single-instance deployments.
		b.gateway.Publish(userID, count)
	}
}

// Run subscribes to the shared channel and replays every envelope into the
// local gateway until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn(ctx, "bridge received malformed payload")
				continue
			}
			b.gateway.Publish(env.UserID, env.NotificationCount)
		}
	}
}
