package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"student-analyzer/internal/domain"
	"student-analyzer/internal/logger"
)

// EventBus fans change events out over Redis pub/sub, one channel per user,
// so every instance serving that user's feeds sees them.
type EventBus struct {
	client *redis.Client
	buffer int
	log    zerolog.Logger
}

func NewEventBus(client *redis.Client) *EventBus {
	return &EventBus{
		client: client,
		buffer: 16,
		log:    logger.Get().With().Str("component", "event_bus").Logger(),
	}
}

func (b *EventBus) Publish(ctx context.Context, event domain.ChangeEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return b.client.Publish(ctx, b.channel(event.UserID), raw).Err()
}

// Subscribe returns once Redis has confirmed the subscription. The caller
// must invoke cancel to release the connection.
func (b *EventBus) Subscribe(ctx context.Context, userID string) (<-chan domain.ChangeEvent, func(), error) {
	pubsub := b.client.Subscribe(ctx, b.channel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan domain.ChangeEvent, b.buffer)
	msgs := pubsub.Channel()
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev domain.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn().Err(err).Str("channel", msg.Channel).Msg("drop malformed event")
				continue
			}
			select {
			case out <- ev:
			default:
				select {
				case <-out:
				default:
				}
				out <- ev
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() { _ = pubsub.Close() })
	}
	return out, cancel, nil
}

func (b *EventBus) channel(userID string) string {
	return "social:" + userID
}
