package redis

import (
	"context"
	"encoding/json"

	"auction-board/internal/domain"

	"github.com/go-redis/redis/v8"
)

const eventsChannel = "auction_events"

type RedisEventPublisher struct {
	client *redis.Client
}

func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{client: client}
}

// PublishBidEvent sends event as JSON. Bidder names are free text, so a
// delimited payload is not safe here.
func (r *RedisEventPublisher) PublishBidEvent(ctx context.Context, event *domain.BidEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, eventsChannel, eventData).Err()
}
