package redis

import (
	"context"
	"fmt"
	"strconv"

	"auction-board/internal/domain"

	"github.com/go-redis/redis/v8"
)

type RedisBoardCache struct {
	client *redis.Client
}

func NewRedisBoardCache(client *redis.Client) *RedisBoardCache {
	return &RedisBoardCache{client: client}
}

func boardKey(itemName string) string {
	return fmt.Sprintf("board:item:%s", itemName)
}

// SaveBoard writes every item display of result in one pipeline.
func (r *RedisBoardCache) SaveBoard(ctx context.Context, result *domain.TickResult) error {
	pipe := r.client.Pipeline()
	for _, name := range result.Order {
		display := result.Items[name]
		pipe.HSet(ctx, boardKey(name),
			"current_price", display.CurrentPrice.String(),
			"highest_bidder", display.HighestBidder,
			"time_remaining", strconv.FormatInt(display.TimeRemainingSeconds, 10),
			"progress", strconv.FormatFloat(display.ProgressFraction, 'f', -1, 64),
			"active", strconv.FormatBool(display.Active),
		)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}
