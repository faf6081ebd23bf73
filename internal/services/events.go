package services

import (
	"context"

	"auction-board/internal/domain"
)

// NopPublisher drops events. It stands in when Redis is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishBidEvent(context.Context, *domain.BidEvent) error {
	return nil
}

// NopBoardCache stands in for the board cache when Redis is disabled.
type NopBoardCache struct{}

func (NopBoardCache) SaveBoard(context.Context, *domain.TickResult) error {
	return nil
}
