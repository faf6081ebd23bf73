package domain

import (
	"context"
)

// Repository interfaces
type BidRepository interface {
	SaveBidEvent(ctx context.Context, event *BidEvent) error
	GetBidHistory(ctx context.Context, itemName string) ([]*BidEvent, error)
}

// Cache interfaces
type BoardCache interface {
	SaveBoard(ctx context.Context, result *TickResult) error
}

// Event interfaces
type EventPublisher interface {
	PublishBidEvent(ctx context.Context, event *BidEvent) error
}

type EventSubscriber interface {
	SubscribeToBidEvents(ctx context.Context, handler EventHandler) error
}

type EventHandler func(event *BidEvent) error

// Notification interfaces
type BoardBroadcaster interface {
	BroadcastToBoard(ctx context.Context, message interface{}) error
}

// WebSocket interfaces
type WebSocketConnection interface {
	Send(message interface{}) error
	Close() error
	ViewerID() string
}

type ConnectionManager interface {
	RegisterConnection(viewerID string, conn WebSocketConnection) error
	UnregisterConnection(viewerID string, conn WebSocketConnection) error
	GetConnections() []WebSocketConnection
	BroadcastToBoard(message interface{}) error
	CloseAll() error
}

// Leader election interface. The context BecomeLeader returns on success is
// done once the lease is lost or ctx ends.
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (context.Context, bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}
