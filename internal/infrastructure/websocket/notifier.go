package websocket

import (
	"context"

	"auction-board/internal/domain"
)

type WebSocketNotifier struct {
	connManager domain.ConnectionManager
}

func NewWebSocketNotifier(connManager domain.ConnectionManager) *WebSocketNotifier {
	return &WebSocketNotifier{connManager: connManager}
}

func (n *WebSocketNotifier) BroadcastToBoard(ctx context.Context, message interface{}) error {
	return n.connManager.BroadcastToBoard(message)
}
