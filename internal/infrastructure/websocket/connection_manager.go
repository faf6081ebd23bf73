package websocket

import (
	"encoding/json"
	"sync"

	"auction-board/internal/domain"
	"auction-board/pkg/logger"
)

type ConnectionManager struct {
	viewers map[string][]domain.WebSocketConnection // viewerID -> connections
	mutex   sync.RWMutex
	log     logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		viewers: make(map[string][]domain.WebSocketConnection),
		log:     log,
	}
}

func (cm *ConnectionManager) RegisterConnection(viewerID string, conn domain.WebSocketConnection) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	cm.viewers[viewerID] = append(cm.viewers[viewerID], conn)

	cm.log.Info("Connection registered", "viewer_id", viewerID)
	return nil
}

func (cm *ConnectionManager) UnregisterConnection(viewerID string, conn domain.WebSocketConnection) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if viewerConns, exists := cm.viewers[viewerID]; exists {
		var newConns []domain.WebSocketConnection
		for _, existingConn := range viewerConns {
			if existingConn != conn {
				newConns = append(newConns, existingConn)
			}
		}

		if len(newConns) == 0 {
			delete(cm.viewers, viewerID)
		} else {
			cm.viewers[viewerID] = newConns
		}
	}

	cm.log.Info("Connection unregistered", "viewer_id", viewerID)
	return nil
}

func (cm *ConnectionManager) CloseAll() error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	for viewerID, conns := range cm.viewers {
		for _, conn := range conns {
			if err := conn.Close(); err != nil {
				cm.log.Error("Failed to close connection", "viewer_id", viewerID, "error", err)
			}
		}
	}
	cm.viewers = make(map[string][]domain.WebSocketConnection)

	cm.log.Info("All board connections closed")
	return nil
}

func (cm *ConnectionManager) GetConnections() []domain.WebSocketConnection {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	var connections []domain.WebSocketConnection
	for _, conns := range cm.viewers {
		connections = append(connections, conns...)
	}
	return connections
}

func (cm *ConnectionManager) BroadcastToBoard(message interface{}) error {
	connections := cm.GetConnections()
	if len(connections) == 0 {
		return nil
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	for _, conn := range connections {
		if err := conn.Send(json.RawMessage(messageBytes)); err != nil {
			cm.log.Error("Failed to send message", "viewer_id", conn.ViewerID(), "error", err)
			// Continue to other connections
		}
	}

	return nil
}
