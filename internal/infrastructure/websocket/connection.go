package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// WebSocketConnection is one viewer socket. The scheduler and the read loop
// both write to it, so writes are serialised.
type WebSocketConnection struct {
	conn      *websocket.Conn
	viewerID  string
	writeLock sync.Mutex
}

func NewWebSocketConnection(conn *websocket.Conn, viewerID string) *WebSocketConnection {
	return &WebSocketConnection{
		conn:     conn,
		viewerID: viewerID,
	}
}

func (wsc *WebSocketConnection) Send(message interface{}) error {
	wsc.writeLock.Lock()
	defer wsc.writeLock.Unlock()

	wsc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return wsc.conn.WriteJSON(message)
}

func (wsc *WebSocketConnection) Close() error {
	return wsc.conn.Close()
}

func (wsc *WebSocketConnection) ViewerID() string {
	return wsc.viewerID
}
