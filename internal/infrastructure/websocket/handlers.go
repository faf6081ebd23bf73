package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"auction-board/internal/domain"
	"auction-board/internal/services"
	"auction-board/pkg/logger"

	"github.com/gorilla/websocket"
)

const maxMessageSize = 4096

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

type inboundMessage struct {
	Type      string          `json:"type"`
	Item      string          `json:"item"`
	Bidder    string          `json:"bidder"`
	Amount    json.RawMessage `json:"amount"`
	Increment json.RawMessage `json:"increment"`
}

type WebSocketHandler struct {
	bidService  *services.BidService
	engine      *services.Engine
	connManager domain.ConnectionManager
	now         func() time.Time
	log         logger.Logger
}

func NewWebSocketHandler(bidService *services.BidService, engine *services.Engine,
	connManager domain.ConnectionManager, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		bidService:  bidService,
		engine:      engine,
		connManager: connManager,
		now:         time.Now,
		log:         log,
	}
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	viewerID := r.URL.Query().Get("viewer_id")
	if viewerID == "" {
		http.Error(w, "viewer_id required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	wsConn := NewWebSocketConnection(conn, viewerID)

	// Register connection
	if err := h.connManager.RegisterConnection(viewerID, wsConn); err != nil {
		h.log.Error("Failed to register connection", "error", err)
		conn.Close()
		return
	}

	// New viewers see the board immediately instead of waiting for the next tick.
	if err := wsConn.Send(services.BoardUpdateMessage(h.engine.Snapshot(h.now()))); err != nil {
		h.log.Error("Failed to send initial board", "viewer_id", viewerID, "error", err)
	}

	go h.handleMessages(wsConn, viewerID)
}

// handleMessages owns the read side of conn. Work started for the viewer runs
// under a context that ends with the connection.
func (h *WebSocketHandler) handleMessages(conn *WebSocketConnection, viewerID string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.connManager.UnregisterConnection(viewerID, conn)
		conn.Close()
	}()

	for {
		var msg inboundMessage
		if err := conn.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Error("Failed to read message", "viewer_id", viewerID, "error", err)
			}
			return
		}

		switch msg.Type {
		case "place_bid":
			h.handleBidMessage(ctx, conn, msg)
		case "history":
			h.handleHistoryMessage(conn, msg)
		case "quick_bid":
			h.handleQuickBidMessage(conn, msg)
		case "ping":
			conn.Send(map[string]string{"type": "pong"})
		default:
			conn.Send(map[string]string{"type": "error", "message": "unknown message type"})
		}
	}
}

func (h *WebSocketHandler) handleBidMessage(ctx context.Context, conn *WebSocketConnection, msg inboundMessage) {
	accepted, err := h.bidService.SubmitBid(ctx, msg.Item, msg.Bidder, rawText(msg.Amount))
	if err != nil {
		var rejected *domain.BidRejectedError
		if errors.As(err, &rejected) {
			conn.Send(map[string]interface{}{
				"type":          "bid_rejected",
				"item":          msg.Item,
				"reason":        rejected.Reason,
				"message":       rejected.Message,
				"current_price": rejected.CurrentPrice,
			})
			return
		}
		h.log.Error("Failed to place bid", "error", err)
		conn.Send(map[string]string{"type": "error", "message": "failed to place bid"})
		return
	}

	h.log.Debug("Bid placed over websocket", "viewer_id", conn.ViewerID(), "item", accepted.ItemName)
}

func (h *WebSocketHandler) handleHistoryMessage(conn *WebSocketConnection, msg inboundMessage) {
	history, err := h.bidService.GetHistory(msg.Item)
	if err != nil {
		conn.Send(map[string]string{"type": "error", "message": err.Error()})
		return
	}

	conn.Send(map[string]interface{}{
		"type": "history",
		"item": msg.Item,
		"bids": history,
	})
}

func (h *WebSocketHandler) handleQuickBidMessage(conn *WebSocketConnection, msg inboundMessage) {
	increment, err := services.ParseAmount(rawText(msg.Increment))
	if err != nil {
		conn.Send(map[string]string{"type": "error", "message": "invalid increment"})
		return
	}

	suggested, err := h.bidService.SuggestBid(msg.Item, increment)
	if err != nil {
		conn.Send(map[string]string{"type": "error", "message": err.Error()})
		return
	}

	conn.Send(map[string]interface{}{
		"type":             "quick_bid",
		"item":             msg.Item,
		"suggested_amount": suggested,
	})
}

// rawText accepts either a JSON string or a bare JSON number.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}
