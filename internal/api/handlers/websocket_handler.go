package handlers

import (
	"net/http"

	"auction-board/internal/domain"
	"auction-board/internal/infrastructure/websocket"
	"auction-board/internal/services"
	"auction-board/pkg/logger"

	"github.com/labstack/echo/v4"
)

type WebSocketHandlers struct {
	wsHandler *websocket.WebSocketHandler
}

func NewWebSocketHandlers(bidService *services.BidService, engine *services.Engine,
	connManager domain.ConnectionManager, log logger.Logger) *WebSocketHandlers {
	wsHandler := websocket.NewWebSocketHandler(bidService, engine, connManager, log)
	return &WebSocketHandlers{
		wsHandler: wsHandler,
	}
}

func (h *WebSocketHandlers) HandleConnection(w http.ResponseWriter, r *http.Request) {
	h.wsHandler.HandleConnection(w, r)
}

// Echo adapts HandleConnection to an echo route.
func (h *WebSocketHandlers) Echo() echo.HandlerFunc {
	return echo.WrapHandler(http.HandlerFunc(h.HandleConnection))
}
