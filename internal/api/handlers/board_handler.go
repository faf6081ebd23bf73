package handlers

import (
	"errors"
	"net/http"
	"time"

	"auction-board/internal/domain"
	"auction-board/internal/services"
	"auction-board/pkg/format"
	"auction-board/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type BoardHandler struct {
	bidService *services.BidService
	engine     *services.Engine
	archive    domain.BidRepository
	now        func() time.Time
	log        logger.Logger
}

type PlaceBidRequest struct {
	Bidder string `json:"bidder"`
	Amount string `json:"amount"`
}

type BidRejectedResponse struct {
	Error        string          `json:"error"`
	Reason       string          `json:"reason"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

type HistoryEntry struct {
	ID         string          `json:"id"`
	Bidder     string          `json:"bidder"`
	Amount     decimal.Decimal `json:"amount"`
	AmountText string          `json:"amount_text"`
	Time       time.Time       `json:"time"`
}

func NewBoardHandler(bidService *services.BidService, engine *services.Engine, log logger.Logger) *BoardHandler {
	return &BoardHandler{
		bidService: bidService,
		engine:     engine,
		now:        time.Now,
		log:        log,
	}
}

func (h *BoardHandler) SetClock(now func() time.Time) {
	h.now = now
}

// SetArchive enables the archived history route, backed by repo.
func (h *BoardHandler) SetArchive(repo domain.BidRepository) {
	h.archive = repo
}

// Register mounts the board routes on g.
func (h *BoardHandler) Register(g *echo.Group) {
	g.GET("/items", h.ListItems)
	g.GET("/items/:name", h.GetItem)
	g.GET("/items/:name/history", h.GetHistory)
	g.GET("/items/:name/archive", h.GetArchive)
	g.POST("/items/:name/bids", h.PlaceBid)
	g.GET("/items/:name/quick-bid", h.QuickBid)
	g.GET("/board", h.GetBoard)
}

func (h *BoardHandler) ListItems(c echo.Context) error {
	items := h.bidService.ListItems()
	views := make([]services.ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, h.bidService.NewItemView(item))
	}
	return c.JSON(http.StatusOK, views)
}

func (h *BoardHandler) GetItem(c echo.Context) error {
	item, err := h.bidService.GetItem(c.Param("name"))
	if err != nil {
		return h.rejection(c, err)
	}
	return c.JSON(http.StatusOK, h.bidService.NewItemView(item))
}

func (h *BoardHandler) GetHistory(c echo.Context) error {
	history, err := h.bidService.GetHistory(c.Param("name"))
	if err != nil {
		return h.rejection(c, err)
	}

	entries := make([]HistoryEntry, 0, len(history))
	for _, bid := range history {
		entries = append(entries, HistoryEntry{
			ID:         bid.ID,
			Bidder:     bid.Bidder,
			Amount:     bid.Amount,
			AmountText: format.Price(bid.Amount),
			Time:       bid.Time,
		})
	}
	return c.JSON(http.StatusOK, entries)
}

// GetArchive lists the bids the archiver stored for an item. It survives
// restarts, unlike GetHistory.
func (h *BoardHandler) GetArchive(c echo.Context) error {
	if h.archive == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "bid archive is disabled"})
	}

	itemName := c.Param("name")
	if _, err := h.bidService.GetItem(itemName); err != nil {
		return h.rejection(c, err)
	}

	events, err := h.archive.GetBidHistory(c.Request().Context(), itemName)
	if err != nil {
		h.log.Error("Failed to read bid archive", "item", itemName, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to read bid archive"})
	}

	entries := make([]HistoryEntry, 0, len(events))
	for _, event := range events {
		entries = append(entries, HistoryEntry{
			ID:         event.ID,
			Bidder:     event.Bidder,
			Amount:     event.Amount,
			AmountText: format.Price(event.Amount),
			Time:       event.Timestamp,
		})
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *BoardHandler) PlaceBid(c echo.Context) error {
	itemName := c.Param("name")

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	accepted, err := h.bidService.SubmitBid(c.Request().Context(), itemName, req.Bidder, req.Amount)
	if err != nil {
		return h.rejection(c, err)
	}

	return c.JSON(http.StatusCreated, accepted)
}

func (h *BoardHandler) QuickBid(c echo.Context) error {
	increment, err := services.ParseAmount(c.QueryParam("increment"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "increment must be a number"})
	}

	suggested, err := h.bidService.SuggestBid(c.Param("name"), increment)
	if errors.Is(err, domain.ErrInvalidIncrement) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err != nil {
		return h.rejection(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"item":             c.Param("name"),
		"suggested_amount": suggested,
	})
}

func (h *BoardHandler) GetBoard(c echo.Context) error {
	return c.JSON(http.StatusOK, services.BoardViews(h.engine.Snapshot(h.now())))
}

func (h *BoardHandler) rejection(c echo.Context, err error) error {
	var rejected *domain.BidRejectedError
	if !errors.As(err, &rejected) {
		h.log.Error("Request failed", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(statusFor(rejected.Reason), BidRejectedResponse{
		Error:        rejected.Message,
		Reason:       string(rejected.Reason),
		CurrentPrice: rejected.CurrentPrice,
	})
}

func statusFor(reason domain.RejectReason) int {
	switch reason {
	case domain.MissingField, domain.NotANumber:
		return http.StatusBadRequest
	case domain.InvalidItem:
		return http.StatusNotFound
	case domain.AuctionClosed:
		return http.StatusConflict
	case domain.BidTooLow:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
