package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/service"
)

// WatchlistHandler keeps the per-user saved-for-later list.
type WatchlistHandler struct {
	Watchlist service.WatchlistService
	Log       zerolog.Logger
}

func NewWatchlistHandler(w service.WatchlistService, log zerolog.Logger) *WatchlistHandler {
	return &WatchlistHandler{Watchlist: w, Log: log}
}

type watchlistReq struct {
	UserID  string `json:"userId"`
	VideoID string `json:"videoId" validate:"required"`
}

func (h *WatchlistHandler) List(c echo.Context) error {
	userID, ok := targetUser(c, c.QueryParam("userId"))
	if !ok {
		return forbidden(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Watchlist.List(ctx, userID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"watchlist": items})
}

func (h *WatchlistHandler) Add(c echo.Context) error {
	var req watchlistReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	userID, ok := targetUser(c, req.UserID)
	if !ok {
		return forbidden(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	item, err := h.Watchlist.Add(ctx, userID, req.VideoID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"watchlistItem": item, "message": "Added to watchlist successfully"})
}

// Remove takes userId and videoId from the query string.
func (h *WatchlistHandler) Remove(c echo.Context) error {
	videoID := c.QueryParam("videoId")
	if videoID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Video ID is required"})
	}
	userID, ok := targetUser(c, c.QueryParam("userId"))
	if !ok {
		return forbidden(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Watchlist.Remove(ctx, userID, videoID); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Removed from watchlist successfully"})
}
