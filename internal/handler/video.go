package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/middleware"
	"github.com/iliyamo/regional-streaming/internal/service"
)

// VideoHandler serves the public catalogue and viewer activity on it.
type VideoHandler struct {
	Catalog service.CatalogService
	Log     zerolog.Logger
}

func NewVideoHandler(catalog service.CatalogService, log zerolog.Logger) *VideoHandler {
	return &VideoHandler{Catalog: catalog, Log: log}
}

type watchReq struct {
	WatchTime int `json:"watchTime" validate:"gte=0"`
}
type reviewReq struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// List returns one page of approved public videos:
// GET /videos?category=&language=&search=&trending=&limit=&offset=
func (h *VideoHandler) List(c echo.Context) error {
	var q service.FeedQuery
	err := echo.QueryParamsBinder(c).
		String("category", &q.Category).
		String("language", &q.Language).
		String("search", &q.Search).
		Bool("trending", &q.Trending).
		Int("limit", &q.Limit).
		Int("offset", &q.Offset).
		BindError()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid query parameters"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	feed, err := h.Catalog.List(ctx, q)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, feed)
}

// Get returns one approved video.
func (h *VideoHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Catalog.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"video": v})
}

// Watch records a viewing of the video by the caller.
func (h *VideoHandler) Watch(c echo.Context) error {
	var req watchReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	entry, err := h.Catalog.RecordWatch(ctx, middleware.UserID(c), c.Param("id"), req.WatchTime)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"history": entry})
}

// Review rates the video once per user.
func (h *VideoHandler) Review(c echo.Context) error {
	var req reviewReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Catalog.Review(ctx, middleware.UserID(c), c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"review": r, "message": "Review added successfully"})
}
