package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/service"
)

// AnalyticsHandler serves role-scoped rollups as JSON or a CSV download.
type AnalyticsHandler struct {
	Analytics service.AnalyticsService
	Log       zerolog.Logger
}

func NewAnalyticsHandler(a service.AnalyticsService, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{Analytics: a, Log: log}
}

func analyticsQuery(c echo.Context) service.AnalyticsQuery {
	return service.AnalyticsQuery{
		TimeRange: c.QueryParam("timeRange"),
		Role:      c.QueryParam("userRole"),
		UserID:    c.QueryParam("userId"),
	}
}

// Get: GET /analytics?timeRange=&userRole=&userId=
func (h *AnalyticsHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Analytics.Get(ctx, actor(c), analyticsQuery(c))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Export streams the same rollup as an attachment. Only format=csv is
// supported.
func (h *AnalyticsHandler) Export(c echo.Context) error {
	if f := strings.ToLower(c.QueryParam("format")); f != "" && f != "csv" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unsupported format"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Analytics.Get(ctx, actor(c), analyticsQuery(c))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var buf bytes.Buffer
	if err := service.WriteCSV(&buf, r); err != nil {
		return respondError(c, h.Log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", r.Filename()))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
