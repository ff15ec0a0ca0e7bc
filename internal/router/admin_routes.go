package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/regional-streaming/internal/handler"
	"github.com/iliyamo/regional-streaming/internal/middleware"
	"github.com/iliyamo/regional-streaming/internal/model"
)

// RegisterCreator registers the upload endpoint. CREATOR and ADMIN may
// submit videos.
func RegisterCreator(api *echo.Group, h *handler.CreatorHandler, jwtSecret string) {
	g := api.Group(
		"/creator",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCreator, model.RoleAdmin),
	)
	g.POST("/upload", h.Upload)
}

// RegisterAdmin registers moderation and account administration. All
// routes require a valid JWT and the ADMIN role.
func RegisterAdmin(api *echo.Group, h *handler.AdminHandler, jwtSecret string) {
	g := api.Group(
		"/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Moderation ----
	g.GET("/videos/pending", h.Pending)
	g.POST("/videos/:id/approve", h.Approve)
	g.POST("/videos/:id/reject", h.Reject)

	// ---- Accounts ----
	g.PUT("/users/:id/status", h.SetUserStatus)
}
