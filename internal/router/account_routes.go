package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/regional-streaming/internal/middleware"
	"github.com/iliyamo/regional-streaming/internal/model"
)

// RegisterAccount registers the endpoints every signed-in user has:
// profiles, subscription, payment, watchlist and analytics. Handlers scope
// each request to the token subject; only an ADMIN may name another user.
func RegisterAccount(api *echo.Group, h Handlers, jwtSecret string) {
	g := api.Group(
		"",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleCreator, model.RoleAdmin),
	)

	// ---- Profiles ----
	g.GET("/profiles", h.Profiles.List)
	g.POST("/profiles", h.Profiles.Create)
	g.PUT("/profiles/:id", h.Profiles.Update)
	g.DELETE("/profiles/:id", h.Profiles.Delete)

	// ---- Subscription ----
	g.GET("/subscription", h.Subscriptions.Overview)
	g.POST("/subscription", h.Subscriptions.Purchase)
	g.POST("/subscription/cancel", h.Subscriptions.Cancel)
	g.GET("/subscription/plans", h.Subscriptions.Plans)

	g.POST("/payment", h.Payments.Process)

	// ---- Watchlist ----
	g.GET("/watchlist", h.Watchlist.List)
	g.POST("/watchlist", h.Watchlist.Add)
	g.DELETE("/watchlist", h.Watchlist.Remove)

	// ---- Analytics ----
	g.GET("/analytics", h.Analytics.Get)
	g.GET("/analytics/export", h.Analytics.Export)
}
