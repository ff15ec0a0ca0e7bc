package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/handler"
	"github.com/iliyamo/regional-streaming/internal/metrics"
	"github.com/iliyamo/regional-streaming/internal/middleware"
)

// Handlers groups everything the route table dispatches to.
type Handlers struct {
	Auth          *handler.AuthHandler
	Videos        *handler.VideoHandler
	Creator       *handler.CreatorHandler
	Admin         *handler.AdminHandler
	Profiles      *handler.ProfileHandler
	Subscriptions *handler.SubscriptionHandler
	Payments      *handler.PaymentHandler
	Watchlist     *handler.WatchlistHandler
	Analytics     *handler.AnalyticsHandler
}

// Options configures New. RateLimit guards the OTP and login endpoints;
// nil disables it.
type Options struct {
	APIPrefix string
	JWTSecret string
	DB        *sql.DB
	Metrics   *metrics.Metrics
	RateLimit echo.MiddlewareFunc
	Log       zerolog.Logger
}

// New builds the echo instance with the global middleware chain and every
// route registered.
func New(h Handlers, opt Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(opt.Log))
	if opt.Metrics != nil {
		e.Use(opt.Metrics.Middleware())
	}

	RegisterRoutes(e, opt.DB, opt.Metrics)

	api := e.Group(opt.APIPrefix)
	RegisterAuth(api, h.Auth, opt.JWTSecret, opt.RateLimit)
	RegisterCatalog(api, h.Videos, opt.JWTSecret)
	RegisterAccount(api, h, opt.JWTSecret)
	RegisterCreator(api, h.Creator, opt.JWTSecret)
	RegisterAdmin(api, h.Admin, opt.JWTSecret)
	return e
}

// RegisterRoutes registers routes that do not require authentication and
// live outside the API prefix: the health check and the metrics scrape.
func RegisterRoutes(e *echo.Echo, db *sql.DB, m *metrics.Metrics) {
	e.GET("/healthz", handler.Health(db))
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

// RegisterAuth registers the sign-in endpoints. Sending an OTP and logging
// in go through the rate limiter; /auth/me needs a valid access token.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := api.Group("/auth")
	limited := []echo.MiddlewareFunc{}
	if limiter != nil {
		limited = append(limited, limiter)
	}
	g.POST("/send-otp", a.SendOTP, limited...)
	g.POST("/login", a.Login, limited...)
	g.POST("/register", a.Register)
	// Refresh rotates the refresh token; refresh-access keeps it.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout takes a refresh_token body. A bearer caller without one is
	// signed out everywhere.
	g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterCatalog registers the public feed and the viewer actions on it.
func RegisterCatalog(api *echo.Group, v *handler.VideoHandler, jwtSecret string) {
	api.GET("/videos", v.List)
	api.GET("/videos/:id", v.Get)

	g := api.Group("/videos", middleware.JWTAuth(jwtSecret))
	g.POST("/:id/watch", v.Watch)
	g.POST("/:id/reviews", v.Review)
}

// WithCORS wraps the echo instance with the CORS policy for browser
// clients. Credentials are only allowed for explicit origins.
func WithCORS(e *echo.Echo, origins []string) http.Handler {
	wildcard := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{echo.HeaderAuthorization, echo.HeaderContentType},
		ExposedHeaders:   []string{echo.HeaderContentDisposition, "Retry-After"},
		AllowCredentials: !wildcard,
	})
	return c.Handler(e)
}
