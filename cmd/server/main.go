package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/config"
	"github.com/iliyamo/regional-streaming/internal/database"
	"github.com/iliyamo/regional-streaming/internal/handler"
	"github.com/iliyamo/regional-streaming/internal/logger"
	"github.com/iliyamo/regional-streaming/internal/metrics"
	"github.com/iliyamo/regional-streaming/internal/middleware"
	"github.com/iliyamo/regional-streaming/internal/otp"
	"github.com/iliyamo/regional-streaming/internal/queue"
	"github.com/iliyamo/regional-streaming/internal/router"
	"github.com/iliyamo/regional-streaming/internal/service"
	"github.com/iliyamo/regional-streaming/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("development", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	defer db.Close()
	if cfg.Migrate {
		if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	// Redis is optional: without it OTPs live in process memory and the
	// rate limiter is a pass-through.
	rdb := config.NewRedisClient(ctx)
	var codes otp.Store
	if rdb != nil {
		defer rdb.Close()
		codes = otp.NewRedisStore(rdb)
	} else {
		log.Warn().Msg("redis unavailable, using in-memory otp store")
		codes = otp.NewMemoryStore()
	}

	media, err := newMediaStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.MediaBackend).Msg("media store")
	}

	var notifier service.Notifier = queue.Noop{}
	if cfg.RabbitURL != "" {
		notifier = queue.NewPublisher(cfg.RabbitURL, log)
	}
	if cfg.RabbitURL != "" && cfg.Consumer {
		consumer := &queue.Consumer{URL: cfg.RabbitURL, LogDir: "logs", Log: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("moderation consumer stopped")
			}
		}()
	}

	m := metrics.New("streaming")
	clock := service.Clock(service.SystemClock)

	authSvc := service.NewAuthService(db, codes, service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
		OTPTTL:         cfg.OTPTTL,
	}, clock, log)
	approvalSvc := service.NewApprovalService(db, media, notifier, m, clock, log)
	paymentSvc := service.NewPaymentService(db, service.PaymentOptions{
		Delay:       cfg.PaymentDelay,
		SuccessRate: cfg.PaymentSuccessRate,
	}, m, clock, log)

	creator := handler.NewCreatorHandler(approvalSvc, cfg.MaxUploadMB, log)
	creator.UploadTimeout = cfg.UploadTimeout

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc, cfg.IsDevelopment(), log),
		Videos:        handler.NewVideoHandler(service.NewCatalogService(db, clock, log), log),
		Creator:       creator,
		Admin:         handler.NewAdminHandler(approvalSvc, authSvc, log),
		Profiles:      handler.NewProfileHandler(service.NewProfileService(db, clock, log), log),
		Subscriptions: handler.NewSubscriptionHandler(service.NewSubscriptionService(db, cfg.ReplaceActiveSubscription, m, clock, log), log),
		Payments:      handler.NewPaymentHandler(paymentSvc, log),
		Watchlist:     handler.NewWatchlistHandler(service.NewWatchlistService(db, clock, log), log),
		Analytics:     handler.NewAnalyticsHandler(service.NewAnalyticsService(db, clock, log), log),
	}
	e := router.New(h, router.Options{
		APIPrefix: cfg.APIPrefix,
		JWTSecret: cfg.JWTSecret,
		DB:        db,
		Metrics:   m,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Log:       log,
	})
	if cfg.MediaBackend == "local" {
		e.Static(cfg.MediaPublicPrefix, cfg.MediaDir)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.WithCORS(e, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func newMediaStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (storage.Store, error) {
	switch cfg.MediaBackend {
	case "minio":
		return storage.NewMinIOStore(ctx, cfg.MinIOConfig, log)
	case "local", "":
		return storage.NewLocalStore(cfg.MediaDir, cfg.MediaPublicPrefix)
	}
	return nil, errors.New("unknown MEDIA_BACKEND " + cfg.MediaBackend)
}
