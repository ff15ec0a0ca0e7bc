package handler_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/regional-streaming/internal/handler"
	"github.com/iliyamo/regional-streaming/internal/metrics"
	"github.com/iliyamo/regional-streaming/internal/otp"
	"github.com/iliyamo/regional-streaming/internal/queue"
	"github.com/iliyamo/regional-streaming/internal/router"
	"github.com/iliyamo/regional-streaming/internal/service"
	"github.com/iliyamo/regional-streaming/internal/storage"
	"github.com/iliyamo/regional-streaming/internal/testutil"
	"github.com/iliyamo/regional-streaming/internal/utils"
)

const secret = "handler-secret"

type server struct {
	t       *testing.T
	db      *sql.DB
	e       *echo.Echo
	clock   *testutil.Clock
	metrics *metrics.Metrics
}

// newServer wires the full route table over an in-memory database. The
// clock starts at wall time so tokens issued by the services pass the JWT
// middleware.
func newServer(t *testing.T, paymentSuccess float64) *server {
	t.Helper()
	db := testutil.NewDB(t)
	clock := &testutil.Clock{T: time.Now().UTC().Truncate(time.Second)}
	log := zerolog.Nop()
	m := metrics.New("test")

	media, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	authSvc := service.NewAuthService(db, otp.NewMemoryStore(), service.AuthConfig{
		JWTSecret:      secret,
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
		OTPTTL:         5 * time.Minute,
	}, clock.Now, log)
	approval := service.NewApprovalService(db, media, queue.Noop{}, m, clock.Now, log)
	payments := service.NewPaymentService(db, service.PaymentOptions{
		SuccessRate: paymentSuccess,
		Roll:        func() float64 { return 0.5 },
	}, m, clock.Now, log)

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc, true, log),
		Videos:        handler.NewVideoHandler(service.NewCatalogService(db, clock.Now, log), log),
		Creator:       handler.NewCreatorHandler(approval, 8, log),
		Admin:         handler.NewAdminHandler(approval, authSvc, log),
		Profiles:      handler.NewProfileHandler(service.NewProfileService(db, clock.Now, log), log),
		Subscriptions: handler.NewSubscriptionHandler(service.NewSubscriptionService(db, false, m, clock.Now, log), log),
		Payments:      handler.NewPaymentHandler(payments, log),
		Watchlist:     handler.NewWatchlistHandler(service.NewWatchlistService(db, clock.Now, log), log),
		Analytics:     handler.NewAnalyticsHandler(service.NewAnalyticsService(db, clock.Now, log), log),
	}
	e := router.New(h, router.Options{
		APIPrefix: "/api",
		JWTSecret: secret,
		DB:        db,
		Metrics:   m,
		Log:       log,
	})
	return &server{t: t, db: db, e: e, clock: clock, metrics: m}
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, userID, role, 5, time.Now())
	require.NoError(t, err)
	return tok.Token
}

func (s *server) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *server) raw(method, path, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// uploadForm builds a multipart body with the given fields plus a video
// and thumbnail part.
func uploadForm(t *testing.T, fields map[string]string, withFiles bool) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withFiles {
		fw, err := w.CreateFormFile("video", "clip.mp4")
		require.NoError(t, err)
		_, _ = fw.Write([]byte("not really a video"))
		fw, err = w.CreateFormFile("thumbnail", "thumb.jpg")
		require.NoError(t, err)
		_, _ = fw.Write([]byte("jpeg"))
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), &buf
}
