package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	m := New("test")
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/videos/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos/abc", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/videos/:id", "204")))
}

func TestDomainCountersAndExposition(t *testing.T) {
	m := New("test")
	m.SubscriptionPurchased("MONTHLY")
	m.VideoModerated("approved")
	m.Payment("upi", "completed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `test_subscriptions_purchased_total{plan="MONTHLY"} 1`))
	assert.True(t, strings.Contains(body, `test_videos_moderated_total{outcome="approved"} 1`))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SubscriptionPurchased("YEARLY")
		m.SubscriptionCancelled()
		m.VideoSubmitted()
		m.VideoModerated("rejected")
		m.Payment("card", "failed")
	})
}
