package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{
		0:    "0:00",
		59:   "0:59",
		61:   "1:01",
		3600: "1:00:00",
		3725: "1:02:05",
		-5:   "0:00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatDuration(in), "seconds=%d", in)
	}
}

func TestSubscriptionActiveAt(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	s := Subscription{IsActive: true, EndDate: now.Add(time.Hour)}
	assert.True(t, s.ActiveAt(now))

	s.IsActive = false
	assert.False(t, s.ActiveAt(now), "cancelled grant is not active even before end date")

	s = Subscription{IsActive: true, EndDate: now}
	assert.False(t, s.ActiveAt(now), "end date is exclusive")
}

func TestPlanTable(t *testing.T) {
	assert.Equal(t, int64(299), Plans[PlanMonthly].Price)
	assert.Equal(t, 30*24*time.Hour, Plans[PlanMonthly].Duration())
	assert.Equal(t, int64(2990), Plans[PlanYearly].Price)
	assert.Equal(t, 365, Plans[PlanYearly].Days)
	assert.Equal(t, int64(9990), Plans[PlanLifetime].Price)
	assert.Equal(t, 36500, Plans[PlanLifetime].Days)
}

func TestVideoStatus(t *testing.T) {
	v := Video{}
	assert.False(t, v.Visible())
	assert.Equal(t, VideoStatusPending, v.Status())

	now := time.Now()
	v.IsPublic = true
	v.ApprovedAt = &now
	assert.True(t, v.Visible())
	assert.Equal(t, VideoStatusApproved, v.Status())
}
