package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/repository"
)

// AnalyticsQuery selects a rollup. Role and UserID default to the caller;
// only an admin may point them elsewhere.
type AnalyticsQuery struct {
	TimeRange string
	Role      string
	UserID    string
}

// Report is one computed rollup. Exactly one of Admin, Creator and User is
// set, matching Role.
type Report struct {
	Role        string
	UserID      string
	TimeRange   string
	Since       time.Time
	GeneratedAt time.Time
	Admin       *model.AdminAnalytics
	Creator     *model.CreatorAnalytics
	User        *model.UserAnalytics
}

// MarshalJSON flattens the rollup so clients see overview and the list
// next to role and timeRange.
func (r Report) MarshalJSON() ([]byte, error) {
	var body any
	switch {
	case r.Admin != nil:
		body = r.Admin
	case r.Creator != nil:
		body = r.Creator
	default:
		body = r.User
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	out["role"] = r.Role
	out["timeRange"] = r.TimeRange
	out["generatedAt"] = r.GeneratedAt
	return json.Marshal(out)
}

// Filename is the download name of the CSV export.
func (r Report) Filename() string {
	return fmt.Sprintf("%s-analytics-%s-%s.csv",
		strings.ToLower(r.Role), r.TimeRange, r.GeneratedAt.Format("2006-01-02"))
}

// AnalyticsService computes role-scoped rollups. Every call reads the
// source tables.
type AnalyticsService interface {
	Get(ctx context.Context, actor Actor, q AnalyticsQuery) (Report, error)
}

type analyticsService struct {
	db     *sql.DB
	now    Clock
	logger zerolog.Logger
}

// NewAnalyticsService returns the analytics service.
func NewAnalyticsService(db *sql.DB, now Clock, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		db:     db,
		now:    now,
		logger: logger.With().Str("service", "AnalyticsService").Logger(),
	}
}

// windowStart returns the beginning of the named window ending at now.
func windowStart(now time.Time, timeRange string) (time.Time, bool) {
	switch timeRange {
	case "24h":
		return now.Add(-24 * time.Hour), true
	case "7d":
		return now.AddDate(0, 0, -7), true
	case "30d":
		return now.AddDate(0, 0, -30), true
	case "90d":
		return now.AddDate(0, 0, -90), true
	case "1y":
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

func (s *analyticsService) Get(ctx context.Context, actor Actor, q AnalyticsQuery) (Report, error) {
	timeRange := strings.ToLower(strings.TrimSpace(q.TimeRange))
	if timeRange == "" {
		timeRange = model.DefaultTimeRange
	}
	now := s.now()
	since, ok := windowStart(now, timeRange)
	if !ok {
		return Report{}, validationErr("Invalid time range")
	}

	role := strings.ToUpper(strings.TrimSpace(q.Role))
	if role == "" {
		role = actor.Role
	}
	userID := strings.TrimSpace(q.UserID)
	if userID == "" {
		userID = actor.ID
	}
	if !model.ValidRole(role) {
		return Report{}, validationErr("Invalid role")
	}
	if !actor.IsAdmin() {
		// Non-admins see their own data, either as their role or as a viewer.
		if userID != actor.ID || (role != actor.Role && role != model.RoleUser) {
			return Report{}, forbiddenErr("forbidden")
		}
	}

	r := Report{Role: role, UserID: userID, TimeRange: timeRange, Since: since, GeneratedAt: now}
	repo := repository.NewAnalyticsRepo(s.db)
	var err error
	switch role {
	case model.RoleAdmin:
		var a model.AdminAnalytics
		a, err = repo.Admin(ctx, now, since)
		r.Admin = &a
	case model.RoleCreator:
		var c model.CreatorAnalytics
		c, err = repo.Creator(ctx, userID, since)
		r.Creator = &c
	default:
		var u model.UserAnalytics
		u, err = repo.User(ctx, userID, since)
		r.User = &u
	}
	if err != nil {
		return Report{}, internalErr("Failed to fetch analytics", err)
	}
	s.logger.Debug().Str("role", role).Str("user_id", userID).Str("range", timeRange).Msg("analytics computed")
	return r, nil
}

// WriteCSV renders r as a two-part CSV: overview metrics, then the
// role-specific list.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	i64 := func(v int64) string { return strconv.FormatInt(v, 10) }

	rows := [][]string{
		{"Report", r.Role + " analytics"},
		{"Time Range", r.TimeRange},
		{"Generated At", r.GeneratedAt.UTC().Format(time.RFC3339)},
		{},
		{"Metric", "Value"},
	}
	switch {
	case r.Admin != nil:
		o := r.Admin.Overview
		rows = append(rows,
			[]string{"Total Users", i64(o.TotalUsers)},
			[]string{"Total Creators", i64(o.TotalCreators)},
			[]string{"Total Videos", i64(o.TotalVideos)},
			[]string{"Pending Videos", i64(o.PendingVideos)},
			[]string{"Total Revenue", i64(o.TotalRevenue)},
			[]string{"Active Subscriptions", i64(o.ActiveSubscriptions)},
			[]string{"New Users", i64(o.NewUsers)},
			[]string{"Revenue In Range", i64(o.WindowRevenue)},
			[]string{},
			[]string{"Transaction ID", "User", "Amount", "Plan", "Date"},
		)
		for _, t := range r.Admin.RecentTransactions {
			rows = append(rows, []string{t.ID, t.User, i64(t.Amount), t.Plan, t.Date})
		}
	case r.Creator != nil:
		o := r.Creator.Overview
		rows = append(rows,
			[]string{"Videos", i64(o.VideosCount)},
			[]string{"Total Views", i64(o.TotalViews)},
			[]string{"Total Watch Time", i64(o.TotalWatchTime)},
			[]string{"Watch Time In Range", i64(o.WindowWatchTime)},
			[]string{"Revenue", i64(o.Revenue)},
			[]string{},
			[]string{"Video ID", "Title", "Views", "Likes"},
		)
		for _, v := range r.Creator.TopVideos {
			rows = append(rows, []string{v.ID, v.Title, i64(v.Views), i64(v.Likes)})
		}
	case r.User != nil:
		o := r.User.Overview
		rows = append(rows,
			[]string{"Videos Watched", i64(o.TotalWatched)},
			[]string{"Total Watch Time", i64(o.TotalWatchTime)},
			[]string{"Watch Time In Range", i64(o.WindowWatchTime)},
			[]string{"Content Liked", i64(o.ContentLiked)},
			[]string{},
			[]string{"Title", "Watched At", "Duration (min)"},
		)
		for _, a := range r.User.RecentActivity {
			rows = append(rows, []string{a.Title, a.WatchedAt, strconv.Itoa(a.Duration)})
		}
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
