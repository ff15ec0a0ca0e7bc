package repository

import (
	"context"
	"time"

	"github.com/iliyamo/regional-streaming/internal/model"
)

// AnalyticsRepo runs the read-only rollup queries. Nothing is cached; each
// call hits the source tables.
type AnalyticsRepo struct{ q Querier }

func NewAnalyticsRepo(q Querier) *AnalyticsRepo { return &AnalyticsRepo{q: q} }

type countQuery struct {
	dst   *int64
	query string
	args  []any
}

func (r *AnalyticsRepo) scalars(ctx context.Context, qs []countQuery) error {
	for _, c := range qs {
		if err := r.q.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return err
		}
	}
	return nil
}

// Admin computes the platform-wide rollup. Totals are all-time; NewUsers
// and WindowRevenue count only rows created at or after since.
func (r *AnalyticsRepo) Admin(ctx context.Context, now, since time.Time) (model.AdminAnalytics, error) {
	var out model.AdminAnalytics
	o := &out.Overview
	err := r.scalars(ctx, []countQuery{
		{&o.TotalUsers, "SELECT COUNT(*) FROM users", nil},
		{&o.TotalCreators, "SELECT COUNT(*) FROM users WHERE role=?", []any{model.RoleCreator}},
		{&o.TotalVideos, "SELECT COUNT(*) FROM videos WHERE is_public=?", []any{true}},
		{&o.PendingVideos, "SELECT COUNT(*) FROM videos WHERE approved_at IS NULL", nil},
		{&o.TotalRevenue, "SELECT COALESCE(SUM(price),0) FROM subscriptions", nil},
		{&o.ActiveSubscriptions, "SELECT COUNT(*) FROM subscriptions WHERE is_active=? AND end_date > ?", []any{true, now}},
		{&o.NewUsers, "SELECT COUNT(*) FROM users WHERE created_at >= ?", []any{since}},
		{&o.WindowRevenue, "SELECT COALESCE(SUM(price),0) FROM subscriptions WHERE created_at >= ?", []any{since}},
	})
	if err != nil {
		return model.AdminAnalytics{}, err
	}

	rows, err := r.q.QueryContext(ctx, `SELECT s.id, u.name, s.price, s.plan, s.created_at
FROM subscriptions s JOIN users u ON u.id = s.user_id
ORDER BY s.created_at DESC, s.id DESC LIMIT 10`)
	if err != nil {
		return model.AdminAnalytics{}, err
	}
	defer rows.Close()

	out.RecentTransactions = make([]model.Transaction, 0)
	for rows.Next() {
		var (
			t  model.Transaction
			at time.Time
		)
		if err := rows.Scan(&t.ID, &t.User, &t.Amount, &t.Plan, &at); err != nil {
			return model.AdminAnalytics{}, err
		}
		t.Date = at.UTC().Format("2006-01-02")
		out.RecentTransactions = append(out.RecentTransactions, t)
	}
	return out, rows.Err()
}

// Creator computes the rollup for one creator. Revenue is approximated as
// the subscription spend of every user who watched at least one of the
// creator's videos.
func (r *AnalyticsRepo) Creator(ctx context.Context, creatorID string, since time.Time) (model.CreatorAnalytics, error) {
	var out model.CreatorAnalytics
	o := &out.Overview
	err := r.scalars(ctx, []countQuery{
		{&o.VideosCount, "SELECT COUNT(*) FROM videos WHERE created_by=? AND is_public=?", []any{creatorID, true}},
		{&o.TotalViews, "SELECT COALESCE(SUM(view_count),0) FROM videos WHERE created_by=? AND is_public=?", []any{creatorID, true}},
		{&o.TotalWatchTime, `SELECT COALESCE(SUM(h.watch_time),0) FROM watch_history h
JOIN videos v ON v.id = h.video_id WHERE v.created_by=?`, []any{creatorID}},
		{&o.WindowWatchTime, `SELECT COALESCE(SUM(h.watch_time),0) FROM watch_history h
JOIN videos v ON v.id = h.video_id WHERE v.created_by=? AND h.watched_at >= ?`, []any{creatorID, since}},
		{&o.Revenue, `SELECT COALESCE(SUM(s.price),0) FROM subscriptions s
WHERE s.user_id IN (SELECT DISTINCT h.user_id FROM watch_history h
JOIN videos v ON v.id = h.video_id WHERE v.created_by=?)`, []any{creatorID}},
	})
	if err != nil {
		return model.CreatorAnalytics{}, err
	}

	rows, err := r.q.QueryContext(ctx, `SELECT v.id, v.title, v.view_count,
(SELECT COUNT(*) FROM reviews rv WHERE rv.video_id = v.id)
FROM videos v WHERE v.created_by=? AND v.is_public=?
ORDER BY v.view_count DESC, v.created_at DESC LIMIT 5`, creatorID, true)
	if err != nil {
		return model.CreatorAnalytics{}, err
	}
	defer rows.Close()

	out.TopVideos = make([]model.VideoStat, 0)
	for rows.Next() {
		var s model.VideoStat
		if err := rows.Scan(&s.ID, &s.Title, &s.Views, &s.Likes); err != nil {
			return model.CreatorAnalytics{}, err
		}
		out.TopVideos = append(out.TopVideos, s)
	}
	return out, rows.Err()
}

// User computes a viewer's personal rollup.
func (r *AnalyticsRepo) User(ctx context.Context, userID string, since time.Time) (model.UserAnalytics, error) {
	var out model.UserAnalytics
	o := &out.Overview
	err := r.scalars(ctx, []countQuery{
		{&o.TotalWatched, "SELECT COUNT(*) FROM watch_history WHERE user_id=?", []any{userID}},
		{&o.TotalWatchTime, "SELECT COALESCE(SUM(watch_time),0) FROM watch_history WHERE user_id=?", []any{userID}},
		{&o.WindowWatchTime, "SELECT COALESCE(SUM(watch_time),0) FROM watch_history WHERE user_id=? AND watched_at >= ?", []any{userID, since}},
		{&o.ContentLiked, "SELECT COUNT(*) FROM reviews WHERE user_id=?", []any{userID}},
	})
	if err != nil {
		return model.UserAnalytics{}, err
	}

	rows, err := r.q.QueryContext(ctx, `SELECT v.title, v.duration, h.watched_at
FROM watch_history h JOIN videos v ON v.id = h.video_id
WHERE h.user_id=? ORDER BY h.watched_at DESC, h.id DESC LIMIT 10`, userID)
	if err != nil {
		return model.UserAnalytics{}, err
	}
	defer rows.Close()

	out.RecentActivity = make([]model.Activity, 0)
	for rows.Next() {
		var (
			a        model.Activity
			duration int
			at       time.Time
		)
		if err := rows.Scan(&a.Title, &duration, &at); err != nil {
			return model.UserAnalytics{}, err
		}
		a.Duration = duration / 60
		a.WatchedAt = at.UTC().Format("2006-01-02")
		out.RecentActivity = append(out.RecentActivity, a)
	}
	return out, rows.Err()
}
