package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/regional-streaming/internal/model"
)

// WatchlistRepo maintains the (user, video) saved-for-later pairs. The
// unique key on the pair is the final guard against duplicates.
type WatchlistRepo struct{ q Querier }

func NewWatchlistRepo(q Querier) *WatchlistRepo { return &WatchlistRepo{q: q} }

// Add inserts the pair or returns ErrDuplicate.
func (r *WatchlistRepo) Add(ctx context.Context, item *model.WatchlistItem) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO watchlist_items (id,user_id,video_id,added_at) VALUES (?,?,?,?)",
		item.ID, item.UserID, item.VideoID, item.AddedAt)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// Exists reports whether the pair is already saved.
func (r *WatchlistRepo) Exists(ctx context.Context, userID, videoID string) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx,
		"SELECT 1 FROM watchlist_items WHERE user_id=? AND video_id=? LIMIT 1", userID, videoID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Remove deletes the pair.
func (r *WatchlistRepo) Remove(ctx context.Context, userID, videoID string) error {
	res, err := r.q.ExecContext(ctx,
		"DELETE FROM watchlist_items WHERE user_id=? AND video_id=?", userID, videoID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// ListByUser returns the user's saved videos, most recently added first,
// each joined with its video and creator.
func (r *WatchlistRepo) ListByUser(ctx context.Context, userID string) ([]model.WatchlistEntry, error) {
	query := fmt.Sprintf(`SELECT w.id, w.user_id, w.video_id, w.added_at, %s, u.id, u.name, u.avatar
FROM watchlist_items w
JOIN videos v ON v.id = w.video_id
JOIN users u ON u.id = v.created_by
WHERE w.user_id = ?
ORDER BY w.added_at DESC, w.id DESC`, prefixed(videoColumns, "v"))

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.WatchlistEntry, 0)
	for rows.Next() {
		var (
			e        model.WatchlistEntry
			year     sql.NullInt64
			approved sql.NullTime
			tags     string
		)
		dest := []any{&e.ID, &e.UserID, &e.VideoID, &e.AddedAt}
		dest = append(dest, videoDest(&e.Video.Video, &year, &approved, &tags)...)
		dest = append(dest, &e.Video.Creator.ID, &e.Video.Creator.Name, &e.Video.Creator.Avatar)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if err := finishVideo(&e.Video.Video, year, approved, tags); err != nil {
			return nil, err
		}
		e.AddedAt = e.AddedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
