package repository

import (
	"context"

	"github.com/iliyamo/regional-streaming/internal/model"
)

// ActivityRepo appends watch history and stores reviews; both feed the
// analytics rollups.
type ActivityRepo struct{ q Querier }

func NewActivityRepo(q Querier) *ActivityRepo { return &ActivityRepo{q: q} }

// RecordWatch appends one history row.
func (r *ActivityRepo) RecordWatch(ctx context.Context, h *model.WatchHistory) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO watch_history (id,user_id,video_id,watch_time,watched_at) VALUES (?,?,?,?,?)",
		h.ID, h.UserID, h.VideoID, h.WatchTime, h.WatchedAt)
	return err
}

// CreateReview inserts a review; a second review of the same video by the
// same user yields ErrDuplicate.
func (r *ActivityRepo) CreateReview(ctx context.Context, rv *model.Review) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO reviews (id,user_id,video_id,rating,comment,created_at) VALUES (?,?,?,?,?,?)",
		rv.ID, rv.UserID, rv.VideoID, rv.Rating, rv.Comment, rv.CreatedAt)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}
