package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/regional-streaming/internal/model"
)

// VideoRepo persists videos and answers the public feed and moderation
// queue queries.
type VideoRepo struct{ q Querier }

func NewVideoRepo(q Querier) *VideoRepo { return &VideoRepo{q: q} }

const videoColumns = "id,title,description,thumbnail,video_url,duration,category,language,release_year,age_rating,is_premium,is_public,approved_at,view_count,tags,created_by,created_at,updated_at"

// visiblePredicate is the only gate between moderation and the public feed.
const visiblePredicate = "v.is_public = ? AND v.approved_at IS NOT NULL"

// VideoFilter narrows the public feed. Empty strings mean "no filter".
type VideoFilter struct {
	Category string
	Language string
	Search   string
	Trending bool
	Limit    int
	Offset   int
}

func prefixed(cols, alias string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ",")
}

func videoDest(v *model.Video, year *sql.NullInt64, approved *sql.NullTime, tags *string) []any {
	return []any{&v.ID, &v.Title, &v.Description, &v.Thumbnail, &v.VideoURL, &v.Duration,
		&v.Category, &v.Language, year, &v.AgeRating, &v.IsPremium, &v.IsPublic, approved,
		&v.ViewCount, tags, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt}
}

func finishVideo(v *model.Video, year sql.NullInt64, approved sql.NullTime, tags string) error {
	if year.Valid {
		y := int(year.Int64)
		v.ReleaseYear = &y
	}
	if approved.Valid {
		t := approved.Time.UTC()
		v.ApprovedAt = &t
	}
	v.Tags = []string{}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &v.Tags); err != nil {
			return err
		}
	}
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	return nil
}

func scanVideo(s rowScanner) (model.Video, error) {
	var (
		v        model.Video
		year     sql.NullInt64
		approved sql.NullTime
		tags     string
	)
	if err := s.Scan(videoDest(&v, &year, &approved, &tags)...); err != nil {
		return model.Video{}, err
	}
	return v, finishVideo(&v, year, approved, tags)
}

func scanVideoWithCreator(s rowScanner) (model.VideoWithCreator, error) {
	var (
		out      model.VideoWithCreator
		year     sql.NullInt64
		approved sql.NullTime
		tags     string
	)
	dest := videoDest(&out.Video, &year, &approved, &tags)
	dest = append(dest, &out.Creator.ID, &out.Creator.Name, &out.Creator.Avatar)
	if err := s.Scan(dest...); err != nil {
		return model.VideoWithCreator{}, err
	}
	return out, finishVideo(&out.Video, year, approved, tags)
}

// Create inserts a video row.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) error {
	if v.Tags == nil {
		v.Tags = []string{}
	}
	tags, err := json.Marshal(v.Tags)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx,
		"INSERT INTO videos ("+videoColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)",
		v.ID, v.Title, v.Description, v.Thumbnail, v.VideoURL, v.Duration, v.Category, v.Language,
		v.ReleaseYear, v.AgeRating, v.IsPremium, v.IsPublic, v.ApprovedAt, v.ViewCount, string(tags),
		v.CreatedBy, v.CreatedAt, v.UpdatedAt)
	return err
}

// GetByID fetches a video regardless of its moderation state.
func (r *VideoRepo) GetByID(ctx context.Context, id string) (model.Video, error) {
	v, err := scanVideo(r.q.QueryRowContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE id=? LIMIT 1", id))
	return v, notFound(err)
}

func videoJoin() string {
	return fmt.Sprintf("SELECT %s, u.id, u.name, u.avatar FROM videos v JOIN users u ON u.id = v.created_by",
		prefixed(videoColumns, "v"))
}

// GetVisible fetches an approved video with its creator.
func (r *VideoRepo) GetVisible(ctx context.Context, id string) (model.VideoWithCreator, error) {
	v, err := scanVideoWithCreator(r.q.QueryRowContext(ctx,
		videoJoin()+" WHERE v.id=? AND "+visiblePredicate+" LIMIT 1", id, true))
	return v, notFound(err)
}

// ListVisible returns one page of the public feed.
func (r *VideoRepo) ListVisible(ctx context.Context, f VideoFilter) ([]model.VideoWithCreator, error) {
	var (
		where = []string{visiblePredicate}
		args  = []any{true}
	)
	if f.Category != "" {
		where = append(where, "v.category = ?")
		args = append(args, f.Category)
	}
	if f.Language != "" {
		where = append(where, "v.language = ?")
		args = append(args, f.Language)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		pattern := "%" + s + "%"
		where = append(where, "(LOWER(v.title) LIKE ? OR LOWER(v.description) LIKE ? OR LOWER(v.tags) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	order := "v.created_at DESC, v.id DESC"
	if f.Trending {
		order = "v.view_count DESC, v.created_at DESC, v.id DESC"
	}
	query := videoJoin() + " WHERE " + strings.Join(where, " AND ") + " ORDER BY " + order + " LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)
	return r.list(ctx, query, args...)
}

// ListPending returns videos awaiting moderation, oldest first.
func (r *VideoRepo) ListPending(ctx context.Context, limit, offset int) ([]model.VideoWithCreator, error) {
	return r.list(ctx,
		videoJoin()+" WHERE v.approved_at IS NULL ORDER BY v.created_at ASC, v.id ASC LIMIT ? OFFSET ?",
		limit, offset)
}

func (r *VideoRepo) list(ctx context.Context, query string, args ...any) ([]model.VideoWithCreator, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.VideoWithCreator, 0)
	for rows.Next() {
		v, err := scanVideoWithCreator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Approve publishes a video. Approving twice simply moves approved_at.
func (r *VideoRepo) Approve(ctx context.Context, id string, now time.Time) error {
	res, err := r.q.ExecContext(ctx,
		"UPDATE videos SET is_public=?, approved_at=?, updated_at=? WHERE id=?", true, now, now, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// Delete removes a video together with the watchlist, history and review
// rows pointing at it. Callers should run it inside a transaction.
func (r *VideoRepo) Delete(ctx context.Context, id string) error {
	for _, q := range []string{
		"DELETE FROM watchlist_items WHERE video_id=?",
		"DELETE FROM watch_history WHERE video_id=?",
		"DELETE FROM reviews WHERE video_id=?",
	} {
		if _, err := r.q.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := r.q.ExecContext(ctx, "DELETE FROM videos WHERE id=?", id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// IncrementViews bumps the view counter by one.
func (r *VideoRepo) IncrementViews(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, "UPDATE videos SET view_count = view_count + 1 WHERE id=?", id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}
