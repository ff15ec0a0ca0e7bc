package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/repository"
)

// FeedQuery selects a page of the public feed. "All" or an empty
// Category/Language disables that filter.
type FeedQuery struct {
	Category string
	Language string
	Search   string
	Trending bool
	Limit    int
	Offset   int
}

// FeedVideo is a feed entry with its display duration.
type FeedVideo struct {
	model.VideoWithCreator
	DurationFormatted string `json:"durationFormatted"`
}

// Feed is one page of the public catalogue.
type Feed struct {
	Videos  []FeedVideo `json:"videos"`
	Total   int         `json:"total"`
	HasMore bool        `json:"hasMore"`
}

// CatalogService serves the public catalogue and viewer activity. Only
// approved, public videos are reachable through it.
type CatalogService interface {
	List(ctx context.Context, q FeedQuery) (Feed, error)
	Get(ctx context.Context, videoID string) (FeedVideo, error)
	RecordWatch(ctx context.Context, userID, videoID string, watchTime int) (model.WatchHistory, error)
	Review(ctx context.Context, userID, videoID string, rating int, comment string) (model.Review, error)
}

type catalogService struct {
	db     *sql.DB
	now    Clock
	logger zerolog.Logger
}

// NewCatalogService returns the public catalogue service.
func NewCatalogService(db *sql.DB, now Clock, logger zerolog.Logger) CatalogService {
	return &catalogService{
		db:     db,
		now:    now,
		logger: logger.With().Str("service", "CatalogService").Logger(),
	}
}

// normalizeFilter upper-cases v and checks it against allowed. "All" and
// the empty string mean no filter.
func normalizeFilter(v string, allowed []string, field string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "all") {
		return "", nil
	}
	v = strings.ToUpper(v)
	if !model.Contains(allowed, v) {
		return "", validationErr("Invalid " + field)
	}
	return v, nil
}

func (s *catalogService) List(ctx context.Context, q FeedQuery) (Feed, error) {
	category, err := normalizeFilter(q.Category, model.Categories, "category")
	if err != nil {
		return Feed{}, err
	}
	language, err := normalizeFilter(q.Language, model.Languages, "language")
	if err != nil {
		return Feed{}, err
	}
	limit, offset := clampPage(q.Limit, q.Offset)

	rows, err := repository.NewVideoRepo(s.db).ListVisible(ctx, repository.VideoFilter{
		Category: category,
		Language: language,
		Search:   q.Search,
		Trending: q.Trending,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return Feed{}, internalErr("list videos", err)
	}

	feed := Feed{Videos: make([]FeedVideo, 0, len(rows))}
	for _, v := range rows {
		feed.Videos = append(feed.Videos, toFeedVideo(v))
	}
	feed.Total = len(feed.Videos)
	feed.HasMore = len(feed.Videos) == limit
	return feed, nil
}

func toFeedVideo(v model.VideoWithCreator) FeedVideo {
	return FeedVideo{VideoWithCreator: v, DurationFormatted: model.FormatDuration(v.Duration)}
}

func (s *catalogService) Get(ctx context.Context, videoID string) (FeedVideo, error) {
	v, err := repository.NewVideoRepo(s.db).GetVisible(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return FeedVideo{}, notFoundErr("Video not found")
		}
		return FeedVideo{}, internalErr("get video", err)
	}
	return toFeedVideo(v), nil
}

func (s *catalogService) RecordWatch(ctx context.Context, userID, videoID string, watchTime int) (model.WatchHistory, error) {
	if videoID == "" {
		return model.WatchHistory{}, validationErr("Video ID is required")
	}
	if watchTime < 0 {
		return model.WatchHistory{}, validationErr("Watch time must not be negative")
	}
	h := model.WatchHistory{
		ID:        newID(),
		UserID:    userID,
		VideoID:   videoID,
		WatchTime: watchTime,
		WatchedAt: s.now(),
	}
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		videos := repository.NewVideoRepo(tx)
		if _, err := videos.GetVisible(ctx, videoID); err != nil {
			return err
		}
		if err := repository.NewActivityRepo(tx).RecordWatch(ctx, &h); err != nil {
			return err
		}
		return videos.IncrementViews(ctx, videoID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.WatchHistory{}, notFoundErr("Video not found")
		}
		return model.WatchHistory{}, internalErr("record watch", err)
	}
	return h, nil
}

func (s *catalogService) Review(ctx context.Context, userID, videoID string, rating int, comment string) (model.Review, error) {
	if rating < 1 || rating > 5 {
		return model.Review{}, validationErr("Rating must be between 1 and 5")
	}
	if _, err := repository.NewVideoRepo(s.db).GetVisible(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Review{}, notFoundErr("Video not found")
		}
		return model.Review{}, internalErr("get video", err)
	}
	rv := model.Review{
		ID:        newID(),
		UserID:    userID,
		VideoID:   videoID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.now(),
	}
	if err := repository.NewActivityRepo(s.db).CreateReview(ctx, &rv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Review{}, duplicateErr("Video already reviewed")
		}
		return model.Review{}, internalErr("create review", err)
	}
	s.logger.Debug().Str("video_id", videoID).Str("user_id", userID).Int("rating", rating).Msg("review recorded")
	return rv, nil
}
