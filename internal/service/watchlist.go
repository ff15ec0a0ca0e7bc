package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/repository"
)

// WatchlistService keeps each user's saved-for-later videos. A video
// appears at most once per user.
type WatchlistService interface {
	List(ctx context.Context, userID string) ([]model.WatchlistEntry, error)
	Add(ctx context.Context, userID, videoID string) (model.WatchlistItem, error)
	Remove(ctx context.Context, userID, videoID string) error
}

type watchlistService struct {
	db     *sql.DB
	now    Clock
	logger zerolog.Logger
}

// NewWatchlistService returns the watchlist service.
func NewWatchlistService(db *sql.DB, now Clock, logger zerolog.Logger) WatchlistService {
	return &watchlistService{
		db:     db,
		now:    now,
		logger: logger.With().Str("service", "WatchlistService").Logger(),
	}
}

func (s *watchlistService) List(ctx context.Context, userID string) ([]model.WatchlistEntry, error) {
	if userID == "" {
		return nil, validationErr("User ID is required")
	}
	out, err := repository.NewWatchlistRepo(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, internalErr("list watchlist", err)
	}
	return out, nil
}

func (s *watchlistService) Add(ctx context.Context, userID, videoID string) (model.WatchlistItem, error) {
	if userID == "" || videoID == "" {
		return model.WatchlistItem{}, validationErr("User ID and Video ID are required")
	}
	if _, err := repository.NewVideoRepo(s.db).GetByID(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.WatchlistItem{}, notFoundErr("Video not found")
		}
		return model.WatchlistItem{}, internalErr("get video", err)
	}

	repo := repository.NewWatchlistRepo(s.db)
	exists, err := repo.Exists(ctx, userID, videoID)
	if err != nil {
		return model.WatchlistItem{}, internalErr("check watchlist", err)
	}
	if exists {
		return model.WatchlistItem{}, duplicateErr("Video already in watchlist")
	}

	item := model.WatchlistItem{
		ID:      newID(),
		UserID:  userID,
		VideoID: videoID,
		AddedAt: s.now(),
	}
	// The unique (user, video) key catches a concurrent add that slipped
	// past the existence check.
	if err := repo.Add(ctx, &item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.WatchlistItem{}, duplicateErr("Video already in watchlist")
		}
		return model.WatchlistItem{}, internalErr("add to watchlist", err)
	}
	return item, nil
}

func (s *watchlistService) Remove(ctx context.Context, userID, videoID string) error {
	if userID == "" || videoID == "" {
		return validationErr("User ID and Video ID are required")
	}
	if err := repository.NewWatchlistRepo(s.db).Remove(ctx, userID, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundErr("Video not in watchlist")
		}
		return internalErr("remove from watchlist", err)
	}
	return nil
}
