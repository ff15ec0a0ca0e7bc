package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/metrics"
	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/queue"
	"github.com/iliyamo/regional-streaming/internal/repository"
	"github.com/iliyamo/regional-streaming/internal/storage"
)

// Media is one uploaded file.
type Media struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SubmitVideoInput describes an upload. Category, Language and AgeRating
// are matched case-insensitively.
type SubmitVideoInput struct {
	CreatorID   string
	Title       string
	Description string
	Category    string
	Language    string
	ReleaseYear *int
	AgeRating   string
	IsPremium   bool
	Tags        []string
	Duration    int
	Video       *Media
	Thumbnail   *Media
}

// ApprovalService moves videos through moderation: a submitted video is
// pending until an admin approves it (it becomes public) or rejects it
// (the row is deleted).
type ApprovalService interface {
	Submit(ctx context.Context, in SubmitVideoInput) (model.Video, error)
	Approve(ctx context.Context, videoID, actorID string) (model.Video, error)
	Reject(ctx context.Context, videoID, actorID string) error
	ListPending(ctx context.Context, limit, offset int) ([]model.VideoWithCreator, error)
}

type approvalService struct {
	db       *sql.DB
	media    storage.Store
	notifier Notifier
	metrics  *metrics.Metrics
	now      Clock
	logger   zerolog.Logger
}

// NewApprovalService wires the moderation workflow.
func NewApprovalService(db *sql.DB, media storage.Store, notifier Notifier, m *metrics.Metrics, now Clock, logger zerolog.Logger) ApprovalService {
	return &approvalService{
		db:       db,
		media:    media,
		notifier: notifier,
		metrics:  m,
		now:      now,
		logger:   logger.With().Str("service", "ApprovalService").Logger(),
	}
}

func (s *approvalService) validate(in *SubmitVideoInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.ToUpper(strings.TrimSpace(in.Category))
	in.Language = strings.ToUpper(strings.TrimSpace(in.Language))
	in.AgeRating = strings.ToUpper(strings.TrimSpace(in.AgeRating))

	if in.Title == "" || in.Description == "" || in.Category == "" || in.Language == "" ||
		in.Video == nil || in.Thumbnail == nil || in.Video.Body == nil || in.Thumbnail.Body == nil {
		return validationErr("Missing required fields")
	}
	if !model.Contains(model.Categories, in.Category) {
		return validationErr("Invalid category")
	}
	if !model.Contains(model.Languages, in.Language) {
		return validationErr("Invalid language")
	}
	if in.AgeRating == "" {
		in.AgeRating = "U"
	}
	if !model.Contains(model.AgeRatings, in.AgeRating) {
		return validationErr("Invalid age rating")
	}
	if in.Duration < 0 {
		return validationErr("Duration must not be negative")
	}
	return nil
}

func (s *approvalService) Submit(ctx context.Context, in SubmitVideoInput) (model.Video, error) {
	if err := s.validate(&in); err != nil {
		return model.Video{}, err
	}
	if _, err := repository.NewUserRepo(s.db).GetByID(ctx, in.CreatorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Video{}, notFoundErr("Creator not found")
		}
		return model.Video{}, internalErr("load creator", err)
	}

	now := s.now()
	id := newID()
	stamp := fmt.Sprintf("%d_%s", now.UnixMilli(), id[len(id)-8:])
	videoKey := fmt.Sprintf("video_%s_%s", stamp, storage.SanitizeName(in.Video.Filename))
	thumbKey := fmt.Sprintf("thumbnail_%s_%s", stamp, storage.SanitizeName(in.Thumbnail.Filename))

	videoURL, err := s.media.Save(ctx, videoKey, in.Video.Body, in.Video.Size, in.Video.ContentType)
	if err != nil {
		return model.Video{}, internalErr("Failed to save files", err)
	}
	thumbURL, err := s.media.Save(ctx, thumbKey, in.Thumbnail.Body, in.Thumbnail.Size, in.Thumbnail.ContentType)
	if err != nil {
		s.discard(ctx, videoKey)
		return model.Video{}, internalErr("Failed to save files", err)
	}

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	v := model.Video{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Thumbnail:   thumbURL,
		VideoURL:    videoURL,
		Duration:    in.Duration,
		Category:    in.Category,
		Language:    in.Language,
		ReleaseYear: in.ReleaseYear,
		AgeRating:   in.AgeRating,
		IsPremium:   in.IsPremium,
		IsPublic:    false,
		ApprovedAt:  nil,
		Tags:        tags,
		CreatedBy:   in.CreatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repository.NewVideoRepo(s.db).Create(ctx, &v); err != nil {
		s.discard(ctx, videoKey)
		s.discard(ctx, thumbKey)
		return model.Video{}, internalErr("create video", err)
	}

	s.metrics.VideoSubmitted()
	s.logger.Info().Str("video_id", v.ID).Str("creator_id", v.CreatedBy).Msg("video submitted for approval")
	s.notify(ctx, queue.EventVideoSubmitted, v, in.CreatorID)
	return v, nil
}

func (s *approvalService) Approve(ctx context.Context, videoID, actorID string) (model.Video, error) {
	repo := repository.NewVideoRepo(s.db)
	if err := repo.Approve(ctx, videoID, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Video{}, notFoundErr("Video not found")
		}
		return model.Video{}, internalErr("approve video", err)
	}
	v, err := repo.GetByID(ctx, videoID)
	if err != nil {
		return model.Video{}, internalErr("load video", err)
	}

	s.metrics.VideoModerated("approved")
	s.logger.Info().Str("video_id", v.ID).Str("actor_id", actorID).Msg("video approved and published")
	s.notify(ctx, queue.EventVideoApproved, v, actorID)
	return v, nil
}

func (s *approvalService) Reject(ctx context.Context, videoID, actorID string) error {
	var v model.Video
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := repository.NewVideoRepo(tx)
		var err error
		if v, err = repo.GetByID(ctx, videoID); err != nil {
			return err
		}
		return repo.Delete(ctx, videoID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundErr("Video not found")
		}
		return internalErr("reject video", err)
	}

	s.discard(ctx, storage.KeyFromURL(v.VideoURL))
	s.discard(ctx, storage.KeyFromURL(v.Thumbnail))
	s.metrics.VideoModerated("rejected")
	s.logger.Info().Str("video_id", v.ID).Str("actor_id", actorID).Str("title", v.Title).Msg("video rejected and deleted")
	s.notify(ctx, queue.EventVideoRejected, v, actorID)
	return nil
}

func (s *approvalService) ListPending(ctx context.Context, limit, offset int) ([]model.VideoWithCreator, error) {
	limit, offset = clampPage(limit, offset)
	out, err := repository.NewVideoRepo(s.db).ListPending(ctx, limit, offset)
	if err != nil {
		return nil, internalErr("list pending videos", err)
	}
	return out, nil
}

func (s *approvalService) discard(ctx context.Context, key string) {
	if key == "" || key == "." || key == "/" {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("media cleanup failed")
	}
}

func (s *approvalService) notify(ctx context.Context, typ string, v model.Video, actorID string) {
	ev := queue.VideoEvent{
		Type:       typ,
		VideoID:    v.ID,
		Title:      v.Title,
		CreatorID:  v.CreatedBy,
		ActorID:    actorID,
		OccurredAt: s.now(),
	}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("type", typ).Str("video_id", v.ID).Msg("notification not delivered")
	}
}

// clampPage applies the default page size of 20 and the maximum of 100.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
