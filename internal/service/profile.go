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

// ProfileInput carries profile fields. Nil pointers and a nil map leave
// the stored value unchanged on update.
type ProfileInput struct {
	Name        string
	Avatar      *string
	IsKids      *bool
	Preferences map[string]any
}

// ProfileService manages the sub-profiles of an account. An account has
// between one and five profiles.
type ProfileService interface {
	List(ctx context.Context, actor Actor, userID string) ([]model.UserProfile, error)
	Create(ctx context.Context, actor Actor, userID string, in ProfileInput) (model.UserProfile, error)
	Update(ctx context.Context, actor Actor, profileID string, in ProfileInput) (model.UserProfile, error)
	Delete(ctx context.Context, actor Actor, profileID string) error
}

type profileService struct {
	db     *sql.DB
	now    Clock
	logger zerolog.Logger
}

// NewProfileService returns the profile service.
func NewProfileService(db *sql.DB, now Clock, logger zerolog.Logger) ProfileService {
	return &profileService{
		db:     db,
		now:    now,
		logger: logger.With().Str("service", "ProfileService").Logger(),
	}
}

func (s *profileService) List(ctx context.Context, actor Actor, userID string) ([]model.UserProfile, error) {
	if userID == "" {
		return nil, validationErr("User ID is required")
	}
	if !actor.CanAccess(userID) {
		return nil, forbiddenErr("forbidden")
	}
	out, err := repository.NewProfileRepo(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, internalErr("list profiles", err)
	}
	return out, nil
}

func (s *profileService) Create(ctx context.Context, actor Actor, userID string, in ProfileInput) (model.UserProfile, error) {
	name := strings.TrimSpace(in.Name)
	if userID == "" || name == "" {
		return model.UserProfile{}, validationErr("User ID and name are required")
	}
	if !actor.CanAccess(userID) {
		return model.UserProfile{}, forbiddenErr("forbidden")
	}

	now := s.now()
	p := model.UserProfile{
		ID:          newID(),
		UserID:      userID,
		Name:        name,
		Preferences: in.Preferences,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Avatar != nil {
		p.Avatar = *in.Avatar
	}
	if in.IsKids != nil {
		p.IsKids = *in.IsKids
	}
	if p.Preferences == nil {
		p.Preferences = map[string]any{}
	}

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewUserRepo(tx).Touch(ctx, userID, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundErr("User not found")
			}
			return err
		}
		profiles := repository.NewProfileRepo(tx)
		n, err := profiles.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if n >= model.MaxProfilesPerUser {
			return &Error{Kind: KindLimitExceeded, Msg: "Maximum 5 profiles allowed per user"}
		}
		return profiles.Create(ctx, &p)
	})
	if err != nil {
		return model.UserProfile{}, wrapTx(err, "create profile")
	}
	s.logger.Debug().Str("user_id", userID).Str("profile_id", p.ID).Msg("profile created")
	return p, nil
}

func (s *profileService) Update(ctx context.Context, actor Actor, profileID string, in ProfileInput) (model.UserProfile, error) {
	name := strings.TrimSpace(in.Name)
	if profileID == "" {
		return model.UserProfile{}, validationErr("Profile ID is required")
	}
	if name == "" {
		return model.UserProfile{}, validationErr("Name is required")
	}

	var p model.UserProfile
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		profiles := repository.NewProfileRepo(tx)
		var err error
		if p, err = profiles.GetByID(ctx, profileID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundErr("Profile not found")
			}
			return err
		}
		if !actor.CanAccess(p.UserID) {
			return forbiddenErr("forbidden")
		}
		p.Name = name
		if in.Avatar != nil {
			p.Avatar = *in.Avatar
		}
		if in.IsKids != nil {
			p.IsKids = *in.IsKids
		}
		if in.Preferences != nil {
			p.Preferences = in.Preferences
		}
		p.UpdatedAt = s.now()
		return profiles.Update(ctx, &p)
	})
	if err != nil {
		return model.UserProfile{}, wrapTx(err, "update profile")
	}
	return p, nil
}

func (s *profileService) Delete(ctx context.Context, actor Actor, profileID string) error {
	if profileID == "" {
		return validationErr("Profile ID is required")
	}
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		profiles := repository.NewProfileRepo(tx)
		p, err := profiles.GetByID(ctx, profileID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundErr("Profile not found")
			}
			return err
		}
		if !actor.CanAccess(p.UserID) {
			return forbiddenErr("forbidden")
		}
		if err := repository.NewUserRepo(tx).Touch(ctx, p.UserID, s.now()); err != nil {
			return err
		}
		n, err := profiles.CountByUser(ctx, p.UserID)
		if err != nil {
			return err
		}
		if n <= 1 {
			return &Error{Kind: KindInvariant, Msg: "Cannot delete the last profile"}
		}
		return profiles.Delete(ctx, profileID)
	})
	if err != nil {
		return wrapTx(err, "delete profile")
	}
	s.logger.Debug().Str("profile_id", profileID).Msg("profile deleted")
	return nil
}

// wrapTx passes service errors raised inside a transaction through and
// wraps anything else as internal.
func wrapTx(err error, op string) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internalErr(op, err)
}
