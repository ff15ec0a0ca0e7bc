// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/regional-streaming/internal/database"
	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/repository"
)

// Epoch is a fixed instant tests use as "now".
var Epoch = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// NewDB returns a migrated in-memory SQLite database closed on cleanup.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, "sqlite"))
	t.Cleanup(func() { db.Close() })
	return db
}

// Clock is a settable time source.
type Clock struct{ T time.Time }

// NewClock starts a clock at Epoch.
func NewClock() *Clock { return &Clock{T: Epoch} }

// Now returns the current fake time.
func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// CreateUser inserts a user with the given role.
func CreateUser(t *testing.T, db *sql.DB, name, role string) model.User {
	t.Helper()
	email := uuid.NewString() + "@example.com"
	u := model.User{
		ID:        uuid.NewString(),
		Email:     &email,
		Name:      name,
		Role:      role,
		Status:    model.UserStatusActive,
		CreatedAt: Epoch,
		UpdatedAt: Epoch,
	}
	require.NoError(t, repository.NewUserRepo(db).Create(context.Background(), &u))
	return u
}

// CreateVideo inserts a video owned by creatorID; approved videos are
// public with approved_at set.
func CreateVideo(t *testing.T, db *sql.DB, creatorID, title string, approved bool, createdAt time.Time) model.Video {
	t.Helper()
	v := model.Video{
		ID:          uuid.NewString(),
		Title:       title,
		Description: title + " description",
		Thumbnail:   "/uploads/thumb.jpg",
		VideoURL:    "/uploads/video.mp4",
		Duration:    600,
		Category:    model.CategoryMovie,
		Language:    "NAGPURI",
		AgeRating:   "U",
		Tags:        []string{"folk"},
		CreatedBy:   creatorID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if approved {
		v.IsPublic = true
		at := createdAt
		v.ApprovedAt = &at
	}
	require.NoError(t, repository.NewVideoRepo(db).Create(context.Background(), &v))
	return v
}
