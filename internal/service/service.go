// Package service implements the platform's business rules on top of the
// repositories: content approval, subscriptions, payments, profiles,
// watchlists, analytics and authentication.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/queue"
)

// Clock returns the current time. Services store whole seconds in UTC so
// that stored and computed timestamps compare exactly.
type Clock func() time.Time

// SystemClock is the production clock.
func SystemClock() time.Time { return time.Now().UTC().Truncate(time.Second) }

// newID returns a version 7 UUID. Ids are strictly increasing within the
// process, so they order rows that share a created_at second.
func newID() string { return uuid.Must(uuid.NewV7()).String() }

// Notifier delivers video events to creators and the audit log.
type Notifier interface {
	Publish(ctx context.Context, ev queue.VideoEvent) error
}

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether the caller has the ADMIN role.
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// CanAccess reports whether the caller may act on data owned by userID.
func (a Actor) CanAccess(userID string) bool {
	return a.IsAdmin() || (a.ID != "" && a.ID == userID)
}
