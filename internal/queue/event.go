// Package queue carries moderation events over RabbitMQ: the publisher is
// called by the approval workflow and the consumer appends every event to
// logs/moderation.log, which doubles as the audit trail for rejections.
package queue

import "time"

// ModerationQueue is the durable queue all video events go through.
const ModerationQueue = "video.moderation"

// Event types.
const (
	EventVideoSubmitted = "video.submitted"
	EventVideoApproved  = "video.approved"
	EventVideoRejected  = "video.rejected"
)

// VideoEvent is published whenever a video enters or leaves moderation.
// It carries enough to notify the creator without querying the store,
// which matters for rejections since the row is gone by then.
type VideoEvent struct {
	Type       string    `json:"type"`
	VideoID    string    `json:"video_id"`
	Title      string    `json:"title"`
	CreatorID  string    `json:"creator_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
