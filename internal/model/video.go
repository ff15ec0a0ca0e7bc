package model

import (
	"fmt"
	"time"
)

// Video categories.
const (
	CategoryMovie       = "MOVIE"
	CategoryWebSeries   = "WEB_SERIES"
	CategoryMusic       = "MUSIC"
	CategoryCulture     = "CULTURE"
	CategoryDocumentary = "DOCUMENTARY"
)

// Categories lists every accepted category.
var Categories = []string{CategoryMovie, CategoryWebSeries, CategoryMusic, CategoryCulture, CategoryDocumentary}

// Languages lists every accepted content language.
var Languages = []string{"NAGPURI", "SANTALI", "HO", "KURUKH", "KHORTHA", "MUNDARI", "HINDI", "ENGLISH"}

// AgeRatings lists every accepted age rating.
var AgeRatings = []string{"U", "U_A", "A", "S"}

// Moderation states exposed to clients. They are derived from IsPublic and
// ApprovedAt; a rejected video no longer exists.
const (
	VideoStatusPending  = "pending"
	VideoStatusApproved = "approved"
)

// Video mirrors the videos table. ApprovedAt is nil while the upload waits
// for moderation.
type Video struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Thumbnail   string     `json:"thumbnail"`
	VideoURL    string     `json:"videoUrl"`
	Duration    int        `json:"duration"`
	Category    string     `json:"category"`
	Language    string     `json:"language"`
	ReleaseYear *int       `json:"releaseYear,omitempty"`
	AgeRating   string     `json:"ageRating"`
	IsPremium   bool       `json:"isPremium"`
	IsPublic    bool       `json:"isPublic"`
	ApprovedAt  *time.Time `json:"approvedAt"`
	ViewCount   int64      `json:"viewCount"`
	Tags        []string   `json:"tags"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Visible reports whether the video may appear in the public feed.
func (v Video) Visible() bool {
	return v.IsPublic && v.ApprovedAt != nil
}

// Status returns the moderation state of the video.
func (v Video) Status() string {
	if v.Visible() {
		return VideoStatusApproved
	}
	return VideoStatusPending
}

// CreatorSummary is the denormalized creator shown next to a video.
type CreatorSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// VideoWithCreator is a video row joined with its creator.
type VideoWithCreator struct {
	Video
	Creator CreatorSummary `json:"creator"`
}

// FormatDuration renders seconds as h:mm:ss, or m:ss under an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Contains reports whether v is one of values.
func Contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
