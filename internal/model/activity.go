package model

import "time"

// WatchlistItem is a saved-for-later (user, video) pair.
type WatchlistItem struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	VideoID string    `json:"videoId"`
	AddedAt time.Time `json:"addedAt"`
}

// WatchlistEntry is a watchlist item enriched for display.
type WatchlistEntry struct {
	WatchlistItem
	Video VideoWithCreator `json:"video"`
}

// WatchHistory is an append-only viewing record. WatchTime is in seconds.
type WatchHistory struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	VideoID   string    `json:"videoId"`
	WatchTime int       `json:"watchTime"`
	WatchedAt time.Time `json:"watchedAt"`
}

// Review is a user's rating of a video; it also counts as "liked" content.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	VideoID   string    `json:"videoId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
