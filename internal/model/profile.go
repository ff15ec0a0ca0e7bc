package model

import "time"

// MaxProfilesPerUser caps the number of sub-profiles under one account.
const MaxProfilesPerUser = 5

// DefaultProfileName is given to the profile created with a new account.
const DefaultProfileName = "User Profile"

// UserProfile is a sub-identity under a User, e.g. a family member.
// Preferences is an opaque key-value bag stored as JSON.
type UserProfile struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Name        string         `json:"name"`
	Avatar      string         `json:"avatar,omitempty"`
	IsKids      bool           `json:"isKids"`
	Preferences map[string]any `json:"preferences"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
