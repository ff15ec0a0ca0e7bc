package model

import "time"

// Role values stored in users.role.
const (
	RoleUser    = "USER"
	RoleCreator = "CREATOR"
	RoleAdmin   = "ADMIN"
)

// Account status values stored in users.status.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
	UserStatusBanned    = "banned"
)

// User mirrors the users table. Email and Phone are both optional but a
// user always has at least one of them; either is a valid login key.
// SubscriptionID and SubscriptionEnd cache the most recent purchase.
type User struct {
	ID              string     `json:"id"`
	Email           *string    `json:"email,omitempty"`
	Phone           *string    `json:"phone,omitempty"`
	Name            string     `json:"name"`
	Avatar          string     `json:"avatar,omitempty"`
	PasswordHash    string     `json:"-"`
	Role            string     `json:"role"`
	Status          string     `json:"status"`
	IsVerified      bool       `json:"isVerified"`
	SubscriptionID  *string    `json:"subscriptionId,omitempty"`
	SubscriptionEnd *time.Time `json:"subscriptionEnd,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CanLogin reports whether the account may obtain new tokens.
func (u User) CanLogin() bool {
	return u.Status == "" || u.Status == UserStatusActive
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleCreator || r == RoleAdmin
}

// ValidUserStatus reports whether s is one of the account states.
func ValidUserStatus(s string) bool {
	return s == UserStatusActive || s == UserStatusSuspended || s == UserStatusBanned
}

// RefreshToken models an entry in the refresh_tokens table. Only the
// SHA-256 hash of the token value is stored.
type RefreshToken struct {
	ID        uint64
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
