package entity

import (
	"time"
)

// User is the aggregate root for identity and entitlement state.
// PasswordHash holds the derived credential secret; the raw password is never kept.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	PasswordSalt string
	Role         Role

	Plan               Plan
	ProjectsViewed     int
	ProjectsLimit      int
	SubscriptionExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy that shares no pointers with u.
func (u User) Clone() User {
	if u.SubscriptionExpiry != nil {
		exp := *u.SubscriptionExpiry
		u.SubscriptionExpiry = &exp
	}
	return u
}

// Identity is the snapshot carried by a session.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}
