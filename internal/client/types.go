package client

import (
	"time"

	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
)

type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Role               string     `json:"role"`
	Plan               string     `json:"plan"`
	ProjectsViewed     int        `json:"projects_viewed"`
	ProjectsLimit      *int       `json:"projects_limit"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry"`
}

type Subscription struct {
	IsActive      bool       `json:"is_active"`
	DaysRemaining int        `json:"days_remaining"`
	ExpiryDate    *time.Time `json:"expiry_date"`
}

type Profile struct {
	User                  User         `json:"user"`
	Subscription          Subscription `json:"subscription"`
	CanAccessPremium      bool         `json:"can_access_premium"`
	CanViewMoreProjects   bool         `json:"can_view_more_projects"`
	RemainingViews        *int         `json:"remaining_views"`
	CanAccessBuilderPanel bool         `json:"can_access_builder_panel"`
	IsAdmin               bool         `json:"is_admin"`
}

type Listing struct {
	ID           string `json:"id"`
	Category     string `json:"category"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	Price        int64  `json:"price"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
}

type ListingView struct {
	Listing        Listing `json:"listing"`
	Revealed       bool    `json:"revealed"`
	LockedReason   string  `json:"locked_reason"`
	BrochureURL    string  `json:"brochure_url"`
	RemainingViews *int    `json:"remaining_views"`
}

type apiSession struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	ExpiresAt    time.Time `json:"expires_at"`
	SessionToken string    `json:"session_token"`
}

func (s apiSession) entity() entity.Session {
	return entity.Session{
		ID:        s.ID,
		Email:     s.Email,
		Role:      entity.Role(s.Role),
		ExpiresAt: s.ExpiresAt,
		Token:     s.SessionToken,
	}
}
