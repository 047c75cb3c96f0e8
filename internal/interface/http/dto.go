package handlers

import (
	"time"

	"github.com/oksasatya/estate-marketplace/internal/application"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
)

type userDTO struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Role               string     `json:"role"`
	Plan               string     `json:"plan"`
	ProjectsViewed     int        `json:"projects_viewed"`
	ProjectsLimit      *int       `json:"projects_limit"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry"`
	CreatedAt          time.Time  `json:"created_at"`
}

// toUserDTO reports a nil projects_limit for unlimited plans.
func toUserDTO(u entity.User) userDTO {
	d := userDTO{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               string(u.Role),
		Plan:               u.Plan.String(),
		ProjectsViewed:     u.ProjectsViewed,
		SubscriptionExpiry: u.SubscriptionExpiry,
		CreatedAt:          u.CreatedAt,
	}
	if !u.Plan.Spec().Unlimited {
		limit := u.ProjectsLimit
		d.ProjectsLimit = &limit
	}
	return d
}

type sessionDTO struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	ExpiresAt    time.Time `json:"expires_at"`
	SessionToken string    `json:"session_token,omitempty"`
	DeviceID     string    `json:"device_id,omitempty"`
}

func toSessionDTO(s entity.Session, deviceID string, withToken bool) sessionDTO {
	d := sessionDTO{ID: s.ID, Email: s.Email, Role: string(s.Role), ExpiresAt: s.ExpiresAt, DeviceID: deviceID}
	if withToken {
		d.SessionToken = s.Token
	}
	return d
}

type authDTO struct {
	User    userDTO    `json:"user"`
	Session sessionDTO `json:"session"`
}

type profileDTO struct {
	User                  userDTO                        `json:"user"`
	Subscription          application.SubscriptionStatus `json:"subscription"`
	CanAccessPremium      bool                           `json:"can_access_premium"`
	CanViewMoreProjects   bool                           `json:"can_view_more_projects"`
	RemainingViews        *int                           `json:"remaining_views"`
	CanAccessBuilderPanel bool                           `json:"can_access_builder_panel"`
	IsAdmin               bool                           `json:"is_admin"`
}

func toProfileDTO(p *application.Profile) profileDTO {
	return profileDTO{
		User:                  toUserDTO(p.User),
		Subscription:          p.Status,
		CanAccessPremium:      p.CanAccessPremium,
		CanViewMoreProjects:   p.CanViewMoreProjects,
		RemainingViews:        p.RemainingViews,
		CanAccessBuilderPanel: p.CanAccessBuilderPanel,
		IsAdmin:               p.IsAdmin,
	}
}

type listingDTO struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id,omitempty"`
	Category     string    `json:"category"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Price        int64     `json:"price"`
	ImageURL     string    `json:"image_url,omitempty"`
	ContactName  string    `json:"contact_name,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toListingDTO(l entity.Listing) listingDTO {
	return listingDTO{
		ID:           l.ID,
		OwnerID:      l.OwnerID,
		Category:     string(l.Category),
		Title:        l.Title,
		Description:  l.Description,
		Location:     l.Location,
		Price:        l.Price,
		ImageURL:     l.ImageURL,
		ContactName:  l.ContactName,
		ContactPhone: l.ContactPhone,
		ContactEmail: l.ContactEmail,
		CreatedAt:    l.CreatedAt,
	}
}

func toListingDTOs(ls []entity.Listing) []listingDTO {
	out := make([]listingDTO, 0, len(ls))
	for _, l := range ls {
		out = append(out, toListingDTO(l))
	}
	return out
}

type listingViewDTO struct {
	Listing        listingDTO `json:"listing"`
	Revealed       bool       `json:"revealed"`
	LockedReason   string     `json:"locked_reason,omitempty"`
	BrochureURL    string     `json:"brochure_url,omitempty"`
	RemainingViews *int       `json:"remaining_views"`
}

func toListingViewDTO(v *application.ListingView) listingViewDTO {
	return listingViewDTO{
		Listing:        toListingDTO(v.Listing),
		Revealed:       v.Revealed,
		LockedReason:   v.LockedReason,
		BrochureURL:    v.BrochureURL,
		RemainingViews: v.RemainingViews,
	}
}
