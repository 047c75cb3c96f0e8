package entity

import "time"

// Category groups listings on the marketplace.
type Category string

const (
	CategoryProperty Category = "property"
	CategoryRental   Category = "rental"
	CategoryHostel   Category = "hostel"
)

func ParseCategory(s string) (Category, bool) {
	switch c := Category(s); c {
	case CategoryProperty, CategoryRental, CategoryHostel:
		return c, true
	}
	return "", false
}

// Listing is a project on the marketplace. The contact fields and the
// brochure object are protected and only revealed to entitled viewers.
type Listing struct {
	ID          string
	OwnerID     string
	Category    Category
	Title       string
	Description string
	Location    string
	Price       int64
	ImageURL    string

	ContactName    string
	ContactPhone   string
	ContactEmail   string
	BrochureObject string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Public returns l with every protected field cleared.
func (l Listing) Public() Listing {
	l.ContactName = ""
	l.ContactPhone = ""
	l.ContactEmail = ""
	l.BrochureObject = ""
	return l
}

// HasBrochure reports whether a brochure is attached.
func (l Listing) HasBrochure() bool { return l.BrochureObject != "" }
