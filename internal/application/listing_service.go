package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/estate-marketplace/internal/domain/repository"
)

// ListingIndex is the full-text search index. It only ever holds public fields.
type ListingIndex interface {
	Index(ctx context.Context, l entity.Listing) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]entity.Listing, error)
}

// BrochureSigner issues a short-lived download link for a brochure object.
type BrochureSigner interface {
	SignedURL(ctx context.Context, object string) (string, error)
}

// Reasons a listing stays redacted.
const (
	LockedSignIn       = "sign_in_required"
	LockedSubscription = "subscription_required"
	LockedLimit        = "view_limit_reached"
)

// ListingView is a listing as seen by one caller.
type ListingView struct {
	Listing        entity.Listing
	Revealed       bool
	LockedReason   string
	BrochureURL    string
	RemainingViews *int
}

// Dashboard is the builder self-service overview.
type Dashboard struct {
	User     entity.User
	Status   SubscriptionStatus
	Listings []entity.Listing
}

type ListingInput struct {
	OwnerID        string
	Category       string
	Title          string
	Description    string
	Location       string
	Price          int64
	ImageURL       string
	ContactName    string
	ContactPhone   string
	ContactEmail   string
	BrochureObject string
}

const maxViewRetries = 3

type ListingService struct {
	Listings  repo.ListingRepository
	Users     repo.UserRepository
	Engine    *Engine
	Unlocks   UnlockLedger
	Index     ListingIndex
	Brochures BrochureSigner
	Logger    *logrus.Logger
}

func NewListingService(listings repo.ListingRepository, users repo.UserRepository, engine *Engine, unlocks UnlockLedger, index ListingIndex, brochures BrochureSigner, logger *logrus.Logger) *ListingService {
	return &ListingService{
		Listings:  listings,
		Users:     users,
		Engine:    engine,
		Unlocks:   unlocks,
		Index:     index,
		Brochures: brochures,
		Logger:    logger,
	}
}

// ByCategory lists one category with protected fields removed.
func (s *ListingService) ByCategory(ctx context.Context, category string) ([]entity.Listing, error) {
	c, ok := entity.ParseCategory(category)
	if !ok {
		return nil, domain.ErrInvalidCategory
	}
	ls, err := s.Listings.GetByCategory(ctx, c)
	if err != nil {
		return nil, err
	}
	return redact(ls), nil
}

// Search queries the index. An unavailable index yields no results.
func (s *ListingService) Search(ctx context.Context, q string, size int) ([]entity.Listing, error) {
	if s.Index == nil || strings.TrimSpace(q) == "" {
		return []entity.Listing{}, nil
	}
	ls, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, err
	}
	return redact(ls), nil
}

// View returns listing id as viewer may see it. Protected fields are revealed
// to admins, to the owner, for listings the viewer already unlocked, or when
// the viewer can still unlock one more project, which consumes one view.
func (s *ListingService) View(ctx context.Context, viewer *entity.User, id string) (*ListingView, error) {
	l, err := s.Listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return &ListingView{Listing: l.Public(), LockedReason: LockedSignIn}, nil
	}
	if entity.IsAdmin(viewer.Role) || l.OwnerID == viewer.ID {
		return s.reveal(ctx, *l, viewer), nil
	}
	if !s.Engine.CanAccessPremiumFeatures(viewer) {
		return s.locked(*l, viewer, LockedSubscription), nil
	}
	if s.alreadyUnlocked(ctx, viewer.ID, l.ID) {
		return s.reveal(ctx, *l, viewer), nil
	}

	u, err := s.consumeView(ctx, viewer)
	if errors.Is(err, domain.ErrProjectLimitReached) {
		return s.locked(*l, u, LockedLimit), nil
	}
	if err != nil {
		return nil, err
	}
	if s.Unlocks != nil {
		if err := s.Unlocks.Add(ctx, u.ID, l.ID, u.SubscriptionExpiry); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("listing_id", l.ID).Warn("remember unlocked listing failed")
		}
	}
	return s.reveal(ctx, *l, u), nil
}

// consumeView gates on CanViewMoreProjects and stores the incremented counter
// with compare-and-set, re-reading the user when a concurrent view won.
func (s *ListingService) consumeView(ctx context.Context, viewer *entity.User) (*entity.User, error) {
	u := viewer
	for i := 0; i < maxViewRetries; i++ {
		if !s.Engine.CanViewMoreProjects(u) {
			return u, domain.ErrProjectLimitReached
		}
		next := s.Engine.RecordProjectView(*u)
		if next.ProjectsViewed == u.ProjectsViewed {
			return &next, nil
		}
		ok, err := s.Users.SetProjectsViewed(ctx, u.ID, u.ProjectsViewed, next.ProjectsViewed)
		if err != nil {
			return nil, err
		}
		if ok {
			return &next, nil
		}
		if u, err = s.Users.GetByID(ctx, u.ID); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("record project view: too much contention for user %s", viewer.ID)
}

func (s *ListingService) alreadyUnlocked(ctx context.Context, userID, listingID string) bool {
	if s.Unlocks == nil {
		return false
	}
	ok, err := s.Unlocks.Has(ctx, userID, listingID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("listing_id", listingID).Warn("unlock lookup failed")
		}
		return false
	}
	return ok
}

func (s *ListingService) reveal(ctx context.Context, l entity.Listing, u *entity.User) *ListingView {
	v := &ListingView{Listing: l, Revealed: true, RemainingViews: s.Engine.RemainingViews(u)}
	v.Listing.BrochureObject = ""
	if l.HasBrochure() && s.Brochures != nil {
		url, err := s.Brochures.SignedURL(ctx, l.BrochureObject)
		if err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("listing_id", l.ID).Warn("sign brochure url failed")
			}
		} else {
			v.BrochureURL = url
		}
	}
	return v
}

func (s *ListingService) locked(l entity.Listing, u *entity.User, reason string) *ListingView {
	return &ListingView{Listing: l.Public(), LockedReason: reason, RemainingViews: s.Engine.RemainingViews(u)}
}

// Dashboard lists the caller's own listings with subscription status.
// Builders and admins only.
func (s *ListingService) Dashboard(ctx context.Context, u *entity.User) (*Dashboard, error) {
	if u == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !entity.CanAccessBuilderDashboard(u.Role) {
		return nil, domain.ErrForbidden
	}
	ls, err := s.Listings.GetByOwner(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{User: *u, Status: s.Engine.Status(u), Listings: ls}, nil
}

// Create adds a listing. Admin only.
func (s *ListingService) Create(ctx context.Context, actor *entity.User, in ListingInput) (*entity.Listing, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	l := entity.Listing{ID: uuid.NewString()}
	if err := applyListingInput(&l, in); err != nil {
		return nil, err
	}
	if err := s.Listings.Create(ctx, &l); err != nil {
		return nil, err
	}
	s.index(ctx, l)
	return &l, nil
}

// Update replaces the editable fields of a listing. Admin only.
func (s *ListingService) Update(ctx context.Context, actor *entity.User, id string, in ListingInput) (*entity.Listing, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	l, err := s.Listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyListingInput(l, in); err != nil {
		return nil, err
	}
	if err := s.Listings.Update(ctx, l); err != nil {
		return nil, err
	}
	s.index(ctx, *l)
	return l, nil
}

// Delete removes a listing. Admin only.
func (s *ListingService) Delete(ctx context.Context, actor *entity.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.Listings.Delete(ctx, id); err != nil {
		return err
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("listing_id", id).Warn("es delete failed")
		}
	}
	return nil
}

func (s *ListingService) index(ctx context.Context, l entity.Listing) {
	if s.Index == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Index.Index(c, l.Public()); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("listing_id", l.ID).Warn("es index failed")
	}
}

func applyListingInput(l *entity.Listing, in ListingInput) error {
	c, ok := entity.ParseCategory(in.Category)
	if !ok {
		return domain.ErrInvalidCategory
	}
	l.OwnerID = in.OwnerID
	l.Category = c
	l.Title = strings.TrimSpace(in.Title)
	l.Description = in.Description
	l.Location = in.Location
	l.Price = in.Price
	l.ImageURL = in.ImageURL
	l.ContactName = in.ContactName
	l.ContactPhone = in.ContactPhone
	l.ContactEmail = in.ContactEmail
	l.BrochureObject = in.BrochureObject
	return nil
}

func requireAdmin(actor *entity.User) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !entity.IsAdmin(actor.Role) {
		return domain.ErrForbidden
	}
	return nil
}

func redact(ls []entity.Listing) []entity.Listing {
	out := make([]entity.Listing, len(ls))
	for i, l := range ls {
		out[i] = l.Public()
	}
	return out
}
