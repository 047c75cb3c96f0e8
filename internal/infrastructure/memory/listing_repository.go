package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/estate-marketplace/internal/domain/repository"
)

type ListingRepository struct {
	mu   sync.RWMutex
	byID map[string]entity.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{byID: map[string]entity.Listing{}}
}

var _ repo.ListingRepository = (*ListingRepository)(nil)

func (r *ListingRepository) Create(_ context.Context, l *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	r.byID[l.ID] = *l
	return nil
}

func (r *ListingRepository) Update(_ context.Context, l *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[l.ID]
	if !ok {
		return domain.ErrListingNotFound
	}
	l.CreatedAt = cur.CreatedAt
	l.UpdatedAt = time.Now().UTC()
	r.byID[l.ID] = *l
	return nil
}

func (r *ListingRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *ListingRepository) GetByID(_ context.Context, id string) (*entity.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return &l, nil
}

func (r *ListingRepository) GetByCategory(_ context.Context, c entity.Category) ([]entity.Listing, error) {
	return r.filter(func(l entity.Listing) bool { return l.Category == c }), nil
}

func (r *ListingRepository) GetByOwner(_ context.Context, ownerID string) ([]entity.Listing, error) {
	return r.filter(func(l entity.Listing) bool { return l.OwnerID == ownerID }), nil
}

// filter returns matches newest first.
func (r *ListingRepository) filter(keep func(entity.Listing) bool) []entity.Listing {
	r.mu.RLock()
	out := []entity.Listing{}
	for _, l := range r.byID {
		if keep(l) {
			out = append(out, l)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
